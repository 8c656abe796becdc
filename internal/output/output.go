// Package output writes generated changelogs next to their scripts.
package output

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Path returns the changelog path for a script: the script's base name with
// an .xml extension, in outDir or, when outDir is empty, the script's directory.
func Path(scriptPath, outDir string) string {
	base := filepath.Base(scriptPath)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + ".xml"
	if outDir == "" {
		outDir = filepath.Dir(scriptPath)
	}
	return filepath.Join(outDir, name)
}

// Writer writes changelogs to a filesystem.
type Writer struct {
	Fs afero.Fs
}

// NewWriter creates a writer on fs.
func NewWriter(fs afero.Fs) *Writer {
	return &Writer{Fs: fs}
}

// Write creates the parent directory if needed and writes content to path.
func (w *Writer) Write(path, content string) error {
	if err := w.Fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := afero.WriteFile(w.Fs, path, []byte(content), 0644); err != nil {
		return fmt.Errorf("writing changelog %s: %w", path, err)
	}
	return nil
}

// Read returns the content of an existing changelog. ok is false when no
// file exists at path.
func (w *Writer) Read(path string) (content []byte, ok bool, err error) {
	exists, err := afero.Exists(w.Fs, path)
	if err != nil || !exists {
		return nil, false, err
	}
	content, err = afero.ReadFile(w.Fs, path)
	if err != nil {
		return nil, false, fmt.Errorf("reading changelog %s: %w", path, err)
	}
	return content, true, nil
}

// Checksum returns the hex SHA-256 of content.
func Checksum(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
