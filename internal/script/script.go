// Package script provides types and utilities for reading MongoDB shell scripts
// and recognizing the database operations they contain.
package script

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// ErrInputMissing is returned when the script path does not resolve to a readable file.
var ErrInputMissing = errors.New("script file not found")

// Kind identifies a recognized database operation.
type Kind string

const (
	CreateCollection Kind = "createCollection"
	DropCollection   Kind = "dropCollection"
	CreateIndex      Kind = "createIndex"
	DropIndex        Kind = "dropIndex"
	InsertOne        Kind = "insertOne"
	InsertMany       Kind = "insertMany"
	UpdateOne        Kind = "updateOne"
	UpdateMany       Kind = "updateMany"
	ReplaceOne       Kind = "replaceOne"
	DeleteOne        Kind = "deleteOne"
	DeleteMany       Kind = "deleteMany"
)

// Operation is one recognized statement. Payload fields hold the verbatim
// text captured from the script; only those applicable to Kind are set.
type Operation struct {
	Kind       Kind   `json:"kind" yaml:"kind"`
	Collection string `json:"collection" yaml:"collection"`

	Document          string `json:"document,omitempty" yaml:"document,omitempty"`                     // insertOne
	Documents         string `json:"documents,omitempty" yaml:"documents,omitempty"`                   // insertMany
	Filter            string `json:"filter,omitempty" yaml:"filter,omitempty"`                         // update*, replaceOne, delete*
	Update            string `json:"update,omitempty" yaml:"update,omitempty"`                         // update*, replaceOne
	Options           string `json:"options,omitempty" yaml:"options,omitempty"`                       // update*, replaceOne, createIndex
	IndexKey          string `json:"index_key,omitempty" yaml:"index_key,omitempty"`                   // createIndex
	IndexSpec         string `json:"index_spec,omitempty" yaml:"index_spec,omitempty"`                 // dropIndex
	CollectionOptions string `json:"collection_options,omitempty" yaml:"collection_options,omitempty"` // createCollection

	// Shape names the pattern that matched; Offset is the match position in
	// the comment-stripped text.
	Shape  string `json:"shape" yaml:"shape"`
	Offset int    `json:"offset" yaml:"offset"`
	Raw    string `json:"-" yaml:"-"`
}

// Script is a parsed migration script.
type Script struct {
	Path       string      `json:"path,omitempty" yaml:"path,omitempty"`
	Context    string      `json:"context" yaml:"context"`
	Operations []Operation `json:"operations" yaml:"operations"`
}

// ParseFile reads a script through fs and parses it.
func ParseFile(fs afero.Fs, path string, opts ExtractOptions) (*Script, error) {
	content, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputMissing, path)
		}
		return nil, fmt.Errorf("reading script: %w", err)
	}
	s := Parse(string(content), opts)
	s.Path = path
	return s, nil
}

// Parse detects the context and extracts operations from script content.
// It never fails: unrecognized statements are skipped.
func Parse(content string, opts ExtractOptions) *Script {
	return &Script{
		Context:    DetectContext(content),
		Operations: Extract(StripComments(content), opts),
	}
}

// WriteJSON writes the script as JSON to the given writer.
func WriteJSON(w io.Writer, s *Script) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// WriteYAML writes the script as YAML to the given writer.
func WriteYAML(w io.Writer, s *Script) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	return enc.Encode(s)
}

// WriteTable writes one row per operation.
func WriteTable(w io.Writer, s *Script) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Kind", "Collection", "Shape", "Payload"})
	table.SetAutoWrapText(false)
	for i, op := range s.Operations {
		table.Append([]string{
			fmt.Sprintf("%d", i+1),
			string(op.Kind),
			op.Collection,
			op.Shape,
			summarize(op.Payload(), 40),
		})
	}
	table.Render()
	return nil
}

// WriteText writes a human-readable summary of the script.
func WriteText(w io.Writer, s *Script) error {
	var sb strings.Builder

	if s.Path != "" {
		sb.WriteString(fmt.Sprintf("Script: %s\n", s.Path))
	}
	sb.WriteString(fmt.Sprintf("Context: %s\n", s.Context))
	sb.WriteString(fmt.Sprintf("Operations: %d\n\n", len(s.Operations)))

	for i, op := range s.Operations {
		sb.WriteString(fmt.Sprintf("  %2d. %-16s %s\n", i+1, op.Kind, op.Collection))
		if p := op.Payload(); p != "" {
			sb.WriteString(fmt.Sprintf("      %s\n", summarize(p, 60)))
		}
	}

	_, err := w.Write([]byte(sb.String()))
	return err
}

// Payload returns the primary captured payload for the operation's kind.
func (op Operation) Payload() string {
	switch op.Kind {
	case InsertOne:
		return op.Document
	case InsertMany:
		return op.Documents
	case UpdateOne, UpdateMany, ReplaceOne, DeleteOne, DeleteMany:
		return op.Filter
	case CreateIndex:
		return op.IndexKey
	case DropIndex:
		return op.IndexSpec
	case CreateCollection:
		return op.CollectionOptions
	}
	return ""
}

func summarize(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > max {
		return s[:max-3] + "..."
	}
	return s
}
