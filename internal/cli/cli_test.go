package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praveenchandhar/liquibase-jenkins-based-deployment/internal/config"
	"github.com/praveenchandhar/liquibase-jenkins-based-deployment/internal/ledger"
)

const seed = `// context: staging
db.getCollection("users").insertOne({name:"a"});
db.orders.drop();
`

func useMemFs(t *testing.T) afero.Fs {
	t.Helper()
	prev := config.AppFs
	fs := afero.NewMemMapFs()
	config.AppFs = fs
	t.Cleanup(func() { config.AppFs = prev })
	require.NoError(t, afero.WriteFile(fs, "/db/20240115_01.js", []byte(seed), 0644))
	return fs
}

// execute runs the root command with fresh flag state.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	outputFormat, verbose, configFile = "text", false, ""
	genFlags, genDryRun, genWatch, genLedger, genNoLedger = scriptFlags{}, false, false, "", false
	inspectFlags, inspectInfo = scriptFlags{}, false
	diffFlags, diffAgainst, diffCheck = scriptFlags{}, "", false
	historyLedger, historyLimit = "", 0
	v = viper.New()

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func TestGenerate_DryRun(t *testing.T) {
	fs := useMemFs(t)

	out, errOut, err := execute(t, "generate",
		"--js-file", "/db/20240115_01.js", "--version", "20240115_01", "--author", "jane", "--dry-run")
	require.NoError(t, err)

	assert.Contains(t, out, `<changeSet id="20240115_1.1" author="jane" context="staging">`)
	assert.Contains(t, out, `<mongodb:dropCollection collectionName="orders" />`)
	assert.Contains(t, errOut, "collection orders is dropped")

	exists, err := afero.Exists(fs, "/db/20240115_01.xml")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGenerate_WritesAndRecords(t *testing.T) {
	fs := useMemFs(t)
	dsn := filepath.Join(t.TempDir(), "ledger.db")

	out, _, err := execute(t, "generate",
		"--js-file", "/db/20240115_01.js", "--version", "20240115_01", "--author", "jane",
		"--output-dir", "/out", "--ledger", dsn)
	require.NoError(t, err)
	assert.Contains(t, out, "XML file generated: /out/20240115_01.xml")

	content, err := afero.ReadFile(fs, "/out/20240115_01.xml")
	require.NoError(t, err)
	assert.Contains(t, string(content), `<mongodb:insertOne collectionName="users">`)

	out, _, err = execute(t, "history", "--ledger", dsn, "-o", "json")
	require.NoError(t, err)

	var records []ledger.Record
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "/db/20240115_01.js", records[0].ScriptPath)
	assert.Equal(t, "20240115_1", records[0].Base)
	assert.Equal(t, 2, records[0].ChangeSets)
}

func TestGenerate_MissingScript(t *testing.T) {
	useMemFs(t)

	_, _, err := execute(t, "generate",
		"--js-file", "/db/missing.js", "--version", "1", "--author", "jane")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "script file not found")
}

func TestGenerate_InvalidOrder(t *testing.T) {
	useMemFs(t)

	_, _, err := execute(t, "generate",
		"--js-file", "/db/20240115_01.js", "--version", "1", "--author", "jane", "--order", "random")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid order "random"`)
}

func TestInspect_JSON(t *testing.T) {
	useMemFs(t)

	out, errOut, err := execute(t, "inspect", "--js-file", "/db/20240115_01.js", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, errOut, "collection orders is dropped")

	var s struct {
		Context    string `json:"context"`
		Operations []struct {
			Kind       string `json:"kind"`
			Collection string `json:"collection"`
		} `json:"operations"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, "staging", s.Context)
	require.Len(t, s.Operations, 2)
	assert.Equal(t, "insertOne", s.Operations[0].Kind)
	assert.Equal(t, "orders", s.Operations[1].Collection)
}

func TestInspect_WarningsInEveryFormat(t *testing.T) {
	for _, format := range []string{"text", "table", "json", "yaml"} {
		t.Run(format, func(t *testing.T) {
			useMemFs(t)

			out, errOut, err := execute(t, "inspect", "--js-file", "/db/20240115_01.js", "-o", format)
			require.NoError(t, err)
			assert.Contains(t, out, "orders")
			assert.Contains(t, errOut, "#2 dropCollection: collection orders is dropped")
			assert.NotContains(t, out, "is dropped")
		})
	}
}

func TestDiff(t *testing.T) {
	useMemFs(t)

	_, _, err := execute(t, "generate",
		"--js-file", "/db/20240115_01.js", "--version", "20240115_01", "--author", "jane")
	require.NoError(t, err)

	out, _, err := execute(t, "diff",
		"--js-file", "/db/20240115_01.js", "--version", "20240115_01", "--author", "jane", "--check")
	require.NoError(t, err)
	assert.Contains(t, out, "No differences found.")

	out, _, err = execute(t, "diff",
		"--js-file", "/db/20240115_01.js", "--version", "20240115_01", "--author", "bob", "--check")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 existing changeset(s)")
	assert.Contains(t, out, "~ author: jane → bob")
}

func TestVersion(t *testing.T) {
	useMemFs(t)

	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "js2liquibase dev\n", out)
}
