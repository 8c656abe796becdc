package script

import (
	"bytes"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectContext(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "line comment",
			content: "// context: staging\ndb.users.drop();",
			want:    "staging",
		},
		{
			name:    "at prefix without colon",
			content: "// @context prod_eu\n",
			want:    "prod_eu",
		},
		{
			name:    "block comment mixed case",
			content: "/* @Context: qa1 */\ndb.users.drop();",
			want:    "qa1",
		},
		{
			name:    "database directive",
			content: "// DATABASE: analytics\n",
			want:    "analytics",
		},
		{
			name:    "database block directive",
			content: "/* database reporting */\n",
			want:    "reporting",
		},
		{
			name:    "context outranks database",
			content: "// DATABASE: first\n// context: second\n",
			want:    "second",
		},
		{
			name:    "directive below line ten",
			content: "\n\n\n\n\n\n\n\n\n\n// context: late\n",
			want:    DefaultContext,
		},
		{
			name:    "directive on line ten",
			content: "\n\n\n\n\n\n\n\n\n// context: tenth\n",
			want:    "tenth",
		},
		{
			name:    "no directive",
			content: "db.users.insertOne({a: 1});",
			want:    DefaultContext,
		},
		{
			name:    "empty",
			content: "",
			want:    DefaultContext,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectContext(tt.content))
		})
	}
}

func TestStripComments(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "line comment",
			content: "db.a.drop(); // note\ndb.b.drop();",
			want:    "db.a.drop(); \ndb.b.drop();",
		},
		{
			name:    "block comment",
			content: "/* header */db.a.drop();",
			want:    "db.a.drop();",
		},
		{
			name:    "multi-line block comment",
			content: "a\n/* one\ntwo */\nb",
			want:    "a\n\nb",
		},
		{
			name:    "code between block comments is kept",
			content: "/* a */ keep /* b */",
			want:    " keep ",
		},
		{
			name:    "unterminated block comment is kept",
			content: "/* open\ndb.c.drop();",
			want:    "/* open\ndb.c.drop();",
		},
		{
			name:    "double slash inside string strips the rest of the line",
			content: `db.links.insertOne({url: "http://example.com"});`,
			want:    `db.links.insertOne({url: "http:`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripComments(tt.content))
		})
	}
}

func TestParseFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := "// context: staging\n// seed\ndb.getCollection(\"users\").insertOne({name:\"a\"})\n"
	require.NoError(t, afero.WriteFile(fs, "/db/seed.js", []byte(content), 0644))

	s, err := ParseFile(fs, "/db/seed.js", ExtractOptions{})
	require.NoError(t, err)

	assert.Equal(t, "/db/seed.js", s.Path)
	assert.Equal(t, "staging", s.Context)
	require.Len(t, s.Operations, 1)
	assert.Equal(t, InsertOne, s.Operations[0].Kind)
}

func TestParseFile_Missing(t *testing.T) {
	_, err := ParseFile(afero.NewMemMapFs(), "/nope.js", ExtractOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInputMissing))
}

func TestWriters(t *testing.T) {
	s := Parse("// context: qa\ndb.orders.drop();\ndb.users.insertOne({a: 1});", ExtractOptions{})

	var text bytes.Buffer
	require.NoError(t, WriteText(&text, s))
	assert.Contains(t, text.String(), "Context: qa")
	assert.Contains(t, text.String(), "Operations: 2")
	assert.Contains(t, text.String(), "insertOne")

	var js bytes.Buffer
	require.NoError(t, WriteJSON(&js, s))
	assert.Contains(t, js.String(), `"kind": "insertOne"`)
	assert.Contains(t, js.String(), `"document": "{a: 1}"`)

	var ym bytes.Buffer
	require.NoError(t, WriteYAML(&ym, s))
	assert.Contains(t, ym.String(), "context: qa")
	assert.Contains(t, ym.String(), "kind: dropCollection")

	var table bytes.Buffer
	require.NoError(t, WriteTable(&table, s))
	assert.Contains(t, table.String(), "orders")
	assert.Contains(t, table.String(), "dropCollection")
}
