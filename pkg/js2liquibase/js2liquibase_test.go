package js2liquibase_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praveenchandhar/liquibase-jenkins-based-deployment/pkg/js2liquibase"
)

func TestConvert(t *testing.T) {
	tests := []struct {
		name     string
		script   string
		version  string
		contains []string
		excludes []string
	}{
		{
			name:    "insertOne",
			script:  `db.getCollection("users").insertOne({name:"a"})`,
			version: "20240115_01",
			contains: []string{
				`<changeSet id="20240115_1" author="jane" context="liquibase_test">`,
				`<mongodb:insertOne collectionName="users">`,
				"            {name:\"a\"}\n",
			},
		},
		{
			name:    "context directive and drop",
			script:  "// context: staging\ndb.orders.drop();",
			version: "release-alpha",
			contains: []string{
				`<changeSet id="1" author="jane" context="staging">`,
				`<mongodb:dropCollection collectionName="orders" />`,
			},
		},
		{
			name:     "empty script",
			script:   "// only a comment\n",
			version:  "v2-rc3",
			contains: []string{`<changeSet id="2"`, js2liquibase.DefaultContext, "No MongoDB operations found"},
		},
		{
			name:     "commented out statement",
			script:   "/* db.users.drop(); */\n// db.orders.drop();\ndb.logs.drop();",
			version:  "1",
			contains: []string{`collectionName="logs"`},
			excludes: []string{`collectionName="users"`, `collectionName="orders"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			xml, err := js2liquibase.Convert(tt.script, tt.version, "jane")
			require.NoError(t, err)

			assert.True(t, strings.HasPrefix(xml, `<?xml version="1.0" encoding="UTF-8"?>`))
			for _, s := range tt.contains {
				assert.Contains(t, xml, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, xml, s)
			}
		})
	}
}

func TestConvert_UnembeddablePayload(t *testing.T) {
	xml, err := js2liquibase.Convert("db.a.insertOne({x:\"\x0b\"});\ndb.b.drop();", "7", "jane")
	require.NoError(t, err)

	assert.Contains(t, xml, `<changeSet id="7.1" author="jane" context="liquibase_test">
        <!-- Error processing insertOne: document payload contains character U+000B not allowed in XML -->
    </changeSet>`)
	assert.Contains(t, xml, `<mongodb:dropCollection collectionName="b" />`)
	assert.NotContains(t, xml, "\x0b")
}

func TestConvert_Pure(t *testing.T) {
	script := "db.a.insertOne({ x: 1 });\ndb.a.createIndex({ x: 1 });\ndb.a.drop();"

	first, err := js2liquibase.Convert(script, "20240115_03", "jane")
	require.NoError(t, err)
	second, err := js2liquibase.Convert(script, "20240115_03", "jane")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestConvertWithOptions_SourceOrder(t *testing.T) {
	script := "db.a.drop();\ndb.a.insertOne({ x: 1 });"

	declared, err := js2liquibase.Convert(script, "1", "jane")
	require.NoError(t, err)
	sourced, err := js2liquibase.ConvertWithOptions(script, "1", "jane", js2liquibase.Options{Order: "source"})
	require.NoError(t, err)

	assert.Less(t, strings.Index(declared, "insertOne"), strings.Index(declared, "dropCollection"))
	assert.Less(t, strings.Index(sourced, "dropCollection"), strings.Index(sourced, "insertOne"))
}

func TestBuildAndReview(t *testing.T) {
	script := "// DATABASE: reporting\ndb.sessions.deleteMany({});"

	cl := js2liquibase.Build(script, "20240115_01", "jane", js2liquibase.Options{})
	require.Len(t, cl.ChangeSets, 1)
	assert.Equal(t, "reporting", cl.ChangeSets[0].Context)

	ops := js2liquibase.Extract(script, js2liquibase.Options{})
	require.Len(t, ops, 1)

	warnings := js2liquibase.Review(ops)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "every document in sessions")
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "qa", js2liquibase.DetectContext("// context: qa"))
	assert.Equal(t, "20240115_1", js2liquibase.DeriveBase("20240115_01"))
}
