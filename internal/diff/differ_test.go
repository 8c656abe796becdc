package diff

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praveenchandhar/liquibase-jenkins-based-deployment/internal/changelog"
)

func entry(id, context, body string) changelog.ChangeSetEntry {
	return changelog.ChangeSetEntry{ID: id, Author: "jane", Context: context, Body: body}
}

func TestCompare_NoChanges(t *testing.T) {
	doc := &changelog.Document{ChangeSets: []changelog.ChangeSetEntry{
		entry("1.1", "qa", "\n  <a/>\n"),
		entry("1.2", "qa", "<b/>"),
	}}
	same := &changelog.Document{ChangeSets: []changelog.ChangeSetEntry{
		entry("1.1", "qa", "<a/>"),
		entry("1.2", "qa", "  <b/>  "),
	}}

	changes := NewDiffer(doc, same).Compare()
	assert.True(t, changes.IsEmpty())
	assert.False(t, changes.HasRewrites())
}

func TestCompare_AddedRemovedModified(t *testing.T) {
	source := &changelog.Document{ChangeSets: []changelog.ChangeSetEntry{
		entry("1.1", "qa", "<a/>"),
		entry("1.2", "qa", "<b/>"),
		entry("1.3", "qa", "<c/>"),
	}}
	target := &changelog.Document{ChangeSets: []changelog.ChangeSetEntry{
		entry("1.1", "qa", "<a/>"),
		entry("1.2", "prod", "<x/>"),
		entry("1.4", "qa", "<d/>"),
	}}

	changes := NewDiffer(source, target).Compare()
	require.False(t, changes.IsEmpty())

	require.Len(t, changes.AddedChangeSets, 1)
	assert.Equal(t, "1.4", changes.AddedChangeSets[0].ID)

	require.Len(t, changes.RemovedChangeSets, 1)
	assert.Equal(t, "1.3", changes.RemovedChangeSets[0].ID)

	require.Len(t, changes.ModifiedChangeSets, 1)
	mod := changes.ModifiedChangeSets[0]
	assert.Equal(t, "1.2", mod.ID)
	assert.Equal(t, "qa", mod.OldContext)
	assert.Equal(t, "prod", mod.NewContext)
	assert.True(t, mod.BodyChanged)
	assert.Equal(t, "<b/>", mod.OldBody)
	assert.Equal(t, "<x/>", mod.NewBody)
	assert.Empty(t, mod.OldAuthor)
	assert.True(t, changes.HasRewrites())
}

func TestCompare_EmptySource(t *testing.T) {
	target := &changelog.Document{ChangeSets: []changelog.ChangeSetEntry{
		entry("1", "qa", "<a/>"),
	}}

	changes := NewDiffer(&changelog.Document{}, target).Compare()
	assert.Len(t, changes.AddedChangeSets, 1)
	assert.False(t, changes.HasRewrites())
}

func TestWriters(t *testing.T) {
	changes := &Changes{
		AddedChangeSets:   []changelog.ChangeSetEntry{entry("1.4", "qa", "<d/>")},
		RemovedChangeSets: []changelog.ChangeSetEntry{entry("1.3", "qa", "<c/>")},
		ModifiedChangeSets: []ChangeSetChanges{
			{ID: "1.2", OldAuthor: "jane", NewAuthor: "bob", BodyChanged: true},
		},
	}

	var text bytes.Buffer
	require.NoError(t, WriteText(&text, changes))
	assert.Contains(t, text.String(), "+ 1.4 (author jane, context qa)")
	assert.Contains(t, text.String(), "- 1.3")
	assert.Contains(t, text.String(), "Modified ChangeSet: 1.2")
	assert.Contains(t, text.String(), "~ author: jane → bob")
	assert.Contains(t, text.String(), "~ body changed")

	var table bytes.Buffer
	require.NoError(t, WriteTable(&table, changes))
	assert.Contains(t, table.String(), "author, body")

	var js bytes.Buffer
	require.NoError(t, WriteJSON(&js, changes))
	assert.Contains(t, js.String(), `"added_change_sets"`)
	assert.Contains(t, js.String(), `"body_changed": true`)

	var ym bytes.Buffer
	require.NoError(t, WriteYAML(&ym, changes))
	assert.Contains(t, ym.String(), "removed_change_sets:")
}

func TestWriteText_NoChanges(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, &Changes{}))
	assert.Equal(t, "No differences found.\n", buf.String())
}
