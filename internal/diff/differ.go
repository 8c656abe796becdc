// Package diff provides changelog comparison utilities.
package diff

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/praveenchandhar/liquibase-jenkins-based-deployment/internal/changelog"
)

// Changes represents the differences between two changelogs.
type Changes struct {
	AddedChangeSets    []changelog.ChangeSetEntry `json:"added_change_sets,omitempty" yaml:"added_change_sets,omitempty"`
	RemovedChangeSets  []changelog.ChangeSetEntry `json:"removed_change_sets,omitempty" yaml:"removed_change_sets,omitempty"`
	ModifiedChangeSets []ChangeSetChanges         `json:"modified_change_sets,omitempty" yaml:"modified_change_sets,omitempty"`
}

// ChangeSetChanges represents changes to a changeset that kept its id.
type ChangeSetChanges struct {
	ID          string `json:"id" yaml:"id"`
	OldAuthor   string `json:"old_author,omitempty" yaml:"old_author,omitempty"`
	NewAuthor   string `json:"new_author,omitempty" yaml:"new_author,omitempty"`
	OldContext  string `json:"old_context,omitempty" yaml:"old_context,omitempty"`
	NewContext  string `json:"new_context,omitempty" yaml:"new_context,omitempty"`
	BodyChanged bool   `json:"body_changed,omitempty" yaml:"body_changed,omitempty"`
	OldBody     string `json:"old_body,omitempty" yaml:"old_body,omitempty"`
	NewBody     string `json:"new_body,omitempty" yaml:"new_body,omitempty"`
}

// Differ compares two changelogs.
type Differ struct {
	source *changelog.Document
	target *changelog.Document
}

// NewDiffer creates a differ from the existing (source) changelog to the
// regenerated (target) one.
func NewDiffer(source, target *changelog.Document) *Differ {
	return &Differ{source: source, target: target}
}

// Compare computes the differences between source and target changelogs.
// Results follow the target's changeset order, removals the source's.
func (d *Differ) Compare() *Changes {
	changes := &Changes{}

	sourceMap := make(map[string]*changelog.ChangeSetEntry)
	for i := range d.source.ChangeSets {
		cs := &d.source.ChangeSets[i]
		sourceMap[cs.ID] = cs
	}

	targetMap := make(map[string]*changelog.ChangeSetEntry)
	for i := range d.target.ChangeSets {
		cs := &d.target.ChangeSets[i]
		targetMap[cs.ID] = cs
	}

	for _, cs := range d.target.ChangeSets {
		source, exists := sourceMap[cs.ID]
		if !exists {
			changes.AddedChangeSets = append(changes.AddedChangeSets, cs)
			continue
		}
		if c := compareChangeSet(source, &cs); c != nil {
			changes.ModifiedChangeSets = append(changes.ModifiedChangeSets, *c)
		}
	}

	for _, cs := range d.source.ChangeSets {
		if _, exists := targetMap[cs.ID]; !exists {
			changes.RemovedChangeSets = append(changes.RemovedChangeSets, cs)
		}
	}

	return changes
}

func compareChangeSet(source, target *changelog.ChangeSetEntry) *ChangeSetChanges {
	changes := &ChangeSetChanges{ID: source.ID}
	hasChanges := false

	if source.Author != target.Author {
		changes.OldAuthor = source.Author
		changes.NewAuthor = target.Author
		hasChanges = true
	}

	if source.Context != target.Context {
		changes.OldContext = source.Context
		changes.NewContext = target.Context
		hasChanges = true
	}

	if source.NormalizedBody() != target.NormalizedBody() {
		changes.BodyChanged = true
		changes.OldBody = strings.TrimSpace(source.Body)
		changes.NewBody = strings.TrimSpace(target.Body)
		hasChanges = true
	}

	if !hasChanges {
		return nil
	}
	return changes
}

// IsEmpty returns true if there are no changes.
func (c *Changes) IsEmpty() bool {
	return len(c.AddedChangeSets) == 0 &&
		len(c.RemovedChangeSets) == 0 &&
		len(c.ModifiedChangeSets) == 0
}

// HasRewrites reports whether an existing changeset id would get new content.
// Liquibase rejects such changesets once applied.
func (c *Changes) HasRewrites() bool {
	return len(c.ModifiedChangeSets) > 0
}

// WriteText writes a human-readable diff output.
func WriteText(w io.Writer, c *Changes) error {
	var sb strings.Builder

	if c.IsEmpty() {
		sb.WriteString("No differences found.\n")
		_, err := w.Write([]byte(sb.String()))
		return err
	}

	if len(c.AddedChangeSets) > 0 {
		sb.WriteString("Added ChangeSets:\n")
		for _, cs := range c.AddedChangeSets {
			sb.WriteString(fmt.Sprintf("  + %s (author %s, context %s)\n", cs.ID, cs.Author, cs.Context))
		}
		sb.WriteString("\n")
	}

	if len(c.RemovedChangeSets) > 0 {
		sb.WriteString("Removed ChangeSets:\n")
		for _, cs := range c.RemovedChangeSets {
			sb.WriteString(fmt.Sprintf("  - %s\n", cs.ID))
		}
		sb.WriteString("\n")
	}

	for _, cs := range c.ModifiedChangeSets {
		sb.WriteString(fmt.Sprintf("Modified ChangeSet: %s\n", cs.ID))
		sb.WriteString(strings.Repeat("-", 40) + "\n")
		if cs.OldAuthor != cs.NewAuthor {
			sb.WriteString(fmt.Sprintf("  ~ author: %s → %s\n", cs.OldAuthor, cs.NewAuthor))
		}
		if cs.OldContext != cs.NewContext {
			sb.WriteString(fmt.Sprintf("  ~ context: %s → %s\n", cs.OldContext, cs.NewContext))
		}
		if cs.BodyChanged {
			sb.WriteString("  ~ body changed\n")
		}
		sb.WriteString("\n")
	}

	_, err := w.Write([]byte(sb.String()))
	return err
}

// WriteTable writes one row per changed changeset.
func WriteTable(w io.Writer, c *Changes) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Change", "ID", "Detail"})
	for _, cs := range c.AddedChangeSets {
		table.Append([]string{"+", cs.ID, "added"})
	}
	for _, cs := range c.RemovedChangeSets {
		table.Append([]string{"-", cs.ID, "removed"})
	}
	for _, cs := range c.ModifiedChangeSets {
		var detail []string
		if cs.OldAuthor != cs.NewAuthor {
			detail = append(detail, "author")
		}
		if cs.OldContext != cs.NewContext {
			detail = append(detail, "context")
		}
		if cs.BodyChanged {
			detail = append(detail, "body")
		}
		table.Append([]string{"~", cs.ID, strings.Join(detail, ", ")})
	}
	table.Render()
	return nil
}

// WriteJSON writes the changes as JSON.
func WriteJSON(w io.Writer, c *Changes) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}

// WriteYAML writes the changes as YAML.
func WriteYAML(w io.Writer, c *Changes) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	return enc.Encode(c)
}
