// Package review reports script constructs that the generated changelog
// cannot carry faithfully.
package review

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/praveenchandhar/liquibase-jenkins-based-deployment/internal/script"
)

// Severity ranks a warning.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// Warning describes one finding for the operation at Position (1-based).
type Warning struct {
	Position int      `json:"position" yaml:"position"`
	Kind     string   `json:"kind" yaml:"kind"`
	Severity Severity `json:"severity" yaml:"severity"`
	Message  string   `json:"message" yaml:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("#%d %s: %s", w.Position, w.Kind, w.Message)
}

// Reviewer inspects extracted operations.
type Reviewer struct {
	// IncludeInfo also reports informational findings.
	IncludeInfo bool
}

// NewReviewer creates a reviewer.
func NewReviewer(includeInfo bool) *Reviewer {
	return &Reviewer{IncludeInfo: includeInfo}
}

var emptyDocRe = regexp.MustCompile(`^\{\s*\}$`)

// Review returns findings for ops in their changelog order.
func (r *Reviewer) Review(ops []script.Operation) []Warning {
	var warnings []Warning

	for i, op := range ops {
		warnings = append(warnings, r.reviewOperation(i+1, op)...)
	}
	warnings = append(warnings, r.reviewOverlaps(ops)...)

	if r.IncludeInfo {
		return warnings
	}
	filtered := warnings[:0]
	for _, w := range warnings {
		if w.Severity != SeverityInfo {
			filtered = append(filtered, w)
		}
	}
	return filtered
}

func (r *Reviewer) reviewOperation(pos int, op script.Operation) []Warning {
	var warnings []Warning
	add := func(sev Severity, format string, args ...any) {
		warnings = append(warnings, Warning{
			Position: pos,
			Kind:     string(op.Kind),
			Severity: sev,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	switch op.Kind {
	case script.CreateCollection:
		if op.CollectionOptions != "" {
			add(SeverityWarning, "collection options for %s are not carried into the changelog", op.Collection)
		}

	case script.CreateIndex:
		if op.Options != "" {
			add(SeverityWarning, "index options %s on %s are dropped; the index is created with defaults",
				compact(op.Options), op.Collection)
		}
		add(SeverityInfo, "index on %s is named %s_index_%d", op.Collection, op.Collection, pos)

	case script.UpdateOne, script.UpdateMany, script.ReplaceOne:
		if op.Options != "" {
			add(SeverityWarning, "options %s on %s are dropped (upsert, arrayFilters and collation are lost)",
				compact(op.Options), op.Collection)
		}

	case script.InsertMany:
		if !strings.HasPrefix(strings.TrimSpace(op.Documents), "[") {
			add(SeverityInfo, "documents for %s are wrapped in an array", op.Collection)
		}

	case script.DropCollection:
		add(SeverityDanger, "collection %s is dropped", op.Collection)

	case script.DropIndex:
		add(SeverityWarning, "index %s on %s is dropped", compact(op.IndexSpec), op.Collection)

	case script.DeleteMany:
		if emptyDocRe.MatchString(strings.TrimSpace(op.Filter)) {
			add(SeverityDanger, "every document in %s is deleted", op.Collection)
		}
	}

	return warnings
}

// reviewOverlaps flags statements matched by shapes of different kinds.
// Only extracted records, which carry their matched text, are compared.
func (r *Reviewer) reviewOverlaps(ops []script.Operation) []Warning {
	var warnings []Warning
	seen := make(map[int]int)
	for i, op := range ops {
		if op.Raw == "" {
			continue
		}
		first, ok := seen[op.Offset]
		if !ok {
			seen[op.Offset] = i
			continue
		}
		warnings = append(warnings, Warning{
			Position: i + 1,
			Kind:     string(op.Kind),
			Severity: SeverityWarning,
			Message: fmt.Sprintf("statement also matched as %s (#%d); both changesets are emitted",
				ops[first].Kind, first+1),
		})
	}
	return warnings
}

func compact(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
