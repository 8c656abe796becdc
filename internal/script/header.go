package script

import (
	"regexp"
	"strings"
)

// DefaultContext is used when a script carries no context directive.
const DefaultContext = "liquibase_test"

// headerLines is how many leading lines are searched for a directive.
const headerLines = 10

// Directive patterns in priority order. Matching is case-insensitive, so
// "Context" and "CONTEXT" spellings are covered by the first two.
var contextPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)//\s*@?context\s*:?\s*([a-zA-Z0-9_]+)`),
	regexp.MustCompile(`(?i)/\*\s*@?context\s*:?\s*([a-zA-Z0-9_]+)\s*\*/`),
	regexp.MustCompile(`(?i)//\s*DATABASE\s*:?\s*([a-zA-Z0-9_]+)`),
	regexp.MustCompile(`(?i)/\*\s*DATABASE\s*:?\s*([a-zA-Z0-9_]+)\s*\*/`),
}

// DetectContext returns the deployment context named in the first lines of
// the script, or DefaultContext when none is present.
func DetectContext(content string) string {
	lines := strings.Split(content, "\n")
	if len(lines) > headerLines {
		lines = lines[:headerLines]
	}
	head := strings.Join(lines, "\n")

	for _, re := range contextPatterns {
		if m := re.FindStringSubmatch(head); m != nil {
			return m[1]
		}
	}
	return DefaultContext
}
