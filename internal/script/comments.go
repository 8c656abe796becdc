package script

import "regexp"

var (
	lineCommentRe  = regexp.MustCompile(`(?m)//.*?$`)
	blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
)

// StripComments removes line comments and then block comments from content.
//
// Line comments run from "//" to the end of the line, including inside string
// literals ("http://host" loses everything after the scheme). Block comments
// are removed one at a time, each ending at the nearest "*/"; an unterminated
// "/*" is left in place.
func StripComments(content string) string {
	content = lineCommentRe.ReplaceAllString(content, "")
	return blockCommentRe.ReplaceAllString(content, "")
}
