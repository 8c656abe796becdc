package changelog

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	datedVersionRe = regexp.MustCompile(`^(\d{8})_(\d+)`)
	digitRunRe     = regexp.MustCompile(`\d+`)
)

// DeriveBase returns the base changeset identifier for a version token.
//
//	20240115_01    -> 20240115_1
//	release-42-rc3 -> 42
//	release-alpha  -> 1
//	20240115_x     -> 20240115
//
// A date prefix without a sequence falls through to the digit-run rule.
// Earlier v4 changelogs gave such tokens the sequence 1 (20240115_1), so
// their ids do not match the ones derived here.
func DeriveBase(version string) string {
	if m := datedVersionRe.FindStringSubmatch(version); m != nil {
		return m[1] + "_" + trimZeros(m[2])
	}
	if run := digitRunRe.FindString(version); run != "" {
		return run
	}
	return "1"
}

// ChangeSetID returns the id of the changeset at 1-based position index out
// of total. A lone changeset carries the bare base.
func ChangeSetID(base string, index, total int) string {
	if total == 1 {
		return base
	}
	return fmt.Sprintf("%s.%d", base, index)
}

// trimZeros renders a digit run as an integer without leading zeros.
func trimZeros(digits string) string {
	if t := strings.TrimLeft(digits, "0"); t != "" {
		return t
	}
	return "0"
}
