// Package js2liquibase provides a public API for converting MongoDB shell
// scripts into Liquibase MongoDB changelogs.
//
// The conversion is a pure function of the script text, the version token and
// the author. Recognized statements become changesets in a changelog whose ids
// derive from the version token; anything else in the script is skipped.
//
// Basic usage:
//
//	xml, err := js2liquibase.Convert(script, "20240115_01", "jane")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(xml)
//
// For CLI usage, install the js2liquibase command:
//
//	go install github.com/praveenchandhar/liquibase-jenkins-based-deployment/cmd/js2liquibase@latest
package js2liquibase

import (
	"github.com/praveenchandhar/liquibase-jenkins-based-deployment/internal/changelog"
	"github.com/praveenchandhar/liquibase-jenkins-based-deployment/internal/review"
	"github.com/praveenchandhar/liquibase-jenkins-based-deployment/internal/script"
)

// Operation is one recognized script statement.
type Operation = script.Operation

// Kind identifies an operation.
type Kind = script.Kind

// Order selects how operations are sequenced in the changelog.
type Order = script.Order

// Changelog is a synthesized set of changesets.
type Changelog = changelog.Changelog

// ChangeSet is one changeset of a Changelog.
type ChangeSet = changelog.ChangeSet

// Warning is a review finding about an operation.
type Warning = review.Warning

// DefaultContext is the context used when a script names none.
const DefaultContext = script.DefaultContext

// Options tunes a conversion. The zero value reproduces the classic output.
type Options struct {
	Order Order
}

// Convert turns script text into changelog XML.
//
// Statements outside the recognized shapes are skipped. An operation whose
// payload cannot be embedded becomes a changeset holding a diagnostic comment;
// only a changelog that cannot be serialized at all is an error.
func Convert(content, version, author string) (string, error) {
	return ConvertWithOptions(content, version, author, Options{})
}

// ConvertWithOptions is Convert with explicit options.
func ConvertWithOptions(content, version, author string, opts Options) (string, error) {
	cl := Build(content, version, author, opts)
	return cl.XML()
}

// Build runs extraction and synthesis and returns the changelog before
// serialization.
func Build(content, version, author string, opts Options) *Changelog {
	s := script.Parse(content, script.ExtractOptions{Order: opts.Order})
	gen := changelog.NewGenerator(version, author, s.Context)
	return gen.Generate(s.Operations)
}

// Extract returns the operations found in script text.
func Extract(content string, opts Options) []Operation {
	return script.Extract(script.StripComments(content), script.ExtractOptions{Order: opts.Order})
}

// DetectContext returns the context directive of a script, or DefaultContext.
func DetectContext(content string) string {
	return script.DetectContext(content)
}

// DeriveBase returns the base changeset id for a version token.
func DeriveBase(version string) string {
	return changelog.DeriveBase(version)
}

// Review reports operations the changelog cannot carry faithfully.
func Review(ops []Operation) []Warning {
	return review.NewReviewer(false).Review(ops)
}
