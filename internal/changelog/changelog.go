// Package changelog synthesizes Liquibase MongoDB changelogs from extracted
// script operations.
package changelog

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/praveenchandhar/liquibase-jenkins-based-deployment/internal/script"
)

// ErrSynthesis is returned when the assembled changelog is not well-formed XML.
var ErrSynthesis = errors.New("changelog synthesis failed")

// NoOperationsComment marks the placeholder changeset of an empty script.
const NoOperationsComment = "<!-- No MongoDB operations found in the JS file -->"

var documentHeader = []string{
	`<?xml version="1.0" encoding="UTF-8"?>`,
	`<databaseChangeLog`,
	`    xmlns="http://www.liquibase.org/xml/ns/dbchangelog"`,
	`    xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"`,
	`    xmlns:mongodb="http://www.liquibase.org/xml/ns/dbchangelog-ext"`,
	`    xsi:schemaLocation="`,
	`        http://www.liquibase.org/xml/ns/dbchangelog`,
	`        http://www.liquibase.org/xml/ns/dbchangelog/dbchangelog-4.5.xsd`,
	`        http://www.liquibase.org/xml/ns/dbchangelog-ext`,
	`        http://www.liquibase.org/xml/ns/dbchangelog/dbchangelog-ext.xsd">`,
}

const documentFooter = `</databaseChangeLog>`

// ChangeSet is one emitted unit of the changelog.
type ChangeSet struct {
	ID      string
	Author  string
	Context string

	// Kind is empty for the placeholder changeset.
	Kind script.Kind
	// Body holds the indented body lines.
	Body []string
	// Err is set when the operation could not be mapped; Body then carries
	// a diagnostic comment instead.
	Err error
}

// Changelog is an ordered set of changesets sharing one author and context.
type Changelog struct {
	ChangeSets []ChangeSet
}

// Failures returns the number of changesets whose operation could not be mapped.
func (c *Changelog) Failures() int {
	n := 0
	for _, cs := range c.ChangeSets {
		if cs.Err != nil {
			n++
		}
	}
	return n
}

// Generator maps operations to changesets.
type Generator struct {
	Author  string
	Context string
	// Base is the identifier from DeriveBase.
	Base string

	Logger *zap.Logger
}

// NewGenerator creates a generator for the given version token.
func NewGenerator(version, author, context string) *Generator {
	return &Generator{
		Author:  author,
		Context: context,
		Base:    DeriveBase(version),
		Logger:  zap.NewNop(),
	}
}

// Generate builds one changeset per operation, in order. A script without
// operations yields a single placeholder changeset.
func (g *Generator) Generate(ops []script.Operation) *Changelog {
	log := g.Logger
	if log == nil {
		log = zap.NewNop()
	}

	if len(ops) == 0 {
		return &Changelog{ChangeSets: []ChangeSet{{
			ID:      g.Base,
			Author:  g.Author,
			Context: g.Context,
			Body:    []string{"        " + NoOperationsComment},
		}}}
	}

	cl := &Changelog{ChangeSets: make([]ChangeSet, 0, len(ops))}
	for i, op := range ops {
		cs := ChangeSet{
			ID:      ChangeSetID(g.Base, i+1, len(ops)),
			Author:  g.Author,
			Context: g.Context,
			Kind:    op.Kind,
		}

		body, err := mapOperation(op, i+1)
		if err != nil {
			log.Warn("Mapping operation failed",
				zap.String("id", cs.ID),
				zap.String("kind", string(op.Kind)),
				zap.Error(err))
			cs.Err = err
			body = []string{fmt.Sprintf("        <!-- Error processing %s: %s -->", op.Kind, commentSafe(err.Error()))}
		}
		cs.Body = body
		cl.ChangeSets = append(cl.ChangeSets, cs)
	}
	return cl
}

// XML renders the changelog document. The result has no trailing newline.
func (c *Changelog) XML() (string, error) {
	lines := append([]string{}, documentHeader...)
	for _, cs := range c.ChangeSets {
		lines = append(lines, fmt.Sprintf(`    <changeSet id="%s" author="%s" context="%s">`,
			attr(cs.ID), attr(cs.Author), attr(cs.Context)))
		lines = append(lines, cs.Body...)
		lines = append(lines, `    </changeSet>`)
	}
	lines = append(lines, documentFooter)

	doc := strings.Join(lines, "\n")
	if err := wellFormed(doc); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSynthesis, err)
	}
	return doc, nil
}

func wellFormed(doc string) error {
	dec := xml.NewDecoder(strings.NewReader(doc))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func attr(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// commentSafe keeps text legal inside an XML comment.
func commentSafe(s string) string {
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return strings.TrimSuffix(s, "-")
}
