package changelog

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// Document is a changelog read back from XML.
type Document struct {
	XMLName    xml.Name         `xml:"databaseChangeLog" json:"-" yaml:"-"`
	ChangeSets []ChangeSetEntry `xml:"changeSet" json:"change_sets" yaml:"change_sets"`
}

// ChangeSetEntry is one changeSet element with its raw body.
type ChangeSetEntry struct {
	ID      string `xml:"id,attr" json:"id" yaml:"id"`
	Author  string `xml:"author,attr" json:"author" yaml:"author"`
	Context string `xml:"context,attr" json:"context" yaml:"context"`
	Body    string `xml:",innerxml" json:"body" yaml:"body"`
}

// ParseXML reads a changelog document.
func ParseXML(data []byte) (*Document, error) {
	var doc Document
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing changelog: %w", err)
	}
	return &doc, nil
}

// Document renders the changelog and reads it back, so that generated and
// on-disk changelogs compare on equal terms.
func (c *Changelog) Document() (*Document, error) {
	doc, err := c.XML()
	if err != nil {
		return nil, err
	}
	return ParseXML([]byte(doc))
}

// NormalizedBody collapses whitespace in the body for comparison.
func (e ChangeSetEntry) NormalizedBody() string {
	return strings.Join(strings.Fields(e.Body), " ")
}
