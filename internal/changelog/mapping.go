package changelog

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/praveenchandhar/liquibase-jenkins-based-deployment/internal/script"
)

const cdataEnd = "]]>"

// mapOperation renders the changeset body for one operation. position is the
// operation's 1-based place in the changelog and names synthesized indexes.
func mapOperation(op script.Operation, position int) ([]string, error) {
	if err := embeddable("collection name", op.Collection); err != nil {
		return nil, err
	}
	coll := attr(op.Collection)

	switch op.Kind {
	case script.CreateCollection:
		return []string{
			fmt.Sprintf(`        <mongodb:createCollection collectionName="%s" />`, coll),
		}, nil

	case script.DropCollection:
		return []string{
			fmt.Sprintf(`        <mongodb:dropCollection collectionName="%s" />`, coll),
		}, nil

	case script.CreateIndex:
		key, err := payload("index key", op.IndexKey)
		if err != nil {
			return nil, err
		}
		return runCommand(
			`            {`,
			fmt.Sprintf(`                "createIndexes": "%s",`, op.Collection),
			`                "indexes": [`,
			`                    {`,
			fmt.Sprintf(`                        "key": %s,`, key),
			fmt.Sprintf(`                        "name": "%s_index_%d"`, op.Collection, position),
			`                    }`,
			`                ]`,
			`            }`,
		), nil

	case script.DropIndex:
		spec := op.IndexSpec
		if strings.HasPrefix(spec, `"`) || strings.HasPrefix(spec, `'`) {
			name := strings.Trim(spec, `"'`)
			return []string{
				fmt.Sprintf(`        <mongodb:dropIndex collectionName="%s" indexName="%s" />`, coll, attr(name)),
			}, nil
		}
		keys, err := payload("index keys", spec)
		if err != nil {
			return nil, err
		}
		return []string{
			fmt.Sprintf(`        <mongodb:dropIndex collectionName="%s">`, coll),
			`            <mongodb:keys><![CDATA[`,
			`            ` + keys,
			`            ]]></mongodb:keys>`,
			`        </mongodb:dropIndex>`,
		}, nil

	case script.InsertOne:
		doc, err := payload("document", op.Document)
		if err != nil {
			return nil, err
		}
		return []string{
			fmt.Sprintf(`        <mongodb:insertOne collectionName="%s">`, coll),
			`            <mongodb:document><![CDATA[`,
			`            ` + doc,
			`            ]]></mongodb:document>`,
			`        </mongodb:insertOne>`,
		}, nil

	case script.InsertMany:
		docs, err := payload("documents", op.Documents)
		if err != nil {
			return nil, err
		}
		if !strings.HasPrefix(docs, "[") {
			docs = "[" + docs + "]"
		}
		return []string{
			fmt.Sprintf(`        <mongodb:insertMany collectionName="%s">`, coll),
			`            <mongodb:documents><![CDATA[`,
			`            ` + docs,
			`            ]]></mongodb:documents>`,
			`        </mongodb:insertMany>`,
		}, nil

	case script.UpdateOne, script.UpdateMany:
		filter, err := payload("filter", op.Filter)
		if err != nil {
			return nil, err
		}
		update, err := payload("update", op.Update)
		if err != nil {
			return nil, err
		}
		return runCommand(
			`            {`,
			fmt.Sprintf(`                "update": "%s",`, op.Collection),
			`                "updates": [`,
			`                    {`,
			fmt.Sprintf(`                        "q": %s,`, filter),
			fmt.Sprintf(`                        "u": %s,`, update),
			fmt.Sprintf(`                        "multi": %t`, op.Kind == script.UpdateMany),
			`                    }`,
			`                ]`,
			`            }`,
		), nil

	case script.ReplaceOne:
		filter, err := payload("filter", op.Filter)
		if err != nil {
			return nil, err
		}
		replacement, err := payload("replacement", op.Update)
		if err != nil {
			return nil, err
		}
		return runCommand(
			`            {`,
			fmt.Sprintf(`                "findAndModify": "%s",`, op.Collection),
			fmt.Sprintf(`                "query": %s,`, filter),
			fmt.Sprintf(`                "update": %s,`, replacement),
			`                "new": true`,
			`            }`,
		), nil

	case script.DeleteOne, script.DeleteMany:
		filter, err := payload("filter", op.Filter)
		if err != nil {
			return nil, err
		}
		limit := 0
		if op.Kind == script.DeleteOne {
			limit = 1
		}
		return runCommand(
			`            {`,
			fmt.Sprintf(`                "delete": "%s",`, op.Collection),
			`                "deletes": [`,
			`                    {`,
			fmt.Sprintf(`                        "q": %s,`, filter),
			fmt.Sprintf(`                        "limit": %d`, limit),
			`                    }`,
			`                ]`,
			`            }`,
		), nil
	}

	return nil, fmt.Errorf("unsupported operation kind %q", op.Kind)
}

// runCommand wraps command lines in a mongodb:runCommand body.
func runCommand(command ...string) []string {
	lines := []string{
		`        <mongodb:runCommand>`,
		`            <mongodb:command><![CDATA[`,
	}
	lines = append(lines, command...)
	return append(lines,
		`            ]]></mongodb:command>`,
		`        </mongodb:runCommand>`,
	)
}

// payload trims captured text for embedding in a CDATA block. An absent
// payload becomes an empty document.
func payload(name, text string) (string, error) {
	if text == "" {
		return "{}", nil
	}
	text = strings.TrimSpace(text)
	if err := embeddable(name+" payload", text); err != nil {
		return "", err
	}
	return text, nil
}

// embeddable reports whether text can be placed verbatim in CDATA.
func embeddable(name, text string) error {
	if !utf8.ValidString(text) {
		return fmt.Errorf("%s is not valid UTF-8 and cannot be embedded", name)
	}
	for _, r := range text {
		if !isXMLChar(r) {
			return fmt.Errorf("%s contains character %U not allowed in XML", name, r)
		}
	}
	if strings.Contains(text, cdataEnd) {
		return fmt.Errorf("%s contains %q and cannot be embedded", name, cdataEnd)
	}
	return nil
}

// isXMLChar reports whether r is in the XML 1.0 Char production.
func isXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		r >= 0x20 && r <= 0xD7FF ||
		r >= 0xE000 && r <= 0xFFFD ||
		r >= 0x10000 && r <= 0x10FFFF
}
