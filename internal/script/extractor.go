package script

import (
	"regexp"
	"sort"
)

// Order selects how extracted operations are sequenced.
type Order string

const (
	// OrderDeclaration emits every match of the first shape, then every match
	// of the second, and so on. Changeset ids of existing changelogs depend on it.
	OrderDeclaration Order = "declaration"
	// OrderSource emits operations by their position in the script.
	OrderSource Order = "source"
)

// ExtractOptions configures Extract.
type ExtractOptions struct {
	Order Order
}

// collectionRef matches db.getCollection("name") or db.name and captures the
// name in one of two groups.
const collectionRef = `db\.(?:getCollection\(["']([^"']+)["']\)|([a-zA-Z_][a-zA-Z0-9_]*))`

// shape binds one statement template to the operation kind it produces.
type shape struct {
	name string
	kind Kind
	re   *regexp.Regexp
	bind func(op *Operation, g func(int) string)
}

func newShape(name string, kind Kind, pattern string, bind func(op *Operation, g func(int) string)) shape {
	return shape{
		name: name,
		kind: kind,
		re:   regexp.MustCompile(`(?s)` + pattern),
		bind: bind,
	}
}

// refCollection resolves the collection from the two collectionRef groups.
func refCollection(op *Operation, g func(int) string) {
	op.Collection = g(1)
	if op.Collection == "" {
		op.Collection = g(2)
	}
}

// shapes is evaluated in declaration order.
var shapes = []shape{
	newShape("insertMany", InsertMany,
		collectionRef+`\.insertMany\(\s*(\[.*?\])\s*\)`,
		func(op *Operation, g func(int) string) {
			refCollection(op, g)
			op.Documents = g(3)
		}),
	newShape("insertOne", InsertOne,
		collectionRef+`\.insertOne\(\s*(\{.*?\})\s*\)`,
		func(op *Operation, g func(int) string) {
			refCollection(op, g)
			op.Document = g(3)
		}),
	newShape("updateOne", UpdateOne,
		collectionRef+`\.updateOne\(\s*(\{.*?\})\s*,\s*(\{.*?\})\s*(?:,\s*(\{.*?\}))?\s*\)`,
		bindFilterUpdate),
	newShape("updateMany", UpdateMany,
		collectionRef+`\.updateMany\(\s*(\{.*?\})\s*,\s*(\{.*?\})\s*(?:,\s*(\{.*?\}))?\s*\)`,
		bindFilterUpdate),
	newShape("replaceOne", ReplaceOne,
		collectionRef+`\.replaceOne\(\s*(\{.*?\})\s*,\s*(\{.*?\})\s*(?:,\s*(\{.*?\}))?\s*\)`,
		bindFilterUpdate),
	newShape("deleteOne", DeleteOne,
		collectionRef+`\.deleteOne\(\s*(\{.*?\})\s*\)`,
		bindFilter),
	newShape("deleteMany", DeleteMany,
		collectionRef+`\.deleteMany\(\s*(\{.*?\})\s*\)`,
		bindFilter),
	newShape("createIndex", CreateIndex,
		collectionRef+`\.createIndex\(\s*(\{.*?\})\s*(?:,\s*(\{.*?\}))?\s*\)`,
		func(op *Operation, g func(int) string) {
			refCollection(op, g)
			op.IndexKey = g(3)
			op.Options = g(4)
		}),
	newShape("dropIndex", DropIndex,
		collectionRef+`\.dropIndex\(\s*(["'][^"']*["']|\{.*?\})\s*\)`,
		func(op *Operation, g func(int) string) {
			refCollection(op, g)
			op.IndexSpec = g(3)
		}),
	newShape("createCollection", CreateCollection,
		`db\.createCollection\(\s*["']([^"']+)["']\s*(?:,\s*(\{.*?\}))?\s*\)`,
		func(op *Operation, g func(int) string) {
			op.Collection = g(1)
			op.CollectionOptions = g(2)
		}),
	newShape("dropCollection", DropCollection,
		collectionRef+`\.drop\(\s*\)`,
		refCollection),
	newShape("dropCollection_direct", DropCollection,
		`db\.dropCollection\s*\(\s*["']([^"']+)["']\s*\)\s*;?`,
		bindName),
	newShape("dropCollection_getCollection", DropCollection,
		`db\.getCollection\s*\(\s*["']([^"']+)["']\s*\)\s*\.drop\s*\(\s*\)\s*;?`,
		bindName),
	newShape("dropCollection_dot", DropCollection,
		`db\.([a-zA-Z_][a-zA-Z0-9_]*)\s*\.drop\s*\(\s*\)\s*;?`,
		bindName),
}

func bindFilterUpdate(op *Operation, g func(int) string) {
	refCollection(op, g)
	op.Filter = g(3)
	op.Update = g(4)
	op.Options = g(5)
}

func bindFilter(op *Operation, g func(int) string) {
	refCollection(op, g)
	op.Filter = g(3)
}

func bindName(op *Operation, g func(int) string) {
	op.Collection = g(1)
}

// ShapeNames returns the shape names in evaluation order.
func ShapeNames() []string {
	names := make([]string, len(shapes))
	for i, s := range shapes {
		names[i] = s.name
	}
	return names
}

// Extract finds every occurrence of every known statement shape in
// comment-stripped text. Statements outside the known shapes are skipped;
// the result may be empty but extraction never fails.
//
// Shapes are matched independently, so one statement can yield records of
// different kinds. The drop shapes overlap by construction: a dropCollection
// match starting where an earlier one for the same collection started is the
// same statement and is dropped.
func Extract(text string, opts ExtractOptions) []Operation {
	var ops []Operation
	type dropKey struct {
		offset     int
		collection string
	}
	drops := make(map[dropKey]bool)

	for _, s := range shapes {
		for _, loc := range s.re.FindAllStringSubmatchIndex(text, -1) {
			g := func(i int) string {
				if 2*i+1 >= len(loc) || loc[2*i] < 0 {
					return ""
				}
				return text[loc[2*i]:loc[2*i+1]]
			}

			op := Operation{
				Kind:   s.kind,
				Shape:  s.name,
				Offset: loc[0],
				Raw:    text[loc[0]:loc[1]],
			}
			s.bind(&op, g)

			if op.Kind == DropCollection {
				key := dropKey{op.Offset, op.Collection}
				if drops[key] {
					continue
				}
				drops[key] = true
			}
			ops = append(ops, op)
		}
	}

	if opts.Order == OrderSource {
		sort.SliceStable(ops, func(i, j int) bool {
			return ops[i].Offset < ops[j].Offset
		})
	}
	return ops
}
