// Package listtypes finds the types a query reads through list fields.
//
// A cache that keys results by type can only invalidate a list it knows about. Detect walks every
// operation of a query document against the schema and reports the element type of each list
// field in the selection tree. For a list of an interface the interface itself is never reported;
// the concrete types named by inline fragments directly under the list are reported instead.
//
// The walk is best effort: unknown fields, unresolved fragments and type conditions on types
// without fields prune their branch silently. Validation is left to the caller.
package listtypes

import (
	"strings"

	"github.com/elliotchance/orderedmap/v2"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/Yamashou/gqlhint/typeutil"
)

// Detect returns hints followed by the list element types found in doc, in discovery order,
// each name once. When the schema has no query type, hints are returned unchanged.
func Detect(schema *ast.Schema, doc *ast.QueryDocument, hints []string) []string {
	return newWalker(schema, doc, hints).detect()
}

type walker struct {
	schema    *ast.Schema
	doc       *ast.QueryDocument
	fragments map[string]*ast.FragmentDefinition
	typenames *orderedmap.OrderedMap[string, struct{}]
}

func newWalker(schema *ast.Schema, doc *ast.QueryDocument, hints []string) *walker {
	w := &walker{
		schema:    schema,
		doc:       doc,
		typenames: orderedmap.NewOrderedMap[string, struct{}](),
	}
	for _, hint := range hints {
		w.typenames.Set(hint, struct{}{})
	}

	return w
}

func (w *walker) detect() []string {
	if w.schema == nil || w.schema.Query == nil || w.doc == nil {
		return w.result()
	}

	w.fragments = make(map[string]*ast.FragmentDefinition, len(w.doc.Fragments))
	for _, fragment := range w.doc.Fragments {
		if _, ok := w.fragments[fragment.Name]; !ok {
			w.fragments[fragment.Name] = fragment
		}
	}

	for _, operation := range w.doc.Operations {
		w.walkSelectionSet(operation.SelectionSet, w.schema.Query, false)
	}

	return w.result()
}

func (w *walker) walkSelectionSet(selectionSet ast.SelectionSet, parent *ast.Definition, isList bool) {
	for _, selection := range selectionSet {
		switch sel := selection.(type) {
		case *ast.Field:
			w.walkField(sel, parent)
		case *ast.FragmentSpread:
			w.walkFragmentSpread(sel, isList)
		case *ast.InlineFragment:
			w.walkInlineFragment(sel, isList)
		}
	}
}

func (w *walker) walkField(field *ast.Field, parent *ast.Definition) {
	if !typeutil.HasSelectableFields(parent) {
		return
	}

	// gqlparser declares __schema and __type on the query type; meta fields never name cached data.
	if strings.HasPrefix(field.Name, "__") {
		return
	}

	definition := parent.Fields.ForName(field.Name)
	if definition == nil {
		return
	}

	isList := typeutil.IsListType(definition.Type)
	named := w.schema.Types[typeutil.NamedTypeOf(definition.Type)]

	// A list of an interface is recorded through the type conditions below it.
	if isList && typeutil.DefinitionKind(named) != typeutil.KindInterface {
		w.add(typeutil.NamedTypeOf(typeutil.ElemTypeOf(definition.Type)))
	}

	w.walkSelectionSet(field.SelectionSet, named, isList)
}

func (w *walker) walkFragmentSpread(spread *ast.FragmentSpread, isList bool) {
	fragment, ok := w.fragments[spread.Name]
	if !ok {
		return
	}

	typeCondition := w.schema.Types[fragment.TypeCondition]
	if !typeutil.HasSelectableFields(typeCondition) {
		return
	}

	w.walkSelectionSet(fragment.SelectionSet, typeCondition, isList)
}

func (w *walker) walkInlineFragment(fragment *ast.InlineFragment, isList bool) {
	if fragment.TypeCondition == "" {
		return
	}

	typeCondition := w.schema.Types[fragment.TypeCondition]
	if !typeutil.HasSelectableFields(typeCondition) {
		return
	}

	if isList {
		w.add(typeCondition.Name)
	}

	w.walkSelectionSet(fragment.SelectionSet, typeCondition, false)
}

func (w *walker) add(typename string) {
	w.typenames.Set(typename, struct{}{})
}

func (w *walker) result() []string {
	typenames := make([]string, 0, w.typenames.Len())
	for el := w.typenames.Front(); el != nil; el = el.Next() {
		typenames = append(typenames, el.Key)
	}

	return typenames
}
