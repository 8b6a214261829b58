package introspection

import (
	"slices"
	"strings"

	gqlintrospection "github.com/99designs/gqlgen/graphql/introspection"

	"github.com/vektah/gqlparser/v2/ast"
)

// FromSchema renders the introspection payload of a parsed schema, the same shape a server
// returns for the Introspection query.
func FromSchema(schema *ast.Schema) *Query {
	wrapped := gqlintrospection.WrapSchema(schema)

	s := &Schema{
		Description:      wrapped.Description(),
		QueryType:        rootType(wrapped.QueryType()),
		MutationType:     rootType(wrapped.MutationType()),
		SubscriptionType: rootType(wrapped.SubscriptionType()),
	}

	for _, typ := range wrapped.Types() {
		s.Types = append(s.Types, fullType(&typ))
	}
	slices.SortFunc(s.Types, func(a, b *FullType) int {
		return strings.Compare(deref(a.Name), deref(b.Name))
	})

	for _, dir := range wrapped.Directives() {
		s.Directives = append(s.Directives, &DirectiveType{
			Name:         dir.Name,
			Description:  dir.Description(),
			Locations:    dir.Locations,
			Args:         inputValues(dir.Args),
			IsRepeatable: dir.IsRepeatable,
		})
	}

	return &Query{Schema: s}
}

func rootType(t *gqlintrospection.Type) *RootType {
	if t == nil {
		return nil
	}

	return &RootType{Name: t.Name()}
}

func fullType(t *gqlintrospection.Type) *FullType {
	ft := &FullType{
		Kind:           TypeKind(t.Kind()),
		Name:           t.Name(),
		Description:    t.Description(),
		SpecifiedByURL: t.SpecifiedByURL(),
	}

	for _, f := range t.Fields(true) {
		ft.Fields = append(ft.Fields, &FieldValue{
			Name:              f.Name,
			Description:       f.Description(),
			Args:              inputValues(f.Args),
			Type:              *typeRef(f.Type),
			IsDeprecated:      f.IsDeprecated(),
			DeprecationReason: f.DeprecationReason(),
		})
	}
	ft.InputFields = inputValues(t.InputFields())
	for _, i := range t.Interfaces() {
		ft.Interfaces = append(ft.Interfaces, typeRef(&i))
	}
	for _, pt := range t.PossibleTypes() {
		ft.PossibleTypes = append(ft.PossibleTypes, typeRef(&pt))
	}
	for _, v := range t.EnumValues(true) {
		ft.EnumValues = append(ft.EnumValues, &EnumValue{
			Name:              v.Name,
			Description:       v.Description(),
			IsDeprecated:      v.IsDeprecated(),
			DeprecationReason: v.DeprecationReason(),
		})
	}

	return ft
}

func inputValues(values []gqlintrospection.InputValue) []*InputValue {
	var out []*InputValue
	for _, v := range values {
		out = append(out, &InputValue{
			Name:         v.Name,
			Description:  v.Description(),
			Type:         *typeRef(v.Type),
			DefaultValue: v.DefaultValue,
		})
	}

	return out
}

func typeRef(t *gqlintrospection.Type) *TypeRef {
	ref := &TypeRef{Kind: TypeKind(t.Kind()), Name: t.Name()}
	if of := t.OfType(); of != nil {
		ref.OfType = typeRef(of)
	}

	return ref
}
