package introspection

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-json-experiment/json"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"
)

var errNoSchema = errors.New("introspection payload has no __schema")

// Unmarshal decodes an introspection payload. Both the bare {"__schema": ...} object and a
// full response {"data": {"__schema": ...}} are accepted.
func Unmarshal(data []byte) (*Query, error) {
	var envelope struct {
		Schema *Schema `json:"__schema"`
		Data   *Query  `json:"data"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode introspection payload: %w", err)
	}

	switch {
	case envelope.Schema != nil:
		return &Query{Schema: envelope.Schema}, nil
	case envelope.Data != nil && envelope.Data.Schema != nil:
		return envelope.Data, nil
	default:
		return nil, errNoSchema
	}
}

// LoadSchema builds a validated schema from an introspection payload.
// A payload without a query root type yields a schema whose Query is nil.
func LoadSchema(name string, data []byte) (*ast.Schema, error) {
	query, err := Unmarshal(data)
	if err != nil {
		return nil, err
	}

	doc, err := SchemaFromIntrospection(name, query)
	if err != nil {
		return nil, err
	}

	schema, err := validator.ValidateSchemaDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	return schema, nil
}

// SchemaFromIntrospection converts an introspection payload into a schema document.
//
// Built-in scalars, built-in directives and the __ types come from the gqlparser prelude, so the
// payload versions of them are dropped. Types that are only referenced (minified payloads omit
// scalar declarations) are declared as scalars.
func SchemaFromIntrospection(name string, query *Query) (*ast.SchemaDocument, error) {
	if query == nil || query.Schema == nil {
		return nil, errNoSchema
	}

	doc, err := parser.ParseSchema(validator.Prelude)
	if err != nil {
		return nil, fmt.Errorf("parse prelude: %w", err)
	}

	p := &converter{
		position:   &ast.Position{Src: &ast.Source{Name: name, BuiltIn: false}},
		declared:   make(map[string]struct{}, len(doc.Definitions)+len(query.Schema.Types)),
		referenced: make(map[string]TypeKind),
	}
	for _, def := range doc.Definitions {
		p.declared[def.Name] = struct{}{}
	}

	def, err := p.schemaDefinition(query.Schema, query.Schema.Types.NameMap())
	if err != nil {
		return nil, err
	}
	if def != nil {
		doc.Schema = append(doc.Schema, def)
	}

	for _, typ := range query.Schema.Types {
		if typ == nil || typ.Name == nil {
			return nil, errors.New("introspection type without name")
		}
		if _, ok := p.declared[*typ.Name]; ok {
			continue
		}

		def, err := p.definition(typ)
		if err != nil {
			return nil, fmt.Errorf("type %s: %w", *typ.Name, err)
		}
		p.declared[def.Name] = struct{}{}
		doc.Definitions = append(doc.Definitions, def)
	}

	doc.Definitions = append(doc.Definitions, p.implicitScalars()...)

	builtinDirectives := make(map[string]struct{}, len(doc.Directives))
	for _, dir := range doc.Directives {
		builtinDirectives[dir.Name] = struct{}{}
	}
	for _, dir := range query.Schema.Directives {
		if dir == nil {
			continue
		}
		if _, ok := builtinDirectives[dir.Name]; ok {
			continue
		}

		def, err := p.directiveDefinition(dir)
		if err != nil {
			return nil, fmt.Errorf("directive @%s: %w", dir.Name, err)
		}
		doc.Directives = append(doc.Directives, def)
	}

	return doc, nil
}

type converter struct {
	position   *ast.Position
	declared   map[string]struct{}
	referenced map[string]TypeKind
}

// schemaDefinition declares the root operation types. Every root must be one of types.
func (p *converter) schemaDefinition(s *Schema, types map[string]*FullType) (*ast.SchemaDefinition, error) {
	roots := []struct {
		operation ast.Operation
		name      string
	}{
		{ast.Query, s.QueryType.name()},
		{ast.Mutation, s.MutationType.name()},
		{ast.Subscription, s.SubscriptionType.name()},
	}

	var operationTypes ast.OperationTypeDefinitionList
	for _, root := range roots {
		if root.name == "" {
			continue
		}
		if _, ok := types[root.name]; !ok {
			return nil, fmt.Errorf("%s type %s is not in the payload types", root.operation, root.name)
		}
		operationTypes = append(operationTypes, &ast.OperationTypeDefinition{
			Operation: root.operation,
			Type:      root.name,
			Position:  p.position,
		})
	}
	if len(operationTypes) == 0 {
		return nil, nil
	}

	return &ast.SchemaDefinition{
		Description:    deref(s.Description),
		OperationTypes: operationTypes,
		Position:       p.position,
	}, nil
}

func (p *converter) definition(typ *FullType) (*ast.Definition, error) {
	def := &ast.Definition{
		Name:        *typ.Name,
		Description: deref(typ.Description),
		Position:    p.position,
	}

	switch typ.Kind {
	case TypeKindScalar:
		def.Kind = ast.Scalar
		if typ.SpecifiedByURL != nil {
			def.Directives = ast.DirectiveList{p.directive("specifiedBy", "url", *typ.SpecifiedByURL)}
		}
	case TypeKindObject, TypeKindInterface:
		def.Kind = ast.Object
		if typ.Kind == TypeKindInterface {
			def.Kind = ast.Interface
		}
		fields, err := p.fields(typ.Fields)
		if err != nil {
			return nil, err
		}
		def.Fields = fields
		for _, ref := range typ.Interfaces {
			def.Interfaces = append(def.Interfaces, p.namedRef(ref))
		}
	case TypeKindUnion:
		def.Kind = ast.Union
		for _, ref := range typ.PossibleTypes {
			def.Types = append(def.Types, p.namedRef(ref))
		}
	case TypeKindEnum:
		def.Kind = ast.Enum
		for _, v := range typ.EnumValues {
			value := &ast.EnumValueDefinition{
				Name:        v.Name,
				Description: deref(v.Description),
				Position:    p.position,
			}
			if v.IsDeprecated {
				value.Directives = ast.DirectiveList{p.deprecated(v.DeprecationReason)}
			}
			def.EnumValues = append(def.EnumValues, value)
		}
	case TypeKindInputObject:
		def.Kind = ast.InputObject
		for _, v := range typ.InputFields {
			t, err := p.typeRef(&v.Type)
			if err != nil {
				return nil, fmt.Errorf("input field %s: %w", v.Name, err)
			}
			def.Fields = append(def.Fields, &ast.FieldDefinition{
				Name:        v.Name,
				Description: deref(v.Description),
				Type:        t,
				Position:    p.position,
			})
		}
	default:
		return nil, fmt.Errorf("unsupported kind %q", typ.Kind)
	}

	return def, nil
}

func (p *converter) fields(values []*FieldValue) (ast.FieldList, error) {
	fields := make(ast.FieldList, 0, len(values))
	for _, v := range values {
		// the validator declares __schema and __type itself
		if strings.HasPrefix(v.Name, "__") {
			continue
		}

		t, err := p.typeRef(&v.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", v.Name, err)
		}

		args, err := p.arguments(v.Args)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", v.Name, err)
		}

		field := &ast.FieldDefinition{
			Name:        v.Name,
			Description: deref(v.Description),
			Arguments:   args,
			Type:        t,
			Position:    p.position,
		}
		if v.IsDeprecated {
			field.Directives = ast.DirectiveList{p.deprecated(v.DeprecationReason)}
		}
		fields = append(fields, field)
	}

	return fields, nil
}

// Default values are not carried over: they are literals in the payload and nothing here reads them.
func (p *converter) arguments(values []*InputValue) (ast.ArgumentDefinitionList, error) {
	args := make(ast.ArgumentDefinitionList, 0, len(values))
	for _, v := range values {
		t, err := p.typeRef(&v.Type)
		if err != nil {
			return nil, fmt.Errorf("argument %s: %w", v.Name, err)
		}
		args = append(args, &ast.ArgumentDefinition{
			Name:        v.Name,
			Description: deref(v.Description),
			Type:        t,
			Position:    p.position,
		})
	}

	return args, nil
}

func (p *converter) directiveDefinition(dir *DirectiveType) (*ast.DirectiveDefinition, error) {
	args, err := p.arguments(dir.Args)
	if err != nil {
		return nil, err
	}

	locations := make([]ast.DirectiveLocation, 0, len(dir.Locations))
	for _, l := range dir.Locations {
		locations = append(locations, ast.DirectiveLocation(l))
	}

	return &ast.DirectiveDefinition{
		Name:         dir.Name,
		Description:  deref(dir.Description),
		Arguments:    args,
		Locations:    locations,
		IsRepeatable: dir.IsRepeatable,
		Position:     p.position,
	}, nil
}

func (p *converter) typeRef(ref *TypeRef) (*ast.Type, error) {
	if ref == nil {
		return nil, errors.New("missing type reference")
	}

	switch ref.Kind {
	case TypeKindNonNull:
		inner, err := p.typeRef(ref.OfType)
		if err != nil {
			return nil, err
		}
		if inner.NonNull {
			return nil, errors.New("non-null of non-null")
		}
		t := *inner
		t.NonNull = true

		return &t, nil
	case TypeKindList:
		elem, err := p.typeRef(ref.OfType)
		if err != nil {
			return nil, err
		}

		return &ast.Type{Elem: elem, Position: p.position}, nil
	default:
		name := p.namedRef(ref)
		if name == "" {
			return nil, fmt.Errorf("%s type reference without name", ref.Kind)
		}

		return &ast.Type{NamedType: name, Position: p.position}, nil
	}
}

func (p *converter) namedRef(ref *TypeRef) string {
	if ref == nil || ref.Name == nil {
		return ""
	}
	if _, ok := p.referenced[*ref.Name]; !ok {
		p.referenced[*ref.Name] = ref.Kind
	}

	return *ref.Name
}

func (p *converter) implicitScalars() ast.DefinitionList {
	var defs ast.DefinitionList
	for name, kind := range p.referenced {
		if _, ok := p.declared[name]; ok || kind != TypeKindScalar {
			continue
		}
		defs = append(defs, &ast.Definition{
			Kind:     ast.Scalar,
			Name:     name,
			Position: p.position,
		})
	}
	// map iteration order must not leak into the document
	slices.SortFunc(defs, func(a, b *ast.Definition) int {
		return strings.Compare(a.Name, b.Name)
	})

	return defs
}

func (p *converter) deprecated(reason *string) *ast.Directive {
	if reason == nil {
		return &ast.Directive{Name: "deprecated", Position: p.position}
	}

	return p.directive("deprecated", "reason", *reason)
}

func (p *converter) directive(name, arg, value string) *ast.Directive {
	return &ast.Directive{
		Name: name,
		Arguments: ast.ArgumentList{
			{
				Name:     arg,
				Value:    &ast.Value{Kind: ast.StringValue, Raw: value, Position: p.position},
				Position: p.position,
			},
		},
		Position: p.position,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
