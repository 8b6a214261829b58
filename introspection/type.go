package introspection

type TypeKind string

const (
	TypeKindScalar      TypeKind = "SCALAR"
	TypeKindObject      TypeKind = "OBJECT"
	TypeKindInterface   TypeKind = "INTERFACE"
	TypeKindUnion       TypeKind = "UNION"
	TypeKindEnum        TypeKind = "ENUM"
	TypeKindInputObject TypeKind = "INPUT_OBJECT"
	TypeKindList        TypeKind = "LIST"
	TypeKindNonNull     TypeKind = "NON_NULL"
)

// Query is the result of the introspection query, without the "data" envelope.
type Query struct {
	Schema *Schema `json:"__schema"`
}

// Schema mirrors __Schema. Reduced payloads may carry only the root type names and types.
type Schema struct {
	Description      *string          `json:"description,omitempty"`
	QueryType        *RootType        `json:"queryType"`
	MutationType     *RootType        `json:"mutationType"`
	SubscriptionType *RootType        `json:"subscriptionType"`
	Types            FullTypes        `json:"types"`
	Directives       []*DirectiveType `json:"directives,omitempty"`
}

type RootType struct {
	Name *string `json:"name"`
}

func (r *RootType) name() string {
	if r == nil || r.Name == nil {
		return ""
	}

	return *r.Name
}

type FullTypes []*FullType

func (fs FullTypes) NameMap() map[string]*FullType {
	typeMap := make(map[string]*FullType, len(fs))
	for _, typ := range fs {
		if typ == nil || typ.Name == nil {
			continue
		}
		typeMap[*typ.Name] = typ
	}

	return typeMap
}

type FullType struct {
	Kind           TypeKind      `json:"kind"`
	Name           *string       `json:"name"`
	Description    *string       `json:"description,omitempty"`
	Fields         []*FieldValue `json:"fields,omitempty"`
	InputFields    []*InputValue `json:"inputFields,omitempty"`
	Interfaces     []*TypeRef    `json:"interfaces,omitempty"`
	EnumValues     []*EnumValue  `json:"enumValues,omitempty"`
	PossibleTypes  []*TypeRef    `json:"possibleTypes,omitempty"`
	SpecifiedByURL *string       `json:"specifiedByURL,omitempty"`
}

type FieldValue struct {
	Name              string        `json:"name"`
	Description       *string       `json:"description,omitempty"`
	Args              []*InputValue `json:"args,omitempty"`
	Type              TypeRef       `json:"type"`
	IsDeprecated      bool          `json:"isDeprecated,omitzero"`
	DeprecationReason *string       `json:"deprecationReason,omitempty"`
}

type InputValue struct {
	Name         string  `json:"name"`
	Description  *string `json:"description,omitempty"`
	Type         TypeRef `json:"type"`
	DefaultValue *string `json:"defaultValue,omitempty"`
}

type EnumValue struct {
	Name              string  `json:"name"`
	Description       *string `json:"description,omitempty"`
	IsDeprecated      bool    `json:"isDeprecated,omitzero"`
	DeprecationReason *string `json:"deprecationReason,omitempty"`
}

// TypeRef is a possibly wrapped reference. LIST and NON_NULL carry OfType, named kinds carry Name.
type TypeRef struct {
	Kind   TypeKind `json:"kind"`
	Name   *string  `json:"name,omitempty"`
	OfType *TypeRef `json:"ofType,omitempty"`
}

type DirectiveType struct {
	Name         string        `json:"name"`
	Description  *string       `json:"description,omitempty"`
	Locations    []string      `json:"locations"`
	Args         []*InputValue `json:"args,omitempty"`
	IsRepeatable bool          `json:"isRepeatable,omitzero"`
}
