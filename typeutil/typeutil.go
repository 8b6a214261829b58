// Package typeutil classifies gqlparser schema types: which definitions carry selectable
// fields, and how list and non-null wrappers unwrap to a named type.
package typeutil

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/Yamashou/gqlhint/introspection"
)

// Kind is the closed set of type kinds a schema type or type reference can have.
// The values are the __TypeKind names.
type Kind = introspection.TypeKind

const (
	KindInvalid     Kind = ""
	KindScalar           = introspection.TypeKindScalar
	KindObject           = introspection.TypeKindObject
	KindInterface        = introspection.TypeKindInterface
	KindUnion            = introspection.TypeKindUnion
	KindEnum             = introspection.TypeKindEnum
	KindInputObject      = introspection.TypeKindInputObject
	KindList             = introspection.TypeKindList
	KindNonNull          = introspection.TypeKindNonNull
)

// DefinitionKind returns the kind of a named type definition, KindInvalid for nil.
func DefinitionKind(def *ast.Definition) Kind {
	if def == nil {
		return KindInvalid
	}

	switch def.Kind {
	case ast.Scalar:
		return KindScalar
	case ast.Object:
		return KindObject
	case ast.Interface:
		return KindInterface
	case ast.Union:
		return KindUnion
	case ast.Enum:
		return KindEnum
	case ast.InputObject:
		return KindInputObject
	default:
		return KindInvalid
	}
}

type layer int

const (
	layerNone layer = iota
	layerNonNull
	layerList
	layerNamed
)

// gqlparser folds non-null into a flag on the wrapped node; treat it as its own layer.
func layerOf(t *ast.Type) layer {
	switch {
	case t == nil:
		return layerNone
	case t.NonNull:
		return layerNonNull
	case t.Elem != nil:
		return layerList
	default:
		return layerNamed
	}
}

// Unwrap peels exactly one wrapper layer. Named types are returned unchanged.
func Unwrap(t *ast.Type) *ast.Type {
	switch layerOf(t) {
	case layerNonNull:
		nullable := *t
		nullable.NonNull = false

		return &nullable
	case layerList:
		return t.Elem
	default:
		return t
	}
}

// HasSelectableFields reports whether def is an object or an interface.
func HasSelectableFields(def *ast.Definition) bool {
	switch DefinitionKind(def) {
	case KindObject, KindInterface:
		return true
	case KindScalar, KindUnion, KindEnum, KindInputObject:
		return false
	default:
		return false
	}
}

// IsListType reports whether t is a list once non-null wrappers are removed.
func IsListType(t *ast.Type) bool {
	for {
		switch layerOf(t) {
		case layerNonNull:
			t = Unwrap(t)
		case layerList:
			return true
		default:
			return false
		}
	}
}

// NamedTypeOf strips every wrapper of t and returns the innermost type name.
func NamedTypeOf(t *ast.Type) string {
	for {
		switch layerOf(t) {
		case layerNonNull, layerList:
			t = Unwrap(t)
		case layerNamed:
			return t.NamedType
		default:
			return ""
		}
	}
}

// ElemTypeOf returns the element type of a list type: non-null wrappers are removed, then one
// list layer. It returns nil when t is not a list.
func ElemTypeOf(t *ast.Type) *ast.Type {
	for {
		switch layerOf(t) {
		case layerNonNull:
			t = Unwrap(t)
		case layerList:
			return Unwrap(t)
		default:
			return nil
		}
	}
}
