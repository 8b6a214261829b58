package client

import (
	"errors"
	"fmt"
	"maps"
	"net/http"
	"slices"

	"github.com/google/uuid"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

var errNoOperation = errors.New("query document has no operation")

// Operation is one request travelling through the pipeline.
type Operation struct {
	// Key identifies the operation across stages.
	Key       string
	Kind      ast.Operation
	Name      string
	Query     string
	Document  *ast.QueryDocument
	Variables map[string]any
	Context   OperationContext
}

// OperationContext is the part of an operation that stages may replace.
type OperationContext struct {
	URL    string
	Header http.Header
	// AdditionalTypenames are the types a cache treats as touched by this operation,
	// on top of the ones it finds in the response.
	AdditionalTypenames []string
	Meta                map[string]any
}

// Clone returns a copy that shares nothing mutable with c.
func (c OperationContext) Clone() OperationContext {
	return OperationContext{
		URL:                 c.URL,
		Header:              c.Header.Clone(),
		AdditionalTypenames: slices.Clone(c.AdditionalTypenames),
		Meta:                maps.Clone(c.Meta),
	}
}

// WithContext returns a copy of op carrying ctx. The document and variables are shared; they are
// never modified by the pipeline.
func (op *Operation) WithContext(ctx OperationContext) *Operation {
	clone := *op
	clone.Context = ctx

	return &clone
}

// NewOperation parses query and picks the operation named operationName, or the first one when
// the name is empty or unknown.
func NewOperation(operationName, query string, variables map[string]any) (*Operation, error) {
	doc, err := parser.ParseQuery(&ast.Source{Name: operationName, Input: query})
	if err != nil {
		return nil, fmt.Errorf("parse query: %w", err)
	}
	if len(doc.Operations) == 0 {
		return nil, errNoOperation
	}

	definition := doc.Operations.ForName(operationName)
	if definition == nil {
		definition = doc.Operations[0]
	}

	return &Operation{
		Key:       uuid.NewString(),
		Kind:      definition.Operation,
		Name:      operationName,
		Query:     query,
		Document:  doc,
		Variables: variables,
	}, nil
}

type OperationOption func(*Operation)

// WithAdditionalTypenames seeds the invalidation hints of the operation.
func WithAdditionalTypenames(typenames ...string) OperationOption {
	return func(op *Operation) {
		op.Context.AdditionalTypenames = append(op.Context.AdditionalTypenames, typenames...)
	}
}

func WithOperationHeader(key, value string) OperationOption {
	return func(op *Operation) {
		if op.Context.Header == nil {
			op.Context.Header = make(http.Header)
		}
		op.Context.Header.Add(key, value)
	}
}

func WithMeta(key string, value any) OperationOption {
	return func(op *Operation) {
		if op.Context.Meta == nil {
			op.Context.Meta = make(map[string]any)
		}
		op.Context.Meta[key] = value
	}
}
