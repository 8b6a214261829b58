package config

import (
	"errors"
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"
)

var errSchemaNotLoaded = errors.New("schema is not loaded")

// LoadQuery parses the query files and splits them into one document per operation, each
// carrying only the fragments the operation uses. LoadSchema must be called first.
func (c *Config) LoadQuery() error {
	if c.GraphQLSchema == nil {
		return errSchemaNotLoaded
	}

	queryDocument, err := loadQueryDocument(c.QuerySources)
	if err != nil {
		return err
	}

	if errs := validator.Validate(c.GraphQLSchema, queryDocument); len(errs) > 0 {
		return fmt.Errorf("invalid query: %w", errs)
	}

	operationQueryDocuments, err := queryDocumentsByOperations(c.GraphQLSchema, queryDocument.Operations)
	if err != nil {
		return err
	}

	c.OperationQueryDocuments = operationQueryDocuments

	return nil
}

func loadQueryDocument(sources []*ast.Source) (*ast.QueryDocument, error) {
	queryDocument := &ast.QueryDocument{}
	for _, source := range sources {
		doc, err := parser.ParseQuery(source)
		if err != nil {
			return nil, fmt.Errorf("parse query %s: %w", source.Name, err)
		}

		queryDocument.Operations = append(queryDocument.Operations, doc.Operations...)
		queryDocument.Fragments = append(queryDocument.Fragments, doc.Fragments...)
	}

	return queryDocument, nil
}

func queryDocumentsByOperations(schema *ast.Schema, operations ast.OperationList) ([]*ast.QueryDocument, error) {
	queryDocuments := make([]*ast.QueryDocument, 0, len(operations))
	for _, operation := range operations {
		queryDocument := &ast.QueryDocument{
			Operations: ast.OperationList{operation},
			Fragments:  fragmentsInOperation(operation),
		}

		if errs := validator.Validate(schema, queryDocument); len(errs) > 0 {
			return nil, fmt.Errorf("operation %s: %w", operation.Name, errs)
		}

		queryDocuments = append(queryDocuments, queryDocument)
	}

	return queryDocuments, nil
}

func fragmentsInOperation(operation *ast.OperationDefinition) ast.FragmentDefinitionList {
	fragments := fragmentsInSelectionSet(operation.SelectionSet)

	seen := make(map[string]struct{}, len(fragments))
	uniqueFragments := make(ast.FragmentDefinitionList, 0, len(fragments))
	for _, fragment := range fragments {
		if _, ok := seen[fragment.Name]; ok {
			continue
		}
		seen[fragment.Name] = struct{}{}
		uniqueFragments = append(uniqueFragments, fragment)
	}

	return uniqueFragments
}

// fragmentsInSelectionSet relies on the spread definitions the validator resolved.
func fragmentsInSelectionSet(selectionSet ast.SelectionSet) ast.FragmentDefinitionList {
	var fragments ast.FragmentDefinitionList
	for _, selection := range selectionSet {
		var selectionSet ast.SelectionSet
		switch selection := selection.(type) {
		case *ast.Field:
			selectionSet = selection.SelectionSet
		case *ast.InlineFragment:
			selectionSet = selection.SelectionSet
		case *ast.FragmentSpread:
			if selection.Definition == nil {
				continue
			}
			fragments = append(fragments, selection.Definition)
			selectionSet = selection.Definition.SelectionSet
		}

		fragments = append(fragments, fragmentsInSelectionSet(selectionSet)...)
	}

	return fragments
}
