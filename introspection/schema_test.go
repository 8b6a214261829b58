package introspection

import (
	"maps"
	"slices"
	"testing"

	"github.com/go-json-experiment/json"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

const roundTripSchema = `
"Marks a field whose result can be cached."
directive @cacheControl(maxAge: Int) on FIELD_DEFINITION

scalar Time @specifiedBy(url: "https://example.com/time")

interface Node {
  id: ID!
}

type User implements Node {
  id: ID!
  name: String! @deprecated(reason: "use displayName")
  displayName: String!
  posts(first: Int = 10): [Post!]! @cacheControl(maxAge: 30)
  createdAt: Time
}

type Post implements Node {
  id: ID!
  title: String!
  status: Status!
}

enum Status {
  DRAFT
  PUBLISHED
}

union SearchResult = User | Post

input PostFilter {
  status: Status
  tags: [String!]
}

type Query {
  nodes: [Node!]!
  search(filter: PostFilter): [SearchResult]
}

type Mutation {
  publish(id: ID!): Post
}
`

func TestFromSchema_RoundTrip(t *testing.T) {
	t.Parallel()

	source, err := gqlparser.LoadSchema(&ast.Source{Name: "schema.graphql", Input: roundTripSchema})
	require.NoError(t, err)

	payload, err := json.Marshal(FromSchema(source))
	require.NoError(t, err)

	got, err := LoadSchema("roundtrip", payload)
	require.NoError(t, err)

	if diff := cmp.Diff(describe(source), describe(got)); diff != "" {
		t.Errorf("diff(-want +got): %s", diff)
	}

	if got.Query == nil || got.Query.Name != "Query" {
		t.Errorf("Query = %v, want Query", got.Query)
	}
	if got.Mutation == nil || got.Mutation.Name != "Mutation" {
		t.Errorf("Mutation = %v, want Mutation", got.Mutation)
	}
	if got.Directives["cacheControl"] == nil {
		t.Error("directive cacheControl was dropped")
	}
}

func TestFromSchema_TypeRefs(t *testing.T) {
	t.Parallel()

	source, err := gqlparser.LoadSchema(&ast.Source{Name: "schema.graphql", Input: roundTripSchema})
	require.NoError(t, err)

	query := FromSchema(source)
	types := query.Schema.Types.NameMap()

	user := types["User"]
	require.NotNil(t, user)

	var posts *FieldValue
	for _, f := range user.Fields {
		if f.Name == "posts" {
			posts = f
		}
	}
	require.NotNil(t, posts)

	want := &TypeRef{
		Kind: TypeKindNonNull,
		OfType: &TypeRef{
			Kind: TypeKindList,
			OfType: &TypeRef{
				Kind:   TypeKindNonNull,
				OfType: &TypeRef{Kind: TypeKindObject, Name: ptr("Post")},
			},
		},
	}
	if diff := cmp.Diff(want, &posts.Type); diff != "" {
		t.Errorf("diff(-want +got): %s", diff)
	}

	if diff := cmp.Diff(ptr("10"), posts.Args[0].DefaultValue); diff != "" {
		t.Errorf("default value diff(-want +got): %s", diff)
	}
}

// describe flattens the user-defined part of a schema into comparable strings.
func describe(schema *ast.Schema) map[string]string {
	out := make(map[string]string)
	for _, name := range slices.Sorted(maps.Keys(schema.Types)) {
		def := schema.Types[name]
		if def.BuiltIn {
			continue
		}

		out[name] = string(def.Kind)
		for _, f := range def.Fields {
			if f.Name == "__schema" || f.Name == "__type" {
				continue
			}
			out[name+"."+f.Name] = f.Type.String()
			for _, a := range f.Arguments {
				out[name+"."+f.Name+"("+a.Name+")"] = a.Type.String()
			}
		}
		for _, v := range def.EnumValues {
			out[name+"."+v.Name] = "enum value"
		}
		for _, iface := range def.Interfaces {
			out[name+".implements."+iface] = "interface"
		}
		for _, member := range def.Types {
			out[name+"|"+member] = "member"
		}
	}

	return out
}

func ptr[T any](t T) *T {
	return &t
}
