package introspection

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"
)

func TestLoadSchema(t *testing.T) {
	t.Parallel()

	type want struct {
		query        string
		mutation     string
		fieldTypes   map[string]string
		implicit     []string
		deprecations map[string]string
		err          string
	}

	tests := []struct {
		name string
		file string
		want want
	}{
		{
			name: "dataで包まれたイントロスペクション結果を読み込める",
			file: "testdata/full.json",
			want: want{
				query: "Query",
				fieldTypes: map[string]string{
					"Query.nodes": "[Node!]!",
					"Query.user":  "User",
					"User.id":     "ID!",
					"User.role":   "Role",
				},
				deprecations: map[string]string{
					"Query.user": "use nodes",
				},
			},
		},
		{
			name: "縮小されたイントロスペクション結果を読み込める",
			file: "testdata/minified.json",
			want: want{
				query:    "Query",
				mutation: "Mutation",
				fieldTypes: map[string]string{
					"Query.todos":     "[Todo]",
					"Mutation.toggle": "Todo",
					"Todo.tags":       "[Tag]!",
				},
				implicit: []string{"Any", "Tag"},
			},
		},
		{
			name: "クエリ型がない場合はQueryがnil",
			file: "testdata/no_query.json",
			want: want{
				mutation: "Mutation",
			},
		},
		{
			name: "未定義の型を参照している場合はエラー",
			file: "testdata/undefined_type.json",
			want: want{err: "validation error"},
		},
		{
			name: "ルート型がtypesにない場合はエラー",
			file: "testdata/undeclared_root.json",
			want: want{err: "mutation type Mutation is not in the payload types"},
		},
		{
			name: "不明なkindはエラー",
			file: "testdata/unknown_kind.json",
			want: want{err: `type Query: unsupported kind "TABLE"`},
		},
		{
			name: "__schemaがない場合はエラー",
			file: "testdata/no_schema.json",
			want: want{err: errNoSchema.Error()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data, err := os.ReadFile(tt.file)
			require.NoError(t, err)

			schema, err := LoadSchema(tt.file, data)
			if tt.want.err != "" {
				if err == nil {
					t.Fatalf("error = nil, want %q", tt.want.err)
				}
				if !strings.Contains(err.Error(), tt.want.err) {
					t.Errorf("error message = %q, want to contain %q", err.Error(), tt.want.err)
				}
				return
			}
			require.NoError(t, err)

			if got := definitionName(schema.Query); got != tt.want.query {
				t.Errorf("Query = %q, want %q", got, tt.want.query)
			}
			if got := definitionName(schema.Mutation); got != tt.want.mutation {
				t.Errorf("Mutation = %q, want %q", got, tt.want.mutation)
			}

			for path, want := range tt.want.fieldTypes {
				typeName, fieldName, _ := strings.Cut(path, ".")
				def := schema.Types[typeName]
				require.NotNil(t, def, typeName)
				field := def.Fields.ForName(fieldName)
				require.NotNil(t, field, path)
				if got := field.Type.String(); got != want {
					t.Errorf("%s type = %s, want %s", path, got, want)
				}
			}

			for _, name := range tt.want.implicit {
				def := schema.Types[name]
				require.NotNil(t, def, name)
				if def.Kind != ast.Scalar {
					t.Errorf("%s kind = %s, want SCALAR", name, def.Kind)
				}
			}

			for path, want := range tt.want.deprecations {
				typeName, fieldName, _ := strings.Cut(path, ".")
				field := schema.Types[typeName].Fields.ForName(fieldName)
				dir := field.Directives.ForName("deprecated")
				require.NotNil(t, dir, path)
				if got := dir.Arguments.ForName("reason").Value.Raw; got != want {
					t.Errorf("%s deprecation reason = %q, want %q", path, got, want)
				}
			}
		})
	}
}

func TestLoadSchema_FullPayload(t *testing.T) {
	t.Parallel()

	data, err := os.ReadFile("testdata/full.json")
	require.NoError(t, err)

	schema, err := LoadSchema("full", data)
	require.NoError(t, err)

	if diff := cmp.Diff([]string{"Node"}, schema.Types["User"].Interfaces); diff != "" {
		t.Errorf("User interfaces diff(-want +got): %s", diff)
	}

	var values []string
	for _, v := range schema.Types["Role"].EnumValues {
		values = append(values, v.Name)
	}
	if diff := cmp.Diff([]string{"ADMIN", "GUEST"}, values); diff != "" {
		t.Errorf("Role values diff(-want +got): %s", diff)
	}

	if schema.Directives["cacheControl"] == nil {
		t.Error("custom directive cacheControl was dropped")
	}
	if dir := schema.Directives["skip"]; dir == nil || !dir.Position.Src.BuiltIn {
		t.Error("skip should come from the prelude")
	}

	// __Schema comes from the prelude, not from the payload
	if def := schema.Types["__Schema"]; def == nil || !def.BuiltIn {
		t.Error("__Schema should be the built-in definition")
	}
}

func TestUnmarshal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
		want    string
		wantErr error
	}{
		{
			name:    "__schemaのみのオブジェクト",
			payload: `{"__schema": {"queryType": {"name": "Root"}, "types": []}}`,
			want:    "Root",
		},
		{
			name:    "dataで包まれたレスポンス",
			payload: `{"data": {"__schema": {"queryType": {"name": "Root"}, "types": []}}}`,
			want:    "Root",
		},
		{
			name:    "__schemaがない",
			payload: `{"data": {}}`,
			wantErr: errNoSchema,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Unmarshal([]byte(tt.payload))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			require.NoError(t, err)

			if name := got.Schema.QueryType.name(); name != tt.want {
				t.Errorf("queryType = %q, want %q", name, tt.want)
			}
		})
	}

	if _, err := Unmarshal([]byte(`{`)); err == nil {
		t.Error("Unmarshal() of broken JSON should fail")
	}
}

func definitionName(def *ast.Definition) string {
	if def == nil {
		return ""
	}

	return def.Name
}
