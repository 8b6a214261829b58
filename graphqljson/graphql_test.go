package graphqljson_test

import (
	"strings"
	"testing"

	"github.com/go-json-experiment/json/jsontext"
	"github.com/google/go-cmp/cmp"

	"github.com/Yamashou/gqlhint/graphqljson"
)

type user struct {
	ID    string `json:"id"`
	Posts []struct {
		Title string `json:"title"`
	} `json:"posts"`
}

func TestUnmarshalData(t *testing.T) {
	t.Parallel()

	var got struct {
		Users []user `json:"users"`
	}
	data := jsontext.Value(`{"users": [{"id": "1", "posts": [{"title": "a"}, {"title": "b"}]}]}`)
	if err := graphqljson.UnmarshalData(data, &got); err != nil {
		t.Fatalf("UnmarshalData() failed: %v", err)
	}

	want := []user{{ID: "1"}}
	want[0].Posts = append(want[0].Posts, struct {
		Title string `json:"title"`
	}{Title: "a"}, struct {
		Title string `json:"title"`
	}{Title: "b"})

	if diff := cmp.Diff(want, got.Users); diff != "" {
		t.Errorf("diff(-want +got): %s", diff)
	}
}

func TestUnmarshalData_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		data   jsontext.Value
		target any
		want   string
		noData bool
	}{
		{
			name:   "ポインタ以外にはデコードできない",
			data:   jsontext.Value(`{}`),
			target: user{},
			want:   "cannot decode into non-pointer graphqljson_test.user",
		},
		{
			name:   "dataがnullの場合はエラー",
			data:   jsontext.Value(`null`),
			target: &user{},
			want:   "response has no data",
			noData: true,
		},
		{
			name:   "型が一致しない場合はエラー",
			data:   jsontext.Value(`{"id": 1}`),
			target: &user{},
			want:   "decode graphql data: decode json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := graphqljson.UnmarshalData(tt.data, tt.target)
			if err == nil {
				t.Fatal("error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error message = %q, want to contain %q", err.Error(), tt.want)
			}
			if got := graphqljson.IsNoData(err); got != tt.noData {
				t.Errorf("IsNoData() = %v, want %v", got, tt.noData)
			}
		})
	}
}
