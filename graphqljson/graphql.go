package graphqljson

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

var errNoData = errors.New("response has no data")

// UnmarshalData parses the GraphQL response payload contained in data and stores
// the result into v, which must be a non-nil pointer.
func UnmarshalData(data jsontext.Value, v any) error {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("decode graphql data: decode json: cannot decode into non-pointer %T", v)
	}

	if len(data) == 0 || string(data) == "null" {
		return fmt.Errorf("decode graphql data: %w", errNoData)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode graphql data: decode json: %w", err)
	}

	return nil
}

// IsNoData reports whether err was returned for a response without data.
func IsNoData(err error) bool {
	return errors.Is(err, errNoData)
}
