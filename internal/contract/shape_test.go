package contract

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tmdb-api-tester/internal/types"
)

func decode(t *testing.T, s string) interface{} {
	t.Helper()
	var v interface{}
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestCheckShape(t *testing.T) {
	titleOrName := &types.Shape{AnyOf: []types.Shape{
		{Keys: []string{"id", "title"}},
		{Keys: []string{"id", "name"}},
	}}

	tests := []struct {
		name    string
		shape   *types.Shape
		body    string
		wantErr string
	}{
		{"nil shape accepts anything", nil, `[1,2]`, ""},
		{"results array", &types.Shape{Arrays: []string{"results"}}, `{"results":[]}`, ""},
		{"results not array", &types.Shape{Arrays: []string{"results"}}, `{"results":"x"}`, `key "results" is string, expected array`},
		{"results missing", &types.Shape{Arrays: []string{"results"}}, `{"page":1}`, `missing key "results"`},
		{"body is array", &types.Shape{Keys: []string{"id"}}, `[{"id":1}]`, "body is array, expected object"},
		{"body is null", &types.Shape{Object: true}, `null`, "body is null, expected object"},
		{"required keys", &types.Shape{Keys: []string{"id", "title"}}, `{"id":1,"title":"x"}`, ""},
		{"missing key", &types.Shape{Keys: []string{"id", "title"}}, `{"id":1}`, `missing key "title"`},
		{"non empty ok", &types.Shape{NonEmpty: []string{"episodes"}}, `{"episodes":[{}]}`, ""},
		{"non empty fails", &types.Shape{NonEmpty: []string{"episodes"}}, `{"episodes":[]}`, `key "episodes" is an empty array`},
		{"any of title", titleOrName, `{"id":1,"title":"x"}`, ""},
		{"any of name", titleOrName, `{"id":1,"name":"x"}`, ""},
		{"any of none", titleOrName, `{"id":1}`, "no alternative shape matched"},
		{
			"json schema ok",
			&types.Shape{JSONSchema: `{"type":"object","required":["page"],"properties":{"page":{"type":"integer"}}}`},
			`{"page":2}`,
			"",
		},
		{
			"json schema mismatch",
			&types.Shape{JSONSchema: `{"type":"object","properties":{"page":{"type":"integer"}}}`},
			`{"page":"two"}`,
			"json schema mismatch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckShape(tt.shape, decode(t, tt.body))
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateShape(t *testing.T) {
	assert.NoError(t, ValidateShape(nil))
	assert.NoError(t, ValidateShape(&types.Shape{JSONSchema: `{"type":"object"}`}))

	err := ValidateShape(&types.Shape{AnyOf: []types.Shape{{JSONSchema: `{"type":`}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "any_of[0]")
}
