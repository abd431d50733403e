package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"

	"github.com/invisibleacropolis-ops/RNGEN-sub001/errors"
)

var testSchema = ConfigSchema{
	Required: []string{"template_string", "sources", "model"},
	Properties: map[string]PropertySchema{
		"template_string": {Type: TypeString, Category: "basic"},
		"sources":         {Type: TypeArray, Category: "basic"},
		"model":           {Type: TypeAny},
		"max_depth":       {Type: TypeInt, Minimum: Min(1)},
		"use_weights":     {Type: TypeBool},
		"temperature":     {Type: TypeFloat},
		"sub_generators":  {Type: TypeObject},
	},
}

func validConfig() map[string]any {
	return map[string]any{
		"template_string": "[a]",
		"sources":         []any{"colors"},
		"model":           "names",
	}
}

func TestValidate_NotAMap(t *testing.T) {
	for _, cfg := range []any{nil, "text", 3, []any{1}} {
		ge := Validate(cfg, testSchema)
		require.NotNil(t, ge)
		assert.Equal(t, errors.CodeInvalidConfigType, ge.Code)
	}
}

func TestValidate_ListsEveryMissingKey(t *testing.T) {
	ge := Validate(map[string]any{"sources": []any{}}, testSchema)
	require.NotNil(t, ge)
	assert.Equal(t, errors.CodeMissingRequiredKeys, ge.Code)
	assert.Equal(t, []string{"template_string", "model"}, ge.Details["missing"])
}

func TestValidate_MissingBeforeTypeErrors(t *testing.T) {
	ge := Validate(map[string]any{"max_depth": "deep"}, testSchema)
	require.NotNil(t, ge)
	assert.Equal(t, errors.CodeMissingRequiredKeys, ge.Code)
	assert.Len(t, ge.Details["missing"], 3)
}

func TestValidate_OptionalTypes(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
		ok    bool
	}{
		{"int", "max_depth", 3, true},
		{"int from json", "max_depth", float64(3), true},
		{"fractional int", "max_depth", 3.5, false},
		{"string as int", "max_depth", "3", false},
		{"bool", "use_weights", true, true},
		{"string as bool", "use_weights", "true", false},
		{"float from int", "temperature", 2, true},
		{"float", "temperature", 0.5, true},
		{"object", "sub_generators", map[string]any{}, true},
		{"yaml object", "sub_generators", map[any]any{"x": 1}, true},
		{"list as object", "sub_generators", []any{}, false},
		{"typed slice as array", "sources", []string{"a"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg[tt.key] = tt.value
			ge := Validate(cfg, testSchema)
			if tt.ok {
				assert.Nil(t, ge)
				return
			}
			require.NotNil(t, ge)
			assert.Equal(t, errors.CodeInvalidKeyType, ge.Code)
			assert.Equal(t, tt.key, ge.Details["key"])
			assert.Equal(t, testSchema.Properties[tt.key].Type, ge.Details["expected_type"])
		})
	}
}

func TestValidate_Idempotent(t *testing.T) {
	cfg := validConfig()
	cfg["max_depth"] = "bad"
	first := Validate(cfg, testSchema)
	second := Validate(cfg, testSchema)
	assert.Equal(t, first, second)
}

func TestValidate_ExtraKeysDoNotChangeVerdict(t *testing.T) {
	cfg := validConfig()
	require.Nil(t, Validate(cfg, testSchema))

	cfg["unrelated"] = map[string]any{"anything": []int{1}}
	assert.Nil(t, Validate(cfg, testSchema))
}

func TestSortedPropertyNames(t *testing.T) {
	names := SortedPropertyNames(testSchema)
	assert.Equal(t, []string{
		"sources", "template_string", "model",
		"max_depth", "sub_generators", "temperature", "use_weights",
	}, names)
}

func TestAccessors(t *testing.T) {
	cfg := map[string]any{
		"s": "x", "i": float64(4), "f": 2, "b": true,
		"m": map[any]any{"k": "v"}, "l": []string{"a", "b"},
	}
	assert.Equal(t, "x", String(cfg, "s", "d"))
	assert.Equal(t, "d", String(cfg, "missing", "d"))
	assert.Equal(t, 4, Int(cfg, "i", 0))
	assert.Equal(t, int64(4), Int64(cfg, "i", 0))
	assert.Equal(t, 2.0, Float(cfg, "f", 0))
	assert.True(t, Bool(cfg, "b", false))
	assert.Equal(t, map[string]any{"k": "v"}, Map(cfg, "m"))
	assert.Equal(t, []any{"a", "b"}, Slice(cfg, "l"))
	assert.Nil(t, Map(cfg, "missing"))
}

func TestJSONSchema_AcceptsValidConfig(t *testing.T) {
	doc := JSONSchema("template", testSchema)
	schemaBytes, err := json.Marshal(doc)
	require.NoError(t, err)

	cfg := validConfig()
	cfg["strategy"] = "template"
	cfg["max_depth"] = 4
	docBytes, err := json.Marshal(cfg)
	require.NoError(t, err)

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaBytes),
		gojsonschema.NewBytesLoader(docBytes))
	require.NoError(t, err)
	assert.True(t, result.Valid(), "%v", result.Errors())
}

func TestJSONSchema_RejectsWrongStrategy(t *testing.T) {
	doc := JSONSchema("template", testSchema)
	schemaBytes, err := json.Marshal(doc)
	require.NoError(t, err)

	cfg := validConfig()
	cfg["strategy"] = "markov"
	cfg["max_depth"] = 0
	docBytes, err := json.Marshal(cfg)
	require.NoError(t, err)

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaBytes),
		gojsonschema.NewBytesLoader(docBytes))
	require.NoError(t, err)
	assert.False(t, result.Valid())
}

func TestJSONSchema_StrategyRequiredOnce(t *testing.T) {
	cs := ConfigSchema{
		Properties: map[string]PropertySchema{"strategy": {Type: TypeString}},
		Required:   []string{"strategy", "sources"},
	}
	doc := JSONSchema("wordlist", cs)
	assert.Equal(t, []string{"strategy", "sources"}, doc["required"])
	assert.Equal(t, []string{"strategy", "sources"}, cs.Required, "input contract is not modified")
}
