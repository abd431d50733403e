package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invisibleacropolis-ops/RNGEN-sub001/errors"
)

func endModel() map[string]any {
	return map[string]any{
		"states":       []any{"a", "<END>"},
		"transitions":  map[string]any{"a": []any{map[string]any{"token": "<END>", "weight": 1}}},
		"start_tokens": []any{map[string]any{"token": "a", "weight": 1}},
		"end_tokens":   []any{"<END>"},
	}
}

func TestParseWordList(t *testing.T) {
	list, ge := ParseWordList(map[string]any{
		"name":    "metals",
		"entries": []any{"iron", map[string]any{"value": "gold", "weight": 3}},
	})
	require.Nil(t, ge)
	assert.Equal(t, []WordEntry{{Value: "iron", Weight: 1}, {Value: "gold", Weight: 3}}, list.Entries)

	list, ge = ParseWordList(map[string]any{
		"entries": []any{"heavy", "light"},
		"weights": []any{3.0, 1.0},
	})
	require.Nil(t, ge)
	assert.Equal(t, 3.0, list.Entries[0].Weight)

	_, ge = ParseWordList(map[string]any{"entries": []any{"a"}, "weights": []any{1, 2}})
	require.NotNil(t, ge)
	assert.Equal(t, errors.CodeInvalidResource, ge.Code)

	_, ge = ParseWordList(map[string]any{"entries": []any{map[string]any{"value": "x", "weight": -1}}})
	require.NotNil(t, ge)
	assert.Equal(t, errors.CodeInvalidResource, ge.Code)
}

func TestParseSyllableSet(t *testing.T) {
	set, ge := ParseSyllableSet(map[string]any{
		"prefixes":     []any{"ka"},
		"middles":      []any{"ri"},
		"suffixes":     []any{"on"},
		"middle_range": []any{1, 2},
	})
	require.Nil(t, ge)
	assert.Equal(t, &Range{Min: 1, Max: 2}, set.MiddleRange)

	_, ge = ParseSyllableSet(map[string]any{"middle_range": map[string]any{"min": 3, "max": 1}})
	require.NotNil(t, ge)
	assert.Equal(t, errors.CodeInvalidMiddleRange, ge.Code)

	_, ge = ParseSyllableSet(map[string]any{"middle_range": map[string]any{"min": 0.5, "max": 2.7}})
	require.NotNil(t, ge)
	assert.Equal(t, errors.CodeInvalidMiddleRange, ge.Code)

	_, ge = ParseSyllableSet(map[string]any{"prefixes": []any{1}})
	require.NotNil(t, ge)
	assert.Equal(t, errors.CodeInvalidResource, ge.Code)
}

func TestParseRange(t *testing.T) {
	r, ok := ParseRange(map[string]any{"min": 1, "max": 3})
	require.True(t, ok)
	assert.Equal(t, Range{Min: 1, Max: 3}, r)

	r, ok = ParseRange([]any{2.0, 4.0})
	require.True(t, ok)
	assert.Equal(t, Range{Min: 2, Max: 4}, r)

	for _, bad := range []any{
		map[string]any{"min": 0.5, "max": 2},
		[]any{1, 2.7},
		[]any{1},
		map[string]any{"min": "one", "max": 2},
		"1-2",
	} {
		_, ok = ParseRange(bad)
		assert.False(t, ok, "%v", bad)
	}
}

func TestParseMarkovModel_Valid(t *testing.T) {
	model, ge := ParseMarkovModel(endModel())
	require.Nil(t, ge)
	assert.Equal(t, 1.0, model.DefaultTemperature)
	assert.True(t, model.IsEndToken("<END>"))
	assert.False(t, model.IsEndToken("a"))
}

func TestParseMarkovModel_ValidationCodes(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m map[string]any)
		code   errors.Code
	}{
		{
			name: "negative weight",
			mutate: func(m map[string]any) {
				m["transitions"] = map[string]any{"a": []any{map[string]any{"token": "<END>", "weight": -1}}}
			},
			code: errors.CodeInvalidTransitionWeightValue,
		},
		{
			name: "non numeric weight",
			mutate: func(m map[string]any) {
				m["transitions"] = map[string]any{"a": []any{map[string]any{"token": "<END>", "weight": "heavy"}}}
			},
			code: errors.CodeInvalidTransitionWeightValue,
		},
		{
			name: "zero transition weight",
			mutate: func(m map[string]any) {
				m["transitions"] = map[string]any{"a": []any{
					map[string]any{"token": "<END>", "weight": 1},
					map[string]any{"token": "a", "weight": 0},
				}}
			},
			code: errors.CodeInvalidTransitionWeightValue,
		},
		{
			name:   "zero start weight",
			mutate: func(m map[string]any) { m["start_tokens"] = []any{map[string]any{"token": "a", "weight": 0}} },
			code:   errors.CodeInvalidTransitionWeightValue,
		},
		{
			name:   "empty start list",
			mutate: func(m map[string]any) { m["start_tokens"] = []any{} },
			code:   errors.CodeNonPositiveWeightSum,
		},
		{
			name: "undefined target",
			mutate: func(m map[string]any) {
				m["transitions"] = map[string]any{"a": []any{map[string]any{"token": "b", "weight": 1}}}
			},
			code: errors.CodeUnknownTokenReference,
		},
		{
			name:   "undefined start",
			mutate: func(m map[string]any) { m["start_tokens"] = []any{"z"} },
			code:   errors.CodeUnknownTokenReference,
		},
		{
			name:   "zero default temperature",
			mutate: func(m map[string]any) { m["default_temperature"] = 0 },
			code:   errors.CodeInvalidTemperature,
		},
		{
			name:   "negative token temperature",
			mutate: func(m map[string]any) { m["token_temperatures"] = map[string]any{"a": -0.5} },
			code:   errors.CodeInvalidTemperature,
		},
		{
			name: "end unreachable",
			mutate: func(m map[string]any) {
				m["transitions"] = map[string]any{"a": []any{map[string]any{"token": "a", "weight": 1}}}
			},
			code: errors.CodeUnreachableEndToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := endModel()
			tt.mutate(raw)
			_, ge := ParseMarkovModel(raw)
			require.NotNil(t, ge)
			assert.Equal(t, tt.code, ge.Code)
		})
	}
}

func TestParseMarkovModel_BlockErrorsReportedInOrder(t *testing.T) {
	for i := 0; i < 20; i++ {
		raw := endModel()
		raw["transitions"] = map[string]any{
			"zeta":  "not a list",
			"alpha": "not a list",
			"mid":   "not a list",
		}
		_, ge := ParseMarkovModel(raw)
		require.NotNil(t, ge)
		assert.Equal(t, errors.CodeInvalidResource, ge.Code)
		assert.Equal(t, "transitions.alpha", ge.Details["field"])
	}
}

func TestResolve(t *testing.T) {
	lib, err := NewLibrary()
	require.NoError(t, err)
	require.NoError(t, lib.Add(&WordList{Name: "metals", Entries: []WordEntry{{Value: "iron", Weight: 1}}}))

	list, ge := ResolveWordList(lib, "metals")
	require.Nil(t, ge)
	assert.Equal(t, "metals", list.Name)

	_, ge = ResolveWordList(lib, "missing")
	require.NotNil(t, ge)
	assert.Equal(t, errors.CodeMissingResource, ge.Code)

	_, ge = ResolveSyllableSet(lib, "metals")
	require.NotNil(t, ge)
	assert.Equal(t, errors.CodeInvalidResourceType, ge.Code)

	_, ge = ResolveWordList(nil, "metals")
	require.NotNil(t, ge)
	assert.Equal(t, errors.CodeMissingResource, ge.Code)

	_, ge = ResolveWordList(lib, 42)
	require.NotNil(t, ge)
	assert.Equal(t, errors.CodeInvalidResourceType, ge.Code)

	inline, ge := ResolveWordList(nil, map[string]any{"entries": []any{"a"}})
	require.Nil(t, ge)
	assert.Len(t, inline.Entries, 1)

	model, ge := ResolveMarkovModel(nil, endModel())
	require.Nil(t, ge)
	assert.Len(t, model.States, 2)
}

func TestLibrary_LoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "metals.json"),
		[]byte(`{"type":"wordlist","entries":["iron","gold"]}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "elven.yaml"),
		[]byte("type: syllable_set\nname: elven\nprefixes: [ae]\nmiddles: [la]\nsuffixes: [wen]\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	lib, err := NewLibrary(WithCacheSize(8))
	require.NoError(t, err)

	n, err := lib.LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"elven", "metals"}, lib.Names())

	asset, ok := lib.Resolve("elven")
	require.True(t, ok)
	assert.Equal(t, KindSyllableSet, asset.AssetKind())

	_, err = lib.LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, int64(2), lib.CacheStats().Hits(), "unchanged files come from the cache")
}

func TestLibrary_LoadDirRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("type: spreadsheet\n"), 0o644))

	lib, err := NewLibrary()
	require.NoError(t, err)

	_, err = lib.LoadDir(dir)
	require.Error(t, err)
	assert.True(t, errors.IsResource(err))
}

func TestLibrary_AddRequiresName(t *testing.T) {
	lib, err := NewLibrary()
	require.NoError(t, err)
	assert.Error(t, lib.Add(&WordList{}))
}
