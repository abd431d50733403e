package markov

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invisibleacropolis-ops/RNGEN-sub001/errors"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/strategy"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/stream"
)

func singleStepModel() map[string]any {
	return map[string]any{
		"states":       []any{"a", "<END>"},
		"transitions":  map[string]any{"a": []any{map[string]any{"token": "<END>", "weight": 1}}},
		"start_tokens": []any{map[string]any{"token": "a", "weight": 1}},
		"end_tokens":   []any{"<END>"},
	}
}

// loopModel emits "x" until it draws the end token.
func loopModel(stay, leave float64) map[string]any {
	return map[string]any{
		"states": []any{"x", "y", "<END>"},
		"transitions": map[string]any{
			"x": []any{
				map[string]any{"token": "x", "weight": stay},
				map[string]any{"token": "<END>", "weight": leave},
			},
		},
		"start_tokens": []any{"x"},
		"end_tokens":   []any{"<END>"},
	}
}

func generate(cfg map[string]any, seed int64) (string, *errors.GenerationError) {
	cfg["strategy"] = ID
	return New().Generate(&strategy.Request{Config: cfg, Stream: stream.Derive(seed, []string{ID})})
}

func TestGenerate_SingleStepAlwaysTerminates(t *testing.T) {
	for seed := range int64(200) {
		out, ge := generate(map[string]any{"model": singleStepModel()}, seed)
		require.Nil(t, ge)
		assert.Equal(t, "a", out)
	}
}

func TestGenerate_MaxLengthSoftStop(t *testing.T) {
	out, ge := generate(map[string]any{"model": loopModel(1, 0.0001), "max_length": 5}, 1)
	require.Nil(t, ge)
	assert.LessOrEqual(t, len(out), 5)
}

func TestGenerate_StrictMaxLength(t *testing.T) {
	_, ge := generate(map[string]any{
		"model":             loopModel(1, 0.0000001),
		"max_length":        3,
		"strict_max_length": true,
	}, 1)
	require.NotNil(t, ge)
	assert.Equal(t, errors.CodeMaxLengthExceeded, ge.Code)
}

func TestGenerate_Separator(t *testing.T) {
	model := map[string]any{
		"states": []any{"a", "b", "<END>"},
		"transitions": map[string]any{
			"a": []any{map[string]any{"token": "b", "weight": 1}},
			"b": []any{map[string]any{"token": "<END>", "weight": 1}},
		},
		"start_tokens": []any{"a"},
		"end_tokens":   []any{"<END>"},
	}
	out, ge := generate(map[string]any{"model": model, "separator": " "}, 1)
	require.Nil(t, ge)
	assert.Equal(t, "a b", out)
}

func TestGenerate_Deterministic(t *testing.T) {
	first, ge := generate(map[string]any{"model": loopModel(1, 1)}, 77)
	require.Nil(t, ge)
	second, ge := generate(map[string]any{"model": loopModel(1, 1)}, 77)
	require.Nil(t, ge)
	assert.Equal(t, first, second)
}

func meanLength(t *testing.T, cfg func() map[string]any) float64 {
	t.Helper()
	total := 0
	const n = 2000
	for seed := range int64(n) {
		out, ge := generate(cfg(), seed)
		require.Nil(t, ge)
		total += len(out)
	}
	return float64(total) / n
}

func TestGenerate_TemperatureScaling(t *testing.T) {
	// With stay=9, leave=1 the chain stays 90% of the time. A high
	// temperature flattens toward 50/50, so chains get shorter.
	cold := meanLength(t, func() map[string]any {
		return map[string]any{"model": loopModel(9, 1), "max_length": 100}
	})
	hot := meanLength(t, func() map[string]any {
		return map[string]any{"model": loopModel(9, 1), "max_length": 100, "default_temperature": 50.0}
	})
	assert.Greater(t, cold, hot)

	override := meanLength(t, func() map[string]any {
		return map[string]any{
			"model":                 loopModel(9, 1),
			"max_length":            100,
			"temperature_overrides": map[string]any{"x": 50.0},
		}
	})
	assert.InDelta(t, hot, override, 0.5, "per-token override applies to the block of x")
}

func TestGenerate_LowTemperatureFavorsHeaviest(t *testing.T) {
	model := map[string]any{
		"states": []any{"a", "heavy", "light", "<END>"},
		"transitions": map[string]any{
			"a": []any{
				map[string]any{"token": "heavy", "weight": 3},
				map[string]any{"token": "light", "weight": 1},
			},
			"heavy": []any{map[string]any{"token": "<END>", "weight": 1}},
			"light": []any{map[string]any{"token": "<END>", "weight": 1}},
		},
		"start_tokens": []any{"a"},
		"end_tokens":   []any{"<END>"},
	}
	for seed := range int64(200) {
		out, ge := generate(map[string]any{"model": model, "default_temperature": 0.001}, seed)
		require.Nil(t, ge, "seed %d", seed)
		assert.Equal(t, "aheavy", out, "seed %d", seed)
	}
}

func TestGenerate_TransitionTemperatureWins(t *testing.T) {
	model := loopModel(9, 1)
	model["transitions"] = map[string]any{
		"x": []any{
			map[string]any{"token": "x", "weight": 9, "temperature": 1.0},
			map[string]any{"token": "<END>", "weight": 1, "temperature": 1.0},
		},
	}
	pinned := meanLength(t, func() map[string]any {
		return map[string]any{"model": model, "max_length": 100, "default_temperature": 50.0}
	})
	plain := meanLength(t, func() map[string]any {
		return map[string]any{"model": loopModel(9, 1), "max_length": 100}
	})
	assert.InDelta(t, plain, pinned, 0.5)
}

func TestGenerate_Errors(t *testing.T) {
	missingBlock := map[string]any{
		"states": []any{"a", "b", "<END>"},
		"transitions": map[string]any{
			"a": []any{map[string]any{"token": "<END>", "weight": 1}},
		},
		"start_tokens": []any{map[string]any{"token": "a", "weight": 1}, map[string]any{"token": "b", "weight": 1000}},
		"end_tokens":   []any{"<END>"},
	}
	emptyBlock := map[string]any{
		"states": []any{"a", "b", "<END>"},
		"transitions": map[string]any{
			"a": []any{map[string]any{"token": "<END>", "weight": 1}},
			"b": []any{},
		},
		"start_tokens": []any{map[string]any{"token": "a", "weight": 1}, map[string]any{"token": "b", "weight": 1000}},
		"end_tokens":   []any{"<END>"},
	}
	badWeight := singleStepModel()
	badWeight["transitions"] = map[string]any{"a": []any{map[string]any{"token": "<END>", "weight": -2}}}

	tests := []struct {
		name string
		cfg  map[string]any
		code errors.Code
	}{
		{"missing block", map[string]any{"model": missingBlock}, errors.CodeMissingTransitionForToken},
		{"empty block", map[string]any{"model": emptyBlock}, errors.CodeEmptyTransitionBlock},
		{"invalid weight", map[string]any{"model": badWeight}, errors.CodeInvalidTransitionWeightValue},
		{"zero temperature", map[string]any{"model": singleStepModel(), "default_temperature": 0.0}, errors.CodeInvalidTemperature},
		{"bad override", map[string]any{"model": singleStepModel(), "temperature_overrides": map[string]any{"a": -1}}, errors.CodeInvalidTemperature},
		{"zero max length", map[string]any{"model": singleStepModel(), "max_length": 0}, errors.CodeInvalidKeyType},
		{"unknown model", map[string]any{"model": "names"}, errors.CodeMissingResource},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ge := generate(tt.cfg, 1)
			require.NotNil(t, ge)
			assert.Equal(t, tt.code, ge.Code)
		})
	}
}
