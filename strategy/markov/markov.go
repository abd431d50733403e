// Package markov samples strings token by token from a weighted transition
// table.
//
// Weights are temperature scaled before every draw: each weight w becomes
// w^(1/T). T is taken from the transition itself, else from a per-token
// override for the current token, else from the default temperature.
// T = 1 leaves the distribution unchanged, T > 1 flattens it and T < 1
// sharpens it toward the heaviest option.
package markov

import (
	"fmt"
	"math"
	"strings"

	"github.com/invisibleacropolis-ops/RNGEN-sub001/dataset"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/errors"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/schema"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/strategy"
)

// ID is the registered strategy id.
const ID = "markov"

// DefaultMaxLength is the token limit when max_length is unset.
const DefaultMaxLength = 24

// Strategy samples a Markov model.
type Strategy struct{}

// New creates a Markov chain strategy.
func New() *Strategy {
	return &Strategy{}
}

// Register adds the strategy to reg.
func Register(reg *strategy.Registry) error {
	return reg.Register(strategy.Registration{
		ID:          ID,
		Kind:        strategy.KindMarkov,
		Description: "Token-by-token sampling of a weighted Markov model",
		Version:     "1.0.0",
		Strategy:    New(),
	})
}

// Schema implements strategy.Strategy.
func (s *Strategy) Schema() schema.ConfigSchema {
	return schema.ConfigSchema{
		Required: []string{"strategy", "model"},
		Properties: map[string]schema.PropertySchema{
			"strategy": {Type: schema.TypeString, Description: "Strategy id", Category: "basic"},
			"model":    {Type: schema.TypeAny, Description: "Markov model asset name or inline object", Category: "basic"},
			"max_length": {
				Type:        schema.TypeInt,
				Description: "Maximum number of emitted tokens",
				Default:     DefaultMaxLength,
				Minimum:     schema.Min(1),
				Category:    "basic",
			},
			"default_temperature": {
				Type:        schema.TypeFloat,
				Description: "Overrides the model's default temperature",
			},
			"temperature_overrides": {
				Type:        schema.TypeObject,
				Description: "Per-token temperatures keyed by the current token",
			},
			"separator": {
				Type:        schema.TypeString,
				Description: "Inserted between emitted tokens",
				Default:     "",
			},
			"strict_max_length": {
				Type:        schema.TypeBool,
				Description: "Fail instead of stopping when max_length is reached",
				Default:     false,
			},
		},
	}
}

type config struct {
	modelRef     any
	maxLength    int
	defaultTemp  float64
	overrides    map[string]float64
	separator    string
	strictLength bool
}

func decode(cfg map[string]any) (config, *errors.GenerationError) {
	c := config{
		modelRef:     cfg["model"],
		maxLength:    schema.Int(cfg, "max_length", DefaultMaxLength),
		defaultTemp:  schema.Float(cfg, "default_temperature", 0),
		separator:    schema.String(cfg, "separator", ""),
		strictLength: schema.Bool(cfg, "strict_max_length", false),
	}
	if c.maxLength <= 0 {
		return c, errors.NewGenerationError(errors.CodeInvalidKeyType,
			fmt.Sprintf("max_length must be greater than zero, got %d", c.maxLength),
			map[string]any{"key": "max_length", "expected_type": "int>0"})
	}
	if _, set := cfg["default_temperature"]; set && !(c.defaultTemp > 0) {
		return c, errors.NewGenerationError(errors.CodeInvalidTemperature,
			fmt.Sprintf("default_temperature must be greater than zero, got %v", c.defaultTemp),
			map[string]any{"field": "default_temperature"})
	}
	if raw := schema.Map(cfg, "temperature_overrides"); raw != nil {
		c.overrides = make(map[string]float64, len(raw))
		for token, value := range raw {
			t, ok := schema.ToFloat(value)
			if !ok || !(t > 0) || math.IsInf(t, 0) {
				return c, errors.NewGenerationError(errors.CodeInvalidTemperature,
					fmt.Sprintf("temperature override for %q must be a number greater than zero", token),
					map[string]any{"field": "temperature_overrides", "token": token})
			}
			c.overrides[token] = t
		}
	}
	return c, nil
}

// sampler holds the resolved temperatures for one call.
type sampler struct {
	model       *dataset.MarkovModel
	defaultTemp float64
	overrides   map[string]float64
}

func (sm *sampler) temperature(from string, tr dataset.Transition) float64 {
	if tr.Temperature > 0 {
		return tr.Temperature
	}
	if t, ok := sm.overrides[from]; ok {
		return t
	}
	if t, ok := sm.model.TokenTemperatures[from]; ok {
		return t
	}
	return sm.defaultTemp
}

// scale raises w/peak to 1/t so results stay in (0, 1] at any temperature.
// Zero weights stay zero.
func scale(w, peak, t float64) float64 {
	if w <= 0 || peak <= 0 {
		return 0
	}
	if t == 1 {
		return w
	}
	return math.Pow(w/peak, 1/t)
}

func peakWeight[T any](items []T, weight func(T) float64) float64 {
	peak := 0.0
	for _, it := range items {
		peak = max(peak, weight(it))
	}
	return peak
}

// Generate implements strategy.Strategy.
func (s *Strategy) Generate(req *strategy.Request) (string, *errors.GenerationError) {
	cfg, ge := decode(req.Config)
	if ge != nil {
		return "", ge
	}

	model, ge := dataset.ResolveMarkovModel(req.Resources, cfg.modelRef)
	if ge != nil {
		return "", ge
	}

	sm := &sampler{model: model, defaultTemp: model.DefaultTemperature, overrides: cfg.overrides}
	if cfg.defaultTemp > 0 {
		sm.defaultTemp = cfg.defaultTemp
	}

	startWeights := make([]float64, len(model.StartTokens))
	startPeak := peakWeight(model.StartTokens, func(st dataset.WeightedToken) float64 { return st.Weight })
	for i, st := range model.StartTokens {
		startWeights[i] = scale(st.Weight, startPeak, sm.defaultTemp)
	}
	current := model.StartTokens[req.Stream.Weighted(startWeights)].Token

	var tokens []string
	for !model.IsEndToken(current) {
		if len(tokens) >= cfg.maxLength {
			if cfg.strictLength {
				return "", errors.NewGenerationError(errors.CodeMaxLengthExceeded,
					fmt.Sprintf("no end token drawn within %d tokens", cfg.maxLength),
					map[string]any{"max_length": cfg.maxLength, "partial": strings.Join(tokens, cfg.separator)})
			}
			break
		}
		tokens = append(tokens, current)

		block, ok := model.Transitions[current]
		if !ok {
			return "", errors.NewGenerationError(errors.CodeMissingTransitionForToken,
				fmt.Sprintf("token %q has no transition block", current),
				map[string]any{"token": current})
		}
		if len(block) == 0 {
			return "", errors.NewGenerationError(errors.CodeEmptyTransitionBlock,
				fmt.Sprintf("token %q has an empty transition block", current),
				map[string]any{"token": current})
		}

		weights := make([]float64, len(block))
		peak := peakWeight(block, func(tr dataset.Transition) float64 { return tr.Weight })
		for i, tr := range block {
			weights[i] = scale(tr.Weight, peak, sm.temperature(current, tr))
		}
		current = block[req.Stream.Weighted(weights)].Token
	}

	return strings.Join(tokens, cfg.separator), nil
}
