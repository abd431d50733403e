// Package wordlist implements uniform or weighted selection from one or more
// word lists.
package wordlist

import (
	"fmt"
	"strings"

	"github.com/invisibleacropolis-ops/RNGEN-sub001/dataset"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/errors"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/schema"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/strategy"
)

// ID is the registered strategy id.
const ID = "wordlist"

// Strategy draws entries from the combined pool of its sources.
type Strategy struct{}

// New creates a wordlist strategy.
func New() *Strategy {
	return &Strategy{}
}

// Register adds the strategy to reg.
func Register(reg *strategy.Registry) error {
	return reg.Register(strategy.Registration{
		ID:          ID,
		Kind:        strategy.KindWordlist,
		Description: "Uniform or weighted selection from curated word lists",
		Version:     "1.0.0",
		Strategy:    New(),
	})
}

// Schema implements strategy.Strategy.
func (s *Strategy) Schema() schema.ConfigSchema {
	return schema.ConfigSchema{
		Required: []string{"strategy", "sources"},
		Properties: map[string]schema.PropertySchema{
			"strategy": {Type: schema.TypeString, Description: "Strategy id", Category: "basic"},
			"sources": {
				Type:        schema.TypeArray,
				Description: "Word list asset names or inline word list objects",
				Category:    "basic",
			},
			"use_weights": {
				Type:        schema.TypeBool,
				Description: "Draw proportionally to entry weights",
				Default:     false,
				Category:    "basic",
			},
			"delimiter": {
				Type:        schema.TypeString,
				Description: "Separator placed between multiple draws",
				Default:     " ",
			},
			"count": {
				Type:        schema.TypeInt,
				Description: "Number of entries drawn",
				Default:     1,
				Minimum:     schema.Min(1),
			},
		},
	}
}

type config struct {
	sources    []any
	useWeights bool
	delimiter  string
	count      int
}

func decode(cfg map[string]any) config {
	return config{
		sources:    schema.Slice(cfg, "sources"),
		useWeights: schema.Bool(cfg, "use_weights", false),
		delimiter:  schema.String(cfg, "delimiter", " "),
		count:      schema.Int(cfg, "count", 1),
	}
}

// Generate implements strategy.Strategy.
func (s *Strategy) Generate(req *strategy.Request) (string, *errors.GenerationError) {
	cfg := decode(req.Config)
	if cfg.count < 1 {
		return "", errors.NewGenerationError(errors.CodeInvalidKeyType,
			fmt.Sprintf("count must be at least 1, got %d", cfg.count),
			map[string]any{"key": "count", "expected_type": "int>=1"})
	}
	if len(cfg.sources) == 0 {
		return "", errors.NewGenerationError(errors.CodeWordlistsMissing,
			"at least one word list source is required", nil)
	}

	var pool []dataset.WordEntry
	for i, ref := range cfg.sources {
		list, ge := dataset.ResolveWordList(req.Resources, ref)
		if ge != nil {
			return "", ge.With("source_index", i)
		}
		pool = append(pool, list.Entries...)
	}
	if len(pool) == 0 {
		return "", errors.NewGenerationError(errors.CodeWordlistsNoSelection,
			"the configured word lists contain no entries",
			map[string]any{"sources": len(cfg.sources)})
	}

	var weights []float64
	if cfg.useWeights {
		weights = make([]float64, len(pool))
		for i, entry := range pool {
			weights[i] = entry.Weight
		}
	}

	picks := make([]string, cfg.count)
	for i := range picks {
		if weights != nil {
			picks[i] = pool[req.Stream.Weighted(weights)].Value
		} else {
			picks[i] = pool[req.Stream.IntN(len(pool))].Value
		}
	}
	return strings.Join(picks, cfg.delimiter), nil
}
