// Package syllable assembles names from prefix, middle and suffix fragments.
package syllable

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/invisibleacropolis-ops/RNGEN-sub001/dataset"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/errors"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/schema"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/strategy"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/stream"
)

// ID is the registered strategy id.
const ID = "syllable"

// DefaultMaxAttempts bounds the retries spent reaching min_length.
const DefaultMaxAttempts = 10

// Strategy draws one prefix, a run of middles and one suffix.
type Strategy struct{}

// New creates a syllable chain strategy.
func New() *Strategy {
	return &Strategy{}
}

// Register adds the strategy to reg.
func Register(reg *strategy.Registry) error {
	return reg.Register(strategy.Registration{
		ID:          ID,
		Kind:        strategy.KindSyllable,
		Description: "Prefix, middle and suffix syllable chains",
		Version:     "1.0.0",
		Strategy:    New(),
	})
}

// Schema implements strategy.Strategy.
func (s *Strategy) Schema() schema.ConfigSchema {
	return schema.ConfigSchema{
		Required: []string{"strategy", "syllable_set"},
		Properties: map[string]schema.PropertySchema{
			"strategy":     {Type: schema.TypeString, Description: "Strategy id", Category: "basic"},
			"syllable_set": {Type: schema.TypeAny, Description: "Syllable set asset name or inline object", Category: "basic"},
			"require_middle": {
				Type:        schema.TypeBool,
				Description: "Always include at least one middle syllable",
				Default:     false,
				Category:    "basic",
			},
			"middle_syllables": {
				Type:        schema.TypeObject,
				Description: "Inclusive {min, max} count of middle syllables",
			},
			"min_length": {
				Type:        schema.TypeInt,
				Description: "Minimum result length in characters",
				Minimum:     schema.Min(0),
			},
			"max_attempts": {
				Type:        schema.TypeInt,
				Description: "Draws attempted before giving up on min_length",
				Default:     DefaultMaxAttempts,
				Minimum:     schema.Min(1),
			},
		},
	}
}

type config struct {
	setRef        any
	requireMiddle bool
	middles       *dataset.Range
	minLength     int
	maxAttempts   int
}

func decode(cfg map[string]any) (config, *errors.GenerationError) {
	c := config{
		setRef:        cfg["syllable_set"],
		requireMiddle: schema.Bool(cfg, "require_middle", false),
		minLength:     schema.Int(cfg, "min_length", 0),
		maxAttempts:   schema.Int(cfg, "max_attempts", DefaultMaxAttempts),
	}
	if c.maxAttempts < 1 {
		c.maxAttempts = 1
	}
	if raw, ok := cfg["middle_syllables"]; ok {
		r, valid := dataset.ParseRange(raw)
		if !valid {
			return c, errors.NewGenerationError(errors.CodeInvalidMiddleRange,
				"middle_syllables must provide integer min and max", nil)
		}
		c.middles = &r
	}
	return c, nil
}

// Generate implements strategy.Strategy.
func (s *Strategy) Generate(req *strategy.Request) (string, *errors.GenerationError) {
	cfg, ge := decode(req.Config)
	if ge != nil {
		return "", ge
	}

	set, ge := dataset.ResolveSyllableSet(req.Resources, cfg.setRef)
	if ge != nil {
		return "", ge
	}

	lo, hi := 0, 1
	switch {
	case cfg.middles != nil:
		lo, hi = cfg.middles.Min, cfg.middles.Max
	case set.MiddleRange != nil:
		lo, hi = set.MiddleRange.Min, set.MiddleRange.Max
	case len(set.Middles) == 0:
		hi = 0
	}
	if lo < 0 || lo > hi {
		return "", errors.NewGenerationError(errors.CodeInvalidMiddleRange,
			fmt.Sprintf("middle syllable range min %d and max %d must satisfy 0 <= min <= max", lo, hi),
			map[string]any{"min": lo, "max": hi})
	}
	if cfg.requireMiddle {
		lo = max(lo, 1)
		hi = max(hi, lo)
	}

	if len(set.Prefixes) == 0 || len(set.Suffixes) == 0 {
		pool := "prefixes"
		if len(set.Prefixes) > 0 {
			pool = "suffixes"
		}
		return "", errors.NewGenerationError(errors.CodeSyllablePoolEmpty,
			fmt.Sprintf("syllable set %q has no %s", set.Name, pool),
			map[string]any{"asset": set.Name, "pool": pool})
	}
	if len(set.Middles) == 0 && cfg.requireMiddle {
		return "", errors.NewGenerationError(errors.CodeMissingRequiredMiddles,
			fmt.Sprintf("syllable set %q has no middle syllables but require_middle is set", set.Name),
			map[string]any{"asset": set.Name})
	}

	var result string
	for attempt := 1; attempt <= cfg.maxAttempts; attempt++ {
		result, ge = assemble(req.Stream, set, lo, hi)
		if ge != nil {
			return "", ge
		}
		if utf8.RuneCountInString(result) >= cfg.minLength {
			return result, nil
		}
	}
	return "", errors.NewGenerationError(errors.CodeUnableToSatisfyMinLength,
		fmt.Sprintf("no result reached min_length %d after %d attempts", cfg.minLength, cfg.maxAttempts),
		map[string]any{"min_length": cfg.minLength, "attempts": cfg.maxAttempts, "last_result": result})
}

func assemble(s *stream.Stream, set *dataset.SyllableSet, lo, hi int) (string, *errors.GenerationError) {
	var b strings.Builder
	b.WriteString(set.Prefixes[s.IntN(len(set.Prefixes))])

	count := s.IntRange(lo, hi)
	if count > 0 && len(set.Middles) == 0 {
		return "", errors.NewGenerationError(errors.CodeMiddleSyllablesNotAvailable,
			fmt.Sprintf("%d middle syllables requested but syllable set %q has none", count, set.Name),
			map[string]any{"asset": set.Name, "requested": count})
	}
	for range count {
		b.WriteString(set.Middles[s.IntN(len(set.Middles))])
	}

	b.WriteString(set.Suffixes[s.IntN(len(set.Suffixes))])
	return b.String(), nil
}
