// Package hybrid runs ordered multi-step pipelines whose results are bound
// to aliases and optionally rendered through a closing template.
package hybrid

import (
	"fmt"
	"maps"
	"strconv"

	"github.com/invisibleacropolis-ops/RNGEN-sub001/errors"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/schema"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/strategy"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/strategy/template"
)

// ID is the registered strategy id.
const ID = "hybrid"

// Strategy executes pipeline steps strictly in order and stops at the first
// failure.
type Strategy struct{}

// New creates a hybrid strategy.
func New() *Strategy {
	return &Strategy{}
}

// Register adds the strategy to reg.
func Register(reg *strategy.Registry) error {
	return reg.Register(strategy.Registration{
		ID:          ID,
		Kind:        strategy.KindHybrid,
		Description: "Ordered pipeline of aliased steps with an optional closing template",
		Version:     "1.0.0",
		Strategy:    New(),
	})
}

// Schema implements strategy.Strategy.
func (s *Strategy) Schema() schema.ConfigSchema {
	return schema.ConfigSchema{
		Required: []string{"strategy", "steps"},
		Properties: map[string]schema.PropertySchema{
			"strategy": {Type: schema.TypeString, Description: "Strategy id", Category: "basic"},
			// steps is checked in Generate so a non-list reports invalid_steps_type
			"steps": {
				Type:        schema.TypeAny,
				Description: "Ordered list of {config, store_as} steps",
				Category:    "basic",
			},
			"template": {
				Type:        schema.TypeString,
				Description: "Closing template rendered over the step aliases",
				Category:    "basic",
			},
			"seed": {
				Type:        schema.TypeInt,
				Description: "Pipeline master seed; derived from the caller's stream when unset",
			},
			"sub_generators": {
				Type:        schema.TypeObject,
				Description: "Sub-generators available to the closing template",
			},
		},
	}
}

// step is one parsed pipeline entry.
type step struct {
	index   int
	alias   string
	config  map[string]any
	segment string
}

func parseSteps(raw any) ([]step, *errors.GenerationError) {
	items, ok := schema.AsSlice(raw)
	if !ok {
		return nil, errors.NewGenerationError(errors.CodeInvalidStepsType,
			fmt.Sprintf("steps must be a list, got %T", raw),
			map[string]any{"received_type": fmt.Sprintf("%T", raw)})
	}
	if len(items) == 0 {
		return nil, errors.NewGenerationError(errors.CodeEmptySteps, "steps must not be empty", nil)
	}

	steps := make([]step, 0, len(items))
	for i, item := range items {
		index := i + 1
		entry, ok := schema.AsMap(item)
		if !ok {
			return nil, errors.NewGenerationError(errors.CodeInvalidStepConfig,
				fmt.Sprintf("step %d must be an object, got %T", index, item),
				map[string]any{"index": index})
		}

		alias := ""
		if v, present := entry["store_as"]; present {
			s, isString := v.(string)
			if !isString {
				return nil, errors.NewGenerationError(errors.CodeInvalidStepConfig,
					fmt.Sprintf("step %d store_as must be a string", index),
					map[string]any{"index": index})
			}
			alias = s
		}

		// A step is either {config: {...}, store_as} or a flat config.
		cfg := entry
		if nested, present := entry["config"]; present {
			if cfg, ok = schema.AsMap(nested); !ok {
				return nil, errors.NewGenerationError(errors.CodeInvalidStepConfig,
					fmt.Sprintf("step %d config must be an object, got %T", index, nested),
					map[string]any{"index": index, "alias": alias})
			}
		}
		if id, isString := cfg["strategy"].(string); !isString || id == "" {
			return nil, errors.NewGenerationError(errors.CodeMissingStepStrategy,
				fmt.Sprintf("step %d does not name a strategy", index),
				map[string]any{"index": index, "alias": alias})
		}

		segment := alias
		if segment == "" {
			segment = "step_" + strconv.Itoa(index)
		}
		steps = append(steps, step{index: index, alias: alias, config: cfg, segment: segment})
	}
	return steps, nil
}

// Generate implements strategy.Strategy.
func (s *Strategy) Generate(req *strategy.Request) (string, *errors.GenerationError) {
	steps, ge := parseSteps(req.Config["steps"])
	if ge != nil {
		return "", ge
	}

	base := req.Stream
	if _, seeded := req.Config["seed"]; seeded {
		base = base.Rebase(schema.Int64(req.Config, "seed", 0))
	}

	aliases := maps.Clone(req.Aliases)
	if aliases == nil {
		aliases = map[string]string{}
	}

	var last string
	for _, st := range steps {
		value, ge := req.Dispatch(st.config, base.Child(st.segment), maps.Clone(aliases))
		if ge != nil {
			return "", errors.Nest(errors.CodeHybridStepError,
				fmt.Sprintf("step %d (%s) failed: %s", st.index, st.segment, ge.Message), ge,
				map[string]any{"index": st.index, "alias": st.alias})
		}
		if st.alias != "" {
			aliases[st.alias] = value
		}
		last = value
	}

	tmpl, hasTemplate := req.Config["template"].(string)
	if !hasTemplate {
		return last, nil
	}

	closing := *req
	closing.Stream = base.Child("template")
	return template.Expand(&closing, template.Expansion{
		Template:      tmpl,
		SubGenerators: schema.Map(req.Config, "sub_generators"),
		Aliases:       aliases,
		Budget:        req.Remaining,
	})
}
