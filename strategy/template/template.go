// Package template expands template strings by substituting $alias values
// and recursively dispatching [token] sub-generators.
//
// Every [token] call runs on its own child stream: the first occurrence of a
// token uses path ++ [token], later occurrences path ++ [token, "#n"] where n
// counts the earlier occurrences. The result is bound as alias token for the
// rest of the template. Unresolved $alias references fail with
// missing_template_token.
package template

import (
	"fmt"
	"maps"
	"strconv"
	"strings"

	"github.com/invisibleacropolis-ops/RNGEN-sub001/errors"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/schema"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/strategy"
)

// ID is the registered strategy id.
const ID = "template"

// DefaultMaxDepth is the nesting limit when max_depth is unset.
const DefaultMaxDepth = 8

// Strategy expands template strings.
type Strategy struct{}

// New creates a template strategy.
func New() *Strategy {
	return &Strategy{}
}

// Register adds the strategy to reg.
func Register(reg *strategy.Registry) error {
	return reg.Register(strategy.Registration{
		ID:          ID,
		Kind:        strategy.KindTemplate,
		Description: "Recursive template expansion over sub-generators and aliases",
		Version:     "1.0.0",
		Strategy:    New(),
	})
}

// Schema implements strategy.Strategy.
func (s *Strategy) Schema() schema.ConfigSchema {
	return schema.ConfigSchema{
		Required: []string{"strategy", "template_string"},
		Properties: map[string]schema.PropertySchema{
			"strategy": {Type: schema.TypeString, Description: "Strategy id", Category: "basic"},
			"template_string": {
				Type:        schema.TypeString,
				Description: "Text with $alias references and [token] sub-generator calls",
				Category:    "basic",
			},
			"sub_generators": {
				Type:        schema.TypeObject,
				Description: "Nested configurations keyed by token name",
				Category:    "basic",
			},
			"max_depth": {
				Type:        schema.TypeInt,
				Description: "Maximum sub-generator nesting depth",
				Default:     DefaultMaxDepth,
				Minimum:     schema.Min(1),
			},
		},
	}
}

// Generate implements strategy.Strategy.
func (s *Strategy) Generate(req *strategy.Request) (string, *errors.GenerationError) {
	maxDepth := schema.Int(req.Config, "max_depth", DefaultMaxDepth)
	if maxDepth <= 0 {
		return "", errors.NewGenerationError(errors.CodeInvalidMaxDepth,
			fmt.Sprintf("max_depth must be greater than zero, got %d", maxDepth),
			map[string]any{"max_depth": maxDepth})
	}

	return Expand(req, Expansion{
		Template:      schema.String(req.Config, "template_string", ""),
		SubGenerators: schema.Map(req.Config, "sub_generators"),
		Aliases:       req.Aliases,
		Budget:        min(req.Remaining, maxDepth),
	})
}

// Expansion is the input of Expand.
type Expansion struct {
	Template      string
	SubGenerators map[string]any
	Aliases       map[string]string
	// Budget is how many levels of sub-generators may still be entered.
	Budget int
}

// Expand renders exp.Template. Sub-generators are dispatched through
// req.Dispatch on child streams of req.Stream. exp.Aliases is not modified.
func Expand(req *strategy.Request, exp Expansion) (string, *errors.GenerationError) {
	nodes, ge := parse(exp.Template)
	if ge != nil {
		return "", ge
	}

	env := maps.Clone(exp.Aliases)
	if env == nil {
		env = map[string]string{}
	}
	scoped := *req
	scoped.Remaining = exp.Budget

	seen := map[string]int{}
	var out strings.Builder
	for _, n := range nodes {
		switch n.kind {
		case nodeLiteral:
			out.WriteString(n.text)

		case nodeAlias:
			value, ok := env[n.text]
			if !ok {
				return "", errors.NewGenerationError(errors.CodeMissingTemplateToken,
					fmt.Sprintf("alias $%s is not bound", n.text),
					map[string]any{"token": n.text, "reference": "alias", "position": n.index})
			}
			out.WriteString(value)

		case nodeCall:
			sub, ok := exp.SubGenerators[n.text]
			if !ok {
				return "", errors.NewGenerationError(errors.CodeMissingTemplateToken,
					fmt.Sprintf("token [%s] has no sub-generator", n.text),
					map[string]any{"token": n.text, "reference": "sub_generator", "position": n.index})
			}
			if exp.Budget <= 0 {
				return "", errors.NewGenerationError(errors.CodeTemplateRecursionDepthExceeded,
					fmt.Sprintf("token [%s] exceeds the template nesting limit", n.text),
					map[string]any{"token": n.text, "path": req.Stream.PathString()})
			}

			segments := []string{n.text}
			if count := seen[n.text]; count > 0 {
				segments = append(segments, "#"+strconv.Itoa(count))
			}
			seen[n.text]++

			value, ge := scoped.Dispatch(sub, req.Stream.Child(segments...), maps.Clone(env))
			if ge != nil {
				return "", errors.Propagate(fmt.Sprintf("token [%s]", n.text), ge,
					map[string]any{"token": n.text})
			}
			env[n.text] = value
			out.WriteString(value)
		}
	}
	return out.String(), nil
}
