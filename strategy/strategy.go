// Package strategy defines the generation strategy abstraction and the
// registry that dispatches configurations to strategies.
//
// A strategy turns a validated configuration plus a derived stream into a
// string or a structured *errors.GenerationError. Composing strategies
// (template, hybrid) recurse through Request.Dispatch, which derives a child
// stream for each nested call and spends one unit of the recursion budget.
package strategy

import (
	"github.com/invisibleacropolis-ops/RNGEN-sub001/dataset"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/errors"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/schema"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/stream"
)

// Kind is the closed set of built-in strategy kinds.
type Kind string

// Strategy kinds
const (
	KindWordlist Kind = "wordlist"
	KindSyllable Kind = "syllable"
	KindMarkov   Kind = "markov"
	KindTemplate Kind = "template"
	KindHybrid   Kind = "hybrid"
)

// Kinds returns every built-in kind in registration order.
func Kinds() []Kind {
	return []Kind{KindWordlist, KindSyllable, KindMarkov, KindTemplate, KindHybrid}
}

// Strategy is implemented by every generation algorithm.
type Strategy interface {
	// Generate produces one string. The request config has already passed
	// schema validation against Schema().
	Generate(req *Request) (string, *errors.GenerationError)

	// Schema returns the configuration contract.
	Schema() schema.ConfigSchema
}

// Dispatcher routes a request to the strategy named by its config.
type Dispatcher interface {
	Dispatch(req *Request) (string, *errors.GenerationError)
}

// Request carries everything a strategy needs for one call.
type Request struct {
	// Config is the strategy configuration, including the "strategy" key.
	Config map[string]any

	// Stream is the call's derived stream. It is owned by this call only.
	Stream *stream.Stream

	// Aliases are values bound by an enclosing hybrid step or template.
	// Strategies must treat the map as read-only.
	Aliases map[string]string

	// Remaining is how many further nested dispatches are allowed.
	Remaining int

	// Resources resolves dataset assets referenced by name. May be nil.
	Resources dataset.Resolver

	// Dispatcher serves nested calls.
	Dispatcher Dispatcher
}

// StrategyID returns the "strategy" value of the config, or "".
func (r *Request) StrategyID() string {
	id, _ := r.Config["strategy"].(string)
	return id
}

func (r *Request) streamPath() string {
	if r.Stream == nil {
		return ""
	}
	return r.Stream.PathString()
}

// Dispatch runs config as a nested call on stream s with the given aliases,
// one level deeper than r.
func (r *Request) Dispatch(config any, s *stream.Stream, aliases map[string]string) (string, *errors.GenerationError) {
	cfg, ok := schema.AsMap(config)
	if !ok {
		return "", schema.Validate(config, schema.ConfigSchema{})
	}
	if r.Dispatcher == nil {
		return "", errors.Newf(errors.CodeUnknownStrategy, "no dispatcher available for nested configuration")
	}
	return r.Dispatcher.Dispatch(&Request{
		Config:     cfg,
		Stream:     s,
		Aliases:    aliases,
		Remaining:  r.Remaining - 1,
		Resources:  r.Resources,
		Dispatcher: r.Dispatcher,
	})
}
