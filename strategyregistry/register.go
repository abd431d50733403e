// Package strategyregistry registers the built-in generation strategies.
package strategyregistry

import (
	"errors"
	"fmt"

	pkgerrors "github.com/invisibleacropolis-ops/RNGEN-sub001/errors"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/strategy"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/strategy/hybrid"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/strategy/markov"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/strategy/syllable"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/strategy/template"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/strategy/wordlist"
)

// Register registers every built-in strategy kind with the provided registry:
//   - wordlist (uniform or weighted word list selection)
//   - syllable (prefix/middle/suffix chains)
//   - markov (weighted transition table sampling)
//   - template (recursive [token] and $alias expansion)
//   - hybrid (ordered aliased pipelines)
func Register(registry *strategy.Registry) error {
	// Nil registry is a programming error (fatal), not invalid input
	if registry == nil {
		return pkgerrors.WrapFatal(
			errors.New("registry cannot be nil"),
			"StrategyRegistry", "Register", "registry validation")
	}

	for _, kind := range strategy.Kinds() {
		if err := registerKind(registry, kind); err != nil {
			return pkgerrors.WrapInvalid(err, "StrategyRegistry", "Register",
				fmt.Sprintf("%s strategy registration", kind))
		}
	}
	return nil
}

func registerKind(registry *strategy.Registry, kind strategy.Kind) error {
	switch kind {
	case strategy.KindWordlist:
		return wordlist.Register(registry)
	case strategy.KindSyllable:
		return syllable.Register(registry)
	case strategy.KindMarkov:
		return markov.Register(registry)
	case strategy.KindTemplate:
		return template.Register(registry)
	case strategy.KindHybrid:
		return hybrid.Register(registry)
	}
	return fmt.Errorf("%w: no implementation for strategy kind %q", pkgerrors.ErrInvalidConfig, kind)
}

// NewRegistry returns a registry with every built-in strategy registered.
func NewRegistry() (*strategy.Registry, error) {
	registry := strategy.NewRegistry()
	if err := Register(registry); err != nil {
		return nil, err
	}
	return registry, nil
}
