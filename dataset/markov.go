package dataset

import (
	"fmt"
	"slices"
	"sort"

	"github.com/invisibleacropolis-ops/RNGEN-sub001/errors"
)

func weightValueError(name, block, token string, value any) *errors.GenerationError {
	return errors.NewGenerationError(errors.CodeInvalidTransitionWeightValue,
		fmt.Sprintf("asset %q: weight %v for %q in %s must be a positive number", name, value, token, block),
		map[string]any{"asset": name, "block": block, "token": token, "weight": fmt.Sprint(value)})
}

func temperatureError(name, field string, value any) *errors.GenerationError {
	return errors.NewGenerationError(errors.CodeInvalidTemperature,
		fmt.Sprintf("asset %q: %s must be greater than zero, got %v", name, field, value),
		map[string]any{"asset": name, "field": field, "temperature": fmt.Sprint(value)})
}

func unknownToken(name, field, token string) *errors.GenerationError {
	return errors.NewGenerationError(errors.CodeUnknownTokenReference,
		fmt.Sprintf("asset %q: %s references undefined token %q", name, field, token),
		map[string]any{"asset": name, "field": field, "token": token})
}

// Validate checks the model before any sampling happens.
//
// Weights must be finite and positive, the start list must not be empty, every referenced token must be a
// declared state, temperatures must be positive, and at least one end token
// must be reachable from a start token.
func (m *MarkovModel) Validate() *errors.GenerationError {
	states := make(map[string]struct{}, len(m.States))
	for _, s := range m.States {
		states[s] = struct{}{}
	}
	known := func(token string) bool {
		_, ok := states[token]
		return ok
	}

	if !finite(m.DefaultTemperature) || m.DefaultTemperature <= 0 {
		return temperatureError(m.Name, "default_temperature", m.DefaultTemperature)
	}
	for _, token := range sortedKeys(m.TokenTemperatures) {
		t := m.TokenTemperatures[token]
		if !finite(t) || t <= 0 {
			return temperatureError(m.Name, "token_temperatures."+token, t)
		}
	}

	for _, end := range m.EndTokens {
		if !known(end) {
			return unknownToken(m.Name, "end_tokens", end)
		}
	}

	startSum := 0.0
	for _, st := range m.StartTokens {
		if !known(st.Token) {
			return unknownToken(m.Name, "start_tokens", st.Token)
		}
		if !finite(st.Weight) || st.Weight <= 0 {
			return weightValueError(m.Name, "start_tokens", st.Token, st.Weight)
		}
		startSum += st.Weight
	}
	if startSum <= 0 {
		return errors.NewGenerationError(errors.CodeNonPositiveWeightSum,
			fmt.Sprintf("asset %q: start_tokens weights must sum to a positive value", m.Name),
			map[string]any{"asset": m.Name, "block": "start_tokens", "sum": startSum})
	}

	for _, from := range sortedKeys(m.Transitions) {
		if !known(from) {
			return unknownToken(m.Name, "transitions", from)
		}
		block := m.Transitions[from]
		sum := 0.0
		for _, tr := range block {
			if !known(tr.Token) {
				return unknownToken(m.Name, "transitions."+from, tr.Token)
			}
			if !finite(tr.Weight) || tr.Weight <= 0 {
				return weightValueError(m.Name, from, tr.Token, tr.Weight)
			}
			if tr.Temperature < 0 || !finite(tr.Temperature) {
				return temperatureError(m.Name, "transitions."+from+".temperature", tr.Temperature)
			}
			sum += tr.Weight
		}
		// Empty blocks are reported while sampling, where the token is known.
		if len(block) > 0 && sum <= 0 {
			return errors.NewGenerationError(errors.CodeNonPositiveWeightSum,
				fmt.Sprintf("asset %q: transition weights for %q must sum to a positive value", m.Name, from),
				map[string]any{"asset": m.Name, "block": from, "sum": sum})
		}
	}

	if !m.endReachable() {
		return errors.NewGenerationError(errors.CodeUnreachableEndToken,
			fmt.Sprintf("asset %q: no end token is reachable from the start tokens", m.Name),
			map[string]any{"asset": m.Name, "end_tokens": slices.Clone(m.EndTokens)})
	}
	return nil
}

// endReachable walks positive-weight edges breadth first from the start tokens.
func (m *MarkovModel) endReachable() bool {
	visited := map[string]bool{}
	var queue []string
	for _, st := range m.StartTokens {
		if st.Weight > 0 && !visited[st.Token] {
			visited[st.Token] = true
			queue = append(queue, st.Token)
		}
	}
	for len(queue) > 0 {
		token := queue[0]
		queue = queue[1:]
		if m.IsEndToken(token) {
			return true
		}
		for _, tr := range m.Transitions[token] {
			if tr.Weight > 0 && !visited[tr.Token] {
				visited[tr.Token] = true
				queue = append(queue, tr.Token)
			}
		}
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
