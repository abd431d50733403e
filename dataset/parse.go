package dataset

import (
	"fmt"
	"math"

	"github.com/invisibleacropolis-ops/RNGEN-sub001/errors"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/schema"
)

func invalidResource(name, field, reason string) *errors.GenerationError {
	return errors.NewGenerationError(errors.CodeInvalidResource,
		fmt.Sprintf("asset %q: %s: %s", name, field, reason),
		map[string]any{"asset": name, "field": field})
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ParseWordList builds a WordList from its map form:
//
//	{"name": "metals", "entries": ["iron", {"value": "gold", "weight": 3}]}
//
// A parallel "weights" array may be given instead of per-entry weights.
// Entries without a weight default to 1.
func ParseWordList(raw map[string]any) (*WordList, *errors.GenerationError) {
	name := schema.String(raw, "name", "")
	items, ok := schema.AsSlice(raw["entries"])
	if !ok {
		if _, present := raw["entries"]; present {
			return nil, invalidResource(name, "entries", "must be an array")
		}
		items = nil
	}

	var weights []any
	if w, present := raw["weights"]; present {
		if weights, ok = schema.AsSlice(w); !ok {
			return nil, invalidResource(name, "weights", "must be an array")
		}
		if len(weights) != len(items) {
			return nil, invalidResource(name, "weights", "length must match entries")
		}
	}

	list := &WordList{Name: name, Entries: make([]WordEntry, 0, len(items))}
	for i, item := range items {
		entry := WordEntry{Weight: 1}
		switch v := item.(type) {
		case string:
			entry.Value = v
		default:
			m, isMap := schema.AsMap(item)
			if !isMap {
				return nil, invalidResource(name, fmt.Sprintf("entries[%d]", i), "must be a string or object")
			}
			entry.Value = schema.String(m, "value", schema.String(m, "word", ""))
			if w, present := m["weight"]; present {
				f, numeric := schema.ToFloat(w)
				if !numeric {
					return nil, invalidResource(name, fmt.Sprintf("entries[%d].weight", i), "must be a number")
				}
				entry.Weight = f
			}
		}
		if weights != nil {
			f, numeric := schema.ToFloat(weights[i])
			if !numeric {
				return nil, invalidResource(name, fmt.Sprintf("weights[%d]", i), "must be a number")
			}
			entry.Weight = f
		}
		if !finite(entry.Weight) || entry.Weight < 0 {
			return nil, invalidResource(name, fmt.Sprintf("entries[%d].weight", i), "must be a non-negative number")
		}
		list.Entries = append(list.Entries, entry)
	}
	return list, nil
}

func parseStrings(name, field string, value any) ([]string, *errors.GenerationError) {
	if value == nil {
		return nil, nil
	}
	items, ok := schema.AsSlice(value)
	if !ok {
		return nil, invalidResource(name, field, "must be an array of strings")
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, isString := item.(string)
		if !isString {
			return nil, invalidResource(name, fmt.Sprintf("%s[%d]", field, i), "must be a string")
		}
		out = append(out, s)
	}
	return out, nil
}

// ParseRange reads {min, max} or [min, max]. Both bounds must be integral.
func ParseRange(value any) (Range, bool) {
	var lo, hi any
	if m, ok := schema.AsMap(value); ok {
		lo, hi = m["min"], m["max"]
	} else if s, ok := schema.AsSlice(value); ok && len(s) == 2 {
		lo, hi = s[0], s[1]
	} else {
		return Range{}, false
	}

	lower, okMin := integral(lo)
	upper, okMax := integral(hi)
	if !okMin || !okMax {
		return Range{}, false
	}
	return Range{Min: lower, Max: upper}, true
}

func integral(value any) (int, bool) {
	f, ok := schema.ToFloat(value)
	if !ok || !finite(f) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// ParseSyllableSet builds a SyllableSet from its map form with "prefixes",
// "middles", "suffixes" and an optional "middle_range".
func ParseSyllableSet(raw map[string]any) (*SyllableSet, *errors.GenerationError) {
	name := schema.String(raw, "name", "")
	set := &SyllableSet{Name: name}

	var ge *errors.GenerationError
	if set.Prefixes, ge = parseStrings(name, "prefixes", raw["prefixes"]); ge != nil {
		return nil, ge
	}
	if set.Middles, ge = parseStrings(name, "middles", raw["middles"]); ge != nil {
		return nil, ge
	}
	if set.Suffixes, ge = parseStrings(name, "suffixes", raw["suffixes"]); ge != nil {
		return nil, ge
	}

	if v, present := raw["middle_range"]; present && v != nil {
		r, ok := ParseRange(v)
		if !ok {
			return nil, errors.NewGenerationError(errors.CodeInvalidMiddleRange,
				fmt.Sprintf("asset %q: middle_range must be {min, max} with integer bounds", name),
				map[string]any{"asset": name, "middle_range": fmt.Sprint(v)})
		}
		if r.Min < 0 || r.Min > r.Max {
			return nil, errors.NewGenerationError(errors.CodeInvalidMiddleRange,
				fmt.Sprintf("asset %q: middle_range min %d and max %d must satisfy 0 <= min <= max", name, r.Min, r.Max),
				map[string]any{"asset": name, "min": r.Min, "max": r.Max})
		}
		set.MiddleRange = &r
	}
	return set, nil
}

// ParseMarkovModel builds a MarkovModel from its map form and validates it.
//
//	{
//	  "states": ["a", "<END>"],
//	  "transitions": {"a": [{"token": "<END>", "weight": 1}]},
//	  "start_tokens": [{"token": "a", "weight": 1}],
//	  "end_tokens": ["<END>"],
//	  "default_temperature": 1.0
//	}
//
// Start tokens may also be given as bare strings with weight 1.
func ParseMarkovModel(raw map[string]any) (*MarkovModel, *errors.GenerationError) {
	name := schema.String(raw, "name", "")
	model := &MarkovModel{
		Name:               name,
		Transitions:        map[string][]Transition{},
		DefaultTemperature: 1.0,
	}

	var ge *errors.GenerationError
	if model.States, ge = parseStrings(name, "states", raw["states"]); ge != nil {
		return nil, ge
	}
	if model.EndTokens, ge = parseStrings(name, "end_tokens", raw["end_tokens"]); ge != nil {
		return nil, ge
	}

	if v, present := raw["default_temperature"]; present {
		t, ok := schema.ToFloat(v)
		if !ok {
			return nil, invalidResource(name, "default_temperature", "must be a number")
		}
		model.DefaultTemperature = t
	}

	if v, present := raw["token_temperatures"]; present {
		m, ok := schema.AsMap(v)
		if !ok {
			return nil, invalidResource(name, "token_temperatures", "must be an object")
		}
		model.TokenTemperatures = make(map[string]float64, len(m))
		for token, tv := range m {
			t, numeric := schema.ToFloat(tv)
			if !numeric {
				return nil, invalidResource(name, "token_temperatures."+token, "must be a number")
			}
			model.TokenTemperatures[token] = t
		}
	}

	starts, ok := schema.AsSlice(raw["start_tokens"])
	if !ok && raw["start_tokens"] != nil {
		return nil, invalidResource(name, "start_tokens", "must be an array")
	}
	for i, item := range starts {
		wt := WeightedToken{Weight: 1}
		if s, isString := item.(string); isString {
			wt.Token = s
		} else {
			m, isMap := schema.AsMap(item)
			if !isMap {
				return nil, invalidResource(name, fmt.Sprintf("start_tokens[%d]", i), "must be a string or object")
			}
			wt.Token = schema.String(m, "token", "")
			if w, present := m["weight"]; present {
				f, numeric := schema.ToFloat(w)
				if !numeric {
					return nil, weightValueError(name, "start_tokens", wt.Token, w)
				}
				wt.Weight = f
			}
		}
		model.StartTokens = append(model.StartTokens, wt)
	}

	if v, present := raw["transitions"]; present {
		blocks, isMap := schema.AsMap(v)
		if !isMap {
			return nil, invalidResource(name, "transitions", "must be an object")
		}
		for _, from := range sortedKeys(blocks) {
			items, isSlice := schema.AsSlice(blocks[from])
			if !isSlice {
				return nil, invalidResource(name, "transitions."+from, "must be an array")
			}
			block := make([]Transition, 0, len(items))
			for i, item := range items {
				m, isItemMap := schema.AsMap(item)
				if !isItemMap {
					return nil, invalidResource(name, fmt.Sprintf("transitions.%s[%d]", from, i), "must be an object")
				}
				tr := Transition{Token: schema.String(m, "token", ""), Weight: 1}
				if w, present := m["weight"]; present {
					f, numeric := schema.ToFloat(w)
					if !numeric {
						return nil, weightValueError(name, from, tr.Token, w)
					}
					tr.Weight = f
				}
				if tv, present := m["temperature"]; present {
					t, numeric := schema.ToFloat(tv)
					if !numeric || t <= 0 {
						return nil, temperatureError(name, fmt.Sprintf("transitions.%s[%d].temperature", from, i), tv)
					}
					tr.Temperature = t
				}
				block = append(block, tr)
			}
			model.Transitions[from] = block
		}
	}

	if ge := model.Validate(); ge != nil {
		return nil, ge
	}
	return model, nil
}
