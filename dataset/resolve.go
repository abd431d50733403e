package dataset

import (
	"fmt"

	"github.com/invisibleacropolis-ops/RNGEN-sub001/errors"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/schema"
)

// resolve turns a configuration reference into an asset of type T. The
// reference may be an asset name, an inline map, or an already built asset.
func resolve[T Asset](r Resolver, ref any, kind Kind, parse func(map[string]any) (T, *errors.GenerationError)) (T, *errors.GenerationError) {
	var zero T
	switch v := ref.(type) {
	case T:
		return v, nil
	case string:
		if r == nil {
			return zero, errors.NewGenerationError(errors.CodeMissingResource,
				fmt.Sprintf("%s %q not found: no dataset resolver configured", kind, v),
				map[string]any{"name": v, "expected_type": string(kind)})
		}
		asset, ok := r.Resolve(v)
		if !ok {
			return zero, errors.NewGenerationError(errors.CodeMissingResource,
				fmt.Sprintf("%s %q not found", kind, v),
				map[string]any{"name": v, "expected_type": string(kind)})
		}
		typed, ok := asset.(T)
		if !ok {
			return zero, errors.NewGenerationError(errors.CodeInvalidResourceType,
				fmt.Sprintf("asset %q is a %s, expected %s", v, asset.AssetKind(), kind),
				map[string]any{"name": v, "expected_type": string(kind), "received_type": string(asset.AssetKind())})
		}
		return typed, nil
	}

	if m, ok := schema.AsMap(ref); ok {
		return parse(m)
	}
	return zero, errors.NewGenerationError(errors.CodeInvalidResourceType,
		fmt.Sprintf("%s reference must be a name or an object, got %T", kind, ref),
		map[string]any{"expected_type": string(kind), "received_type": fmt.Sprintf("%T", ref)})
}

// ResolveWordList resolves a word list reference.
func ResolveWordList(r Resolver, ref any) (*WordList, *errors.GenerationError) {
	return resolve(r, ref, KindWordList, ParseWordList)
}

// ResolveSyllableSet resolves a syllable set reference.
func ResolveSyllableSet(r Resolver, ref any) (*SyllableSet, *errors.GenerationError) {
	return resolve(r, ref, KindSyllableSet, ParseSyllableSet)
}

// ResolveMarkovModel resolves a Markov model reference. Named models are
// re-validated on every call.
func ResolveMarkovModel(r Resolver, ref any) (*MarkovModel, *errors.GenerationError) {
	model, ge := resolve(r, ref, KindMarkovModel, ParseMarkovModel)
	if ge != nil {
		return nil, ge
	}
	if ge := model.Validate(); ge != nil {
		return nil, ge
	}
	return model, nil
}
