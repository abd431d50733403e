package schema

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/invisibleacropolis-ops/RNGEN-sub001/errors"
)

// Validate checks config against cs and returns the first violation.
//
// Checks run in order and stop at the first failing stage:
//  1. config must be a map[string]any (invalid_config_type)
//  2. every required key must be present; all missing keys are reported
//     together in details.missing (missing_required_keys)
//  3. every declared key that is present must have its declared type
//     (invalid_key_type with details.key and details.expected_type)
//
// Unknown keys are allowed. Validate has no side effects and keeps no state,
// so it is safe to run on every call.
func Validate(config any, cs ConfigSchema) *errors.GenerationError {
	cfg, ok := AsMap(config)
	if !ok {
		return errors.NewGenerationError(errors.CodeInvalidConfigType,
			fmt.Sprintf("configuration must be a key-value map, got %T", config),
			map[string]any{"received_type": fmt.Sprintf("%T", config)})
	}

	var missing []string
	for _, key := range cs.Required {
		if _, exists := cfg[key]; !exists {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return errors.NewGenerationError(errors.CodeMissingRequiredKeys,
			fmt.Sprintf("missing required keys: %s", strings.Join(missing, ", ")),
			map[string]any{"missing": missing})
	}

	keys := make([]string, 0, len(cs.Properties))
	for key := range cs.Properties {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value, exists := cfg[key]
		if !exists {
			continue
		}
		prop := cs.Properties[key]
		if !matchesType(value, prop.Type) {
			return errors.NewGenerationError(errors.CodeInvalidKeyType,
				fmt.Sprintf("key %q must be of type %s, got %T", key, prop.Type, value),
				map[string]any{"key": key, "expected_type": prop.Type, "received_type": fmt.Sprintf("%T", value)})
		}
	}

	return nil
}

// matchesType checks if the value matches the expected type
func matchesType(value any, expected string) bool {
	switch expected {
	case TypeString:
		_, ok := value.(string)
		return ok
	case TypeInt:
		// JSON decoders produce float64; accept it when it is integral
		switch v := value.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32:
			return true
		case float64:
			return v == math.Trunc(v) && !math.IsInf(v, 0)
		case float32:
			return float64(v) == math.Trunc(float64(v))
		}
		return false
	case TypeFloat:
		_, ok := toFloat(value)
		return ok
	case TypeBool:
		_, ok := value.(bool)
		return ok
	case TypeArray:
		_, ok := AsSlice(value)
		return ok
	case TypeObject:
		_, ok := AsMap(value)
		return ok
	case TypeAny, "":
		return true
	}
	return false
}
