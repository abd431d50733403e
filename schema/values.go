package schema

import (
	"reflect"
)

// AsMap converts the map shapes produced by JSON and YAML decoders into
// map[string]any. Maps with non-string keys are rejected.
func AsMap(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, true
	case map[string]string:
		out := make(map[string]any, len(v))
		for k, s := range v {
			out[k] = s
		}
		return out, true
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			key, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[key] = val
		}
		return out, true
	}
	return nil, false
}

// AsSlice converts any slice value into []any.
func AsSlice(value any) ([]any, bool) {
	if v, ok := value.([]any); ok {
		return v, true
	}
	if value == nil {
		return nil, false
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

// String returns cfg[key] as a string, or def when absent.
// Call only after Validate has accepted the type.
func String(cfg map[string]any, key, def string) string {
	if v, ok := cfg[key].(string); ok {
		return v
	}
	return def
}

// Int returns cfg[key] as an int, or def when absent.
func Int(cfg map[string]any, key string, def int) int {
	if v, ok := toFloat(cfg[key]); ok {
		return int(v)
	}
	return def
}

// Int64 returns cfg[key] as an int64, or def when absent.
func Int64(cfg map[string]any, key string, def int64) int64 {
	switch v := cfg[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	}
	if v, ok := toFloat(cfg[key]); ok {
		return int64(v)
	}
	return def
}

// Float returns cfg[key] as a float64, or def when absent.
func Float(cfg map[string]any, key string, def float64) float64 {
	if v, ok := toFloat(cfg[key]); ok {
		return v
	}
	return def
}

// Bool returns cfg[key] as a bool, or def when absent.
func Bool(cfg map[string]any, key string, def bool) bool {
	if v, ok := cfg[key].(bool); ok {
		return v
	}
	return def
}

// Map returns cfg[key] as a map, or nil when absent.
func Map(cfg map[string]any, key string) map[string]any {
	m, _ := AsMap(cfg[key])
	return m
}

// Slice returns cfg[key] as a slice, or nil when absent.
func Slice(cfg map[string]any, key string) []any {
	s, _ := AsSlice(cfg[key])
	return s
}

// ToFloat converts a numeric value to float64.
func ToFloat(value any) (float64, bool) {
	return toFloat(value)
}
