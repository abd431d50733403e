// Package schema declares and validates the configuration contract shared by
// every generation strategy.
package schema

import (
	"sort"
)

// Property types understood by Validate.
const (
	TypeString = "string"
	TypeInt    = "int"
	TypeFloat  = "float"
	TypeBool   = "bool"
	TypeArray  = "array"
	TypeObject = "object"
	TypeAny    = "any"
)

// ConfigSchema describes the configuration parameters for a strategy
type ConfigSchema struct {
	Properties map[string]PropertySchema `json:"properties"`
	Required   []string                  `json:"required"`
}

// PropertySchema describes a single configuration property
type PropertySchema struct {
	Type        string   `json:"type"` // "string", "int", "float", "bool", "array", "object", "any"
	Description string   `json:"description"`
	Default     any      `json:"default,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	Minimum     *float64 `json:"minimum,omitempty"`
	Category    string   `json:"category,omitempty"` // "basic" or "advanced" for UI organization
}

// Min returns a pointer to v, for PropertySchema.Minimum literals.
func Min(v float64) *float64 {
	return &v
}

// IsRequired reports whether key is listed in Required.
func (cs ConfigSchema) IsRequired(key string) bool {
	for _, r := range cs.Required {
		if r == key {
			return true
		}
	}
	return false
}

// SortedPropertyNames returns property names in UI display order.
//
// Properties are sorted by:
// 1. Required properties first
// 2. Category: "basic" before "advanced"
// 3. Alphabetically within each group
//
// Properties without an explicit Category default to "advanced".
func SortedPropertyNames(cs ConfigSchema) []string {
	type propertyWithName struct {
		name     string
		required bool
		category string
	}

	props := make([]propertyWithName, 0, len(cs.Properties))
	for name, prop := range cs.Properties {
		category := prop.Category
		if category == "" {
			category = "advanced"
		}
		props = append(props, propertyWithName{
			name:     name,
			required: cs.IsRequired(name),
			category: category,
		})
	}

	sort.Slice(props, func(i, j int) bool {
		if props[i].required != props[j].required {
			return props[i].required
		}
		if props[i].category != props[j].category {
			return props[i].category == "basic"
		}
		return props[i].name < props[j].name
	})

	names := make([]string, len(props))
	for i, prop := range props {
		names[i] = prop.name
	}
	return names
}
