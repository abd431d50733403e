package schema

import "slices"

// jsonTypes maps contract types onto JSON Schema types.
var jsonTypes = map[string]string{
	TypeString: "string",
	TypeInt:    "integer",
	TypeFloat:  "number",
	TypeBool:   "boolean",
	TypeArray:  "array",
	TypeObject: "object",
}

// JSONSchema renders cs as a draft-07 JSON Schema document so editor
// front-ends can build forms without hard-coding strategy keys.
// strategyID, when non-empty, pins the "strategy" property to that value.
func JSONSchema(strategyID string, cs ConfigSchema) map[string]any {
	properties := make(map[string]any, len(cs.Properties)+1)
	for name, prop := range cs.Properties {
		entry := map[string]any{}
		if t, ok := jsonTypes[prop.Type]; ok {
			entry["type"] = t
		}
		if prop.Description != "" {
			entry["description"] = prop.Description
		}
		if prop.Default != nil {
			entry["default"] = prop.Default
		}
		if len(prop.Enum) > 0 {
			entry["enum"] = prop.Enum
		}
		if prop.Minimum != nil {
			entry["minimum"] = *prop.Minimum
		}
		properties[name] = entry
	}

	required := slices.Clone(cs.Required)
	if strategyID != "" {
		properties["strategy"] = map[string]any{"const": strategyID}
		if !slices.Contains(required, "strategy") {
			required = append([]string{"strategy"}, required...)
		}
	}

	doc := map[string]any{
		"$schema":              "http://json-schema.org/draft-07/schema#",
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": true,
	}
	if len(required) > 0 {
		doc["required"] = required
	}
	if strategyID != "" {
		doc["title"] = strategyID
	}
	return doc
}
