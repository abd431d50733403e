package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/invisibleacropolis-ops/RNGEN-sub001/errors"
	"github.com/invisibleacropolis-ops/RNGEN-sub001/schema"
)

// readPayloads reads generation configs from a JSON or YAML file holding
// either a single config or a list of configs.
func readPayloads(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "rngen", "readPayloads", "read "+path)
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.WrapInvalid(fmt.Errorf("%w: %v", errors.ErrParsingFailed, err), "rngen", "readPayloads", "decode "+path)
	}

	if single, ok := schema.AsMap(raw); ok {
		return []map[string]any{single}, nil
	}
	items, ok := schema.AsSlice(raw)
	if !ok {
		return nil, errors.WrapInvalid(fmt.Errorf("%w: expected a config object or a list, got %T", errors.ErrInvalidData, raw),
			"rngen", "readPayloads", "payload shape")
	}

	payloads := make([]map[string]any, 0, len(items))
	for i, item := range items {
		m, ok := schema.AsMap(item)
		if !ok {
			return nil, errors.WrapInvalid(fmt.Errorf("%w: item %d is %T", errors.ErrInvalidData, i, item),
				"rngen", "readPayloads", "payload shape")
		}
		payloads = append(payloads, m)
	}
	return payloads, nil
}
