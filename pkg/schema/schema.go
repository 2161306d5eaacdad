// Package schema validates uploaded graph and flow documents before they
// reach the model layer, so malformed uploads fail with a message instead
// of half-decoding.
package schema

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

var bindingSchema = map[string]any{
	"oneOf": []any{
		map[string]any{
			"type":                 "object",
			"required":             []any{"node", "port"},
			"additionalProperties": false,
			"properties": map[string]any{
				"node": map[string]any{"type": "string", "minLength": 1},
				"port": map[string]any{"type": "string", "minLength": 1},
			},
		},
		map[string]any{
			"not": map[string]any{
				"type":     "object",
				"required": []any{"node", "port"},
			},
		},
	},
}

var graphSchema = map[string]any{
	"type": "object",
	"additionalProperties": map[string]any{
		"type":     "object",
		"required": []any{"type"},
		"properties": map[string]any{
			"type": map[string]any{"type": "string", "minLength": 1},
			"inputs": map[string]any{
				"type":                 "object",
				"additionalProperties": bindingSchema,
			},
		},
	},
}

var flowSchema = map[string]any{
	"type":     "object",
	"required": []any{"name", "graph"},
	"properties": map[string]any{
		"id":          map[string]any{"type": "string"},
		"name":        map[string]any{"type": "string", "minLength": 3},
		"description": map[string]any{"type": "string"},
		"graph":       graphSchema,
	},
}

func validate(schema map[string]any, document []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema),
		gojsonschema.NewBytesLoader(document),
	)
	if err != nil {
		return fmt.Errorf("failed to validate document: %w", err)
	}

	if !result.Valid() {
		messages := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			messages = append(messages, desc.String())
		}

		return fmt.Errorf("validation errors: %s", strings.Join(messages, "; "))
	}

	return nil
}

// ValidateGraph checks a raw graph document against the graph contract.
func ValidateGraph(document []byte) error {
	return validate(graphSchema, document)
}

// ValidateFlow checks a raw flow envelope (name plus graph).
func ValidateFlow(document []byte) error {
	return validate(flowSchema, document)
}
