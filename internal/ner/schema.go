package ner

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildEntitiesResponseSchema returns a JSON-Schema (draft 2020-12 subset)
// as a generic map. Collaborator responses are validated against it before
// any mention is trusted.
func BuildEntitiesResponseSchema() map[string]any {
	mention := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"value": map[string]any{"type": "string"},
			"start": map[string]any{"type": "integer", "minimum": 0},
			"end":   map[string]any{"type": "integer", "minimum": 0},
		},
		"required": []string{"value", "start", "end"},
	}

	categoryProps := map[string]any{}
	for _, c := range Categories {
		categoryProps[string(c)] = map[string]any{
			"type":  "array",
			"items": mention,
		}
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"entities": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties":           categoryProps,
			},
		},
		"required": []string{"entities"},
	}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
