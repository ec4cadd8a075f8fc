package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildCandidateJSONSchema returns the JSON-Schema (draft 2020-12 subset) a
// provider reply must satisfy. Every key is optional and nullable (the
// quality gate, not the schema, decides sufficiency) but a present key must
// have the right shape. Unknown keys are tolerated (some providers volunteer
// an item list); they are dropped during decoding.
func BuildCandidateJSONSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"merchant_name":  map[string]any{"type": []string{"string", "null"}},
			"total_amount":   amountProp(),
			"tax_amount":     amountProp(),
			"subtotal":       amountProp(),
			"purchased_at":   map[string]any{"type": []string{"string", "null"}},
			"payment_method": map[string]any{"type": []string{"string", "null"}},
		},
	}
}

// amountProp accepts a JSON number or a decimal-shaped string; providers are
// inconsistent about which they emit.
func amountProp() map[string]any {
	return map[string]any{
		"anyOf": []map[string]any{
			{"type": "number"},
			{"type": "string", "pattern": `^-?\d+(\.\d+)?$`},
			{"type": "null"},
		},
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
