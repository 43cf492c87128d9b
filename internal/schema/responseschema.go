package schema

// ResponseSchema builds the structured-output schema sent to the inference
// service with every extraction request. The shape follows the Gemini
// generateContent responseSchema format: an OBJECT whose properties mirror
// the contract, with propertyOrdering fixing the field order.
func ResponseSchema() map[string]any {
	properties := make(map[string]any, len(Contract))
	ordering := make([]string, 0, len(Contract))

	for _, f := range Contract {
		switch f.Kind {
		case KindScalar:
			properties[f.Name] = map[string]any{"type": "STRING"}
		case KindList:
			properties[f.Name] = map[string]any{
				"type":  "ARRAY",
				"items": map[string]any{"type": "STRING"},
			}
		}
		ordering = append(ordering, f.Name)
	}

	return map[string]any{
		"type":             "OBJECT",
		"properties":       properties,
		"propertyOrdering": ordering,
	}
}
