package search

import "github.com/openfacet/facetstore/internal/domain"

// PropertyFor translates one field's abstract type into the engine's mapping
// property declaration. Returns ok=false for types left to the engine's
// dynamic mapping. Deterministic and total over the type enumeration.
func PropertyFor(fieldType domain.FieldType) (map[string]any, bool) {
	switch fieldType {
	case domain.FieldTypeLong, domain.FieldTypeLongText, domain.FieldTypeTextArea:
		// Indexed as full text so partial and phrase matching work.
		return map[string]any{"type": "text"}, true

	case domain.FieldTypeString:
		// Typeahead analyzer family; backs the phrase-prefix queries used
		// by autocomplete via the generated _2gram/_3gram sub-fields.
		return map[string]any{"type": "search_as_you_type"}, true

	case domain.FieldTypeDate, domain.FieldTypeDouble, domain.FieldTypeBoolean,
		domain.FieldTypeList, domain.FieldTypeEntity:
		return nil, false

	default:
		return nil, false
	}
}

// mappingBody wraps a single field's property into a partial mapping update
// scoped to exactly that field's canonical key.
func mappingBody(field domain.FieldDescriptor, property map[string]any) map[string]any {
	return map[string]any{
		"properties": map[string]any{
			field.Key(): property,
		},
	}
}
