package search

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/opensearch-project/opensearch-go/v4/opensearchapi"
	"github.com/pkg/errors"

	"github.com/openfacet/facetstore/internal/domain"
)

// DecodeHit turns one raw document source into a field-code→typed-value map.
// The uuid key always carries the document identifier. Only keys with a
// matching descriptor are decoded, under the descriptor's original-case code;
// keys absent from the source are omitted, never set to a null placeholder.
func DecodeHit(uuid string, source map[string]any, fields domain.FieldSet) map[string]any {
	record := map[string]any{domain.UUIDKey: uuid}

	for _, descriptor := range fields {
		raw, ok := source[descriptor.Key()]
		if !ok || raw == nil {
			continue
		}
		record[descriptor.Code] = coerceValue(raw, descriptor.Type)
	}

	return record
}

// DecodeSearchResults decodes every hit of a search response, preserving the
// engine's relevance ordering. Zero hits decode to an empty slice.
func DecodeSearchResults(hits []opensearchapi.SearchHit, fields domain.FieldSet) ([]map[string]any, error) {
	records := make([]map[string]any, 0, len(hits))

	for _, hit := range hits {
		source, err := decodeSource(hit.Source)
		if err != nil {
			return nil, errors.Wrapf(err, "decode hit %s", hit.ID)
		}
		records = append(records, DecodeHit(hit.ID, source, fields))
	}

	return records, nil
}

func decodeSource(raw json.RawMessage) (map[string]any, error) {
	var source map[string]any
	if len(raw) == 0 {
		return source, nil
	}
	if err := json.Unmarshal(raw, &source); err != nil {
		return nil, fmt.Errorf("unmarshal document source: %w", err)
	}
	return source, nil
}

// coerceValue maps a raw JSON scalar to the field's abstract type. Raw JSON
// numbers arrive as float64; non-scalar values pass through unchanged.
func coerceValue(raw any, fieldType domain.FieldType) any {
	switch fieldType {
	case domain.FieldTypeDouble:
		switch v := raw.(type) {
		case float64:
			return v
		case string:
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f
			}
		}
		return raw

	case domain.FieldTypeLong:
		switch v := raw.(type) {
		case float64:
			return int64(v)
		case string:
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				return n
			}
		}
		return raw

	case domain.FieldTypeBoolean:
		switch v := raw.(type) {
		case bool:
			return v
		case string:
			if b, err := strconv.ParseBool(v); err == nil {
				return b
			}
		}
		return raw

	default:
		if s, ok := raw.(string); ok {
			return s
		}
		switch raw.(type) {
		case []any, map[string]any:
			return raw
		}
		return fmt.Sprintf("%v", raw)
	}
}
