package search

import (
	"encoding/json"
	"testing"

	"github.com/opensearch-project/opensearch-go/v4/opensearchapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openfacet/facetstore/internal/domain"
)

func TestDecodeHit(t *testing.T) {
	fields := productFields()

	t.Run("round-trip typing", func(t *testing.T) {
		body := encodeEntityBody(domain.Entity{
			UUID: "abc",
			Type: "Product",
			Values: map[string]any{
				"Name":          "Widget",
				"price":         9.99,
				"qty_available": 3,
			},
		}, fields)

		// simulate the engine echoing the document back as JSON
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		source, err := decodeSource(raw)
		require.NoError(t, err)

		record := DecodeHit("abc", source, fields)

		assert.Equal(t, "abc", record["uuid"])
		assert.Equal(t, "Widget", record["Name"])
		assert.Equal(t, 9.99, record["price"])
		assert.Equal(t, int64(3), record["qty_available"])
	})

	t.Run("absent fields are omitted, not null", func(t *testing.T) {
		record := DecodeHit("abc", map[string]any{"name": "Widget"}, fields)

		assert.Equal(t, "Widget", record["Name"])
		assert.NotContains(t, record, "price")
		assert.NotContains(t, record, "qty_available")
	})

	t.Run("unknown keys are dropped", func(t *testing.T) {
		record := DecodeHit("abc", map[string]any{
			"name":   "Widget",
			"legacy": "value",
		}, fields)

		assert.NotContains(t, record, "legacy")
	})

	t.Run("uuid is always present", func(t *testing.T) {
		record := DecodeHit("abc", map[string]any{}, fields)
		assert.Equal(t, map[string]any{"uuid": "abc"}, record)
	})
}

func TestDecodeSearchResults(t *testing.T) {
	fields := productFields()

	t.Run("empty hits decode to an empty sequence", func(t *testing.T) {
		records, err := DecodeSearchResults(nil, fields)
		require.NoError(t, err)
		assert.NotNil(t, records)
		assert.Len(t, records, 0)
	})

	t.Run("relevance order is preserved", func(t *testing.T) {
		hits := []opensearchapi.SearchHit{
			{ID: "first", Source: json.RawMessage(`{"name":"Widget"}`)},
			{ID: "second", Source: json.RawMessage(`{"name":"Gadget"}`)},
		}

		records, err := DecodeSearchResults(hits, fields)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "first", records[0]["uuid"])
		assert.Equal(t, "second", records[1]["uuid"])
	})

	t.Run("malformed source surfaces an error", func(t *testing.T) {
		hits := []opensearchapi.SearchHit{
			{ID: "bad", Source: json.RawMessage(`{not json`)},
		}

		_, err := DecodeSearchResults(hits, fields)
		assert.Error(t, err)
	})
}

func TestCoerceValue(t *testing.T) {
	tests := []struct {
		name      string
		raw       any
		fieldType domain.FieldType
		want      any
	}{
		{"double from json number", 9.99, domain.FieldTypeDouble, 9.99},
		{"double from string", "9.99", domain.FieldTypeDouble, 9.99},
		{"long from json number", float64(42), domain.FieldTypeLong, int64(42)},
		{"long from string", "42", domain.FieldTypeLong, int64(42)},
		{"boolean passthrough", true, domain.FieldTypeBoolean, true},
		{"boolean from string", "true", domain.FieldTypeBoolean, true},
		{"string passthrough", "Widget", domain.FieldTypeString, "Widget"},
		{"text from number", float64(7), domain.FieldTypeDate, "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, coerceValue(tt.raw, tt.fieldType))
		})
	}

	t.Run("list values pass through", func(t *testing.T) {
		raw := []any{"a", "b"}
		assert.Equal(t, raw, coerceValue(raw, domain.FieldTypeList))
	})
}
