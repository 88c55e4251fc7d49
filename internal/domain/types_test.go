package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldType(t *testing.T) {
	t.Run("known types are valid", func(t *testing.T) {
		for _, ft := range FieldTypes {
			assert.True(t, ft.Valid(), "type %s", ft)
		}
	})

	t.Run("unknown type is invalid", func(t *testing.T) {
		assert.False(t, FieldType("GEO_POINT").Valid())
		assert.False(t, FieldType("").Valid())
	})
}

func TestFieldDescriptorKey(t *testing.T) {
	t.Run("document key is lower-cased", func(t *testing.T) {
		d := FieldDescriptor{Code: "QtyAvailable", Type: FieldTypeLong}
		assert.Equal(t, "qtyavailable", d.Key())
	})

	t.Run("lower-case code is unchanged", func(t *testing.T) {
		d := FieldDescriptor{Code: "name", Type: FieldTypeString}
		assert.Equal(t, "name", d.Key())
	})
}

func TestFieldSetLookup(t *testing.T) {
	fields := FieldSet{
		"Name":  {Code: "Name", Type: FieldTypeString},
		"price": {Code: "price", Type: FieldTypeDouble},
	}

	t.Run("exact match", func(t *testing.T) {
		d, ok := fields.Lookup("Name")
		assert.True(t, ok)
		assert.Equal(t, FieldTypeString, d.Type)
	})

	t.Run("case-insensitive match", func(t *testing.T) {
		d, ok := fields.Lookup("PRICE")
		assert.True(t, ok)
		assert.Equal(t, FieldTypeDouble, d.Type)
	})

	t.Run("missing field", func(t *testing.T) {
		_, ok := fields.Lookup("color")
		assert.False(t, ok)
	})
}
