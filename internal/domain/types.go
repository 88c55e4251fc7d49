package domain

import "strings"

// FieldType is the abstract type of a schema field. The set is closed;
// switches over it handle the full enumeration.
type FieldType string

const (
	FieldTypeString   FieldType = "STRING"
	FieldTypeDate     FieldType = "DATE"
	FieldTypeLong     FieldType = "LONG"
	FieldTypeDouble   FieldType = "DOUBLE"
	FieldTypeBoolean  FieldType = "BOOLEAN"
	FieldTypeLongText FieldType = "LONG_TEXT"
	FieldTypeTextArea FieldType = "TEXT_AREA"
	FieldTypeList     FieldType = "LIST"
	FieldTypeEntity   FieldType = "ENTITY"
)

// FieldTypes lists every known field type.
var FieldTypes = []FieldType{
	FieldTypeString,
	FieldTypeDate,
	FieldTypeLong,
	FieldTypeDouble,
	FieldTypeBoolean,
	FieldTypeLongText,
	FieldTypeTextArea,
	FieldTypeList,
	FieldTypeEntity,
}

// Valid reports whether t is part of the known enumeration.
func (t FieldType) Valid() bool {
	for _, known := range FieldTypes {
		if t == known {
			return true
		}
	}
	return false
}

// UUIDKey is the implicit identifier key of every decoded record. It is never
// used as a filter field; identity is addressed by direct document lookup.
const UUIDKey = "uuid"

// FieldDescriptor describes one schema field. The schema catalog owns these;
// the storage layer treats them as read-only inputs per call.
type FieldDescriptor struct {
	Code string    `json:"code" toml:"code"`
	Type FieldType `json:"type" toml:"type"`
}

// Key returns the canonical document key for the field. Document keys are
// always lower-cased; the engine is case-sensitive on keys.
func (d FieldDescriptor) Key() string {
	return strings.ToLower(d.Code)
}

// FieldSet maps field codes to their descriptors.
type FieldSet map[string]FieldDescriptor

// Lookup finds the descriptor for a field code, case-insensitively.
func (s FieldSet) Lookup(code string) (FieldDescriptor, bool) {
	if d, ok := s[code]; ok {
		return d, true
	}
	for _, d := range s {
		if strings.EqualFold(d.Code, code) {
			return d, true
		}
	}
	return FieldDescriptor{}, false
}

// Entity is one instance of a dynamically-typed entity. The identifier is
// assigned by the caller before the first store operation.
type Entity struct {
	UUID   string         `json:"uuid"`
	Type   string         `json:"type"`
	Values map[string]any `json:"values"`
}

// Pagination carries from/size paging merged into search queries.
type Pagination struct {
	From int `json:"from"`
	Size int `json:"size"`
}

// StorageQuery describes one find/count invocation against a tenant's index.
type StorageQuery struct {
	Tenant     string
	EntityType string
	Filters    map[string]any
	Keyword    string
	Fields     FieldSet
	Paging     Pagination
}
