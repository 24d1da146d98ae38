package models

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// FieldType classifies how synthetic values are generated for a field.
type FieldType string

const (
	FieldTypeString    FieldType = "string"
	FieldTypeInteger   FieldType = "integer"
	FieldTypeTimestamp FieldType = "timestamp"
	FieldTypeOperation FieldType = "operation"
)

// FieldOperation is the synthetic field appended to every schema.
const FieldOperation = "operation"

// FieldDefaultKey is the placeholder field inserted when a document yields no
// usable attributes.
const FieldDefaultKey = "key"

// Schema is the canonical description of one table derived from a metadata
// document. Fields preserve source attribute order; duplicate attribute names
// resolve last-write-wins.
type Schema struct {
	// TableName groups the generated records and names the output
	// subdirectory.
	TableName string

	// SchemaKey and EntityKey are carried for output file naming only.
	SchemaKey string
	EntityKey string

	Fields *orderedmap.OrderedMap[string, FieldType]
}

// NewSchema creates an empty schema for the given table.
func NewSchema(tableName, schemaKey, entityKey string) *Schema {
	return &Schema{
		TableName: tableName,
		SchemaKey: schemaKey,
		EntityKey: entityKey,
		Fields:    orderedmap.New[string, FieldType](),
	}
}

// FieldNames returns field names in schema order.
func (s *Schema) FieldNames() []string {
	names := make([]string, 0, s.Fields.Len())
	for pair := s.Fields.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}
