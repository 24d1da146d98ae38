// Package schema turns loosely-structured metadata documents into canonical
// table schemas. Extraction is deliberately lenient: absent or malformed
// fields degrade to defaults, never to errors. Only an unparseable document
// is rejected.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fixtureforge/forge-engine/pkg/apperrors"
	"github.com/fixtureforge/forge-engine/pkg/jsonutil"
	"github.com/fixtureforge/forge-engine/pkg/models"
)

// Defaults substituted when a document omits identity fields.
const (
	DefaultTableName = "unknown_table"
	DefaultEntityKey = "default_entity"
	DefaultSchemaKey = "unknown_schema"
)

// Document is the normalized metadata shape consumed by Extract. All fields
// are optional.
type Document struct {
	SchemaKey  string
	Name       string
	EntityKey  string
	Attributes []Attribute
}

// Attribute describes one source field. Attributes with an empty Name are
// dropped during extraction.
type Attribute struct {
	Name            string
	Datatype        string
	LogicalDatatype string
}

// datatypeMapping maps source type tags (upper-cased) to generation types.
var datatypeMapping = map[string]models.FieldType{
	"STRING":    models.FieldTypeString,
	"INTEGER":   models.FieldTypeInteger,
	"INT":       models.FieldTypeInteger,
	"TIMESTAMP": models.FieldTypeTimestamp,
	"DATETIME":  models.FieldTypeTimestamp,
}

// ResolveFieldType resolves an attribute's generation type through the
// ordered source chain: datatype first, then logicalDatatype, ending in the
// string default. Lookups are case-insensitive.
func ResolveFieldType(attr Attribute) models.FieldType {
	for _, tag := range []string{attr.Datatype, attr.LogicalDatatype} {
		if fieldType, ok := datatypeMapping[strings.ToUpper(tag)]; ok {
			return fieldType
		}
	}
	return models.FieldTypeString
}

// Extract derives the canonical schema from a metadata document. It is a pure
// transformation and never fails: table name falls back schemaKey -> name ->
// DefaultTableName, attributes with empty names are dropped, duplicate names
// resolve last-write-wins at their first position, an empty field map gains a
// synthetic key field, and the operation field is always appended last.
func Extract(doc Document) *models.Schema {
	tableName := doc.SchemaKey
	if tableName == "" {
		tableName = doc.Name
	}
	if tableName == "" {
		tableName = DefaultTableName
	}

	schemaKey := doc.SchemaKey
	if schemaKey == "" {
		schemaKey = DefaultSchemaKey
	}

	entityKey := doc.EntityKey
	if entityKey == "" {
		entityKey = DefaultEntityKey
	}

	s := models.NewSchema(tableName, schemaKey, entityKey)

	for _, attr := range doc.Attributes {
		if attr.Name == "" {
			continue
		}
		s.Fields.Set(attr.Name, ResolveFieldType(attr))
	}

	if s.Fields.Len() == 0 {
		s.Fields.Set(models.FieldDefaultKey, models.FieldTypeString)
	}
	s.Fields.Set(models.FieldOperation, models.FieldTypeOperation)

	return s
}

// jsonDocument parses identity fields as raw messages so exports that encode
// them as numbers or booleans still resolve to usable strings.
type jsonDocument struct {
	SchemaKey  json.RawMessage `json:"schemaKey"`
	Name       json.RawMessage `json:"name"`
	EntityKey  json.RawMessage `json:"entityKey"`
	Attributes json.RawMessage `json:"attributes"`
}

type jsonAttribute struct {
	Name            json.RawMessage `json:"name"`
	Datatype        json.RawMessage `json:"datatype"`
	LogicalDatatype json.RawMessage `json:"logicalDatatype"`
}

// ParseJSON parses a JSON metadata document. A payload that is not a JSON
// object is reported as apperrors.ErrInvalidFormat; a well-formed object with
// an unusable attributes value degrades to an attribute-less document.
func ParseJSON(data []byte) (Document, error) {
	var raw jsonDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return Document{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidFormat, err)
	}

	doc := Document{
		SchemaKey: jsonutil.FlexibleStringValue(raw.SchemaKey),
		Name:      jsonutil.FlexibleStringValue(raw.Name),
		EntityKey: jsonutil.FlexibleStringValue(raw.EntityKey),
	}

	// attributes must be a list to be usable; anything else is ignored
	var attrs []jsonAttribute
	if len(raw.Attributes) > 0 {
		if err := json.Unmarshal(raw.Attributes, &attrs); err != nil {
			return doc, nil
		}
	}
	for _, attr := range attrs {
		doc.Attributes = append(doc.Attributes, Attribute{
			Name:            jsonutil.FlexibleStringValue(attr.Name),
			Datatype:        jsonutil.FlexibleStringValue(attr.Datatype),
			LogicalDatatype: jsonutil.FlexibleStringValue(attr.LogicalDatatype),
		})
	}

	return doc, nil
}

type yamlDocument struct {
	SchemaKey  any              `yaml:"schemaKey"`
	Name       any              `yaml:"name"`
	EntityKey  any              `yaml:"entityKey"`
	Attributes []map[string]any `yaml:"attributes"`
}

// ParseYAML parses a YAML metadata document into the same document shape as
// ParseJSON. Unparseable payloads are reported as apperrors.ErrInvalidFormat.
func ParseYAML(data []byte) (Document, error) {
	var raw yamlDocument
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Document{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidFormat, err)
	}

	doc := Document{
		SchemaKey: scalarString(raw.SchemaKey),
		Name:      scalarString(raw.Name),
		EntityKey: scalarString(raw.EntityKey),
	}

	for _, attr := range raw.Attributes {
		doc.Attributes = append(doc.Attributes, Attribute{
			Name:            scalarString(attr["name"]),
			Datatype:        scalarString(attr["datatype"]),
			LogicalDatatype: scalarString(attr["logicalDatatype"]),
		})
	}

	return doc, nil
}

// scalarString renders a YAML scalar as a string, with nil and non-scalar
// values collapsing to empty.
func scalarString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int, int64, float64, bool:
		return fmt.Sprint(val)
	default:
		return ""
	}
}
