package types

import (
	"fmt"
)

type DataType string

const (
	Null      DataType = "null"
	Int64     DataType = "integer"
	Float64   DataType = "number"
	String    DataType = "string"
	Bool      DataType = "boolean"
	Object    DataType = "object"
	Array     DataType = "array"
	Timestamp DataType = "timestamp"
)

// Property describes one schema field; Type carries the data type plus an
// optional Null marker for nullable fields.
type Property struct {
	Type *Set[DataType] `json:"type,omitempty"`
}

func (p *Property) DataType() DataType {
	for _, typ := range p.Type.Array() {
		if typ != Null {
			return typ
		}
	}
	return Null
}

func (p *Property) Nullable() bool {
	return p.Type.Exists(Null)
}

// TypeSchema maps field name to property. Streams are defined once at process
// start and never mutated afterwards, so plain map access is safe.
type TypeSchema struct {
	Properties map[string]*Property `json:"properties,omitempty"`
}

func NewTypeSchema() *TypeSchema {
	return &TypeSchema{Properties: map[string]*Property{}}
}

func (t *TypeSchema) AddTypes(field string, types ...DataType) *TypeSchema {
	property, found := t.Properties[field]
	if !found {
		t.Properties[field] = &Property{Type: NewSet(types...)}
		return t
	}
	property.Type.Insert(types...)
	return t
}

func (t *TypeSchema) GetType(field string) (DataType, error) {
	property, found := t.Properties[field]
	if !found {
		return "", fmt.Errorf("field [%s] missing from type schema", field)
	}
	return property.DataType(), nil
}

func (t *TypeSchema) Has(field string) bool {
	_, found := t.Properties[field]
	return found
}
