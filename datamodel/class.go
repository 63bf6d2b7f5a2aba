// Package datamodel describes the record classes the schema is generated
// from, the configuration that selects them, and the providers that supply
// both at build time.
package datamodel

// Field types a class field can have.
const (
	TypeString   = "String"
	TypeNumber   = "Number"
	TypeBoolean  = "Boolean"
	TypeDate     = "Date"
	TypeObject   = "Object"
	TypeArray    = "Array"
	TypePointer  = "Pointer"
	TypeRelation = "Relation"
	TypeFile     = "File"
	TypeGeoPoint = "GeoPoint"
	TypePolygon  = "Polygon"
	TypeBytes    = "Bytes"
	TypeACL      = "ACL"
)

// UsersClass is the reserved user-account class.
const UsersClass = "_User"

// FieldType is the storage type of a class field. TargetClass is set for
// Pointer and Relation fields.
type FieldType struct {
	Type        string `json:"type" yaml:"type"`
	TargetClass string `json:"targetClass,omitempty" yaml:"targetClass,omitempty"`
	Required    bool   `json:"required,omitempty" yaml:"required,omitempty"`
}

// ClassDescriptor is one record class of the data model.
type ClassDescriptor struct {
	ClassName string               `json:"className" yaml:"className"`
	Fields    map[string]FieldType `json:"fields" yaml:"fields"`
}

// Snapshot is the set of classes read from the data model at one point in
// time.
//
// Providers return the same *Snapshot for as long as their backing data is
// unchanged, and a fresh value otherwise. Two snapshots with equal canonical
// JSON describe the same data model.
type Snapshot struct {
	Classes []ClassDescriptor `json:"classes" yaml:"classes"`
}

// Class returns the class named name, if present.
func (s *Snapshot) Class(name string) (ClassDescriptor, bool) {
	for _, c := range s.Classes {
		if c.ClassName == name {
			return c, true
		}
	}
	return ClassDescriptor{}, false
}
