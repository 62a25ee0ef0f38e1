// Package component defines ComponentDescriptor, the typed column identity
// chunks and the store key all of their data by.
package component

import "fmt"

// Type is the logical element type of a component column (the store treats
// it as an opaque stable identifier; it does not interpret the bytes).
type Type string

// Descriptor identifies one column. Per spec §3, only the full triple
// identifies a column: two descriptors with the same FieldName but
// different ArchetypeName are distinct keys, even though both may share a
// Type.
type Descriptor struct {
	// ArchetypeName is optional (empty string means "none").
	ArchetypeName string
	FieldName     string
	// ComponentType is optional (empty string means "unspecified").
	ComponentType Type
}

// New returns a Descriptor with all three fields set.
func New(archetype, field string, typ Type) Descriptor {
	return Descriptor{ArchetypeName: archetype, FieldName: field, ComponentType: typ}
}

// NewField returns a Descriptor with only a field name, no archetype or
// type -- the minimal legal column identity.
func NewField(field string) Descriptor {
	return Descriptor{FieldName: field}
}

func (d Descriptor) String() string {
	switch {
	case d.ArchetypeName != "" && d.ComponentType != "":
		return fmt.Sprintf("%s:%s (%s)", d.ArchetypeName, d.FieldName, d.ComponentType)
	case d.ArchetypeName != "":
		return fmt.Sprintf("%s:%s", d.ArchetypeName, d.FieldName)
	default:
		return d.FieldName
	}
}
