package editor

import (
	"time"

	"github.com/tordrt/mockschema/internal/schema"
)

// Event is a single user edit delivered to the Controller.
type Event interface {
	event()
}

// Target addresses one attribute of one table.
type Target struct {
	Table     string
	Attribute string
}

// TableAdded appends a table. A nil Rows keeps the default row count.
type TableAdded struct {
	Table string
	Rows  *int
}

// TableRemoved deletes a table. Validate reports references left dangling.
type TableRemoved struct {
	Table string
}

// TableRenamed renames a table and re-points references to it.
type TableRenamed struct {
	Table string
	To    string
}

// RowCountChanged sets a table's target row count.
type RowCountChanged struct {
	Table string
	Rows  int
}

// AttributeAdded appends an attribute with default values.
type AttributeAdded struct {
	Table     string
	Attribute string
}

// AttributeRemoved deletes an attribute from its table.
type AttributeRemoved struct {
	Target
}

// AttributeRenamed renames an attribute and re-points references to it.
type AttributeRenamed struct {
	Target
	To string
}

// KeyRoleChanged switches between plain, primary key and foreign key.
type KeyRoleChanged struct {
	Target
	Role schema.KeyRole
}

// AttributeTypeChanged sets the value type, resetting an incompatible generation.
type AttributeTypeChanged struct {
	Target
	Type schema.AttributeType
}

// GenerationChanged sets the generation, adjusting an incompatible type.
type GenerationChanged struct {
	Target
	Generation schema.GenerationType
}

// StartChanged sets the start of an Integer or Real attribute.
type StartChanged struct {
	Target
	Start string
}

// StepChanged sets the step of an Integer or Real attribute.
type StepChanged struct {
	Target
	Step string
}

// DateStartChanged sets the first date of a Date attribute.
type DateStartChanged struct {
	Target
	Start time.Time
}

// DateStepChanged sets the step between dates.
type DateStepChanged struct {
	Target
	Step schema.DateStep
}

// LengthChanged sets the length of generated strings.
type LengthChanged struct {
	Target
	Length int
}

// ReferenceChanged points a foreign key at another attribute.
type ReferenceChanged struct {
	Target
	Reference schema.Reference
}

func (TableAdded) event()           {}
func (TableRemoved) event()         {}
func (TableRenamed) event()         {}
func (RowCountChanged) event()      {}
func (AttributeAdded) event()       {}
func (AttributeRemoved) event()     {}
func (AttributeRenamed) event()     {}
func (KeyRoleChanged) event()       {}
func (AttributeTypeChanged) event() {}
func (GenerationChanged) event()    {}
func (StartChanged) event()         {}
func (StepChanged) event()          {}
func (DateStartChanged) event()     {}
func (DateStepChanged) event()      {}
func (LengthChanged) event()        {}
func (ReferenceChanged) event()     {}
