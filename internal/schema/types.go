package schema

import (
	"fmt"
	"time"
)

// Defaults applied to newly created tables and attributes.
const (
	DefaultTableName     = "table_name"
	DefaultAttributeName = "attr_name"
	DefaultRows          = 100
	MaxRows              = 10_000_000
	DefaultStart         = "0"
	DefaultStep          = "1"
	DefaultLength        = 10
)

// DefaultDateStart is the start date of a new Date attribute.
var DefaultDateStart = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// AttributeType is the value domain of a generated column.
type AttributeType int

const (
	Integer AttributeType = iota + 1
	Real
	String
	Date
)

// GenerationType is the algorithm used to synthesize values for an attribute.
type GenerationType int

const (
	Random GenerationType = iota + 1
	Increasing
	Decreasing
	Repeating

	// Extended kinds are only recognized when reading schema files.
	NameSurname
	Email
	Phone
	NaturalText
)

// KeyRole tells whether an attribute is a plain column, part of the primary
// key, or a reference to another table's attribute.
type KeyRole int

const (
	KeyNone KeyRole = iota
	PrimaryKey
	ForeignKey
)

var attributeTypeNames = map[AttributeType]string{
	Integer: "INTEGER",
	Real:    "REAL",
	String:  "STRING",
	Date:    "DATE",
}

var attributeTypesByName = map[string]AttributeType{
	"INTEGER": Integer,
	"REAL":    Real,
	"STRING":  String,
	"DATE":    Date,
}

var generationNames = map[GenerationType]string{
	Random:      "RANDOM",
	Increasing:  "INCREASING",
	Decreasing:  "DECREASING",
	Repeating:   "REPEATING",
	NameSurname: "NAMESURNAME",
	Email:       "EMAIL",
	Phone:       "PHONE",
	NaturalText: "NATURALTEXT",
}

var generationsByName = map[string]GenerationType{
	"RANDOM":      Random,
	"INCREASING":  Increasing,
	"DECREASING":  Decreasing,
	"REPEATING":   Repeating,
	"NAMESURNAME": NameSurname,
	"EMAIL":       Email,
	"PHONE":       Phone,
	"NATURALTEXT": NaturalText,
}

var keyRoleNames = map[KeyRole]string{
	KeyNone:    "none",
	PrimaryKey: "primary_key",
	ForeignKey: "foreign_key",
}

var keyRolesByName = map[string]KeyRole{
	"none":        KeyNone,
	"primary_key": PrimaryKey,
	"primary":     PrimaryKey,
	"pk":          PrimaryKey,
	"foreign_key": ForeignKey,
	"foreign":     ForeignKey,
	"fk":          ForeignKey,
}

// AttributeTypes lists every attribute type in display order.
var AttributeTypes = []AttributeType{Integer, Real, String, Date}

// EditableGenerations lists the generation types a user can pick.
var EditableGenerations = []GenerationType{Random, Increasing, Decreasing, Repeating}

// ParseAttributeType matches an upper-case wire name.
func ParseAttributeType(name string) (AttributeType, bool) {
	t, ok := attributeTypesByName[name]
	return t, ok
}

// ParseGeneration matches an upper-case wire name.
func ParseGeneration(name string) (GenerationType, bool) {
	g, ok := generationsByName[name]
	return g, ok
}

// ParseKeyRole accepts none, pk, primary, primary_key, fk, foreign and foreign_key.
func ParseKeyRole(name string) (KeyRole, bool) {
	k, ok := keyRolesByName[name]
	return k, ok
}

func (t AttributeType) String() string {
	if name, ok := attributeTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("AttributeType(%d)", int(t))
}

// Valid reports whether t is one of the declared attribute types.
func (t AttributeType) Valid() bool {
	_, ok := attributeTypeNames[t]
	return ok
}

// MarshalText implements encoding.TextMarshaler.
func (t AttributeType) MarshalText() ([]byte, error) {
	name, ok := attributeTypeNames[t]
	if !ok {
		return nil, fmt.Errorf("unknown attribute type %d", int(t))
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *AttributeType) UnmarshalText(text []byte) error {
	v, ok := attributeTypesByName[string(text)]
	if !ok {
		return fmt.Errorf("unknown attribute type %q", text)
	}
	*t = v
	return nil
}

func (g GenerationType) String() string {
	if name, ok := generationNames[g]; ok {
		return name
	}
	return fmt.Sprintf("GenerationType(%d)", int(g))
}

// Valid reports whether g is one of the declared generation types.
func (g GenerationType) Valid() bool {
	_, ok := generationNames[g]
	return ok
}

// ImportOnly reports whether g is an extended kind that is never offered
// for editing and never written by export.
func (g GenerationType) ImportOnly() bool {
	return g >= NameSurname && g <= NaturalText
}

// MarshalText implements encoding.TextMarshaler.
func (g GenerationType) MarshalText() ([]byte, error) {
	name, ok := generationNames[g]
	if !ok {
		return nil, fmt.Errorf("unknown generation type %d", int(g))
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *GenerationType) UnmarshalText(text []byte) error {
	v, ok := generationsByName[string(text)]
	if !ok {
		return fmt.Errorf("unknown generation type %q", text)
	}
	*g = v
	return nil
}

func (k KeyRole) String() string {
	if name, ok := keyRoleNames[k]; ok {
		return name
	}
	return fmt.Sprintf("KeyRole(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k KeyRole) MarshalText() ([]byte, error) {
	name, ok := keyRoleNames[k]
	if !ok {
		return nil, fmt.Errorf("unknown key role %d", int(k))
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *KeyRole) UnmarshalText(text []byte) error {
	v, ok := keyRolesByName[string(text)]
	if !ok {
		return fmt.Errorf("unknown key role %q", text)
	}
	*k = v
	return nil
}

// DateStep is the increment between consecutive Date values.
type DateStep struct {
	Microseconds int
	Milliseconds int
	Seconds      int
	Minutes      int
	Hours        int
	Days         int
	Weeks        int
}

// DefaultDateStep is one day.
var DefaultDateStep = DateStep{Days: 1}

// Duration sums all components.
func (d DateStep) Duration() time.Duration {
	return time.Duration(d.Microseconds)*time.Microsecond +
		time.Duration(d.Milliseconds)*time.Millisecond +
		time.Duration(d.Seconds)*time.Second +
		time.Duration(d.Minutes)*time.Minute +
		time.Duration(d.Hours)*time.Hour +
		time.Duration(d.Days)*24*time.Hour +
		time.Duration(d.Weeks)*7*24*time.Hour
}

// Set assigns a component by its lower-case unit name.
func (d *DateStep) Set(unit string, value int) bool {
	switch unit {
	case "microseconds":
		d.Microseconds = value
	case "milliseconds":
		d.Milliseconds = value
	case "seconds":
		d.Seconds = value
	case "minutes":
		d.Minutes = value
	case "hours":
		d.Hours = value
	case "days":
		d.Days = value
	case "weeks":
		d.Weeks = value
	default:
		return false
	}
	return true
}

// ValueSpec holds the type, generation and generation parameters of a
// non-reference attribute. Start and Step apply to Integer and Real,
// DateStart and DateStep to Date, Length to String.
type ValueSpec struct {
	Type       AttributeType
	Generation GenerationType
	Start      string
	Step       string
	DateStart  time.Time
	DateStep   DateStep
	Length     int
}

// DefaultValueSpec returns the parameters of a freshly added attribute.
func DefaultValueSpec() ValueSpec {
	return ValueSpec{
		Type:       Integer,
		Generation: Random,
		Start:      DefaultStart,
		Step:       DefaultStep,
		DateStart:  DefaultDateStart,
		DateStep:   DefaultDateStep,
		Length:     DefaultLength,
	}
}

// Reference points a foreign-key attribute at another table's attribute.
type Reference struct {
	Table     string
	Attribute string
}

func (r Reference) String() string {
	return r.Table + "." + r.Attribute
}

// Attribute is a single generated column.
//
// While Key is ForeignKey the Value is kept but carries no meaning; it is
// restored when the attribute stops being a reference.
type Attribute struct {
	Name  string
	Key   KeyRole
	Value ValueSpec
	Ref   *Reference
}

// NewAttribute returns a plain Integer/Random attribute.
func NewAttribute(name string) Attribute {
	return Attribute{Name: name, Key: KeyNone, Value: DefaultValueSpec()}
}

// NewForeignKey returns a reference attribute.
func NewForeignKey(name string, ref Reference) Attribute {
	a := NewAttribute(name)
	a.Key = ForeignKey
	a.Ref = &ref
	return a
}

// IsForeignKey reports whether the attribute is a reference.
func (a Attribute) IsForeignKey() bool {
	return a.Key == ForeignKey
}

// Table is a named collection of attributes with a target row count.
type Table struct {
	Name       string
	Rows       int
	Attributes []Attribute
}

// NewTable returns an empty table with the default row count.
func NewTable(name string) Table {
	return Table{Name: name, Rows: DefaultRows}
}

// Schema is the ordered set of tables exchanged as one file.
type Schema struct {
	Tables []Table
}

// New returns an empty schema.
func New() *Schema {
	return &Schema{}
}
