package schema

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicateName = errors.New("name already in use")
	ErrEmptyName     = errors.New("name must not be empty")
	ErrInvalidRows   = errors.New("row count out of range")
)

// PrimaryKeys returns the names of the attributes marked PrimaryKey, in
// attribute order.
func (t *Table) PrimaryKeys() []string {
	keys := []string{}
	for _, a := range t.Attributes {
		if a.Key == PrimaryKey {
			keys = append(keys, a.Name)
		}
	}
	return keys
}

// Attribute returns the named attribute.
func (t *Table) Attribute(name string) (*Attribute, bool) {
	for i := range t.Attributes {
		if t.Attributes[i].Name == name {
			return &t.Attributes[i], true
		}
	}
	return nil, false
}

// AddAttribute appends a to the table.
func (t *Table) AddAttribute(a Attribute) error {
	if a.Name == "" {
		return fmt.Errorf("attribute in table %q: %w", t.Name, ErrEmptyName)
	}
	if _, ok := t.Attribute(a.Name); ok {
		return fmt.Errorf("attribute %q in table %q: %w", a.Name, t.Name, ErrDuplicateName)
	}
	t.Attributes = append(t.Attributes, a)
	return nil
}

// RemoveAttribute deletes the named attribute.
func (t *Table) RemoveAttribute(name string) error {
	for i := range t.Attributes {
		if t.Attributes[i].Name == name {
			t.Attributes = append(t.Attributes[:i], t.Attributes[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("attribute %q in table %q: %w", name, t.Name, ErrNotFound)
}

// SetRows changes the target row count.
func (t *Table) SetRows(n int) error {
	if n < 0 || n > MaxRows {
		return fmt.Errorf("table %q rows %d: %w", t.Name, n, ErrInvalidRows)
	}
	t.Rows = n
	return nil
}

// Table returns the named table.
func (s *Schema) Table(name string) (*Table, bool) {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i], true
		}
	}
	return nil, false
}

// MustTable is Table returning an ErrNotFound error instead of a flag.
func (s *Schema) MustTable(name string) (*Table, error) {
	t, ok := s.Table(name)
	if !ok {
		return nil, fmt.Errorf("table %q: %w", name, ErrNotFound)
	}
	return t, nil
}

// Lookup returns the named attribute of the named table.
func (s *Schema) Lookup(table, attribute string) (*Attribute, error) {
	t, err := s.MustTable(table)
	if err != nil {
		return nil, err
	}
	a, ok := t.Attribute(attribute)
	if !ok {
		return nil, fmt.Errorf("attribute %q in table %q: %w", attribute, table, ErrNotFound)
	}
	return a, nil
}

// AddTable appends t to the schema.
func (s *Schema) AddTable(t Table) error {
	if t.Name == "" {
		return fmt.Errorf("table: %w", ErrEmptyName)
	}
	if _, ok := s.Table(t.Name); ok {
		return fmt.Errorf("table %q: %w", t.Name, ErrDuplicateName)
	}
	s.Tables = append(s.Tables, t)
	return nil
}

// RemoveTable deletes the named table together with its attributes.
// References from other tables are left dangling and reported by Validate.
func (s *Schema) RemoveTable(name string) error {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			s.Tables = append(s.Tables[:i], s.Tables[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("table %q: %w", name, ErrNotFound)
}

// RenameTable renames a table and rewrites references to it.
func (s *Schema) RenameTable(from, to string) error {
	t, err := s.MustTable(from)
	if err != nil {
		return err
	}
	if from == to {
		return nil
	}
	if to == "" {
		return fmt.Errorf("table %q: %w", from, ErrEmptyName)
	}
	if _, ok := s.Table(to); ok {
		return fmt.Errorf("table %q: %w", to, ErrDuplicateName)
	}
	t.Name = to
	s.eachReference(func(r *Reference) {
		if r.Table == from {
			r.Table = to
		}
	})
	return nil
}

// RenameAttribute renames an attribute and rewrites references to it.
func (s *Schema) RenameAttribute(table, from, to string) error {
	t, err := s.MustTable(table)
	if err != nil {
		return err
	}
	a, ok := t.Attribute(from)
	if !ok {
		return fmt.Errorf("attribute %q in table %q: %w", from, table, ErrNotFound)
	}
	if from == to {
		return nil
	}
	if to == "" {
		return fmt.Errorf("attribute %q in table %q: %w", from, table, ErrEmptyName)
	}
	if _, ok := t.Attribute(to); ok {
		return fmt.Errorf("attribute %q in table %q: %w", to, table, ErrDuplicateName)
	}
	a.Name = to
	s.eachReference(func(r *Reference) {
		if r.Table == table && r.Attribute == from {
			r.Attribute = to
		}
	})
	return nil
}

// Clone returns a deep copy of s.
func (s *Schema) Clone() *Schema {
	c := &Schema{Tables: make([]Table, len(s.Tables))}
	for i, t := range s.Tables {
		t.Attributes = slices.Clone(t.Attributes)
		for j := range t.Attributes {
			if ref := t.Attributes[j].Ref; ref != nil {
				r := *ref
				t.Attributes[j].Ref = &r
			}
		}
		c.Tables[i] = t
	}
	return c
}

func (s *Schema) eachReference(fn func(*Reference)) {
	for i := range s.Tables {
		for j := range s.Tables[i].Attributes {
			if ref := s.Tables[i].Attributes[j].Ref; ref != nil {
				fn(ref)
			}
		}
	}
}

// Problem is a single finding reported by Validate.
type Problem struct {
	Table     string `json:"table,omitempty"`
	Attribute string `json:"attribute,omitempty"`
	Message   string `json:"message"`
}

func (p Problem) String() string {
	switch {
	case p.Attribute != "":
		return fmt.Sprintf("%s.%s: %s", p.Table, p.Attribute, p.Message)
	case p.Table != "":
		return fmt.Sprintf("%s: %s", p.Table, p.Message)
	default:
		return p.Message
	}
}

// Validate reports everything that would stop data generation. It never
// modifies the schema.
func (s *Schema) Validate() []Problem {
	var problems []Problem
	seenTables := make(map[string]bool)

	for _, t := range s.Tables {
		if t.Name == "" {
			problems = append(problems, Problem{Message: "table with empty name"})
		} else if seenTables[t.Name] {
			problems = append(problems, Problem{Table: t.Name, Message: "duplicate table name"})
		}
		seenTables[t.Name] = true

		if t.Rows < 0 || t.Rows > MaxRows {
			problems = append(problems, Problem{Table: t.Name, Message: fmt.Sprintf("row count %d out of range 0..%d", t.Rows, MaxRows)})
		}

		seenAttrs := make(map[string]bool)
		for _, a := range t.Attributes {
			if a.Name == "" {
				problems = append(problems, Problem{Table: t.Name, Message: "attribute with empty name"})
				continue
			}
			if seenAttrs[a.Name] {
				problems = append(problems, Problem{Table: t.Name, Attribute: a.Name, Message: "duplicate attribute name"})
			}
			seenAttrs[a.Name] = true

			for _, msg := range s.attributeProblems(a) {
				problems = append(problems, Problem{Table: t.Name, Attribute: a.Name, Message: msg})
			}
		}
	}
	return problems
}

func (s *Schema) attributeProblems(a Attribute) []string {
	if a.IsForeignKey() {
		if a.Ref == nil || a.Ref.Table == "" || a.Ref.Attribute == "" {
			return []string{"foreign key without reference"}
		}
		target, err := s.Lookup(a.Ref.Table, a.Ref.Attribute)
		if err != nil {
			return []string{fmt.Sprintf("reference %s does not exist", a.Ref)}
		}
		if target.IsForeignKey() {
			return []string{fmt.Sprintf("reference %s is itself a foreign key", a.Ref)}
		}
		return nil
	}

	v := a.Value
	if !v.Type.Valid() {
		return []string{"unknown attribute type"}
	}
	if !v.Generation.Valid() {
		return []string{"unknown generation type"}
	}
	if !Compatible(v.Type, v.Generation) {
		return []string{fmt.Sprintf("type %s does not support generation %s", v.Type, v.Generation)}
	}

	var msgs []string
	switch v.Type {
	case Integer:
		if _, err := strconv.ParseInt(v.Start, 10, 64); err != nil {
			msgs = append(msgs, fmt.Sprintf("start %q is not an integer", v.Start))
		}
		step, err := strconv.ParseInt(v.Step, 10, 64)
		switch {
		case err != nil:
			msgs = append(msgs, fmt.Sprintf("step %q is not an integer", v.Step))
		case v.Generation == Random && step < 0:
			msgs = append(msgs, "random step must not be negative")
		case v.Generation == Repeating && step <= 0:
			msgs = append(msgs, "repeating step must be positive")
		}
	case Real:
		if _, err := strconv.ParseFloat(v.Start, 64); err != nil {
			msgs = append(msgs, fmt.Sprintf("start %q is not a number", v.Start))
		}
		step, err := strconv.ParseFloat(v.Step, 64)
		switch {
		case err != nil:
			msgs = append(msgs, fmt.Sprintf("step %q is not a number", v.Step))
		case v.Generation == Repeating && step <= 0:
			msgs = append(msgs, "repeating step must be positive")
		}
	case String:
		if v.Length <= 0 {
			msgs = append(msgs, "length must be positive")
		}
	case Date:
		if v.DateStart.IsZero() {
			msgs = append(msgs, "start date is not set")
		}
	}
	return msgs
}
