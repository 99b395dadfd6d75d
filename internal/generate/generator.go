// Package generate builds mock data for a schema and writes it as CSV files
// or SQL scripts.
package generate

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/tordrt/mockschema/internal/schema"
)

// ErrInvalidSchema is returned when a schema fails validation before
// generation.
var ErrInvalidSchema = errors.New("schema is not valid for generation")

// Column holds the generated values of one attribute.
type Column struct {
	Name   string
	Type   schema.AttributeType
	Length int
	Values []any
	// Reference is set for foreign-key columns.
	Reference *schema.Reference
}

// TableData holds the generated rows of one table.
type TableData struct {
	Name        string
	Rows        int
	Columns     []*Column
	PrimaryKeys []string
}

// Row returns the i-th row in column order.
func (t *TableData) Row(i int) []any {
	row := make([]any, len(t.Columns))
	for j, c := range t.Columns {
		row[j] = c.Values[i]
	}
	return row
}

// Column looks up a column by name.
func (t *TableData) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Header returns the column names.
func (t *TableData) Header() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Dataset is the generated data of a whole schema.
type Dataset struct {
	// Tables are ordered parents first.
	Tables []*TableData
	// Cyclic names tables whose foreign keys form a cycle.
	Cyclic []string
}

// Table looks up a table by name.
func (d *Dataset) Table(name string) (*TableData, bool) {
	for _, t := range d.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// Generator produces datasets. It is not safe for concurrent use.
type Generator struct {
	rand  *rand.Rand
	faker *faker
}

// New returns a generator seeded with seed. A zero seed uses the clock.
func New(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	r := rand.New(rand.NewSource(seed))
	return &Generator{rand: r, faker: &faker{rand: r}}
}

// Generate validates s and builds every table. Plain columns are generated
// first so that foreign keys can pick from any table, including tables of a
// cycle.
func (g *Generator) Generate(s *schema.Schema) (*Dataset, error) {
	if problems := s.Validate(); len(problems) > 0 {
		msgs := make([]string, len(problems))
		for i, p := range problems {
			msgs[i] = p.String()
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidSchema, strings.Join(msgs, "; "))
	}

	topo := BuildGraph(s).TopoSort()
	ds := &Dataset{Cyclic: topo.CycleTables}

	for _, name := range topo.Order {
		t, _ := s.Table(name)
		td := &TableData{Name: t.Name, Rows: t.Rows, PrimaryKeys: t.PrimaryKeys()}
		for _, a := range t.Attributes {
			col := &Column{Name: a.Name, Type: a.Value.Type, Length: a.Value.Length}
			if a.IsForeignKey() {
				ref := *a.Ref
				col.Reference = &ref
				td.Columns = append(td.Columns, col)
				continue
			}
			values, err := g.values(a.Value, t.Rows)
			if err != nil {
				return nil, fmt.Errorf("failed to generate %s.%s: %w", t.Name, a.Name, err)
			}
			col.Values = values
			if adjustsLength(a.Value.Generation) {
				col.Length = longest(values)
			}
			td.Columns = append(td.Columns, col)
		}
		ds.Tables = append(ds.Tables, td)
	}

	for _, td := range ds.Tables {
		for _, col := range td.Columns {
			if col.Reference == nil {
				continue
			}
			if err := g.resolve(ds, td, col); err != nil {
				return nil, err
			}
		}
	}
	return ds, nil
}

// resolve fills a foreign-key column with values picked at random from the
// referenced column. A reference into the same table only picks rows up to
// and including the current one, so inserting rows in order never points
// at a row that does not exist yet.
func (g *Generator) resolve(ds *Dataset, td *TableData, col *Column) error {
	parent, ok := ds.Table(col.Reference.Table)
	if !ok {
		return fmt.Errorf("%s.%s references unknown table %s", td.Name, col.Name, col.Reference.Table)
	}
	target, ok := parent.Column(col.Reference.Attribute)
	if !ok || target.Reference != nil {
		return fmt.Errorf("%s.%s references invalid attribute %s", td.Name, col.Name, col.Reference)
	}

	col.Type = target.Type
	col.Length = target.Length
	col.Values = make([]any, td.Rows)
	if td.Rows == 0 {
		return nil
	}
	if len(target.Values) == 0 {
		return fmt.Errorf("%s.%s references %s which has no rows", td.Name, col.Name, col.Reference)
	}
	self := parent == td
	for i := range col.Values {
		n := len(target.Values)
		if self {
			n = min(n, i+1)
		}
		col.Values[i] = target.Values[g.rand.Intn(n)]
	}
	return nil
}
