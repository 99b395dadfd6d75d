package db

import "context"

// Catalog is the structure of a live database as read by an Extractor.
type Catalog struct {
	Tables []CatalogTable
}

// CatalogTable describes one table.
type CatalogTable struct {
	Name        string
	Columns     []Column
	PrimaryKey  []string
	ForeignKeys []ForeignKey
	RowCount    int64
}

// Column is a table column with its SQL type as reported by the database.
type Column struct {
	Name string
	Type string
	// Length is the declared character length, 0 when unknown.
	Length int
}

// ForeignKey links one column to a column of another table.
type ForeignKey struct {
	Column       string
	TargetTable  string
	TargetColumn string
}

// Extractor reads a catalog. An empty tables list means every table.
type Extractor interface {
	ExtractCatalog(ctx context.Context, tables []string) (*Catalog, error)
}

// Table looks up a table by name.
func (c *Catalog) Table(name string) (*CatalogTable, bool) {
	for i := range c.Tables {
		if c.Tables[i].Name == name {
			return &c.Tables[i], true
		}
	}
	return nil, false
}

// Exclude drops the named tables.
func (c *Catalog) Exclude(names []string) {
	if len(names) == 0 {
		return
	}

	excluded := make(map[string]bool, len(names))
	for _, n := range names {
		excluded[n] = true
	}

	kept := make([]CatalogTable, 0, len(c.Tables))
	for _, t := range c.Tables {
		if !excluded[t.Name] {
			kept = append(kept, t)
		}
	}
	c.Tables = kept
}
