package db

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tordrt/mockschema/internal/schema"
)

// MapOptions controls how a catalog becomes a mock schema.
type MapOptions struct {
	// DefaultRows is used for empty tables. Zero means schema.DefaultRows.
	DefaultRows int
}

// maxStringLength caps generated strings for wide text columns.
const maxStringLength = 255

var lengthPattern = regexp.MustCompile(`\(\s*(\d+)`)

// declaredLength reads n from types such as varchar(n) or character(n).
func declaredLength(sqlType string) int {
	m := lengthPattern.FindStringSubmatch(sqlType)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// ClassifyType maps an SQL column type to the closest attribute type.
func ClassifyType(sqlType string) schema.AttributeType {
	t := strings.ToLower(strings.TrimSpace(sqlType))
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}

	switch {
	case strings.Contains(t, "int"), t == "serial", t == "bigserial", t == "smallserial",
		t == "bit", t == "year":
		return schema.Integer
	case strings.Contains(t, "real"), strings.Contains(t, "float"), strings.Contains(t, "double"),
		strings.Contains(t, "numeric"), strings.Contains(t, "decimal"), t == "money", t == "number":
		return schema.Real
	case strings.Contains(t, "date"), strings.Contains(t, "time"):
		return schema.Date
	default:
		return schema.String
	}
}

// FromCatalog builds a mock schema from a catalog. Foreign keys become
// reference attributes when their target is part of the catalog; other
// columns get a generation rule that suits their type. The returned
// warnings name every column that could not be mapped faithfully.
func FromCatalog(c *Catalog, opts MapOptions) (*schema.Schema, []string) {
	defaultRows := opts.DefaultRows
	if defaultRows <= 0 {
		defaultRows = schema.DefaultRows
	}

	s := schema.New()
	var warnings []string

	for _, ct := range c.Tables {
		t := schema.NewTable(ct.Name)
		t.Rows = defaultRows
		if ct.RowCount > 0 {
			t.Rows = int(min(ct.RowCount, schema.MaxRows))
		}

		pk := make(map[string]bool, len(ct.PrimaryKey))
		for _, name := range ct.PrimaryKey {
			pk[name] = true
		}
		fks := make(map[string]ForeignKey, len(ct.ForeignKeys))
		for _, fk := range ct.ForeignKeys {
			fks[fk.Column] = fk
		}

		for _, col := range ct.Columns {
			if fk, ok := fks[col.Name]; ok {
				ref, warning := resolveReference(c, ct.Name, fk)
				if warning == "" {
					t.Attributes = append(t.Attributes, schema.NewForeignKey(col.Name, ref))
					continue
				}
				warnings = append(warnings, warning)
			}

			a := schema.NewAttribute(col.Name)
			a.Value = valueFor(col, pk[col.Name] && len(ct.PrimaryKey) == 1)
			if pk[col.Name] {
				a.Key = schema.PrimaryKey
			}
			t.Attributes = append(t.Attributes, a)
		}

		if err := s.AddTable(t); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", ct.Name, err))
		}
	}

	return s, warnings
}

// resolveReference checks a foreign key against the catalog. A target
// column left empty by the database refers to the target's primary key.
func resolveReference(c *Catalog, table string, fk ForeignKey) (schema.Reference, string) {
	target, ok := c.Table(fk.TargetTable)
	if !ok {
		return schema.Reference{}, fmt.Sprintf("%s.%s: referenced table %s is not extracted, generating plain values", table, fk.Column, fk.TargetTable)
	}

	column := fk.TargetColumn
	if column == "" && len(target.PrimaryKey) == 1 {
		column = target.PrimaryKey[0]
	}
	for _, tfk := range target.ForeignKeys {
		if tfk.Column == column {
			return schema.Reference{}, fmt.Sprintf("%s.%s: referenced column %s.%s is itself a foreign key, generating plain values", table, fk.Column, fk.TargetTable, column)
		}
	}
	for _, col := range target.Columns {
		if col.Name == column {
			return schema.Reference{Table: fk.TargetTable, Attribute: column}, ""
		}
	}
	return schema.Reference{}, fmt.Sprintf("%s.%s: referenced column %s.%s not found, generating plain values", table, fk.Column, fk.TargetTable, column)
}

// valueFor picks generation parameters for a column. Single-column keys
// count upwards so that their values stay unique.
func valueFor(col Column, uniqueKey bool) schema.ValueSpec {
	v := schema.DefaultValueSpec()
	v.Type = ClassifyType(col.Type)

	switch v.Type {
	case schema.Integer:
		if uniqueKey {
			v.Generation, v.Start = schema.Increasing, "1"
		} else {
			v.Step = "1000"
		}
	case schema.Real:
		if uniqueKey {
			v.Generation, v.Start = schema.Increasing, "1"
		} else {
			v.Step = "1000"
		}
	case schema.String:
		if col.Length > 0 {
			v.Length = min(col.Length, maxStringLength)
		}
	case schema.Date:
		if uniqueKey {
			v.Generation = schema.Increasing
		}
	}
	return v
}
