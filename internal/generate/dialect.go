package generate

import (
	"fmt"
	"strings"
	"time"

	"github.com/tordrt/mockschema/internal/schema"
)

// Dialect selects the SQL flavour of generated scripts.
type Dialect string

const (
	Postgres Dialect = "postgres"
	Oracle   Dialect = "oracle"
)

// ParseDialect accepts postgres or oracle, case-insensitively.
func ParseDialect(s string) (Dialect, error) {
	switch d := Dialect(strings.ToLower(s)); d {
	case Postgres, Oracle:
		return d, nil
	default:
		return "", fmt.Errorf("invalid dialect %q (must be 'postgres' or 'oracle')", s)
	}
}

// ColumnType returns the column type used in CREATE TABLE.
func (d Dialect) ColumnType(t schema.AttributeType, length int) string {
	switch d {
	case Oracle:
		switch t {
		case schema.Integer, schema.Real:
			return "NUMBER"
		case schema.String:
			return fmt.Sprintf("VARCHAR2(%d)", length)
		case schema.Date:
			return "TIMESTAMP"
		}
	default:
		switch t {
		case schema.Integer:
			return "INTEGER"
		case schema.Real:
			return "REAL"
		case schema.String:
			return fmt.Sprintf("VARCHAR(%d)", length)
		case schema.Date:
			return "DATE"
		}
	}
	return "TEXT"
}

func (d Dialect) dropTable(name string) string {
	if d == Oracle {
		return fmt.Sprintf("DROP TABLE %s CASCADE CONSTRAINTS;", name)
	}
	return fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE;", name)
}

func (d Dialect) foreignKey(table, attribute string, ref schema.Reference) string {
	stmt := fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT fk_%s_%s FOREIGN KEY (%s) REFERENCES %s(%s)",
		table, table, attribute, attribute, ref.Table, ref.Attribute)
	if d != Oracle {
		stmt += " ON UPDATE NO ACTION ON DELETE NO ACTION"
	}
	return stmt + ";"
}

// literal renders a value for an INSERT statement.
func (d Dialect) literal(v any) string {
	switch val := v.(type) {
	case string:
		return "'" + strings.ReplaceAll(val, "'", "''") + "'"
	case int64, float64:
		return FormatValue(val)
	case time.Time:
		if d == Oracle {
			return fmt.Sprintf("TO_TIMESTAMP('%s', 'YYYY-MM-DD HH24:MI:SS')", val.Format(oracleLayout))
		}
		return "'" + FormatValue(val) + "'"
	default:
		return "'" + strings.ReplaceAll(FormatValue(v), "'", "''") + "'"
	}
}
