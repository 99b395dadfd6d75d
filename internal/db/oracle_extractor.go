package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
)

// OracleExtractor reads a catalog from the tables of one Oracle owner.
// Names are matched as stored in the data dictionary, which is upper case
// unless the table was created with quoted identifiers.
type OracleExtractor struct {
	client *SQLClient
	owner  string
	qb     squirrel.StatementBuilderType
}

// NewOracleExtractor creates an extractor for owner
func NewOracleExtractor(client *SQLClient, owner string) *OracleExtractor {
	return &OracleExtractor{
		client: client,
		owner:  owner,
		qb:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Colon),
	}
}

// ExtractCatalog reads the requested tables, or every table of the owner
// when tables is empty
func (e *OracleExtractor) ExtractCatalog(ctx context.Context, tables []string) (*Catalog, error) {
	return readCatalog(ctx, e, tables)
}

func (e *OracleExtractor) listTables(ctx context.Context) ([]string, error) {
	return queryStrings(ctx, e.client.DB(), e.qb.Select("table_name").
		From("all_tables").
		Where(squirrel.Eq{"owner": e.owner}).
		OrderBy("table_name"))
}

// constraintColumns selects the columns of the owner's constraints of one
// type on table, in key order.
func (e *OracleExtractor) constraintColumns(table, constraintType string) squirrel.SelectBuilder {
	return e.qb.Select().
		From("all_constraints c").
		Join("all_cons_columns cc ON cc.owner = c.owner AND cc.constraint_name = c.constraint_name").
		Where(squirrel.Eq{"c.owner": e.owner, "c.table_name": table, "c.constraint_type": constraintType}).
		OrderBy("c.constraint_name", "cc.position")
}

func (e *OracleExtractor) describe(ctx context.Context, t *CatalogTable) error {
	rows, err := e.qb.Select("column_name", "data_type", "data_scale", "char_length").
		From("all_tab_columns").
		Where(squirrel.Eq{"owner": e.owner, "table_name": t.Name}).
		OrderBy("column_id").
		RunWith(e.client.DB()).
		QueryContext(ctx)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var col Column
		var scale, length sql.NullInt64
		if err := rows.Scan(&col.Name, &col.Type, &scale, &length); err != nil {
			return err
		}
		col.Type = normalizeOracleType(col.Type, scale, length)
		if length.Int64 > 0 {
			col.Length = int(length.Int64)
		}
		t.Columns = append(t.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	t.PrimaryKey, err = queryStrings(ctx, e.client.DB(),
		e.constraintColumns(t.Name, "P").Columns("cc.column_name"))
	if err != nil {
		return err
	}

	// rc pairs each referencing column with the referenced key column at the
	// same position
	t.ForeignKeys, err = queryForeignKeys(ctx, e.client.DB(),
		e.constraintColumns(t.Name, "R").
			Columns("cc.column_name", "rc.table_name", "rc.column_name").
			Join("all_cons_columns rc ON rc.owner = c.r_owner AND rc.constraint_name = c.r_constraint_name AND rc.position = cc.position"))
	return err
}

// normalizeOracleType tells integer NUMBER columns apart from decimal ones
// and appends the character length of text columns.
func normalizeOracleType(dataType string, scale, length sql.NullInt64) string {
	switch {
	case dataType == "NUMBER" && scale.Valid && scale.Int64 == 0:
		return "INTEGER"
	case (dataType == "VARCHAR2" || dataType == "NVARCHAR2" || dataType == "CHAR") && length.Valid:
		return fmt.Sprintf("%s(%d)", dataType, length.Int64)
	default:
		return dataType
	}
}

func (e *OracleExtractor) rowCount(ctx context.Context, table string) (int64, error) {
	quote := func(s string) string { return `"` + strings.ReplaceAll(s, `"`, `""`) + `"` }
	return countRows(ctx, e.client.DB(), e.qb, quote(e.owner)+"."+quote(table))
}
