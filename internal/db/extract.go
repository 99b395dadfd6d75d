package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
)

// catalogSource is the engine specific half of an Extractor.
type catalogSource interface {
	// listTables names every table the extractor covers, in a stable order.
	listTables(ctx context.Context) ([]string, error)
	// describe fills in the columns and keys of t.
	describe(ctx context.Context, t *CatalogTable) error
	rowCount(ctx context.Context, table string) (int64, error)
}

// readCatalog reads tables, or every table src lists when tables is empty.
func readCatalog(ctx context.Context, src catalogSource, tables []string) (*Catalog, error) {
	if len(tables) == 0 {
		var err error
		if tables, err = src.listTables(ctx); err != nil {
			return nil, fmt.Errorf("failed to list tables: %w", err)
		}
	}

	catalog := &Catalog{Tables: make([]CatalogTable, 0, len(tables))}
	for _, name := range tables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		t := CatalogTable{Name: name}
		if err := src.describe(ctx, &t); err != nil {
			return nil, fmt.Errorf("failed to describe table %s: %w", name, err)
		}
		if len(t.Columns) == 0 {
			return nil, fmt.Errorf("table %s not found", name)
		}

		n, err := src.rowCount(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to count rows of %s: %w", name, err)
		}
		t.RowCount = n

		catalog.Tables = append(catalog.Tables, t)
	}

	return catalog, nil
}

// queryStrings runs a single column select.
func queryStrings(ctx context.Context, db *sql.DB, q squirrel.SelectBuilder) ([]string, error) {
	rows, err := q.RunWith(db).QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// queryForeignKeys runs a select of (column, target table, target column).
// A NULL target column stands for the target's primary key.
func queryForeignKeys(ctx context.Context, db *sql.DB, q squirrel.SelectBuilder) ([]ForeignKey, error) {
	rows, err := q.RunWith(db).QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fks []ForeignKey
	for rows.Next() {
		var fk ForeignKey
		var target sql.NullString
		if err := rows.Scan(&fk.Column, &fk.TargetTable, &target); err != nil {
			return nil, err
		}
		fk.TargetColumn = target.String
		fks = append(fks, fk)
	}
	return fks, rows.Err()
}

// countRows counts the rows of an already quoted table name.
func countRows(ctx context.Context, db *sql.DB, qb squirrel.StatementBuilderType, quoted string) (int64, error) {
	var n int64
	err := qb.Select("COUNT(*)").From(quoted).RunWith(db).QueryRowContext(ctx).Scan(&n)
	return n, err
}
