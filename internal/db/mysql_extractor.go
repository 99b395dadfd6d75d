package db

import (
	"context"
	"database/sql"
	"strings"

	"github.com/Masterminds/squirrel"
)

// MySQLExtractor reads a catalog from one MySQL database
type MySQLExtractor struct {
	client   *SQLClient
	database string
	qb       squirrel.StatementBuilderType
}

// NewMySQLExtractor creates an extractor for database
func NewMySQLExtractor(client *SQLClient, database string) *MySQLExtractor {
	return &MySQLExtractor{
		client:   client,
		database: database,
		qb:       squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

// ExtractCatalog reads the requested tables, or every base table when
// tables is empty
func (e *MySQLExtractor) ExtractCatalog(ctx context.Context, tables []string) (*Catalog, error) {
	return readCatalog(ctx, e, tables)
}

func (e *MySQLExtractor) listTables(ctx context.Context) ([]string, error) {
	return queryStrings(ctx, e.client.DB(), e.qb.Select("table_name").
		From("information_schema.tables").
		Where(squirrel.Eq{"table_schema": e.database, "table_type": "BASE TABLE"}).
		OrderBy("table_name"))
}

func (e *MySQLExtractor) describe(ctx context.Context, t *CatalogTable) error {
	inTable := squirrel.Eq{"table_schema": e.database, "table_name": t.Name}

	// column_type keeps the declared length, e.g. varchar(40)
	rows, err := e.qb.Select("column_name", "column_type", "character_maximum_length").
		From("information_schema.columns").
		Where(inTable).
		OrderBy("ordinal_position").
		RunWith(e.client.DB()).
		QueryContext(ctx)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var col Column
		var length sql.NullInt64
		if err := rows.Scan(&col.Name, &col.Type, &length); err != nil {
			return err
		}
		col.Length = int(length.Int64)
		t.Columns = append(t.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	// The primary key constraint is always named PRIMARY
	t.PrimaryKey, err = queryStrings(ctx, e.client.DB(), e.qb.Select("column_name").
		From("information_schema.key_column_usage").
		Where(inTable).
		Where(squirrel.Eq{"constraint_name": "PRIMARY"}).
		OrderBy("ordinal_position"))
	if err != nil {
		return err
	}

	t.ForeignKeys, err = queryForeignKeys(ctx, e.client.DB(), e.qb.
		Select("column_name", "referenced_table_name", "referenced_column_name").
		From("information_schema.key_column_usage").
		Where(inTable).
		Where(squirrel.NotEq{"referenced_table_name": nil}).
		OrderBy("constraint_name", "ordinal_position"))
	return err
}

func (e *MySQLExtractor) rowCount(ctx context.Context, table string) (int64, error) {
	return countRows(ctx, e.client.DB(), e.qb, "`"+strings.ReplaceAll(table, "`", "``")+"`")
}
