package db

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

// PostgresExtractor reads a catalog from one PostgreSQL schema through
// pg_catalog
type PostgresExtractor struct {
	client *PostgresClient
	schema string
	qb     squirrel.StatementBuilderType
}

// NewPostgresExtractor creates an extractor for one schema
func NewPostgresExtractor(client *PostgresClient, schemaName string) *PostgresExtractor {
	return &PostgresExtractor{
		client: client,
		schema: schemaName,
		qb:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ExtractCatalog reads the requested tables, or every ordinary table of the
// schema when tables is empty
func (e *PostgresExtractor) ExtractCatalog(ctx context.Context, tables []string) (*Catalog, error) {
	return readCatalog(ctx, e, tables)
}

func (e *PostgresExtractor) listTables(ctx context.Context) ([]string, error) {
	query, args, err := e.qb.Select("tablename").
		From("pg_catalog.pg_tables").
		Where(squirrel.Eq{"schemaname": e.schema}).
		OrderBy("tablename").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := e.client.Conn().Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// format_type renders types the way psql does, e.g. character varying(40)
const postgresColumnsQuery = `
	SELECT a.attname, format_type(a.atttypid, a.atttypmod)
	FROM pg_catalog.pg_attribute a
	JOIN pg_catalog.pg_class t ON t.oid = a.attrelid
	JOIN pg_catalog.pg_namespace n ON n.oid = t.relnamespace
	WHERE n.nspname = $1 AND t.relname = $2
		AND a.attnum > 0 AND NOT a.attisdropped
	ORDER BY a.attnum
`

// postgresKeysQuery lists the columns of the primary key and of every
// foreign key. conkey and confkey are parallel arrays, so unnesting them
// together pairs each referencing column with its target.
const postgresKeysQuery = `
	SELECT con.contype::text, a.attname, coalesce(ft.relname, ''), coalesce(fa.attname, '')
	FROM pg_catalog.pg_constraint con
	JOIN pg_catalog.pg_class t ON t.oid = con.conrelid
	JOIN pg_catalog.pg_namespace n ON n.oid = t.relnamespace
	CROSS JOIN LATERAL unnest(con.conkey, con.confkey) WITH ORDINALITY AS k(attnum, fattnum, pos)
	JOIN pg_catalog.pg_attribute a ON a.attrelid = con.conrelid AND a.attnum = k.attnum
	LEFT JOIN pg_catalog.pg_class ft ON ft.oid = con.confrelid
	LEFT JOIN pg_catalog.pg_attribute fa ON fa.attrelid = con.confrelid AND fa.attnum = k.fattnum
	WHERE n.nspname = $1 AND t.relname = $2 AND con.contype IN ('p', 'f')
	ORDER BY con.contype, con.conname, k.pos
`

func (e *PostgresExtractor) describe(ctx context.Context, t *CatalogTable) error {
	conn := e.client.Conn()

	rows, err := conn.Query(ctx, postgresColumnsQuery, e.schema, t.Name)
	if err != nil {
		return err
	}
	t.Columns, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (Column, error) {
		var col Column
		err := row.Scan(&col.Name, &col.Type)
		col.Length = declaredLength(col.Type)
		return col, err
	})
	if err != nil {
		return err
	}

	rows, err = conn.Query(ctx, postgresKeysQuery, e.schema, t.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var kind, column, target, targetColumn string
		if err := rows.Scan(&kind, &column, &target, &targetColumn); err != nil {
			return err
		}
		if kind == "p" {
			t.PrimaryKey = append(t.PrimaryKey, column)
			continue
		}
		t.ForeignKeys = append(t.ForeignKeys, ForeignKey{Column: column, TargetTable: target, TargetColumn: targetColumn})
	}
	return rows.Err()
}

func (e *PostgresExtractor) rowCount(ctx context.Context, table string) (int64, error) {
	query, args, err := e.qb.Select("COUNT(*)").
		From(pgx.Identifier{e.schema, table}.Sanitize()).
		ToSql()
	if err != nil {
		return 0, err
	}

	var count int64
	err = e.client.Conn().QueryRow(ctx, query, args...).Scan(&count)
	return count, err
}
