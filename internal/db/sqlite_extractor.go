package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
)

// SQLiteExtractor reads a catalog from a SQLite file
type SQLiteExtractor struct {
	client *SQLClient
	qb     squirrel.StatementBuilderType
}

// NewSQLiteExtractor creates a SQLite extractor
func NewSQLiteExtractor(client *SQLClient) *SQLiteExtractor {
	return &SQLiteExtractor{
		client: client,
		qb:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

// ExtractCatalog reads the requested tables, or every user table when
// tables is empty
func (e *SQLiteExtractor) ExtractCatalog(ctx context.Context, tables []string) (*Catalog, error) {
	return readCatalog(ctx, e, tables)
}

func (e *SQLiteExtractor) listTables(ctx context.Context) ([]string, error) {
	return queryStrings(ctx, e.client.DB(), e.qb.Select("name").
		From("sqlite_master").
		Where(squirrel.Eq{"type": "table"}).
		Where(squirrel.NotLike{"name": "sqlite_%"}).
		OrderBy("name"))
}

// describe reads the pragma table functions; their argument cannot be bound
// so it is passed as a string literal.
func (e *SQLiteExtractor) describe(ctx context.Context, t *CatalogTable) error {
	literal := "'" + strings.ReplaceAll(t.Name, "'", "''") + "'"

	rows, err := e.qb.Select("name", "type", "pk").
		From(fmt.Sprintf("pragma_table_info(%s)", literal)).
		OrderBy("cid").
		RunWith(e.client.DB()).
		QueryContext(ctx)
	if err != nil {
		return err
	}
	defer rows.Close()

	// pk is the 1-based position within the primary key, 0 for other columns
	keyAt := map[int]string{}
	for rows.Next() {
		var col Column
		var pk int
		if err := rows.Scan(&col.Name, &col.Type, &pk); err != nil {
			return err
		}
		col.Length = declaredLength(col.Type)
		t.Columns = append(t.Columns, col)
		if pk > 0 {
			keyAt[pk] = col.Name
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for i := 1; i <= len(keyAt); i++ {
		t.PrimaryKey = append(t.PrimaryKey, keyAt[i])
	}

	t.ForeignKeys, err = queryForeignKeys(ctx, e.client.DB(), e.qb.
		Select(`"from"`, `"table"`, `"to"`).
		From(fmt.Sprintf("pragma_foreign_key_list(%s)", literal)).
		OrderBy("id", "seq"))
	return err
}

func (e *SQLiteExtractor) rowCount(ctx context.Context, table string) (int64, error) {
	return countRows(ctx, e.client.DB(), e.qb, fmt.Sprintf("%q", table))
}
