package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/tordrt/mockschema/internal/generate"
)

// maxParams keeps one INSERT below the bind-parameter limit of every
// supported engine.
const maxParams = 900

// Loader inserts generated datasets into existing tables.
type Loader struct {
	db *sql.DB
	qb squirrel.StatementBuilderType
	// rowsPerInsert caps multi-row VALUES lists; zero means as many as
	// maxParams allows.
	rowsPerInsert int
	// Truncate deletes existing rows, children first, before inserting.
	Truncate bool
}

// NewLoader creates a loader with the placeholder style of kind.
func NewLoader(db *sql.DB, kind Kind) *Loader {
	l := &Loader{db: db}
	switch kind {
	case Postgres:
		l.qb = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	case Oracle:
		// Oracle has no multi-row VALUES.
		l.qb = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Colon)
		l.rowsPerInsert = 1
	default:
		l.qb = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)
	}
	return l
}

// Load inserts every table parents first inside one transaction and returns
// the number of inserted rows. Datasets with cyclic references are
// rejected because no insert order satisfies them.
func (l *Loader) Load(ctx context.Context, ds *generate.Dataset) (int64, error) {
	if len(ds.Cyclic) > 0 {
		return 0, generate.ValidateCycles(generate.TopoResult{CycleTables: ds.Cyclic})
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if l.Truncate {
		for i := len(ds.Tables) - 1; i >= 0; i-- {
			query, args, err := l.qb.Delete(ds.Tables[i].Name).ToSql()
			if err != nil {
				return 0, err
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return 0, fmt.Errorf("failed to clear table %s: %w", ds.Tables[i].Name, err)
			}
		}
	}

	var total int64
	for _, t := range ds.Tables {
		n, err := l.insertTable(ctx, tx, t)
		total += n
		if err != nil {
			return total, fmt.Errorf("failed to load table %s: %w", t.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return total, nil
}

func (l *Loader) insertTable(ctx context.Context, tx *sql.Tx, t *generate.TableData) (int64, error) {
	if len(t.Columns) == 0 || t.Rows == 0 {
		return 0, nil
	}

	batch := max(1, maxParams/len(t.Columns))
	if l.rowsPerInsert > 0 {
		batch = min(batch, l.rowsPerInsert)
	}
	var inserted int64
	for start := 0; start < t.Rows; start += batch {
		end := min(start+batch, t.Rows)

		insert := l.qb.Insert(t.Name).Columns(t.Header()...)
		for i := start; i < end; i++ {
			insert = insert.Values(t.Row(i)...)
		}

		query, args, err := insert.ToSql()
		if err != nil {
			return inserted, err
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return inserted, err
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += n
		} else {
			inserted += int64(end - start)
		}
	}
	return inserted, nil
}
