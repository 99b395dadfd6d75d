package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Connection bundles an extractor and a database/sql handle for one URL.
type Connection struct {
	Kind      Kind
	Extractor Extractor
	DB        *sql.DB
	close     func() error
}

// Close releases every handle opened by Open.
func (c *Connection) Close() error {
	return c.close()
}

// Open connects to url. schemaName selects the PostgreSQL schema (default
// "public"), the MySQL database (default: the one named in the DSN) or the
// Oracle owner (default: the connecting user); it is ignored for SQLite.
func Open(ctx context.Context, url, schemaName string) (*Connection, error) {
	kind, connStr, err := ParseURL(url)
	if err != nil {
		return nil, err
	}

	if kind == Postgres {
		client, err := NewPostgresClient(ctx, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		if schemaName == "" {
			schemaName = "public"
		}
		return &Connection{
			Kind:      kind,
			Extractor: NewPostgresExtractor(client, schemaName),
			DB:        client.DB(),
			close:     client.Close,
		}, nil
	}

	client, err := NewSQLClient(ctx, kind, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", kind, err)
	}
	conn := &Connection{Kind: kind, DB: client.DB(), close: client.Close}

	switch kind {
	case MySQL:
		if schemaName == "" {
			if schemaName, err = ParseDatabaseName(connStr); err != nil {
				_ = client.Close()
				return nil, fmt.Errorf("failed to determine database name: %w (please pass a schema name)", err)
			}
		}
		conn.Extractor = NewMySQLExtractor(client, schemaName)
	case Oracle:
		if schemaName == "" {
			if schemaName, err = ParseOracleOwner(connStr); err != nil {
				_ = client.Close()
				return nil, err
			}
		}
		conn.Extractor = NewOracleExtractor(client, schemaName)
	default:
		conn.Extractor = NewSQLiteExtractor(client)
	}
	return conn, nil
}
