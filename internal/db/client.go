package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/sijms/go-ora/v2"
)

// sqlDrivers maps the engines reached through database/sql alone to their
// registered driver names.
var sqlDrivers = map[Kind]string{
	MySQL:  "mysql",
	SQLite: "sqlite3",
	Oracle: "oracle",
}

// SQLClient is a pinged database/sql handle for MySQL, SQLite or Oracle
type SQLClient struct {
	kind Kind
	db   *sql.DB
}

// NewSQLClient opens dsn with the driver registered for kind
func NewSQLClient(ctx context.Context, kind Kind, dsn string) (*SQLClient, error) {
	driver, ok := sqlDrivers[kind]
	if !ok {
		return nil, fmt.Errorf("no database/sql driver for %q", kind)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if kind == SQLite {
		// SQLite locks the whole file for writing; a second connection
		// would block behind the loader's transaction.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLClient{kind: kind, db: db}, nil
}

// Kind returns the engine the client talks to
func (c *SQLClient) Kind() Kind {
	return c.kind
}

// DB returns the underlying handle
func (c *SQLClient) DB() *sql.DB {
	return c.db
}

// Close closes the handle
func (c *SQLClient) Close() error {
	return c.db.Close()
}

// PostgresClient holds a pgx connection for catalog queries and a
// database/sql pool with the same configuration for loading
type PostgresClient struct {
	conn *pgx.Conn
	db   *sql.DB
}

// NewPostgresClient connects to connString
func NewPostgresClient(ctx context.Context, connString string) (*PostgresClient, error) {
	cfg, err := pgx.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("invalid PostgreSQL URL: %w", err)
	}

	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &PostgresClient{conn: conn, db: stdlib.OpenDB(*cfg)}, nil
}

// Conn returns the pgx connection
func (c *PostgresClient) Conn() *pgx.Conn {
	return c.conn
}

// DB returns the database/sql pool
func (c *PostgresClient) DB() *sql.DB {
	return c.db
}

// Close closes both handles
func (c *PostgresClient) Close() error {
	return errors.Join(c.db.Close(), c.conn.Close(context.Background()))
}
