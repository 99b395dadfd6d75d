package db

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// Kind identifies a supported database engine.
type Kind string

const (
	Postgres Kind = "postgres"
	MySQL    Kind = "mysql"
	SQLite   Kind = "sqlite"
	Oracle   Kind = "oracle"
)

// ParseURL detects the database kind and returns the connection string the
// driver expects.
func ParseURL(rawURL string) (Kind, string, error) {
	if rawURL == "" {
		return "", "", fmt.Errorf("database URL is required")
	}

	if strings.HasPrefix(rawURL, "postgres://") || strings.HasPrefix(rawURL, "postgresql://") {
		return Postgres, rawURL, nil
	}

	if strings.HasPrefix(rawURL, "mysql://") {
		// The MySQL driver takes a bare DSN
		return MySQL, strings.TrimPrefix(rawURL, "mysql://"), nil
	}

	if strings.HasPrefix(rawURL, "sqlite://") {
		return SQLite, strings.TrimPrefix(rawURL, "sqlite://"), nil
	}

	if strings.HasPrefix(rawURL, "oracle://") {
		// go-ora parses the URL itself
		return Oracle, rawURL, nil
	}

	return "", "", fmt.Errorf("invalid database URL scheme (must start with postgres://, mysql://, sqlite:// or oracle://)")
}

// ParseDatabaseName returns the database named in a MySQL DSN.
func ParseDatabaseName(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("failed to parse MySQL DSN: %w", err)
	}
	if cfg.DBName == "" {
		return "", fmt.Errorf("no database name in MySQL DSN")
	}
	return cfg.DBName, nil
}

// ParseOracleOwner returns the user of an Oracle URL in the upper case the
// data dictionary stores it in.
func ParseOracleOwner(connString string) (string, error) {
	u, err := url.Parse(connString)
	if err != nil {
		return "", fmt.Errorf("failed to parse Oracle URL: %w", err)
	}
	if u.User == nil || u.User.Username() == "" {
		return "", fmt.Errorf("no user in Oracle URL")
	}
	return strings.ToUpper(u.User.Username()), nil
}
