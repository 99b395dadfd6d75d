//go:build integration
// +build integration

package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/tordrt/mockschema/internal/generate"
	"github.com/tordrt/mockschema/internal/schema"
)

var sqliteFixture = []string{
	`CREATE TABLE users (
		id INTEGER PRIMARY KEY,
		username VARCHAR(30) NOT NULL,
		created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE orders (
		id INTEGER PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id),
		total REAL NOT NULL
	)`,
	`INSERT INTO users (id, username, created_at) VALUES (1, 'ada', '2024-01-01 00:00:00')`,
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	url := "sqlite://" + filepath.Join(t.TempDir(), "shop.db")

	conn, err := Open(ctx, url, "")
	if err != nil {
		t.Fatalf("Failed to connect to SQLite: %v", err)
	}
	defer conn.Close()

	for _, stmt := range sqliteFixture {
		if _, err := conn.DB.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("fixture: %v", err)
		}
	}

	catalog, err := conn.Extractor.ExtractCatalog(ctx, nil)
	if err != nil {
		t.Fatalf("Failed to extract catalog: %v", err)
	}
	verifyCatalogTables(t, catalog, []string{"orders", "users"})

	users, _ := catalog.Table("users")
	if users.RowCount != 1 {
		t.Errorf("users.RowCount = %d, want 1", users.RowCount)
	}
	orders, _ := catalog.Table("orders")
	if len(orders.ForeignKeys) != 1 || orders.ForeignKeys[0].TargetTable != "users" {
		t.Errorf("orders.ForeignKeys = %+v", orders.ForeignKeys)
	}

	s, warnings := FromCatalog(catalog, MapOptions{DefaultRows: 25})
	if len(warnings) > 0 {
		t.Errorf("warnings = %v", warnings)
	}
	// Keys must not collide with the fixture row.
	u, _ := s.Table("users")
	u.Rows = 10
	id, _ := u.Attribute("id")
	id.Value.Start = "100"

	ds, err := generate.New(1).Generate(s)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	loader := NewLoader(conn.DB, conn.Kind)
	n, err := loader.Load(ctx, ds)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if n != 35 {
		t.Errorf("Load() inserted %d rows, want 35", n)
	}

	var count int
	if err := conn.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 11 {
		t.Errorf("users has %d rows, want 11", count)
	}

	loader.Truncate = true
	if _, err := loader.Load(ctx, ds); err != nil {
		t.Fatalf("Load() with truncate error = %v", err)
	}
	if err := conn.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 25 {
		t.Errorf("orders has %d rows after truncate, want 25", count)
	}
}

func TestLoaderRejectsCycles(t *testing.T) {
	ctx := context.Background()
	conn, err := Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "c.db"), "")
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	ds := &generate.Dataset{Cyclic: []string{"a", "b"}}
	if _, err := NewLoader(conn.DB, conn.Kind).Load(ctx, ds); err == nil {
		t.Error("Expected error but got none")
	}
}

func TestPostgresExtraction(t *testing.T) {
	testServerExtraction(t, "POSTGRES_TEST_URL")
}

func TestMySQLExtraction(t *testing.T) {
	testServerExtraction(t, "MYSQL_TEST_URL")
}

// The Oracle fixture must create its tables with quoted lower-case names.
func TestOracleExtraction(t *testing.T) {
	testServerExtraction(t, "ORACLE_TEST_URL")
}

// testServerExtraction expects the users/products/orders/order_items
// fixture to be loaded in the database named by env.
func testServerExtraction(t *testing.T, env string) {
	url := os.Getenv(env)
	if url == "" {
		t.Skipf("%s not set", env)
	}
	ctx := context.Background()

	conn, err := Open(ctx, url, "")
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close()

	catalog, err := conn.Extractor.ExtractCatalog(ctx, nil)
	if err != nil {
		t.Fatalf("Failed to extract catalog: %v", err)
	}
	verifyCatalogTables(t, catalog, []string{"order_items", "orders", "products", "users"})

	s, _ := FromCatalog(catalog, MapOptions{})
	items, ok := s.Table("order_items")
	if !ok {
		t.Fatal("order_items not mapped")
	}
	a, ok := items.Attribute("order_id")
	if !ok || a.Key != schema.ForeignKey || a.Ref.Table != "orders" {
		t.Errorf("order_items.order_id = %+v", a)
	}
}

func verifyCatalogTables(t *testing.T, c *Catalog, expected []string) {
	t.Helper()

	if len(c.Tables) != len(expected) {
		t.Errorf("Expected %d tables, got %d", len(expected), len(c.Tables))
	}
	for _, name := range expected {
		if _, ok := c.Table(name); !ok {
			t.Errorf("Expected table %s not found in catalog", name)
		}
	}
}

func TestLoaderSelfReference(t *testing.T) {
	ctx := context.Background()
	url := "sqlite://" + filepath.Join(t.TempDir(), "emp.db") + "?_foreign_keys=on"

	conn, err := Open(ctx, url, "")
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if _, err := conn.DB.ExecContext(ctx, `CREATE TABLE emp (
		id INTEGER PRIMARY KEY,
		manager INTEGER NOT NULL REFERENCES emp(id)
	)`); err != nil {
		t.Fatalf("fixture: %v", err)
	}

	catalog, err := conn.Extractor.ExtractCatalog(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	s, warnings := FromCatalog(catalog, MapOptions{DefaultRows: 1000})
	if len(warnings) > 0 {
		t.Errorf("warnings = %v", warnings)
	}

	ds, err := generate.New(5).Generate(s)
	if err != nil {
		t.Fatal(err)
	}
	n, err := NewLoader(conn.DB, conn.Kind).Load(ctx, ds)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if n != 1000 {
		t.Errorf("Load() inserted %d rows, want 1000", n)
	}
}
