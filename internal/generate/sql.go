package generate

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// SQLWriter writes a dataset as a self-contained SQL script.
type SQLWriter struct {
	writer  io.Writer
	dialect Dialect
}

// NewSQLWriter creates a writer for the given dialect.
func NewSQLWriter(w io.Writer, d Dialect) *SQLWriter {
	return &SQLWriter{writer: w, dialect: d}
}

// Write emits DROP and CREATE statements in dependency order, then the
// INSERTs, then the foreign-key constraints. Adding constraints last lets
// cyclic references load.
func (w *SQLWriter) Write(ds *Dataset) error {
	bw := bufio.NewWriter(w.writer)

	// Children are dropped before their parents.
	for i := len(ds.Tables) - 1; i >= 0; i-- {
		_, _ = fmt.Fprintln(bw, w.dialect.dropTable(ds.Tables[i].Name))
	}
	_, _ = fmt.Fprintln(bw)

	for _, t := range ds.Tables {
		w.createTable(bw, t)
	}

	for _, t := range ds.Tables {
		w.inserts(bw, t)
	}

	for _, t := range ds.Tables {
		for _, c := range t.Columns {
			if c.Reference != nil {
				_, _ = fmt.Fprintln(bw, w.dialect.foreignKey(t.Name, c.Name, *c.Reference))
			}
		}
	}

	return bw.Flush()
}

func (w *SQLWriter) createTable(bw *bufio.Writer, t *TableData) {
	lines := make([]string, 0, len(t.Columns)+1)
	for _, c := range t.Columns {
		lines = append(lines, fmt.Sprintf("    %s %s NOT NULL", c.Name, w.dialect.ColumnType(c.Type, c.Length)))
	}
	if len(t.PrimaryKeys) > 0 {
		lines = append(lines, fmt.Sprintf("    CONSTRAINT pk_%s PRIMARY KEY (%s)", t.Name, strings.Join(t.PrimaryKeys, ", ")))
	}
	_, _ = fmt.Fprintf(bw, "CREATE TABLE %s (\n%s\n);\n\n", t.Name, strings.Join(lines, ",\n"))
}

func (w *SQLWriter) inserts(bw *bufio.Writer, t *TableData) {
	if t.Rows == 0 || len(t.Columns) == 0 {
		return
	}
	columns := strings.Join(t.Header(), ", ")
	values := make([]string, len(t.Columns))
	for i := 0; i < t.Rows; i++ {
		for j, c := range t.Columns {
			values[j] = w.dialect.literal(c.Values[i])
		}
		_, _ = fmt.Fprintf(bw, "INSERT INTO %s (%s) VALUES (%s);\n", t.Name, columns, strings.Join(values, ", "))
	}
	_, _ = fmt.Fprintln(bw)
}

// WriteSQLFile writes the script to path, creating parent directories.
func WriteSQLFile(path string, ds *Dataset, d Dialect) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create SQL file: %w", err)
	}
	if err := NewSQLWriter(file, d).Write(ds); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write SQL file: %w", err)
	}
	return file.Close()
}
