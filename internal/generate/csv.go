package generate

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// WriteCSV writes one <table>.csv per table into dir, creating it if needed.
// Tables are written concurrently. It returns the written file paths in
// dataset order.
func WriteCSV(ctx context.Context, dir string, ds *Dataset) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	paths := make([]string, len(ds.Tables))
	g, ctx := errgroup.WithContext(ctx)
	for i, t := range ds.Tables {
		paths[i] = filepath.Join(dir, t.Name+".csv")
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return writeTableCSV(paths[i], t)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

func writeTableCSV(path string, t *TableData) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file for %s: %w", t.Name, err)
	}
	defer func() { _ = file.Close() }()

	w := csv.NewWriter(file)
	if err := w.Write(t.Header()); err != nil {
		return fmt.Errorf("failed to write header for %s: %w", t.Name, err)
	}
	record := make([]string, len(t.Columns))
	for i := 0; i < t.Rows; i++ {
		for j, c := range t.Columns {
			record[j] = FormatValue(c.Values[i])
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d for %s: %w", i, t.Name, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV for %s: %w", t.Name, err)
	}
	return file.Close()
}
