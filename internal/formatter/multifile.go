package formatter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/tordrt/mockschema/internal/schema"
)

// MultiFileFormatter writes an overview plus one file per table
type MultiFileFormatter struct {
	OutputDir    string
	OutputFormat string // "text" or "markdown"
}

// NewMultiFileFormatter creates a new multi-file formatter
func NewMultiFileFormatter(outputDir, format string) *MultiFileFormatter {
	return &MultiFileFormatter{
		OutputDir:    outputDir,
		OutputFormat: format,
	}
}

// Format writes _overview plus <table> files into OutputDir
func (f *MultiFileFormatter) Format(s *schema.Schema) error {
	if f.OutputFormat != formatText && f.OutputFormat != formatMarkdown {
		return fmt.Errorf("invalid format %q (must be 'text' or 'markdown')", f.OutputFormat)
	}
	if err := os.MkdirAll(f.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := f.writeFile("_overview", func(w io.Writer) { f.writeOverview(w, s) }); err != nil {
		return fmt.Errorf("failed to write overview: %w", err)
	}

	for i := range s.Tables {
		table := &s.Tables[i]
		write := func(w io.Writer) { f.writeTable(w, table, s) }
		if err := f.writeFile(table.Name, write); err != nil {
			return fmt.Errorf("failed to write table file for %s: %w", table.Name, err)
		}
	}

	return nil
}

func (f *MultiFileFormatter) writeFile(name string, write func(io.Writer)) error {
	file, err := os.Create(filepath.Join(f.OutputDir, name+f.ext()))
	if err != nil {
		return err
	}
	write(file)
	return file.Close()
}

func (f *MultiFileFormatter) writeOverview(w io.Writer, s *schema.Schema) {
	if f.OutputFormat == formatMarkdown {
		_, _ = fmt.Fprintf(w, "# Schema Overview\n\n")
		_, _ = fmt.Fprintf(w, "Each table has a corresponding file: `<table_name>%s`\n\n", f.ext())
		_, _ = fmt.Fprintf(w, "## Tables\n\n")
	} else {
		_, _ = fmt.Fprintf(w, "SCHEMA OVERVIEW\n")
		_, _ = fmt.Fprintf(w, "Each table has a file: <table_name>%s\n\n", f.ext())
	}

	sorted := slices.SortedFunc(slices.Values(s.Tables), func(a, b schema.Table) int {
		return strings.Compare(a.Name, b.Name)
	})

	for _, table := range sorted {
		line := fmt.Sprintf("%s, %d rows", table.Name, table.Rows)
		if f.OutputFormat == formatMarkdown {
			line = fmt.Sprintf("- **%s** (%d rows)", table.Name, table.Rows)
		}
		if targets := referencedTables(table); len(targets) > 0 {
			line += fmt.Sprintf(" (references: %s)", strings.Join(targets, ", "))
		}
		_, _ = fmt.Fprintln(w, line)
	}
}

func (f *MultiFileFormatter) writeTable(w io.Writer, table *schema.Table, s *schema.Schema) {
	if f.OutputFormat == formatMarkdown {
		_, _ = fmt.Fprintf(w, "## %s\n\n", table.Name)
		NewMarkdownFormatter(w).formatBody(table)
	} else {
		NewTextFormatter(w).formatTable(table)
	}

	incoming := findIncomingReferences(table.Name, s)
	if len(incoming) == 0 {
		return
	}
	if f.OutputFormat == formatMarkdown {
		_, _ = fmt.Fprintf(w, "### Referenced by\n\n")
		for _, ref := range incoming {
			_, _ = fmt.Fprintf(w, "- %s → %s\n", ref.Source, ref.Target.Attribute)
		}
		_, _ = fmt.Fprintln(w)
		return
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "  REFERENCED BY:")
	for _, ref := range incoming {
		_, _ = fmt.Fprintf(w, "    %s → %s\n", ref.Source, ref.Target.Attribute)
	}
}

// IncomingReference is a foreign key pointing at a table
type IncomingReference struct {
	// Source is "<table>.<attribute>" of the referencing attribute.
	Source string
	Target schema.Reference
}

// findIncomingReferences finds all foreign keys pointing to this table
func findIncomingReferences(tableName string, s *schema.Schema) []IncomingReference {
	var incoming []IncomingReference

	for _, table := range s.Tables {
		for _, a := range table.Attributes {
			if a.IsForeignKey() && a.Ref != nil && a.Ref.Table == tableName {
				incoming = append(incoming, IncomingReference{
					Source: table.Name + "." + a.Name,
					Target: *a.Ref,
				})
			}
		}
	}

	return incoming
}

// referencedTables lists distinct tables referenced by table, in attribute order
func referencedTables(table schema.Table) []string {
	seen := make(map[string]bool)
	var targets []string
	for _, a := range table.Attributes {
		if a.IsForeignKey() && a.Ref != nil && !seen[a.Ref.Table] {
			seen[a.Ref.Table] = true
			targets = append(targets, a.Ref.Table)
		}
	}
	return targets
}

func (f *MultiFileFormatter) ext() string {
	if f.OutputFormat == formatMarkdown {
		return ".md"
	}
	return ".txt"
}
