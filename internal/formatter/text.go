// Package formatter renders mock schemas for people: a compact text form,
// markdown, and a one-file-per-table directory layout.
package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/mockschema/internal/schema"
)

const (
	formatMarkdown = "markdown"
	formatText     = "text"
)

// Formatter writes a description of a schema.
type Formatter interface {
	Format(s *schema.Schema) error
}

// New returns the formatter for format ("text" or "markdown").
func New(format string, w io.Writer) (Formatter, error) {
	switch format {
	case formatText, "":
		return NewTextFormatter(w), nil
	case formatMarkdown:
		return NewMarkdownFormatter(w), nil
	default:
		return nil, fmt.Errorf("invalid format %q (must be 'text' or 'markdown')", format)
	}
}

// TextFormatter formats schema as compact text
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes every table followed by validation problems, if any
func (f *TextFormatter) Format(s *schema.Schema) error {
	for i := range s.Tables {
		if i > 0 {
			_, _ = fmt.Fprintln(f.writer) // Blank line between tables
		}
		f.formatTable(&s.Tables[i])
	}

	if problems := s.Validate(); len(problems) > 0 {
		_, _ = fmt.Fprintln(f.writer)
		_, _ = fmt.Fprintln(f.writer, "PROBLEMS:")
		for _, p := range problems {
			_, _ = fmt.Fprintf(f.writer, "  %s\n", p)
		}
	}
	return nil
}

func (f *TextFormatter) formatTable(table *schema.Table) {
	header := fmt.Sprintf("rows: %d", table.Rows)
	if pk := table.PrimaryKeys(); len(pk) > 0 {
		header += fmt.Sprintf(", PK: %s", strings.Join(pk, ", "))
	}
	_, _ = fmt.Fprintf(f.writer, "TABLE %s (%s)\n", table.Name, header)

	for _, a := range table.Attributes {
		_, _ = fmt.Fprintf(f.writer, "  %s\n", formatAttribute(a))
	}
}

func formatAttribute(a schema.Attribute) string {
	if a.IsForeignKey() {
		target := "?"
		if a.Ref != nil {
			target = a.Ref.String()
		}
		return fmt.Sprintf("%s: → %s", a.Name, target)
	}

	parts := []string{a.Name + ":", a.Value.Type.String(), a.Value.Generation.String()}
	parts = append(parts, describeParams(a.Value)...)
	if a.Key == schema.PrimaryKey {
		parts = append(parts, "PK")
	}
	return strings.Join(parts, " ")
}

// describeParams lists the parameters the value's type actually uses.
func describeParams(v schema.ValueSpec) []string {
	switch v.Type {
	case schema.Integer, schema.Real:
		if v.Generation == schema.Random {
			return []string{"max=" + v.Step}
		}
		return []string{"start=" + v.Start, "step=" + v.Step}
	case schema.String:
		if v.Generation.ImportOnly() {
			return nil
		}
		return []string{fmt.Sprintf("length=%d", v.Length)}
	case schema.Date:
		if v.Generation == schema.Random {
			return nil
		}
		return []string{"start=" + v.DateStart.Format("2006-01-02"), "step=" + formatDateStep(v.DateStep)}
	default:
		return nil
	}
}

// formatDateStep renders the non-zero components, largest unit first.
func formatDateStep(d schema.DateStep) string {
	units := []struct {
		n      int
		suffix string
	}{
		{d.Weeks, "w"},
		{d.Days, "d"},
		{d.Hours, "h"},
		{d.Minutes, "min"},
		{d.Seconds, "s"},
		{d.Milliseconds, "ms"},
		{d.Microseconds, "us"},
	}

	var b strings.Builder
	for _, u := range units {
		if u.n != 0 {
			fmt.Fprintf(&b, "%d%s", u.n, u.suffix)
		}
	}
	if b.Len() == 0 {
		return "0"
	}
	return b.String()
}
