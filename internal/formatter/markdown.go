package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/mockschema/internal/schema"
)

// MarkdownFormatter formats schema as markdown
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes the schema in markdown format
func (f *MarkdownFormatter) Format(s *schema.Schema) error {
	_, _ = fmt.Fprintln(f.writer, "# Mock Schema")
	_, _ = fmt.Fprintln(f.writer)

	for i := range s.Tables {
		f.formatTable(&s.Tables[i])
	}

	if problems := s.Validate(); len(problems) > 0 {
		_, _ = fmt.Fprintln(f.writer, "## Problems")
		_, _ = fmt.Fprintln(f.writer)
		for _, p := range problems {
			_, _ = fmt.Fprintf(f.writer, "- %s\n", p)
		}
		_, _ = fmt.Fprintln(f.writer)
	}
	return nil
}

func (f *MarkdownFormatter) formatTable(table *schema.Table) {
	_, _ = fmt.Fprintf(f.writer, "## %s\n\n", table.Name)
	f.formatBody(table)
}

// formatBody writes everything below the table heading
func (f *MarkdownFormatter) formatBody(table *schema.Table) {
	_, _ = fmt.Fprintf(f.writer, "Rows: %d\n\n", table.Rows)

	_, _ = fmt.Fprintln(f.writer, "### Attributes")
	_, _ = fmt.Fprintln(f.writer)

	var refs []schema.Attribute
	for _, a := range table.Attributes {
		if a.IsForeignKey() {
			refs = append(refs, a)
			_, _ = fmt.Fprintf(f.writer, "- **%s:** FK\n", a.Name)
			continue
		}

		desc := a.Value.Type.String() + ", " + a.Value.Generation.String()
		if params := describeParams(a.Value); len(params) > 0 {
			desc += " (" + strings.Join(params, ", ") + ")"
		}
		if a.Key == schema.PrimaryKey {
			desc += ", PK"
		}
		_, _ = fmt.Fprintf(f.writer, "- **%s:** %s\n", a.Name, desc)
	}
	_, _ = fmt.Fprintln(f.writer)

	if len(refs) > 0 {
		_, _ = fmt.Fprintln(f.writer, "### References")
		_, _ = fmt.Fprintln(f.writer)
		for _, a := range refs {
			target := "(unset)"
			if a.Ref != nil {
				target = a.Ref.String()
			}
			_, _ = fmt.Fprintf(f.writer, "- %s → %s\n", a.Name, target)
		}
		_, _ = fmt.Fprintln(f.writer)
	}
}
