package runner

import (
	"errors"
	"fmt"

	"github.com/tordrt/mockschema/internal/generate"
)

// Mode selects what the generator script produces.
type Mode string

const (
	ModeCSV Mode = "csv"
	ModeSQL Mode = "sql"
)

// ParseMode accepts csv or sql.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeCSV, ModeSQL:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("invalid mode %q (must be 'csv' or 'sql')", s)
	}
}

// Request describes one generator run.
type Request struct {
	SchemaPath string
	Mode       Mode
	// Dialect is only passed in SQL mode. Empty leaves the script's default.
	Dialect generate.Dialect
}

// Validate checks the request before any process is started.
func (r Request) Validate() error {
	if r.SchemaPath == "" {
		return errors.New("schema file is required")
	}
	switch r.Mode {
	case ModeCSV:
		if r.Dialect != "" {
			return errors.New("dialect only applies to SQL output")
		}
	case ModeSQL:
		if r.Dialect != "" {
			if _, err := generate.ParseDialect(string(r.Dialect)); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("invalid mode %q (must be 'csv' or 'sql')", r.Mode)
	}
	return nil
}

// Args returns the script arguments for the request.
func (r Request) Args() []string {
	args := []string{"--file", r.SchemaPath, "--" + string(r.Mode)}
	if r.Mode == ModeSQL && r.Dialect != "" {
		args = append(args, "--dialect", string(r.Dialect))
	}
	return args
}
