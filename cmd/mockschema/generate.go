package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tordrt/mockschema"
	"github.com/tordrt/mockschema/internal/generate"
	"github.com/tordrt/mockschema/internal/runner"
)

var (
	genCSV     bool
	genSQL     bool
	genDialect string
	genNative  bool
	genOut     string
	genSeed    int64
)

var generateCmd = &cobra.Command{
	Use:   "generate <file> --csv|--sql",
	Short: "Generate data for a schema file",
	Long: `Generate data for a schema file, as CSV files or an SQL script.

By default the external generator script is run after checking that the
Python interpreter is recent enough. With --native the built-in engine is
used instead and writes to --out.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if genCSV == genSQL {
			return errors.New("exactly one of --csv or --sql is required")
		}
		mode := runner.ModeCSV
		if genSQL {
			mode = runner.ModeSQL
		}

		dialect := ""
		if cmd.Flags().Changed("dialect") {
			if mode != runner.ModeSQL {
				return errors.New("--dialect only applies to --sql")
			}
			dialect = genDialect
		}

		if genNative {
			return generateNative(cmd, args[0], mode, dialect)
		}
		return generateExternal(cmd, args[0], mode, dialect)
	},
}

func generateExternal(cmd *cobra.Command, path string, mode runner.Mode, dialect string) error {
	r, min, err := newRunner(cmd)
	if err != nil {
		return err
	}

	report, err := mockschema.RunGenerator(cmd.Context(), r, runner.Request{
		SchemaPath: path,
		Mode:       mode,
		Dialect:    generate.Dialect(dialect),
	}, min)
	if err != nil {
		return explainPreflight(r.Interpreter, err)
	}

	fmt.Print(report.Stdout)
	if report.Failed() {
		_, _ = errorColor.Fprintln(os.Stderr, "error")
		if stderr := strings.TrimSpace(report.Stderr); stderr != "" {
			_, _ = errorColor.Fprintln(os.Stderr, stderr)
		}
		if report.ExitCode != 0 {
			_, _ = errorColor.Fprintf(os.Stderr, "generator exited with status %d\n", report.ExitCode)
		}
		return errReported
	}
	return nil
}

func generateNative(cmd *cobra.Command, path string, mode runner.Mode, dialect string) error {
	s, diags, err := mockschema.LoadFile(path)
	if err != nil {
		return err
	}
	printDiagnostics(diags)

	seed := cfg.Generate.Seed
	if cmd.Flags().Changed("seed") {
		seed = genSeed
	}
	if dialect == "" {
		dialect = cfg.Generator.Dialect
	}
	out := nativeOutput(path, mode)

	opts := &mockschema.GenerateOptions{Seed: seed, Dialect: generate.Dialect(dialect)}
	if mode == runner.ModeCSV {
		opts.CSVDir = out
	} else {
		opts.SQLFile = out
	}

	ds, err := mockschema.GenerateFiles(cmd.Context(), s, opts)
	if err != nil {
		return err
	}
	if len(ds.Cyclic) > 0 {
		warnf("tables %s reference each other; foreign keys are added after the data", strings.Join(ds.Cyclic, ", "))
	}
	_, _ = okColor.Fprintf(os.Stderr, "Generated %d tables into %s\n", len(ds.Tables), out)
	return nil
}

// nativeOutput picks --out, then generate.out_dir, then the schema file's
// base name. SQL output is a file inside that directory.
func nativeOutput(path string, mode runner.Mode) string {
	if genOut != "" {
		return genOut
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	dir := cfg.Generate.OutDir
	if dir == "" {
		dir = filepath.Join(filepath.Dir(path), base)
	}
	if mode == runner.ModeSQL {
		return filepath.Join(dir, base+".sql")
	}
	return dir
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the generator's Python interpreter is usable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, min, err := newRunner(cmd)
		if err != nil {
			return err
		}
		v, err := r.CheckInterpreter(cmd.Context(), min)
		if err != nil {
			return explainPreflight(r.Interpreter, err)
		}
		_, _ = okColor.Printf("%s: %s (need %s or newer)\n", r.Interpreter, v, min)
		return nil
	},
}

func init() {
	f := generateCmd.Flags()
	f.BoolVar(&genCSV, "csv", false, "generate CSV files")
	f.BoolVar(&genSQL, "sql", false, "generate an SQL script")
	f.StringVar(&genDialect, "dialect", "", "SQL dialect: postgres or oracle")
	f.BoolVar(&genNative, "native", false, "use the built-in engine instead of the generator script")
	f.StringVarP(&genOut, "out", "o", "", "native output: CSV directory or SQL file")
	f.Int64Var(&genSeed, "seed", 0, "native random seed (0: time based)")
	generateCmd.MarkFlagsMutuallyExclusive("csv", "sql")
	addRunnerFlags(generateCmd)
	addRunnerFlags(doctorCmd)
}
