package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tordrt/mockschema/internal/codec"
	"github.com/tordrt/mockschema/internal/config"
	"github.com/tordrt/mockschema/internal/runner"
)

// errReported is returned once the failure has already been printed.
var errReported = errors.New("failure already reported")

var (
	cfgFile string
	cfg     *config.Config

	warnColor  = color.New(color.FgYellow)
	errorColor = color.New(color.FgRed, color.Bold)
	okColor    = color.New(color.FgGreen)
)

var rootCmd = &cobra.Command{
	Use:   "mockschema",
	Short: "Design mock database schemas and generate data for them",
	Long: `mockschema edits mock database schemas (tables, row counts and per-attribute
generation rules), derives them from live PostgreSQL, MySQL, SQLite or Oracle
databases, and fills them with generated data as CSV files, SQL scripts or
direct inserts.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./mockschema.yaml)")

	rootCmd.AddCommand(initCmd, tableCmd, attrCmd, describeCmd, validateCmd)
	rootCmd.AddCommand(introspectCmd, generateCmd, loadCmd, serveCmd, doctorCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			_, _ = errorColor.Fprint(os.Stderr, "error: ")
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func warnf(format string, args ...any) {
	_, _ = warnColor.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
}

func printDiagnostics(diags []codec.Diagnostic) {
	for _, d := range diags {
		warnf("%s", d)
	}
}

// newRunner builds the external generator runner from the configuration,
// letting the command's --interpreter and --script flags override it.
func newRunner(cmd *cobra.Command) (*runner.Runner, runner.Version, error) {
	r := &runner.Runner{
		Interpreter: cfg.Generator.Interpreter,
		Script:      cfg.Generator.Script,
	}
	if cmd.Flags().Changed("interpreter") {
		r.Interpreter, _ = cmd.Flags().GetString("interpreter")
	}
	if cmd.Flags().Changed("script") {
		r.Script, _ = cmd.Flags().GetString("script")
	}

	min, err := runner.ParseNumber(cfg.Generator.MinVersion)
	if err != nil {
		return nil, runner.Version{}, fmt.Errorf("invalid generator.min_version: %w", err)
	}
	return r, min, nil
}

func addRunnerFlags(cmd *cobra.Command) {
	cmd.Flags().String("interpreter", "", "Python interpreter (default from config: python3)")
	cmd.Flags().String("script", "", "generator script path (default from config)")
}

// explainPreflight turns a failed interpreter check into advice.
func explainPreflight(interpreter string, err error) error {
	switch {
	case errors.Is(err, runner.ErrInterpreterUnavailable):
		return fmt.Errorf("%w\nInstall Python or point --interpreter (generator.interpreter) at it", err)
	case errors.Is(err, runner.ErrVersionUnparseable):
		return fmt.Errorf("%w\n%s --version printed something unexpected", err, interpreter)
	case errors.Is(err, runner.ErrVersionTooOld):
		return fmt.Errorf("%w\nUpgrade %s or choose a newer interpreter", err, interpreter)
	default:
		return err
	}
}
