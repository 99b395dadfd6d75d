package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tordrt/mockschema"
)

var (
	describeFormat string
	describeOutDir string
)

var describeCmd = &cobra.Command{
	Use:   "describe <file>",
	Short: "Print a readable summary of a schema file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, diags, err := mockschema.LoadFile(args[0])
		if err != nil {
			return err
		}
		printDiagnostics(diags)

		return mockschema.Describe(s, &mockschema.OutputOptions{
			Writer:    os.Stdout,
			OutputDir: describeOutDir,
			Format:    describeFormat,
		})
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a schema file for import and generation problems",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, diags, err := mockschema.LoadFile(args[0])
		if err != nil {
			return err
		}
		printDiagnostics(diags)

		problems := s.Validate()
		for _, p := range problems {
			_, _ = errorColor.Fprint(os.Stderr, "problem: ")
			fmt.Fprintln(os.Stderr, p)
		}
		if len(diags) > 0 || len(problems) > 0 {
			return errReported
		}
		_, _ = okColor.Fprintf(os.Stderr, "%s is valid (%d tables)\n", args[0], len(s.Tables))
		return nil
	},
}

func init() {
	describeCmd.Flags().StringVarP(&describeFormat, "format", "f", "text", "output format: text or markdown")
	describeCmd.Flags().StringVarP(&describeOutDir, "output-dir", "d", "", "write an overview plus one file per table into this directory")
}
