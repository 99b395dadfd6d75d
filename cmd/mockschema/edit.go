package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tordrt/mockschema"
	"github.com/tordrt/mockschema/internal/editor"
	"github.com/tordrt/mockschema/internal/schema"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init <file>",
	Short: "Create an empty schema file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if _, err := os.Stat(path); err == nil && !initForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		if err := mockschema.SaveFile(path, schema.New()); err != nil {
			return err
		}
		_, _ = okColor.Fprintf(os.Stderr, "Created %s\n", path)
		return nil
	},
}

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Add, remove or change tables",
}

var attrCmd = &cobra.Command{
	Use:   "attr",
	Short: "Add, remove or change attributes",
}

var (
	tableRows int
	tableName string
)

var tableAddCmd = &cobra.Command{
	Use:   "add <file> <table>",
	Short: "Add a table",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ev := editor.TableAdded{Table: args[1]}
		if cmd.Flags().Changed("rows") {
			ev.Rows = &tableRows
		}
		return editFile(args[0], ev)
	},
}

var tableRmCmd = &cobra.Command{
	Use:   "rm <file> <table>",
	Short: "Remove a table",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editFile(args[0], editor.TableRemoved{Table: args[1]})
	},
}

var tableSetCmd = &cobra.Command{
	Use:   "set <file> <table>",
	Short: "Change a table's row count or name",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		table := args[1]
		var events []editor.Event
		if cmd.Flags().Changed("rows") {
			events = append(events, editor.RowCountChanged{Table: table, Rows: tableRows})
		}
		if cmd.Flags().Changed("name") {
			events = append(events, editor.TableRenamed{Table: table, To: tableName})
		}
		if len(events) == 0 {
			return errors.New("nothing to change (use --rows or --name)")
		}
		return editFile(args[0], events...)
	},
}

var attrAddCmd = &cobra.Command{
	Use:   "add <file> <table> <attr>",
	Short: "Add an INTEGER RANDOM attribute",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editFile(args[0], editor.AttributeAdded{Table: args[1], Attribute: args[2]})
	},
}

var attrRmCmd = &cobra.Command{
	Use:   "rm <file> <table> <attr>",
	Short: "Remove an attribute",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := editor.Target{Table: args[1], Attribute: args[2]}
		return editFile(args[0], editor.AttributeRemoved{Target: target})
	},
}

var attrSetCmd = newAttrSetCmd()

func newAttrSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <file> <table> <attr>",
		Short: "Change an attribute",
		Long: `Change an attribute. Flags are applied in the order key, type, generation,
then parameters, and every value the editor had to reset is reported.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := editor.Target{Table: args[1], Attribute: args[2]}
			events, err := attributeEvents(cmd, target)
			if err != nil {
				return err
			}
			if len(events) == 0 {
				return errors.New("nothing to change")
			}
			return editFile(args[0], events...)
		},
	}

	f := cmd.Flags()
	f.String("key", "", "key role: none, pk or fk")
	f.String("type", "", "INTEGER, REAL, STRING or DATE")
	f.String("generation", "", "RANDOM, INCREASING, DECREASING or REPEATING")
	f.String("start", "", "numeric start value")
	f.String("step", "", "numeric step (upper bound for RANDOM)")
	f.String("date-start", "", "start date, YYYY-MM-DD")
	f.String("date-step", "", "date step, e.g. days=1,hours=2")
	f.Int("length", 0, "string length")
	f.String("ref", "", "referenced attribute, table.attr")
	f.String("rename", "", "new attribute name")
	return cmd
}

func init() {
	tableAddCmd.Flags().IntVar(&tableRows, "rows", schema.DefaultRows, "number of rows to generate")
	tableSetCmd.Flags().IntVar(&tableRows, "rows", schema.DefaultRows, "number of rows to generate")
	tableSetCmd.Flags().StringVar(&tableName, "name", "", "new table name")
	tableCmd.AddCommand(tableAddCmd, tableRmCmd, tableSetCmd)

	attrCmd.AddCommand(attrAddCmd, attrRmCmd, attrSetCmd)

	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing file")
}

// attributeEvents converts the changed flags of attr set into editor events.
func attributeEvents(cmd *cobra.Command, target editor.Target) ([]editor.Event, error) {
	f := cmd.Flags()
	var events []editor.Event

	if f.Changed("key") {
		v, _ := f.GetString("key")
		k, ok := schema.ParseKeyRole(strings.ToLower(v))
		if !ok {
			return nil, fmt.Errorf("unknown key role %q", v)
		}
		events = append(events, editor.KeyRoleChanged{Target: target, Role: k})
	}
	if f.Changed("type") {
		v, _ := f.GetString("type")
		t, ok := schema.ParseAttributeType(strings.ToUpper(v))
		if !ok {
			return nil, fmt.Errorf("unknown type %q", v)
		}
		events = append(events, editor.AttributeTypeChanged{Target: target, Type: t})
	}
	if f.Changed("generation") {
		v, _ := f.GetString("generation")
		g, ok := schema.ParseGeneration(strings.ToUpper(v))
		if !ok {
			return nil, fmt.Errorf("unknown generation %q", v)
		}
		events = append(events, editor.GenerationChanged{Target: target, Generation: g})
	}

	if f.Changed("start") {
		v, _ := f.GetString("start")
		events = append(events, editor.StartChanged{Target: target, Start: v})
	}
	if f.Changed("step") {
		v, _ := f.GetString("step")
		events = append(events, editor.StepChanged{Target: target, Step: v})
	}
	if f.Changed("date-start") {
		v, _ := f.GetString("date-start")
		d, err := parseDate(v)
		if err != nil {
			return nil, err
		}
		events = append(events, editor.DateStartChanged{Target: target, Start: d})
	}
	if f.Changed("date-step") {
		v, _ := f.GetString("date-step")
		step, err := parseDateStep(v)
		if err != nil {
			return nil, err
		}
		events = append(events, editor.DateStepChanged{Target: target, Step: step})
	}
	if f.Changed("length") {
		n, _ := f.GetInt("length")
		events = append(events, editor.LengthChanged{Target: target, Length: n})
	}
	if f.Changed("ref") {
		v, _ := f.GetString("ref")
		ref, err := parseReference(v)
		if err != nil {
			return nil, err
		}
		events = append(events, editor.ReferenceChanged{Target: target, Reference: ref})
	}

	// Renaming last keeps the target valid for every earlier event.
	if f.Changed("rename") {
		v, _ := f.GetString("rename")
		events = append(events, editor.AttributeRenamed{Target: target, To: v})
	}
	return events, nil
}

// editFile loads path, applies events in order and saves the result. Nothing
// is written when an event fails.
func editFile(path string, events ...editor.Event) error {
	s, diags, err := mockschema.LoadFile(path)
	if err != nil {
		return err
	}
	printDiagnostics(diags)

	ctl := editor.New(s)
	for _, ev := range events {
		outcome, err := ctl.Dispatch(ev)
		if err != nil {
			return err
		}
		for _, r := range outcome.Repairs {
			warnf("%s", r)
		}
	}
	return mockschema.SaveFile(path, ctl.Schema())
}
