// Package editor applies user edits to a schema. Every edit arrives as a
// typed Event; the Controller runs the type/generation/key-role repair rules
// and reports what it had to change, so any presentation layer only needs to
// re-render from the updated model and the Form it returns.
package editor

import (
	"errors"
	"fmt"

	"github.com/tordrt/mockschema/internal/schema"
)

var (
	// ErrInputDisabled is returned for an edit to a field that does not
	// apply to the attribute in its current state.
	ErrInputDisabled = errors.New("input is disabled")

	// ErrNotOffered is returned for an import-only generation type.
	ErrNotOffered = errors.New("option is not offered")

	ErrUnknownEvent = errors.New("unknown event")
)

// Outcome describes the side effects of one event.
type Outcome struct {
	Repairs []schema.Repair `json:"repairs,omitempty"`
}

// Controller owns a schema and mutates it only through Dispatch.
// It is not safe for concurrent use.
type Controller struct {
	schema *schema.Schema
}

// New returns a controller editing s. A nil s starts an empty schema.
func New(s *schema.Schema) *Controller {
	if s == nil {
		s = schema.New()
	}
	return &Controller{schema: s}
}

// Schema returns the edited schema.
func (c *Controller) Schema() *schema.Schema {
	return c.schema
}

// Replace swaps in a new schema, e.g. after an import.
func (c *Controller) Replace(s *schema.Schema) {
	c.schema = s
}

// Dispatch applies ev to the schema.
func (c *Controller) Dispatch(ev Event) (Outcome, error) {
	switch e := ev.(type) {
	case TableAdded:
		t := schema.NewTable(e.Table)
		if e.Rows != nil {
			if err := t.SetRows(*e.Rows); err != nil {
				return Outcome{}, err
			}
		}
		return Outcome{}, c.schema.AddTable(t)

	case TableRemoved:
		return Outcome{}, c.schema.RemoveTable(e.Table)

	case TableRenamed:
		return Outcome{}, c.schema.RenameTable(e.Table, e.To)

	case RowCountChanged:
		t, err := c.schema.MustTable(e.Table)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{}, t.SetRows(e.Rows)

	case AttributeAdded:
		t, err := c.schema.MustTable(e.Table)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{}, t.AddAttribute(schema.NewAttribute(e.Attribute))

	case AttributeRemoved:
		t, err := c.schema.MustTable(e.Table)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{}, t.RemoveAttribute(e.Attribute)

	case AttributeRenamed:
		return Outcome{}, c.schema.RenameAttribute(e.Table, e.Attribute, e.To)

	case KeyRoleChanged:
		return c.update(e.Target, func(a *schema.Attribute) (*schema.Repair, error) {
			*a = schema.ApplyKeyRole(*a, e.Role)
			return nil, nil
		})

	case AttributeTypeChanged:
		return c.update(e.Target, func(a *schema.Attribute) (*schema.Repair, error) {
			if err := requireValue(a, "type"); err != nil {
				return nil, err
			}
			if !e.Type.Valid() {
				return nil, fmt.Errorf("type %s: %w", e.Type, ErrNotOffered)
			}
			var r *schema.Repair
			a.Value, r = schema.ApplyType(a.Value, e.Type)
			return r, nil
		})

	case GenerationChanged:
		return c.update(e.Target, func(a *schema.Attribute) (*schema.Repair, error) {
			if err := requireValue(a, "generation"); err != nil {
				return nil, err
			}
			if !e.Generation.Valid() || e.Generation.ImportOnly() {
				return nil, fmt.Errorf("generation %s: %w", e.Generation, ErrNotOffered)
			}
			var r *schema.Repair
			a.Value, r = schema.ApplyGeneration(a.Value, e.Generation)
			return r, nil
		})

	case StartChanged:
		return c.update(e.Target, func(a *schema.Attribute) (*schema.Repair, error) {
			if err := requireNumeric(a, "start"); err != nil {
				return nil, err
			}
			a.Value.Start = e.Start
			return nil, nil
		})

	case StepChanged:
		return c.update(e.Target, func(a *schema.Attribute) (*schema.Repair, error) {
			if err := requireNumeric(a, "step"); err != nil {
				return nil, err
			}
			a.Value.Step = e.Step
			return nil, nil
		})

	case DateStartChanged:
		return c.update(e.Target, func(a *schema.Attribute) (*schema.Repair, error) {
			if err := requireType(a, schema.Date, "start date"); err != nil {
				return nil, err
			}
			a.Value.DateStart = e.Start
			return nil, nil
		})

	case DateStepChanged:
		return c.update(e.Target, func(a *schema.Attribute) (*schema.Repair, error) {
			if err := requireType(a, schema.Date, "date step"); err != nil {
				return nil, err
			}
			a.Value.DateStep = e.Step
			return nil, nil
		})

	case LengthChanged:
		return c.update(e.Target, func(a *schema.Attribute) (*schema.Repair, error) {
			if err := requireType(a, schema.String, "length"); err != nil {
				return nil, err
			}
			if e.Length <= 0 {
				return nil, fmt.Errorf("length %d must be positive", e.Length)
			}
			a.Value.Length = e.Length
			return nil, nil
		})

	case ReferenceChanged:
		return c.update(e.Target, func(a *schema.Attribute) (*schema.Repair, error) {
			if !a.IsForeignKey() {
				return nil, fmt.Errorf("reference of %q: %w", a.Name, ErrInputDisabled)
			}
			ref := e.Reference
			a.Ref = &ref
			return nil, nil
		})

	default:
		return Outcome{}, fmt.Errorf("%T: %w", ev, ErrUnknownEvent)
	}
}

func (c *Controller) update(target Target, fn func(a *schema.Attribute) (*schema.Repair, error)) (Outcome, error) {
	a, err := c.schema.Lookup(target.Table, target.Attribute)
	if err != nil {
		return Outcome{}, err
	}

	// Work on a copy so a rejected edit leaves the attribute untouched.
	edited := *a
	repair, err := fn(&edited)
	if err != nil {
		return Outcome{}, err
	}
	*a = edited

	if repair == nil {
		return Outcome{}, nil
	}
	return Outcome{Repairs: []schema.Repair{*repair}}, nil
}

func requireValue(a *schema.Attribute, field string) error {
	if a.IsForeignKey() {
		return fmt.Errorf("%s of foreign key %q: %w", field, a.Name, ErrInputDisabled)
	}
	return nil
}

func requireNumeric(a *schema.Attribute, field string) error {
	if err := requireValue(a, field); err != nil {
		return err
	}
	if t := a.Value.Type; t != schema.Integer && t != schema.Real {
		return fmt.Errorf("%s of %s attribute %q: %w", field, t, a.Name, ErrInputDisabled)
	}
	return nil
}

func requireType(a *schema.Attribute, want schema.AttributeType, field string) error {
	if err := requireValue(a, field); err != nil {
		return err
	}
	if a.Value.Type != want {
		return fmt.Errorf("%s of %s attribute %q: %w", field, a.Value.Type, a.Name, ErrInputDisabled)
	}
	return nil
}
