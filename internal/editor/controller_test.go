package editor

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/tordrt/mockschema/internal/schema"
)

func setup(t *testing.T, events ...Event) *Controller {
	t.Helper()

	c := New(nil)
	base := []Event{
		TableAdded{Table: "users"},
		AttributeAdded{Table: "users", Attribute: "id"},
		AttributeAdded{Table: "users", Attribute: "born"},
	}
	for _, ev := range append(base, events...) {
		if _, err := c.Dispatch(ev); err != nil {
			t.Fatalf("Dispatch(%#v): %v", ev, err)
		}
	}
	return c
}

var born = Target{Table: "users", Attribute: "born"}

func TestDateRepeatingIsNeverConstructible(t *testing.T) {
	c := setup(t, AttributeTypeChanged{Target: born, Type: schema.Date})

	out, err := c.Dispatch(GenerationChanged{Target: born, Generation: schema.Repeating})
	if err != nil {
		t.Fatal(err)
	}

	a, _ := c.Schema().Lookup("users", "born")
	if a.Value.Type == schema.Date {
		t.Fatal("DATE/REPEATING was constructed")
	}
	if a.Value.Type != schema.Integer || a.Value.Generation != schema.Repeating {
		t.Errorf("pair = %s/%s, want INTEGER/REPEATING", a.Value.Type, a.Value.Generation)
	}
	want := []schema.Repair{{Field: "type", From: "DATE", To: "INTEGER"}}
	if !reflect.DeepEqual(out.Repairs, want) {
		t.Errorf("repairs = %v, want %v", out.Repairs, want)
	}
}

func TestTypeChangeResetsGeneration(t *testing.T) {
	c := setup(t, GenerationChanged{Target: born, Generation: schema.Increasing})

	out, err := c.Dispatch(AttributeTypeChanged{Target: born, Type: schema.String})
	if err != nil {
		t.Fatal(err)
	}
	a, _ := c.Schema().Lookup("users", "born")
	if a.Value.Generation != schema.Random {
		t.Errorf("generation = %s, want RANDOM", a.Value.Generation)
	}
	if len(out.Repairs) != 1 || out.Repairs[0].Field != "generation" {
		t.Errorf("repairs = %v", out.Repairs)
	}
}

func TestFormOffersOnlyCompatibleOptions(t *testing.T) {
	steps := []Event{
		AttributeTypeChanged{Target: born, Type: schema.String},
		GenerationChanged{Target: born, Generation: schema.Repeating},
		AttributeTypeChanged{Target: born, Type: schema.Real},
		GenerationChanged{Target: born, Generation: schema.Decreasing},
		AttributeTypeChanged{Target: born, Type: schema.Date},
		GenerationChanged{Target: born, Generation: schema.Repeating},
	}

	c := setup(t)
	for _, ev := range steps {
		if _, err := c.Dispatch(ev); err != nil {
			t.Fatal(err)
		}
		f, err := c.Form(born)
		if err != nil {
			t.Fatal(err)
		}
		for _, g := range f.GenerationOptions {
			if !schema.Compatible(f.Type, g) {
				t.Errorf("after %#v: generation option %s incompatible with %s", ev, g, f.Type)
			}
		}
		if !reflect.DeepEqual(f.GenerationOptions, schema.AllowedGenerations(f.Type)) {
			t.Errorf("after %#v: generation options %v", ev, f.GenerationOptions)
		}
		if !reflect.DeepEqual(f.TypeOptions, schema.AllowedTypes(f.Generation)) {
			t.Errorf("after %#v: type options %v", ev, f.TypeOptions)
		}
		if !schema.Compatible(f.Type, f.Generation) {
			t.Errorf("after %#v: current pair %s/%s invalid", ev, f.Type, f.Generation)
		}
	}
}

func TestForeignKeyTogglesInputs(t *testing.T) {
	c := setup(t,
		AttributeTypeChanged{Target: born, Type: schema.Date},
		GenerationChanged{Target: born, Generation: schema.Decreasing},
		KeyRoleChanged{Target: born, Role: schema.ForeignKey},
	)

	f, _ := c.Form(born)
	if f.Enabled != (Inputs{Reference: true}) {
		t.Errorf("enabled = %+v, want only reference", f.Enabled)
	}

	_, err := c.Dispatch(AttributeTypeChanged{Target: born, Type: schema.Integer})
	if !errors.Is(err, ErrInputDisabled) {
		t.Errorf("type change on foreign key: got %v, want ErrInputDisabled", err)
	}

	ref := schema.Reference{Table: "users", Attribute: "id"}
	if _, err := c.Dispatch(ReferenceChanged{Target: born, Reference: ref}); err != nil {
		t.Fatal(err)
	}

	if _, err := c.Dispatch(KeyRoleChanged{Target: born, Role: schema.KeyNone}); err != nil {
		t.Fatal(err)
	}
	f, _ = c.Form(born)
	if f.Type != schema.Date || f.Generation != schema.Decreasing {
		t.Errorf("restored pair = %s/%s, want DATE/DECREASING", f.Type, f.Generation)
	}
	if !f.Enabled.DateStart || !f.Enabled.DateStep || f.Enabled.Reference || f.Enabled.Length {
		t.Errorf("enabled = %+v", f.Enabled)
	}

	_, err = c.Dispatch(ReferenceChanged{Target: born, Reference: ref})
	if !errors.Is(err, ErrInputDisabled) {
		t.Errorf("reference change on plain attribute: got %v, want ErrInputDisabled", err)
	}
}

func TestParameterInputsFollowType(t *testing.T) {
	c := setup(t)

	if _, err := c.Dispatch(LengthChanged{Target: born, Length: 5}); !errors.Is(err, ErrInputDisabled) {
		t.Errorf("length on integer: got %v, want ErrInputDisabled", err)
	}
	if _, err := c.Dispatch(StartChanged{Target: born, Start: "10"}); err != nil {
		t.Errorf("start on integer: %v", err)
	}

	if _, err := c.Dispatch(AttributeTypeChanged{Target: born, Type: schema.Date}); err != nil {
		t.Fatal(err)
	}
	day := time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC)
	if _, err := c.Dispatch(DateStartChanged{Target: born, Start: day}); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Dispatch(StepChanged{Target: born, Step: "2"}); !errors.Is(err, ErrInputDisabled) {
		t.Errorf("numeric step on date: got %v, want ErrInputDisabled", err)
	}

	a, _ := c.Schema().Lookup("users", "born")
	if !a.Value.DateStart.Equal(day) || a.Value.Start != "10" {
		t.Errorf("value = %+v", a.Value)
	}
}

func TestImportOnlyGenerationNotOffered(t *testing.T) {
	c := setup(t, AttributeTypeChanged{Target: born, Type: schema.String})

	_, err := c.Dispatch(GenerationChanged{Target: born, Generation: schema.Email})
	if !errors.Is(err, ErrNotOffered) {
		t.Errorf("got %v, want ErrNotOffered", err)
	}
}

func TestTableEvents(t *testing.T) {
	c := setup(t)

	if _, err := c.Dispatch(TableAdded{Table: "users"}); !errors.Is(err, schema.ErrDuplicateName) {
		t.Errorf("duplicate table: got %v", err)
	}
	if _, err := c.Dispatch(RowCountChanged{Table: "users", Rows: 42}); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Dispatch(AttributeRenamed{Target: born, To: "birthday"}); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Dispatch(TableRenamed{Table: "users", To: "people"}); err != nil {
		t.Fatal(err)
	}

	table, ok := c.Schema().Table("people")
	if !ok || table.Rows != 42 {
		t.Fatalf("table = %+v", table)
	}
	if _, ok := table.Attribute("birthday"); !ok {
		t.Error("rename lost attribute")
	}

	if _, err := c.Dispatch(TableRemoved{Table: "people"}); err != nil {
		t.Fatal(err)
	}
	if len(c.Schema().Tables) != 0 {
		t.Errorf("tables = %v, want none", c.Schema().Tables)
	}
}

func TestTableAddedRows(t *testing.T) {
	zero, five, negative := 0, 5, -1

	tests := []struct {
		name    string
		rows    *int
		want    int
		wantErr bool
	}{
		{name: "default", rows: nil, want: schema.DefaultRows},
		{name: "zero", rows: &zero, want: 0},
		{name: "explicit", rows: &five, want: 5},
		{name: "negative", rows: &negative, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(nil)
			_, err := c.Dispatch(TableAdded{Table: "t", Rows: tt.rows})
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error but got none")
				}
				if len(c.Schema().Tables) != 0 {
					t.Errorf("rejected table was added: %+v", c.Schema().Tables)
				}
				return
			}
			if err != nil {
				t.Fatalf("Dispatch() error = %v", err)
			}
			table, _ := c.Schema().Table("t")
			if table.Rows != tt.want {
				t.Errorf("Rows = %d, want %d", table.Rows, tt.want)
			}
		})
	}
}
