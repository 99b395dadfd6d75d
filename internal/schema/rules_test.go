package schema

import (
	"reflect"
	"testing"
)

func TestCompatible(t *testing.T) {
	tests := []struct {
		typ  AttributeType
		want []GenerationType
	}{
		{Integer, []GenerationType{Random, Increasing, Decreasing, Repeating}},
		{Real, []GenerationType{Random, Increasing, Decreasing, Repeating}},
		{String, []GenerationType{Random, Repeating}},
		{Date, []GenerationType{Random, Increasing, Decreasing}},
	}

	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			got := AllowedGenerations(tt.typ)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("AllowedGenerations(%s) = %v, want %v", tt.typ, got, tt.want)
			}
			for _, g := range EditableGenerations {
				want := false
				for _, w := range tt.want {
					if w == g {
						want = true
					}
				}
				if Compatible(tt.typ, g) != want {
					t.Errorf("Compatible(%s, %s) = %v, want %v", tt.typ, g, !want, want)
				}
			}
		})
	}
}

func TestAllowedTypes(t *testing.T) {
	tests := []struct {
		gen  GenerationType
		want []AttributeType
	}{
		{Random, []AttributeType{Integer, Real, String, Date}},
		{Increasing, []AttributeType{Integer, Real, Date}},
		{Decreasing, []AttributeType{Integer, Real, Date}},
		{Repeating, []AttributeType{Integer, Real, String}},
		{Email, []AttributeType{String}},
	}

	for _, tt := range tests {
		t.Run(tt.gen.String(), func(t *testing.T) {
			if got := AllowedTypes(tt.gen); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("AllowedTypes(%s) = %v, want %v", tt.gen, got, tt.want)
			}
		})
	}
}

func TestApplyType(t *testing.T) {
	tests := []struct {
		name       string
		from       ValueSpec
		to         AttributeType
		wantGen    GenerationType
		wantRepair bool
	}{
		{
			name:    "compatible change keeps generation",
			from:    ValueSpec{Type: Integer, Generation: Increasing},
			to:      Date,
			wantGen: Increasing,
		},
		{
			name:       "string rejects increasing",
			from:       ValueSpec{Type: Integer, Generation: Increasing},
			to:         String,
			wantGen:    Random,
			wantRepair: true,
		},
		{
			name:       "date rejects repeating",
			from:       ValueSpec{Type: Real, Generation: Repeating},
			to:         Date,
			wantGen:    Random,
			wantRepair: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, repair := ApplyType(tt.from, tt.to)
			if got.Type != tt.to {
				t.Errorf("type = %s, want %s", got.Type, tt.to)
			}
			if got.Generation != tt.wantGen {
				t.Errorf("generation = %s, want %s", got.Generation, tt.wantGen)
			}
			if (repair != nil) != tt.wantRepair {
				t.Errorf("repair = %v, wantRepair %v", repair, tt.wantRepair)
			}
			if !Compatible(got.Type, got.Generation) {
				t.Errorf("result %s/%s is not compatible", got.Type, got.Generation)
			}
		})
	}
}

func TestApplyGeneration(t *testing.T) {
	tests := []struct {
		name     string
		from     ValueSpec
		to       GenerationType
		wantType AttributeType
	}{
		{"date to repeating forces integer", ValueSpec{Type: Date, Generation: Random}, Repeating, Integer},
		{"string to increasing forces integer", ValueSpec{Type: String, Generation: Repeating}, Increasing, Integer},
		{"real keeps type", ValueSpec{Type: Real, Generation: Random}, Decreasing, Real},
		{"extended kind forces string", ValueSpec{Type: Date, Generation: Random}, Email, String},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := ApplyGeneration(tt.from, tt.to)
			if got.Generation != tt.to {
				t.Errorf("generation = %s, want %s", got.Generation, tt.to)
			}
			if got.Type != tt.wantType {
				t.Errorf("type = %s, want %s", got.Type, tt.wantType)
			}
			if !Compatible(got.Type, got.Generation) {
				t.Errorf("result %s/%s is not compatible", got.Type, got.Generation)
			}
		})
	}
}

func TestApplyKeyRoleRestoresPair(t *testing.T) {
	a := NewAttribute("amount")
	a.Value, _ = ApplyType(a.Value, Real)
	a.Value, _ = ApplyGeneration(a.Value, Decreasing)

	a = ApplyKeyRole(a, ForeignKey)
	if a.Ref == nil {
		t.Fatal("expected reference to be allocated")
	}
	a.Ref.Table = "accounts"

	a = ApplyKeyRole(a, KeyNone)
	if a.Value.Type != Real || a.Value.Generation != Decreasing {
		t.Errorf("pair = %s/%s, want REAL/DECREASING", a.Value.Type, a.Value.Generation)
	}
}

func TestParseNames(t *testing.T) {
	for _, typ := range AttributeTypes {
		got, ok := ParseAttributeType(typ.String())
		if !ok || got != typ {
			t.Errorf("ParseAttributeType(%q) = %v, %v", typ.String(), got, ok)
		}
	}
	for g := Random; g <= NaturalText; g++ {
		got, ok := ParseGeneration(g.String())
		if !ok || got != g {
			t.Errorf("ParseGeneration(%q) = %v, %v", g.String(), got, ok)
		}
	}
	if _, ok := ParseAttributeType("integer"); ok {
		t.Error("ParseAttributeType should be case sensitive")
	}
	if k, ok := ParseKeyRole("pk"); !ok || k != PrimaryKey {
		t.Errorf("ParseKeyRole(pk) = %v, %v", k, ok)
	}
}
