package codec

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/tordrt/mockschema/internal/schema"
)

func sampleSchema(t *testing.T) *schema.Schema {
	t.Helper()

	s := schema.New()

	users := schema.NewTable("Users")
	users.Rows = 25
	id := schema.NewAttribute("id")
	id.Key = schema.PrimaryKey
	id.Value, _ = schema.ApplyGeneration(id.Value, schema.Increasing)
	id.Value.Start = "1"

	name := schema.NewAttribute("name")
	name.Value, _ = schema.ApplyType(name.Value, schema.String)
	name.Value.Length = 12

	born := schema.NewAttribute("born")
	born.Value, _ = schema.ApplyType(born.Value, schema.Date)
	born.Value, _ = schema.ApplyGeneration(born.Value, schema.Decreasing)
	born.Value.DateStart = time.Date(1990, time.March, 4, 0, 0, 0, 0, time.UTC)
	born.Value.DateStep = schema.DateStep{Hours: 6, Weeks: 1}

	for _, a := range []schema.Attribute{name, id, born} {
		if err := users.AddAttribute(a); err != nil {
			t.Fatal(err)
		}
	}

	orders := schema.NewTable("orders")
	total := schema.NewAttribute("total")
	total.Value, _ = schema.ApplyType(total.Value, schema.Real)
	total.Value, _ = schema.ApplyGeneration(total.Value, schema.Repeating)
	total.Value.Step = "2.5"
	for _, a := range []schema.Attribute{
		total,
		schema.NewForeignKey("user_id", schema.Reference{Table: "Users", Attribute: "id"}),
	} {
		if err := orders.AddAttribute(a); err != nil {
			t.Fatal(err)
		}
	}

	if err := s.AddTable(users); err != nil {
		t.Fatal(err)
	}
	if err := s.AddTable(orders); err != nil {
		t.Fatal(err)
	}
	return s
}

func mustImport(t *testing.T, data string) *Result {
	t.Helper()
	res, err := Import([]byte(data))
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	return res
}

func TestExportLayout(t *testing.T) {
	out, err := Export(sampleSchema(t))
	if err != nil {
		t.Fatal(err)
	}

	var doc map[string]any
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatal(err)
	}

	tables := doc["tables"].([]any)
	users := tables[0].(map[string]any)
	if got := users["primary_keys"]; !reflect.DeepEqual(got, []any{"id"}) {
		t.Errorf("primary_keys = %v, want [id]", got)
	}
	if users["rows"] != float64(25) {
		t.Errorf("rows = %v, want 25", users["rows"])
	}

	attrs := users["attributes"].([]any)
	name := attrs[0].(map[string]any)
	if name["type"] != "STRING" || name["generation"] != "RANDOM" || name["length"] != "12" {
		t.Errorf("string attribute = %v", name)
	}

	born := attrs[2].(map[string]any)
	if born["start"] != "1990-03-04" {
		t.Errorf("date start = %v", born["start"])
	}
	step := born["step"].(map[string]any)
	if len(step) != 7 || step["hours"] != float64(6) || step["weeks"] != float64(1) {
		t.Errorf("date step = %v", step)
	}
	if _, ok := born["length"]; ok {
		t.Error("date attribute must not carry length")
	}

	fk := tables[1].(map[string]any)["attributes"].([]any)[1].(map[string]any)
	want := map[string]any{
		"name":       "user_id",
		"type":       "foreign_key",
		"references": map[string]any{"table": "Users", "attribute": "id"},
	}
	if !reflect.DeepEqual(fk, want) {
		t.Errorf("foreign key = %v, want %v", fk, want)
	}
}

func TestExportNeverEmitsInvalidPairs(t *testing.T) {
	s := schema.New()
	table := schema.NewTable("t")
	for _, typ := range schema.AttributeTypes {
		for _, gen := range schema.EditableGenerations {
			a := schema.NewAttribute(typ.String() + "_" + gen.String())
			a.Value, _ = schema.ApplyType(a.Value, typ)
			a.Value, _ = schema.ApplyGeneration(a.Value, gen)
			if err := table.AddAttribute(a); err != nil {
				t.Fatal(err)
			}
		}
	}
	// An invalid pair forced past the rules still exports a valid one.
	broken := schema.NewAttribute("broken")
	broken.Value.Type = schema.Date
	broken.Value.Generation = schema.Repeating
	_ = table.AddAttribute(broken)
	_ = s.AddTable(table)

	out, err := Export(s)
	if err != nil {
		t.Fatal(err)
	}
	var doc document
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatal(err)
	}
	for _, a := range doc.Tables[0].Attributes {
		typ, _ := schema.ParseAttributeType(a.Type)
		gen, _ := schema.ParseGeneration(a.Generation)
		if !schema.Compatible(typ, gen) {
			t.Errorf("attribute %s exported invalid pair %s/%s", a.Name, a.Type, a.Generation)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	original := sampleSchema(t)
	out, err := Export(original)
	if err != nil {
		t.Fatal(err)
	}

	res := mustImport(t, string(out))
	if !res.Clean() {
		t.Errorf("unexpected diagnostics: %v", res.Diagnostics)
	}
	if !reflect.DeepEqual(res.Schema, original) {
		t.Errorf("round trip mismatch\n got: %+v\nwant: %+v", res.Schema, original)
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	original := sampleSchema(t)
	path := filepath.Join(t.TempDir(), "shop.yaml")

	if err := WriteFile(path, original); err != nil {
		t.Fatal(err)
	}
	res, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Clean() {
		t.Errorf("unexpected diagnostics: %v", res.Diagnostics)
	}
	if !reflect.DeepEqual(res.Schema, original) {
		t.Errorf("round trip mismatch\n got: %+v\nwant: %+v", res.Schema, original)
	}
}

func TestImportSkipsMalformedTable(t *testing.T) {
	res := mustImport(t, `{"tables":[
		{"name":"ok","rows":1,"attributes":[],"primary_keys":[]},
		{"rows":1,"attributes":[],"primary_keys":[]}
	]}`)

	if len(res.Schema.Tables) != 1 || res.Schema.Tables[0].Name != "ok" {
		t.Fatalf("tables = %+v, want only ok", res.Schema.Tables)
	}
	skipped := res.Skipped()
	if len(skipped) != 1 || skipped[0].Path != "$.tables[1]" || skipped[0].Entity != EntityTable {
		t.Errorf("skipped = %v", skipped)
	}
}

func TestImportTopLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"tables not array", `{"tables":{}}`},
		{"tables missing", `{}`},
		{"not an object", `[1,2]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := mustImport(t, tt.input)
			if len(res.Schema.Tables) != 0 {
				t.Errorf("tables = %v, want none", res.Schema.Tables)
			}
			if len(res.Skipped()) != 1 {
				t.Errorf("diagnostics = %v, want one skip", res.Diagnostics)
			}
		})
	}

	if _, err := Import([]byte("{not json")); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestImportForeignKey(t *testing.T) {
	res := mustImport(t, `{"tables":[{"name":"orders","rows":5,"attributes":[
		{"name":"user","type":"FOREIGN_KEY","references":{"table":"Users","attribute":"id"}},
		{"name":"broken","type":"foreign_key"}
	],"primary_keys":[]}]}`)

	attrs := res.Schema.Tables[0].Attributes
	if len(attrs) != 1 {
		t.Fatalf("attributes = %+v, want one", attrs)
	}
	a := attrs[0]
	if a.Key != schema.ForeignKey {
		t.Errorf("key = %s, want foreign_key", a.Key)
	}
	if a.Ref == nil || *a.Ref != (schema.Reference{Table: "Users", Attribute: "id"}) {
		t.Errorf("reference = %v", a.Ref)
	}
	if a.Value != schema.DefaultValueSpec() {
		t.Errorf("foreign key carries value fields: %+v", a.Value)
	}

	plain := schema.ApplyKeyRole(a, schema.KeyNone)
	if plain.Value.Type != schema.Integer || plain.Value.Generation != schema.Random {
		t.Errorf("value after leaving the foreign key role = %+v, want INTEGER/RANDOM", plain.Value)
	}
}

func TestImportRowCoercion(t *testing.T) {
	tests := []struct {
		rows string
		want int
		diag bool
	}{
		{`"50"`, 50, false},
		{`50`, 50, false},
		{`"fifty"`, schema.DefaultRows, true},
		{`-3`, schema.DefaultRows, true},
	}

	for _, tt := range tests {
		t.Run(tt.rows, func(t *testing.T) {
			res := mustImport(t, `{"tables":[{"name":"t","rows":`+tt.rows+`,"attributes":[],"primary_keys":[]}]}`)
			if got := res.Schema.Tables[0].Rows; got != tt.want {
				t.Errorf("rows = %d, want %d", got, tt.want)
			}
			if (len(res.Diagnostics) > 0) != tt.diag {
				t.Errorf("diagnostics = %v, want diag %v", res.Diagnostics, tt.diag)
			}
		})
	}
}

func TestImportAttributeRules(t *testing.T) {
	res := mustImport(t, `{"tables":[{"name":"t","rows":1,"attributes":[
		{"name":"a","type":"string","generation":"repeating","length":"7"},
		{"name":"b","type":"BLOB","generation":"RANDOM"},
		{"name":"c","type":"DATE","generation":"REPEATING"},
		{"name":"d","type":"STRING","generation":"email"},
		{"name":5,"type":"INTEGER","generation":"RANDOM"},
		{"name":"e","type":"INTEGER"},
		{"name":"a","type":"INTEGER","generation":"RANDOM"}
	],"primary_keys":["b","missing"]}]}`)

	table := res.Schema.Tables[0]
	var names []string
	for _, a := range table.Attributes {
		names = append(names, a.Name)
	}
	if want := []string{"a", "b", "c", "d"}; !reflect.DeepEqual(names, want) {
		t.Fatalf("attributes = %v, want %v", names, want)
	}

	a, _ := table.Attribute("a")
	if a.Value.Type != schema.String || a.Value.Generation != schema.Repeating || a.Value.Length != 7 {
		t.Errorf("a = %+v", a.Value)
	}
	b, _ := table.Attribute("b")
	if b.Value.Type != schema.Integer || b.Key != schema.PrimaryKey {
		t.Errorf("b = %+v key %s", b.Value, b.Key)
	}
	c, _ := table.Attribute("c")
	if c.Value.Type != schema.Date || c.Value.Generation != schema.Random {
		t.Errorf("c = %s/%s, want DATE/RANDOM", c.Value.Type, c.Value.Generation)
	}
	d, _ := table.Attribute("d")
	if d.Value.Generation != schema.Email {
		t.Errorf("d generation = %s, want EMAIL", d.Value.Generation)
	}

	if got := len(res.Skipped()); got != 3 {
		t.Errorf("skipped = %d, want 3: %v", got, res.Diagnostics)
	}
	var reasons []string
	for _, diag := range res.Diagnostics {
		reasons = append(reasons, diag.String())
	}
	joined := strings.Join(reasons, "\n")
	for _, want := range []string{`unknown type "BLOB"`, `primary key "missing"`, "does not support"} {
		if !strings.Contains(joined, want) {
			t.Errorf("diagnostics missing %q:\n%s", want, joined)
		}
	}
}

func TestExtendedKindsAreNotExported(t *testing.T) {
	res := mustImport(t, `{"tables":[{"name":"t","rows":1,"attributes":[
		{"name":"mail","type":"STRING","generation":"EMAIL","length":"30"}
	],"primary_keys":[]}]}`)

	out, err := Export(res.Schema)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(out), "EMAIL") {
		t.Errorf("export contains import-only generation:\n%s", out)
	}
	if !strings.Contains(string(out), `"generation": "RANDOM"`) {
		t.Errorf("export should fall back to RANDOM:\n%s", out)
	}
}

func TestImportDateParameters(t *testing.T) {
	res := mustImport(t, `{"tables":[{"name":"t","rows":1,"attributes":[
		{"name":"d","type":"DATE","generation":"INCREASING","start":"2021-06-30","step":{"days":"2","hours":3,"fortnights":1}}
	],"primary_keys":[]}]}`)

	v := res.Schema.Tables[0].Attributes[0].Value
	if want := time.Date(2021, time.June, 30, 0, 0, 0, 0, time.UTC); !v.DateStart.Equal(want) {
		t.Errorf("start = %v, want %v", v.DateStart, want)
	}
	if v.DateStep != (schema.DateStep{Days: 2, Hours: 3}) {
		t.Errorf("step = %+v", v.DateStep)
	}
}

func TestJSONInput(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "shop.json")
	if err := WriteFile(jsonPath, sampleSchema(t)); err != nil {
		t.Fatal(err)
	}
	got, cleanup, err := JSONInput(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	cleanup()
	if got != jsonPath {
		t.Errorf("JSONInput(%q) = %q, want the path unchanged", jsonPath, got)
	}

	yamlPath := filepath.Join(dir, "shop.yaml")
	if err := WriteFile(yamlPath, sampleSchema(t)); err != nil {
		t.Fatal(err)
	}
	got, cleanup, err = JSONInput(yamlPath)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(got) != "shop.json" || filepath.Dir(got) == dir {
		t.Errorf("JSONInput(%q) = %q, want shop.json in a temporary directory", yamlPath, got)
	}

	data, err := os.ReadFile(got)
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("converted file is not JSON: %v\n%s", err, data)
	}
	res, err := Import(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Diagnostics) != 0 || len(res.Schema.Tables) != len(sampleSchema(t).Tables) {
		t.Errorf("converted schema = %+v, diagnostics %v", res.Schema, res.Diagnostics)
	}

	cleanup()
	if _, err := os.Stat(got); !os.IsNotExist(err) {
		t.Errorf("cleanup left %s behind", got)
	}

	if _, _, err := JSONInput(filepath.Join(dir, "missing.yml")); err == nil {
		t.Error("Expected error but got none")
	}
}
