package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tordrt/mockschema/internal/schema"
)

// Entity names the kind of element a Diagnostic is about.
type Entity string

const (
	EntitySchema    Entity = "schema"
	EntityTable     Entity = "table"
	EntityAttribute Entity = "attribute"
)

// Diagnostic describes an element that was skipped or only partially read.
type Diagnostic struct {
	Path    string `json:"path"`
	Entity  Entity `json:"entity"`
	Skipped bool   `json:"skipped"`
	Reason  string `json:"reason"`
}

func (d Diagnostic) String() string {
	action := "adjusted"
	if d.Skipped {
		action = "skipped"
	}
	return fmt.Sprintf("%s: %s %s: %s", d.Path, d.Entity, action, d.Reason)
}

// Result is the outcome of an import. Schema is never nil.
type Result struct {
	Schema      *schema.Schema
	Diagnostics []Diagnostic
}

// Clean reports whether the input was read without any adjustment.
func (r *Result) Clean() bool {
	return len(r.Diagnostics) == 0
}

// Skipped returns the diagnostics of dropped elements.
func (r *Result) Skipped() []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if d.Skipped {
			out = append(out, d)
		}
	}
	return out
}

func (r *Result) skip(path string, e Entity, format string, args ...any) {
	r.Diagnostics = append(r.Diagnostics, Diagnostic{Path: path, Entity: e, Skipped: true, Reason: fmt.Sprintf(format, args...)})
}

func (r *Result) adjust(path string, e Entity, format string, args ...any) {
	r.Diagnostics = append(r.Diagnostics, Diagnostic{Path: path, Entity: e, Reason: fmt.Sprintf(format, args...)})
}

// Import reads a JSON schema. Content problems never fail the import; they
// are reported as diagnostics. The error is reserved for input that is not
// JSON at all.
func Import(data []byte) (*Result, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to parse schema JSON: %w", err)
	}
	return ImportValue(v), nil
}

// ImportYAML reads a YAML schema with the same rules as Import.
func ImportYAML(data []byte) (*Result, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to parse schema YAML: %w", err)
	}
	return ImportValue(normalize(v)), nil
}

// ImportValue reads an already decoded document made of maps, slices and
// scalars.
func ImportValue(v any) *Result {
	res := &Result{Schema: schema.New()}

	root, ok := v.(map[string]any)
	if !ok {
		res.skip("$", EntitySchema, "top-level value is not an object")
		return res
	}
	tables, ok := root["tables"].([]any)
	if !ok {
		res.skip("$.tables", EntitySchema, "tables is not an array")
		return res
	}

	for i, raw := range tables {
		path := fmt.Sprintf("$.tables[%d]", i)
		table, ok := importTable(res, path, raw)
		if !ok {
			continue
		}
		if err := res.Schema.AddTable(table); err != nil {
			res.skip(path, EntityTable, "%v", err)
		}
	}
	return res
}

func importTable(res *Result, path string, raw any) (schema.Table, bool) {
	obj, ok := raw.(map[string]any)
	if !ok {
		res.skip(path, EntityTable, "entry is not an object")
		return schema.Table{}, false
	}
	name, ok := obj["name"].(string)
	if !ok {
		res.skip(path, EntityTable, "name is missing or not a string")
		return schema.Table{}, false
	}
	attrs, ok := obj["attributes"].([]any)
	if !ok {
		res.skip(path, EntityTable, "attributes of %q is not an array", name)
		return schema.Table{}, false
	}
	keys, ok := obj["primary_keys"].([]any)
	if !ok {
		res.skip(path, EntityTable, "primary_keys of %q is not an array", name)
		return schema.Table{}, false
	}

	table := schema.NewTable(name)
	if rawRows, present := obj["rows"]; present {
		n, ok := toInt(rawRows)
		switch {
		case !ok:
			res.adjust(path+".rows", EntityTable, "rows %v is not a number, using %d", rawRows, table.Rows)
		case table.SetRows(n) != nil:
			res.adjust(path+".rows", EntityTable, "rows %d out of range, using %d", n, table.Rows)
		}
	} else {
		res.adjust(path+".rows", EntityTable, "rows missing, using %d", table.Rows)
	}

	for j, rawAttr := range attrs {
		attrPath := fmt.Sprintf("%s.attributes[%d]", path, j)
		a, ok := importAttribute(res, attrPath, rawAttr)
		if !ok {
			continue
		}
		if err := table.AddAttribute(a); err != nil {
			res.skip(attrPath, EntityAttribute, "%v", err)
		}
	}

	for j, rawKey := range keys {
		keyPath := fmt.Sprintf("%s.primary_keys[%d]", path, j)
		keyName, ok := rawKey.(string)
		if !ok {
			res.adjust(keyPath, EntityTable, "primary key entry is not a string")
			continue
		}
		a, ok := table.Attribute(keyName)
		switch {
		case !ok:
			res.adjust(keyPath, EntityTable, "primary key %q names no attribute", keyName)
		case a.IsForeignKey():
			res.adjust(keyPath, EntityTable, "primary key %q is a foreign key, keeping it a foreign key", keyName)
		default:
			a.Key = schema.PrimaryKey
		}
	}

	return table, true
}

func importAttribute(res *Result, path string, raw any) (schema.Attribute, bool) {
	obj, ok := raw.(map[string]any)
	if !ok {
		res.skip(path, EntityAttribute, "entry is not an object")
		return schema.Attribute{}, false
	}
	name, ok := obj["name"].(string)
	if !ok {
		res.skip(path, EntityAttribute, "name is missing or not a string")
		return schema.Attribute{}, false
	}
	typeName, ok := obj["type"].(string)
	if !ok {
		res.skip(path, EntityAttribute, "type of %q is missing or not a string", name)
		return schema.Attribute{}, false
	}
	typeName = strings.ToUpper(typeName)

	if typeName == strings.ToUpper(foreignKeyType) {
		refs, ok := obj["references"].(map[string]any)
		if !ok {
			res.skip(path, EntityAttribute, "foreign key %q has no references object", name)
			return schema.Attribute{}, false
		}
		table, tok := refs["table"].(string)
		attr, aok := refs["attribute"].(string)
		if !tok || !aok {
			res.skip(path, EntityAttribute, "references of %q need table and attribute strings", name)
			return schema.Attribute{}, false
		}
		return schema.NewForeignKey(name, schema.Reference{Table: table, Attribute: attr}), true
	}

	genName, ok := obj["generation"].(string)
	if !ok {
		res.skip(path, EntityAttribute, "generation of %q is missing or not a string", name)
		return schema.Attribute{}, false
	}

	a := schema.NewAttribute(name)
	v := &a.Value
	if t, ok := schema.ParseAttributeType(typeName); ok {
		v.Type = t
	} else {
		res.adjust(path+".type", EntityAttribute, "unknown type %q, keeping %s", typeName, v.Type)
	}
	if g, ok := schema.ParseGeneration(strings.ToUpper(genName)); ok {
		v.Generation = g
	} else {
		res.adjust(path+".generation", EntityAttribute, "unknown generation %q, keeping %s", genName, v.Generation)
	}
	if fixed, repair := schema.NormalizePair(*v); repair != nil {
		*v = fixed
		res.adjust(path+".generation", EntityAttribute, "%s does not support %s, %s", v.Type, repair.From, repair)
	}

	if v.Type == schema.Date {
		importDateParams(res, path, obj, v)
	} else {
		if s, present, ok := scalarString(obj, "start"); present && ok {
			v.Start = s
		} else if present {
			res.adjust(path+".start", EntityAttribute, "start is not a scalar, using %q", v.Start)
		}
		if s, present, ok := scalarString(obj, "step"); present && ok {
			v.Step = s
		} else if present {
			res.adjust(path+".step", EntityAttribute, "step is not a scalar, using %q", v.Step)
		}
	}

	if rawLen, present := obj["length"]; present {
		if n, ok := toInt(rawLen); ok && n > 0 {
			v.Length = n
		} else {
			res.adjust(path+".length", EntityAttribute, "length %v is not a positive number, using %d", rawLen, v.Length)
		}
	}
	return a, true
}

func importDateParams(res *Result, path string, obj map[string]any, v *schema.ValueSpec) {
	if rawStart, present := obj["start"]; present {
		var (
			d   time.Time
			err error
		)
		switch val := rawStart.(type) {
		case time.Time:
			d = time.Date(val.Year(), val.Month(), val.Day(), 0, 0, 0, 0, time.UTC)
		case string:
			d, err = parseDate(val)
		default:
			err = fmt.Errorf("unexpected %T", rawStart)
		}
		if err == nil {
			v.DateStart = d
		} else {
			res.adjust(path+".start", EntityAttribute, "start %v is not a YYYY-MM-DD date, using %s", rawStart, v.DateStart.Format(dateLayout))
		}
	}

	rawStep, present := obj["step"]
	if !present {
		return
	}
	stepObj, ok := rawStep.(map[string]any)
	if !ok {
		res.adjust(path+".step", EntityAttribute, "date step is not an object, using default")
		return
	}
	step := schema.DateStep{}
	for unit, raw := range stepObj {
		n, ok := toInt(raw)
		if !ok {
			res.adjust(path+".step."+unit, EntityAttribute, "%v is not a number, using 0", raw)
			continue
		}
		step.Set(unit, n)
	}
	v.DateStep = step
}

func parseDate(s string) (time.Time, error) {
	if d, err := time.Parse(dateLayout, s); err == nil {
		return d, nil
	}
	// Accept full timestamps by keeping only the calendar day.
	if len(s) > len(dateLayout) {
		return time.Parse(dateLayout, s[:len(dateLayout)])
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// scalarString returns obj[key] rendered as a string when it is a string or
// a number.
func scalarString(obj map[string]any, key string) (string, bool, bool) {
	raw, present := obj[key]
	if !present {
		return "", false, false
	}
	switch val := raw.(type) {
	case string:
		return val, true, true
	case json.Number:
		return val.String(), true, true
	case int:
		return strconv.Itoa(val), true, true
	case int64:
		return strconv.FormatInt(val, 10), true, true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true, true
	default:
		return "", true, false
	}
}

// toInt accepts integral numbers and numeric strings.
func toInt(raw any) (int, bool) {
	switch val := raw.(type) {
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return int(n), true
		}
		f, err := val.Float64()
		if err != nil {
			return 0, false
		}
		return floatToInt(f)
	case int:
		return val, true
	case int64:
		return int(val), true
	case uint64:
		return int(val), true
	case float64:
		return floatToInt(val)
	case string:
		s := strings.TrimSpace(val)
		if n, err := strconv.Atoi(s); err == nil {
			return n, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return floatToInt(f)
	default:
		return 0, false
	}
}

func floatToInt(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// normalize turns YAML maps with non-string keys into string-keyed maps.
func normalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, item := range val {
			val[k] = normalize(item)
		}
		return val
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = normalize(item)
		}
		return out
	case []any:
		for i, item := range val {
			val[i] = normalize(item)
		}
		return val
	default:
		return v
	}
}
