// Package codec converts schemas to and from their file representation.
//
// The JSON layout is
//
//	{"tables": [{"name", "rows", "attributes": [...], "primary_keys": [...]}]}
//
// where a reference attribute is {"name", "type": "foreign_key", "references": {"table", "attribute"}}
// and any other attribute is {"name", "type", "generation", "start", "step", ["length"]}.
// Date attributes carry a YYYY-MM-DD start and a step object with seven
// duration units; every other attribute carries start and step as strings.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/tordrt/mockschema/internal/schema"
)

const (
	dateLayout     = "2006-01-02"
	foreignKeyType = "foreign_key"
)

type document struct {
	Tables []tableDoc `json:"tables" yaml:"tables"`
}

type tableDoc struct {
	Name        string         `json:"name" yaml:"name"`
	Rows        int            `json:"rows" yaml:"rows"`
	Attributes  []attributeDoc `json:"attributes" yaml:"attributes"`
	PrimaryKeys []string       `json:"primary_keys" yaml:"primary_keys"`
}

type attributeDoc struct {
	Name       string        `json:"name" yaml:"name"`
	Type       string        `json:"type" yaml:"type"`
	Generation string        `json:"generation,omitempty" yaml:"generation,omitempty"`
	Start      any           `json:"start,omitempty" yaml:"start,omitempty"`
	Step       any           `json:"step,omitempty" yaml:"step,omitempty"`
	Length     string        `json:"length,omitempty" yaml:"length,omitempty"`
	References *referenceDoc `json:"references,omitempty" yaml:"references,omitempty"`
}

type referenceDoc struct {
	Table     string `json:"table" yaml:"table"`
	Attribute string `json:"attribute" yaml:"attribute"`
}

type dateStepDoc struct {
	Microseconds int `json:"microseconds" yaml:"microseconds"`
	Milliseconds int `json:"milliseconds" yaml:"milliseconds"`
	Seconds      int `json:"seconds" yaml:"seconds"`
	Minutes      int `json:"minutes" yaml:"minutes"`
	Hours        int `json:"hours" yaml:"hours"`
	Days         int `json:"days" yaml:"days"`
	Weeks        int `json:"weeks" yaml:"weeks"`
}

// Export renders s as indented JSON.
func Export(s *schema.Schema) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode writes s as indented JSON to w.
func Encode(w io.Writer, s *schema.Schema) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(toDocument(s)); err != nil {
		return fmt.Errorf("failed to encode schema: %w", err)
	}
	return nil
}

// ExportYAML renders s as YAML using the same layout as Export.
func ExportYAML(s *schema.Schema) ([]byte, error) {
	out, err := yaml.Marshal(toDocument(s))
	if err != nil {
		return nil, fmt.Errorf("failed to encode schema: %w", err)
	}
	return out, nil
}

func toDocument(s *schema.Schema) document {
	doc := document{Tables: make([]tableDoc, 0, len(s.Tables))}
	for _, t := range s.Tables {
		td := tableDoc{
			Name:        t.Name,
			Rows:        t.Rows,
			Attributes:  make([]attributeDoc, 0, len(t.Attributes)),
			PrimaryKeys: t.PrimaryKeys(),
		}
		for _, a := range t.Attributes {
			td.Attributes = append(td.Attributes, toAttributeDoc(a))
		}
		doc.Tables = append(doc.Tables, td)
	}
	return doc
}

func toAttributeDoc(a schema.Attribute) attributeDoc {
	if a.IsForeignKey() {
		ref := schema.Reference{}
		if a.Ref != nil {
			ref = *a.Ref
		}
		return attributeDoc{
			Name:       a.Name,
			Type:       foreignKeyType,
			References: &referenceDoc{Table: ref.Table, Attribute: ref.Attribute},
		}
	}

	v := a.Value
	gen := v.Generation
	if gen.ImportOnly() || !schema.Compatible(v.Type, gen) {
		// Extended kinds are read but never written.
		gen = schema.Random
	}

	doc := attributeDoc{
		Name:       a.Name,
		Type:       v.Type.String(),
		Generation: gen.String(),
	}
	if v.Type == schema.Date {
		doc.Start = v.DateStart.Format(dateLayout)
		doc.Step = dateStepDoc{
			Microseconds: v.DateStep.Microseconds,
			Milliseconds: v.DateStep.Milliseconds,
			Seconds:      v.DateStep.Seconds,
			Minutes:      v.DateStep.Minutes,
			Hours:        v.DateStep.Hours,
			Days:         v.DateStep.Days,
			Weeks:        v.DateStep.Weeks,
		}
	} else {
		doc.Start = v.Start
		doc.Step = v.Step
	}
	if v.Type == schema.String {
		doc.Length = strconv.Itoa(v.Length)
	}
	return doc
}
