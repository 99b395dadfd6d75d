package editor

import (
	"github.com/tordrt/mockschema/internal/schema"
)

// Inputs tells which fields of an attribute are editable right now.
type Inputs struct {
	Type       bool `json:"type"`
	Generation bool `json:"generation"`
	Start      bool `json:"start"`
	Step       bool `json:"step"`
	DateStart  bool `json:"date_start"`
	DateStep   bool `json:"date_step"`
	Length     bool `json:"length"`
	Reference  bool `json:"reference"`
}

// Form is the presentation state of one attribute: its current values, the
// options each selector may offer, and which inputs are enabled.
type Form struct {
	Table             string                  `json:"table"`
	Attribute         string                  `json:"attribute"`
	Key               schema.KeyRole          `json:"key"`
	Type              schema.AttributeType    `json:"type"`
	Generation        schema.GenerationType   `json:"generation"`
	TypeOptions       []schema.AttributeType  `json:"type_options"`
	GenerationOptions []schema.GenerationType `json:"generation_options"`
	Reference         *schema.Reference       `json:"reference,omitempty"`
	Enabled           Inputs                  `json:"enabled"`
}

// Form returns the presentation state of the addressed attribute.
func (c *Controller) Form(target Target) (Form, error) {
	a, err := c.schema.Lookup(target.Table, target.Attribute)
	if err != nil {
		return Form{}, err
	}
	return formFor(target.Table, a), nil
}

func formFor(table string, a *schema.Attribute) Form {
	v := a.Value
	f := Form{
		Table:             table,
		Attribute:         a.Name,
		Key:               a.Key,
		Type:              v.Type,
		Generation:        v.Generation,
		TypeOptions:       schema.AllowedTypes(v.Generation),
		GenerationOptions: schema.AllowedGenerations(v.Type),
	}

	if a.IsForeignKey() {
		f.Reference = a.Ref
		f.Enabled.Reference = true
		return f
	}

	f.Enabled.Type = true
	f.Enabled.Generation = true
	switch v.Type {
	case schema.Integer, schema.Real:
		f.Enabled.Start = true
		f.Enabled.Step = true
	case schema.Date:
		f.Enabled.DateStart = true
		f.Enabled.DateStep = true
	case schema.String:
		f.Enabled.Length = true
	}
	return f
}
