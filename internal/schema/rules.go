package schema

import "fmt"

// compatibility lists, per attribute type, the generation types it accepts.
var compatibility = map[AttributeType][]GenerationType{
	Integer: {Random, Increasing, Decreasing, Repeating},
	Real:    {Random, Increasing, Decreasing, Repeating},
	String:  {Random, Repeating, NameSurname, Email, Phone, NaturalText},
	Date:    {Random, Increasing, Decreasing},
}

// Compatible reports whether the (type, generation) pair may be generated.
func Compatible(t AttributeType, g GenerationType) bool {
	for _, allowed := range compatibility[t] {
		if allowed == g {
			return true
		}
	}
	return false
}

// AllowedGenerations returns the editable generation types compatible with t.
func AllowedGenerations(t AttributeType) []GenerationType {
	var out []GenerationType
	for _, g := range EditableGenerations {
		if Compatible(t, g) {
			out = append(out, g)
		}
	}
	return out
}

// AllowedTypes returns the attribute types compatible with g.
func AllowedTypes(g GenerationType) []AttributeType {
	var out []AttributeType
	for _, t := range AttributeTypes {
		if Compatible(t, g) {
			out = append(out, t)
		}
	}
	return out
}

// Repair records a field that was forced to a default to keep the
// (type, generation) pair compatible.
type Repair struct {
	Field string `json:"field"`
	From  string `json:"from"`
	To    string `json:"to"`
}

func (r Repair) String() string {
	return fmt.Sprintf("%s reset from %s to %s", r.Field, r.From, r.To)
}

// ApplyType sets the attribute type. When the current generation is not
// valid for the new type, generation falls back to Random.
func ApplyType(v ValueSpec, t AttributeType) (ValueSpec, *Repair) {
	v.Type = t
	if Compatible(t, v.Generation) {
		return v, nil
	}
	r := &Repair{Field: "generation", From: v.Generation.String(), To: Random.String()}
	v.Generation = Random
	return v, r
}

// ApplyGeneration sets the generation type. When the current type does not
// accept the new generation, type falls back to Integer.
func ApplyGeneration(v ValueSpec, g GenerationType) (ValueSpec, *Repair) {
	v.Generation = g
	if Compatible(v.Type, g) {
		return v, nil
	}
	r := &Repair{Field: "type", From: v.Type.String(), To: Integer.String()}
	v.Type = Integer
	if !Compatible(Integer, g) {
		// Extended kinds only fit String.
		r.To = String.String()
		v.Type = String
	}
	return v, r
}

// NormalizePair repairs a pair read from outside the editor, keeping the
// declared type and resetting the generation.
func NormalizePair(v ValueSpec) (ValueSpec, *Repair) {
	return ApplyType(v, v.Type)
}

// ApplyKeyRole switches the key role. Entering ForeignKey allocates an empty
// reference if none was set; leaving it keeps the value spec untouched so the
// last valid pair comes back.
func ApplyKeyRole(a Attribute, k KeyRole) Attribute {
	a.Key = k
	if k == ForeignKey && a.Ref == nil {
		a.Ref = &Reference{}
	}
	return a
}
