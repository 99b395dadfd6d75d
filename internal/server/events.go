package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/tordrt/mockschema/internal/editor"
	"github.com/tordrt/mockschema/internal/schema"
)

// Event kinds accepted by the attribute events endpoint.
const (
	eventRename     = "rename"
	eventKey        = "key"
	eventType       = "type"
	eventGeneration = "generation"
	eventStart      = "start"
	eventStep       = "step"
	eventDateStart  = "date_start"
	eventDateStep   = "date_step"
	eventLength     = "length"
	eventReference  = "reference"
)

type dateStepRequest struct {
	Microseconds int `json:"microseconds"`
	Milliseconds int `json:"milliseconds"`
	Seconds      int `json:"seconds"`
	Minutes      int `json:"minutes"`
	Hours        int `json:"hours"`
	Days         int `json:"days"`
	Weeks        int `json:"weeks"`
}

type referenceRequest struct {
	Table     string `json:"table" binding:"required"`
	Attribute string `json:"attribute" binding:"required"`
}

// EventRequest is one attribute edit. Kind selects which of the other
// fields is read.
type EventRequest struct {
	Kind       string            `json:"kind" binding:"required"`
	Name       string            `json:"name"`
	Key        string            `json:"key"`
	Type       string            `json:"type"`
	Generation string            `json:"generation"`
	Start      string            `json:"start"`
	Step       string            `json:"step"`
	DateStart  string            `json:"date_start"`
	DateStep   *dateStepRequest  `json:"date_step"`
	Length     *int              `json:"length"`
	Reference  *referenceRequest `json:"reference"`
}

var errBadEvent = errors.New("invalid event")

// toEvent turns the request into the editor event for target.
func (r EventRequest) toEvent(target editor.Target) (editor.Event, error) {
	switch r.Kind {
	case eventRename:
		return editor.AttributeRenamed{Target: target, To: r.Name}, nil

	case eventKey:
		k, ok := schema.ParseKeyRole(r.Key)
		if !ok {
			return nil, fmt.Errorf("%w: unknown key role %q", errBadEvent, r.Key)
		}
		return editor.KeyRoleChanged{Target: target, Role: k}, nil

	case eventType:
		t, ok := schema.ParseAttributeType(r.Type)
		if !ok {
			return nil, fmt.Errorf("%w: unknown type %q", errBadEvent, r.Type)
		}
		return editor.AttributeTypeChanged{Target: target, Type: t}, nil

	case eventGeneration:
		g, ok := schema.ParseGeneration(r.Generation)
		if !ok {
			return nil, fmt.Errorf("%w: unknown generation %q", errBadEvent, r.Generation)
		}
		return editor.GenerationChanged{Target: target, Generation: g}, nil

	case eventStart:
		return editor.StartChanged{Target: target, Start: r.Start}, nil

	case eventStep:
		return editor.StepChanged{Target: target, Step: r.Step}, nil

	case eventDateStart:
		start, err := parseDateStart(r.DateStart)
		if err != nil {
			return nil, err
		}
		return editor.DateStartChanged{Target: target, Start: start}, nil

	case eventDateStep:
		if r.DateStep == nil {
			return nil, fmt.Errorf("%w: date_step is required", errBadEvent)
		}
		return editor.DateStepChanged{Target: target, Step: schema.DateStep(*r.DateStep)}, nil

	case eventLength:
		if r.Length == nil {
			return nil, fmt.Errorf("%w: length is required", errBadEvent)
		}
		return editor.LengthChanged{Target: target, Length: *r.Length}, nil

	case eventReference:
		if r.Reference == nil {
			return nil, fmt.Errorf("%w: reference is required", errBadEvent)
		}
		ref := schema.Reference{Table: r.Reference.Table, Attribute: r.Reference.Attribute}
		return editor.ReferenceChanged{Target: target, Reference: ref}, nil

	default:
		return nil, fmt.Errorf("%w: unknown kind %q", errBadEvent, r.Kind)
	}
}

// parseDateStart accepts a calendar date or a full timestamp, both in UTC.
func parseDateStart(s string) (time.Time, error) {
	for _, layout := range []string{time.DateOnly, time.DateTime, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: date_start %q is not a date", errBadEvent, s)
}
