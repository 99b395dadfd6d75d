package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tordrt/mockschema/internal/schema"
)

// parseDateStep reads "days=1,hours=2".
func parseDateStep(s string) (schema.DateStep, error) {
	var step schema.DateStep
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		unit, value, ok := strings.Cut(part, "=")
		if !ok {
			return schema.DateStep{}, fmt.Errorf("invalid date step %q (want unit=value)", part)
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return schema.DateStep{}, fmt.Errorf("invalid date step value %q: %w", value, err)
		}
		if !step.Set(strings.ToLower(strings.TrimSpace(unit)), n) {
			return schema.DateStep{}, fmt.Errorf("unknown date step unit %q", unit)
		}
	}
	return step, nil
}

// parseReference reads "table.attribute".
func parseReference(s string) (schema.Reference, error) {
	table, attr, ok := strings.Cut(s, ".")
	if !ok || table == "" || attr == "" {
		return schema.Reference{}, fmt.Errorf("invalid reference %q (want table.attribute)", s)
	}
	return schema.Reference{Table: table, Attribute: attr}, nil
}

// parseDate reads a calendar date as UTC midnight.
func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return t, nil
}

// splitList parses a comma-separated flag value.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
