package generate

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/tordrt/mockschema/internal/schema"
)

// maxRandomUnix bounds random dates to the signed 32-bit epoch range.
const maxRandomUnix = 1 << 31

// values produces n values for v. Integers are int64, reals float64,
// strings string and dates time.Time.
func (g *Generator) values(v schema.ValueSpec, n int) ([]any, error) {
	if !schema.Compatible(v.Type, v.Generation) {
		return nil, fmt.Errorf("type %s does not support generation %s", v.Type, v.Generation)
	}

	switch v.Type {
	case schema.Integer:
		return g.integers(v, n)
	case schema.Real:
		return g.reals(v, n)
	case schema.String:
		return g.strings(v, n)
	case schema.Date:
		return g.dates(v, n), nil
	default:
		return nil, fmt.Errorf("unknown attribute type %s", v.Type)
	}
}

func (g *Generator) integers(v schema.ValueSpec, n int) ([]any, error) {
	start, err := strconv.ParseInt(v.Start, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid start %q: %w", v.Start, err)
	}
	step, err := strconv.ParseInt(v.Step, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid step %q: %w", v.Step, err)
	}

	out := make([]any, 0, n)
	current := start
	for i := 1; i <= n; i++ {
		switch v.Generation {
		case schema.Random:
			if step < 0 {
				return nil, fmt.Errorf("random step %d is negative", step)
			}
			out = append(out, g.rand.Int63n(step+1))
		case schema.Increasing:
			out = append(out, current)
			current += step
		case schema.Decreasing:
			out = append(out, current)
			current -= step
		case schema.Repeating:
			if step <= 0 {
				return nil, fmt.Errorf("repeating step %d is not positive", step)
			}
			out = append(out, current)
			if int64(i)%step == 0 {
				current = 0
			} else {
				current++
			}
		}
	}
	return out, nil
}

func (g *Generator) reals(v schema.ValueSpec, n int) ([]any, error) {
	start, err := strconv.ParseFloat(v.Start, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid start %q: %w", v.Start, err)
	}
	step, err := strconv.ParseFloat(v.Step, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid step %q: %w", v.Step, err)
	}

	out := make([]any, 0, n)
	current := start
	for i := 1; i <= n; i++ {
		switch v.Generation {
		case schema.Random:
			out = append(out, g.rand.Float64()*step)
		case schema.Increasing:
			out = append(out, current)
			current += step
		case schema.Decreasing:
			out = append(out, current)
			current -= step
		case schema.Repeating:
			if step <= 0 {
				return nil, fmt.Errorf("repeating step %v is not positive", step)
			}
			out = append(out, current)
			if math.Mod(float64(i), step) == 0 {
				current = 0
			} else {
				current++
			}
		}
	}
	return out, nil
}

func (g *Generator) strings(v schema.ValueSpec, n int) ([]any, error) {
	if v.Length <= 0 {
		return nil, fmt.Errorf("length %d is not positive", v.Length)
	}

	out := make([]any, 0, n)
	var pool []string
	for i := 1; i <= n; i++ {
		switch v.Generation {
		case schema.Random:
			out = append(out, g.faker.letters(v.Length))
		case schema.Repeating:
			// The first Length values fill the pool, later ones cycle through it.
			if len(pool) == v.Length {
				out = append(out, pool[i%v.Length])
				continue
			}
			s := g.faker.letters(v.Length)
			pool = append(pool, s)
			out = append(out, s)
		case schema.NameSurname:
			out = append(out, g.faker.name())
		case schema.Email:
			out = append(out, g.faker.email())
		case schema.Phone:
			out = append(out, g.faker.phone())
		case schema.NaturalText:
			out = append(out, g.faker.sentence())
		}
	}
	return out, nil
}

func (g *Generator) dates(v schema.ValueSpec, n int) []any {
	out := make([]any, 0, n)
	step := v.DateStep.Duration()
	current := v.DateStart
	for i := 0; i < n; i++ {
		switch v.Generation {
		case schema.Random:
			out = append(out, time.Unix(g.rand.Int63n(maxRandomUnix), 0).UTC())
		case schema.Increasing:
			out = append(out, current)
			current = current.Add(step)
		case schema.Decreasing:
			out = append(out, current)
			current = current.Add(-step)
		}
	}
	return out
}

// adjustsLength reports whether the column width follows the generated data.
func adjustsLength(g schema.GenerationType) bool {
	return g.ImportOnly()
}

func longest(values []any) int {
	max := 1
	for _, v := range values {
		if s, ok := v.(string); ok && len(s) > max {
			max = len(s)
		}
	}
	return max
}

const (
	dateTimeLayout = "2006-01-02 15:04:05.999999"
	oracleLayout   = "2006-01-02 15:04:05"
)

// FormatValue renders a generated value as text for CSV and SQL output.
func FormatValue(v any) string {
	switch val := v.(type) {
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case string:
		return val
	case time.Time:
		return val.Format(dateTimeLayout)
	default:
		return fmt.Sprint(val)
	}
}
