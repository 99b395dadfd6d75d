package generate

import (
	"fmt"

	"github.com/tordrt/mockschema/internal/schema"
)

// Graph holds the foreign-key dependencies between tables.
type Graph struct {
	// Tables in schema order.
	Tables []string
	// Parents maps a table to the tables it references.
	Parents map[string][]string
	// Children maps a table to the tables referencing it.
	Children map[string][]string
}

// BuildGraph collects one edge per referencing table pair. Self-references
// and references to unknown tables add no edge.
func BuildGraph(s *schema.Schema) *Graph {
	g := &Graph{
		Parents:  make(map[string][]string),
		Children: make(map[string][]string),
	}
	known := make(map[string]bool, len(s.Tables))
	for _, t := range s.Tables {
		g.Tables = append(g.Tables, t.Name)
		known[t.Name] = true
	}

	for _, t := range s.Tables {
		seen := make(map[string]bool)
		for _, a := range t.Attributes {
			if !a.IsForeignKey() || a.Ref == nil {
				continue
			}
			parent := a.Ref.Table
			if parent == t.Name || !known[parent] || seen[parent] {
				continue
			}
			seen[parent] = true
			g.Parents[t.Name] = append(g.Parents[t.Name], parent)
			g.Children[parent] = append(g.Children[parent], t.Name)
		}
	}
	return g
}

// TopoResult holds the result of topological sorting.
type TopoResult struct {
	// Order lists parents before children. Tables caught in a cycle come
	// last, in schema order.
	Order []string
	// CycleTables lists tables involved in cycles, if any.
	CycleTables []string
}

// HasCycle reports whether some tables could not be ordered.
func (r TopoResult) HasCycle() bool {
	return len(r.CycleTables) > 0
}

// TopoSort orders the tables with Kahn's algorithm. Ties keep schema order.
func (g *Graph) TopoSort() TopoResult {
	inDegree := make(map[string]int, len(g.Tables))
	for _, t := range g.Tables {
		inDegree[t] = len(g.Parents[t])
	}

	var queue []string
	for _, t := range g.Tables {
		if inDegree[t] == 0 {
			queue = append(queue, t)
		}
	}

	var order []string
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)

		for _, child := range g.Children[node] {
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	result := TopoResult{Order: order}
	if len(order) < len(g.Tables) {
		for _, t := range g.Tables {
			if inDegree[t] > 0 {
				result.CycleTables = append(result.CycleTables, t)
				result.Order = append(result.Order, t)
			}
		}
	}
	return result
}

// ValidateCycles returns an error naming the tables of a cycle.
func ValidateCycles(result TopoResult) error {
	if !result.HasCycle() {
		return nil
	}
	return fmt.Errorf("circular dependency detected among tables: %v", result.CycleTables)
}
