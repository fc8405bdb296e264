package journey

import (
	"fmt"
	"sort"
	"strings"
)

// Graph is the dependency structure of one journey: nodes are
// frameworks, edges are declared dependencies plus the implicit chain
// of adjacent frameworks.
type Graph struct {
	nodes     map[string]bool
	adjacency map[string][]string
	inDegree  map[string]int
	order     []string
}

// BuildGraph constructs the dependency graph for a definition. Edges
// come from Dependencies and from adjacency in the declared sequence.
// Cycles and references to undeclared frameworks are errors.
func BuildGraph(d *Definition) (*Graph, error) {
	g := &Graph{
		nodes:     make(map[string]bool, len(d.Frameworks)),
		adjacency: make(map[string][]string),
		inDegree:  make(map[string]int),
	}

	for _, fw := range d.Frameworks {
		if g.nodes[fw] {
			return nil, fmt.Errorf("duplicate framework %s in journey %s", fw, d.ID)
		}
		g.nodes[fw] = true
		g.inDegree[fw] = 0
	}

	// Adjacent frameworks are implicitly ordered.
	for i := 1; i < len(d.Frameworks); i++ {
		g.addEdge(d.Frameworks[i-1], d.Frameworks[i])
	}

	for _, dep := range d.Dependencies {
		if !g.nodes[dep.From] {
			return nil, fmt.Errorf("dependency references undeclared framework %s", dep.From)
		}
		if !g.nodes[dep.To] {
			return nil, fmt.Errorf("dependency references undeclared framework %s", dep.To)
		}
		if dep.From == dep.To {
			return nil, fmt.Errorf("framework %s depends on itself", dep.From)
		}
		g.addEdge(dep.From, dep.To)
	}

	if cycle := g.findCycle(); cycle != nil {
		return nil, fmt.Errorf("circular dependency: %s", strings.Join(cycle, " -> "))
	}

	order, err := g.topoSort()
	if err != nil {
		return nil, err
	}
	g.order = order

	return g, nil
}

func (g *Graph) addEdge(from, to string) {
	for _, existing := range g.adjacency[from] {
		if existing == to {
			return
		}
	}
	g.adjacency[from] = append(g.adjacency[from], to)
	g.inDegree[to]++
}

// findCycle runs DFS and returns a cycle path if one exists.
func (g *Graph) findCycle() []string {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)

	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var walk func(id string, path []string) []string
	walk = func(id string, path []string) []string {
		visited[id] = true
		onStack[id] = true
		path = append(path, id)

		for _, next := range g.adjacency[id] {
			if !visited[next] {
				if cycle := walk(next, path); cycle != nil {
					return cycle
				}
			} else if onStack[next] {
				for i, p := range path {
					if p == next {
						return append(path[i:], next)
					}
				}
			}
		}

		onStack[id] = false
		return nil
	}

	for _, id := range ids {
		if !visited[id] {
			if cycle := walk(id, nil); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// topoSort runs Kahn's algorithm. Ties are broken alphabetically so
// the derived order is deterministic.
func (g *Graph) topoSort() ([]string, error) {
	inDegree := make(map[string]int, len(g.inDegree))
	for id, d := range g.inDegree {
		inDegree[id] = d
	}

	var ready []string
	for id, d := range inDegree {
		if d == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(g.nodes))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)

		for _, next := range g.adjacency[id] {
			inDegree[next]--
			if inDegree[next] == 0 {
				ready = append(ready, next)
			}
		}
		sort.Strings(ready)
	}

	if len(order) != len(g.nodes) {
		return nil, fmt.Errorf("failed to order all frameworks, possible cycle")
	}

	return order, nil
}

// Order returns the derived topological execution order.
func (g *Graph) Order() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// CheckDeclaredOrder verifies that the declared framework sequence is
// itself a valid topological order of the graph: for every edge, the
// source must appear before the target. This catches a reordered
// sequence whose dependencies were not updated.
func (g *Graph) CheckDeclaredOrder(declared []string) error {
	position := make(map[string]int, len(declared))
	for i, fw := range declared {
		position[fw] = i
	}

	for from, targets := range g.adjacency {
		for _, to := range targets {
			if position[from] >= position[to] {
				return fmt.Errorf("declared order places %s before %s but %s must complete first", to, from, from)
			}
		}
	}
	return nil
}

// Predecessors returns the frameworks with edges into the given one.
func (g *Graph) Predecessors(id string) []string {
	var preds []string
	for from, targets := range g.adjacency {
		for _, to := range targets {
			if to == id {
				preds = append(preds, from)
			}
		}
	}
	sort.Strings(preds)
	return preds
}
