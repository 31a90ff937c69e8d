package dag

import (
	"fmt"
	"slices"
	"sort"

	"github.com/specialistvlad/metagrid/internal/catalog"
)

// Model returns the catalog the graph was built from.
func (g *Graph) Model() *catalog.Model { return g.model }

// Has reports whether name is a node of the graph.
func (g *Graph) Has(name string) bool {
	_, ok := g.nodes[name]
	return ok
}

// Kind returns the kind of the named node.
func (g *Graph) Kind(name string) (NodeKind, bool) {
	n, ok := g.nodes[name]
	if !ok {
		return 0, false
	}
	return n.kind, true
}

// ListMetafeatures returns the sorted names of every requestable metafeature.
func (g *Graph) ListMetafeatures() []string {
	return g.model.MetafeatureNames()
}

// Inputs returns the sorted names of resources that must be seeded before
// resolution.
func (g *Graph) Inputs() []string {
	var names []string
	for name, r := range g.model.Resources {
		if r.IsInput() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// FunctionOf returns the function backing a resource or metafeature. Input
// resources and functions have none.
func (g *Graph) FunctionOf(name string) (*catalog.Function, bool) {
	var fn string
	if r, ok := g.model.Resources[name]; ok {
		fn = r.Function
	} else if mf, ok := g.model.Metafeatures[name]; ok {
		fn = mf.Function
	}
	f, ok := g.model.Functions[fn]
	return f, ok
}

// RequirementsOf returns the ordered parameter list evaluated to produce
// name: a private metafeature's own parameters, or else the parameters of
// the backing function. A function returns its own parameters.
func (g *Graph) RequirementsOf(name string) ([]catalog.Param, error) {
	n, ok := g.nodes[name]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", name)
	}
	switch n.kind {
	case KindFunction:
		return g.model.Functions[name].Parameters, nil
	case KindMetafeature:
		if mf := g.model.Metafeatures[name]; mf.IsPrivateCall() {
			return mf.Parameters, nil
		}
	}
	if f, ok := g.FunctionOf(name); ok {
		return f.Parameters, nil
	}
	return nil, nil
}

// Dependencies returns the sorted names of the nodes name requires.
func (g *Graph) Dependencies(name string) ([]string, error) {
	n, ok := g.nodes[name]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", name)
	}
	return sortedKeys(n.deps), nil
}

// Dependents returns the sorted names of the nodes that require name.
func (g *Graph) Dependents(name string) ([]string, error) {
	n, ok := g.nodes[name]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", name)
	}
	return sortedKeys(n.dependents), nil
}

// Closure returns the sorted set of nodes that must be evaluated to produce
// every name in names, the names themselves included.
func (g *Graph) Closure(names ...string) ([]string, error) {
	seen := make(map[string]bool)
	var walk func(n *node)
	walk = func(n *node) {
		if seen[n.id] {
			return
		}
		seen[n.id] = true
		for _, dep := range n.deps {
			walk(dep)
		}
	}
	for _, name := range names {
		n, ok := g.nodes[name]
		if !ok {
			return nil, fmt.Errorf("node not found: %s", name)
		}
		walk(n)
	}
	closure := make([]string, 0, len(seen))
	for id := range seen {
		closure = append(closure, id)
	}
	sort.Strings(closure)
	return closure, nil
}

// TopologicalOrder returns the closure of names ordered so that every node
// comes after all of its dependencies. Ties are broken by name.
func (g *Graph) TopologicalOrder(names ...string) ([]string, error) {
	closure, err := g.Closure(names...)
	if err != nil {
		return nil, err
	}
	inClosure := make(map[string]bool, len(closure))
	for _, id := range closure {
		inClosure[id] = true
	}

	pending := make(map[string]int, len(closure))
	var ready []string
	for _, id := range closure {
		for dep := range g.nodes[id].deps {
			if inClosure[dep] {
				pending[id]++
			}
		}
		if pending[id] == 0 {
			ready = append(ready, id)
		}
	}

	order := make([]string, 0, len(closure))
	for len(ready) > 0 {
		slices.Sort(ready)
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)
		for _, next := range sortedKeys(g.nodes[id].dependents) {
			if !inClosure[next] {
				continue
			}
			pending[next]--
			if pending[next] == 0 {
				ready = append(ready, next)
			}
		}
	}
	if len(order) != len(closure) {
		// Unreachable for a graph produced by Load.
		return nil, &CycleError{Node: closure[0]}
	}
	return order, nil
}

// Edges returns every edge of the graph, sorted by From then To.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for _, from := range sortedKeys(g.nodes) {
		for _, to := range sortedKeys(g.nodes[from].dependents) {
			edges = append(edges, Edge{From: from, To: to})
		}
	}
	return edges
}
