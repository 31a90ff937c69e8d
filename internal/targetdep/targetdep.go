// Package targetdep decides which catalog nodes transitively require the
// target column, so that they can be short-circuited when no target is given.
package targetdep

import (
	"fmt"
	"strings"
	"sync"
)

// Graph is the view of the dependency graph the analyzer walks.
// *dag.Graph satisfies it.
type Graph interface {
	Dependencies(name string) ([]string, error)
}

// CycleError is returned when the backward walk revisits a node that is
// still being analyzed.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return "target dependence cycle: " + strings.Join(e.Path, " -> ")
}

// Analyzer memoizes target dependence per node name. It is safe for
// concurrent use.
type Analyzer struct {
	graph       Graph
	target      string
	independent map[string]bool

	mu   sync.Mutex
	memo map[string]bool
}

// New returns an analyzer for graph. The target node is dependent by
// definition; every name in independent is treated as not dependent
// regardless of its requirements.
func New(graph Graph, target string, independent ...string) *Analyzer {
	a := &Analyzer{
		graph:       graph,
		target:      target,
		independent: make(map[string]bool, len(independent)),
		memo:        make(map[string]bool),
	}
	for _, name := range independent {
		a.independent[name] = true
	}
	return a
}

// IsTargetDependent reports whether name requires the target, directly or
// through any of its requirements.
func (a *Analyzer) IsTargetDependent(name string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.visit(name, nil)
}

func (a *Analyzer) visit(name string, stack []string) (bool, error) {
	if dependent, ok := a.memo[name]; ok {
		return dependent, nil
	}
	switch {
	case name == a.target:
		a.memo[name] = true
		return true, nil
	case a.independent[name]:
		a.memo[name] = false
		return false, nil
	}
	for i, seen := range stack {
		if seen == name {
			path := append(append([]string(nil), stack[i:]...), name)
			return false, &CycleError{Path: path}
		}
	}

	deps, err := a.graph.Dependencies(name)
	if err != nil {
		return false, fmt.Errorf("analyzing %q: %w", name, err)
	}
	stack = append(stack, name)
	dependent := false
	for _, dep := range deps {
		d, err := a.visit(dep, stack)
		if err != nil {
			return false, err
		}
		if d {
			dependent = true
			break
		}
	}
	a.memo[name] = dependent
	return dependent, nil
}

// Split partitions names into those that require the target and those that
// do not, preserving order.
func (a *Analyzer) Split(names []string) (dependent, independent []string, err error) {
	for _, name := range names {
		d, err := a.IsTargetDependent(name)
		if err != nil {
			return nil, nil, err
		}
		if d {
			dependent = append(dependent, name)
		} else {
			independent = append(independent, name)
		}
	}
	return dependent, independent, nil
}
