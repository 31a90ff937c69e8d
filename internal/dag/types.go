package dag

import "github.com/specialistvlad/metagrid/internal/catalog"

// NodeKind is the catalog table a node was declared in.
type NodeKind int

const (
	KindResource NodeKind = iota
	KindFunction
	KindMetafeature
)

func (k NodeKind) String() string {
	switch k {
	case KindResource:
		return "resource"
	case KindFunction:
		return "function"
	case KindMetafeature:
		return "metafeature"
	default:
		return "unknown"
	}
}

// Graph is the validated dependency graph of a catalog. It is never mutated
// after Load returns and is safe for concurrent use.
type Graph struct {
	model *catalog.Model
	// nodes stores all nodes in the graph, keyed by their catalog name.
	nodes map[string]*node
}

// node is a single vertex. It is un-exported so callers interact with the
// graph through names only.
type node struct {
	id   string
	kind NodeKind
	// deps holds the nodes this node requires (backward edges).
	deps map[string]*node
	// dependents holds the nodes that consume this node (forward edges).
	dependents map[string]*node
}

// Edge is a single "From is required by To" relation.
type Edge struct {
	From string
	To   string
}
