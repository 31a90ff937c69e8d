// Package dag turns a catalog model into an immutable dependency graph.
//
// Every declared name becomes a node. An edge from A to B means B requires A:
// a function requires its parameters, a resource requires the function that
// produces it, and a metafeature requires its function and its own
// parameters. Load rejects graphs with undeclared references or cycles, so
// the resolver never meets either at runtime.
package dag
