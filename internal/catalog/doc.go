// Package catalog defines the format-agnostic model of the metafeature
// catalog: every resource, function and metafeature the engine knows about,
// with their parameter and return relationships. It also declares the Loader
// interface implemented by the concrete format packages (hclcatalog,
// yamlcatalog).
//
// The Model is plain data. Closed-namespace and acyclicity checks happen when
// the dag package turns a Model into a Graph.
package catalog
