// Package registry maps the function names used in a catalog to the
// compiled Go handlers that implement them.
//
// During application startup the registry is populated by every Module and
// then validated against the loaded catalog, so that the Go code and the
// declarative catalog are known to be in sync before any computation runs.
package registry
