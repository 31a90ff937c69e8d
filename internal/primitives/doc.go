// Package primitives is the statistical library behind the default catalog.
//
// Every exported function is a pure computation over already resolved
// inputs. Module adapts them to registry handlers under the function names
// the catalog uses.
package primitives
