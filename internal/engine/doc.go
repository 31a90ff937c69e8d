// Package engine is the compute surface of the application. It validates a
// dataset, prunes target-dependent metafeatures when no target is given,
// evaluates each requested metafeature under its own deadline and assembles
// the values and timings into a single Result.
//
// An Engine is immutable once built and may serve concurrent Compute calls;
// every call owns its own memoization cache.
package engine
