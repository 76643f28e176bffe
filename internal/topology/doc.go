// Package topology is the mesh reconciliation engine.
//
// A Reconciler owns a Registry (devices by IEEE address) and an EdgeTable
// (directed neighbor link quality). Each call to Reconcile folds one decoded
// snapshot into that state and returns the pass's ordered records. The
// first successful snapshot only seeds state; records start with the second.
//
// Nothing in this package does I/O or locking: the same snapshot applied to
// the same prior state always yields the same pass.
package topology
