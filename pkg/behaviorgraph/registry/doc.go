// Package registry provides a generic thread-safe map used for node kind
// catalogs and the engine table of a host.
//
//	kinds := registry.New[string, *behaviorgraph.Kind]()
//	if err := kinds.Add("text", nodes.TextKind); err != nil {
//	    // already registered
//	}
//
// Range and the slice accessors work on snapshots, so callers never hold
// the lock while running their own code. DeleteFunc is the exception: its
// predicate runs under the write lock.
package registry
