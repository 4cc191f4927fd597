package store

// RunWriter is the write side used by benchmark runners. Both Store (direct
// SQLite) and BatchedStore (in-memory buffering for concurrent cases)
// implement it.
type RunWriter interface {
	InsertRun(r *Run) error
}

// Compile-time check: *Store satisfies RunWriter.
var _ RunWriter = (*Store)(nil)
