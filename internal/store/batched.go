package store

import "sync"

// BatchedStore buffers run inserts in memory. It implements RunWriter so
// concurrent benchmark cases can record runs without contending on SQLite;
// CommitBatch writes them in one transaction.
//
// Thread safety: the mutex protects the buffer. Reads pass through to the
// underlying Store, which is safe for concurrent reads.
type BatchedStore struct {
	store *Store // for read passthrough
	mu    sync.Mutex

	runs []Run
}

// Compile-time check: *BatchedStore satisfies RunWriter.
var _ RunWriter = (*BatchedStore)(nil)

// NewBatchedStore creates a BatchedStore backed by the given Store for reads.
func NewBatchedStore(s *Store) *BatchedStore {
	return &BatchedStore{store: s}
}

func (b *BatchedStore) InsertRun(r *Run) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.runs = append(b.runs, *r)
	return nil
}

// Len returns the number of buffered runs.
func (b *BatchedStore) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.runs)
}

// Runs returns the committed runs of a suite followed by the buffered ones.
func (b *BatchedStore) Runs(suite string) ([]*Run, error) {
	runs, err := b.store.Runs(RunFilter{Suite: suite})
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.runs {
		if suite == "" || b.runs[i].Suite == suite {
			runs = append(runs, &b.runs[i])
		}
	}
	return runs, nil
}

// drain hands the buffered runs to the caller and empties the buffer.
func (b *BatchedStore) drain() []Run {
	b.mu.Lock()
	defer b.mu.Unlock()
	runs := b.runs
	b.runs = nil
	return runs
}
