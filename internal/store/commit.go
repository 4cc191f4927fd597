package store

import "fmt"

// CommitBatch inserts all buffered runs from a BatchedStore into SQLite
// within a single transaction. On error nothing is written and the buffer
// is left empty.
func (s *Store) CommitBatch(batch *BatchedStore) error {
	runs := batch.drain()
	if len(runs) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("commit batch: begin: %w", err)
	}
	defer tx.Rollback()

	for i := range runs {
		if err := insertRun(tx, &runs[i]); err != nil {
			return fmt.Errorf("commit batch: run %s/%s: %w", runs[i].Suite, runs[i].Case, err)
		}
	}
	return tx.Commit()
}
