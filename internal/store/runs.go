package store

import (
	"database/sql"
	"fmt"
	"time"
)

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

const runColumns = `id, suite, case_name, strategy, strategy_hash, bound, results, pulls,
	stop, outcome, fault, sample, duration_ns, first_result_ns, started_at`

// --- Run operations ---

func (s *Store) InsertRun(r *Run) error {
	if err := insertRun(s.db, r); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func insertRun(db execer, r *Run) error {
	if r.StrategyHash == "" {
		r.StrategyHash = StrategyHash(r.Strategy)
	}
	_, err := db.Exec(
		`INSERT INTO runs (`+runColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Suite, r.Case, r.Strategy, r.StrategyHash, r.Bound, r.Results, r.Pulls,
		r.Stop, r.Outcome, r.Fault, marshalSample(r.Sample),
		r.Duration.Nanoseconds(), r.FirstResult.Nanoseconds(), r.StartedAt.UTC(),
	)
	return err
}

func scanRun(scanner interface{ Scan(...any) error }) (*Run, error) {
	r := &Run{}
	var fault, sample sql.NullString
	var dur, first int64
	err := scanner.Scan(
		&r.ID, &r.Suite, &r.Case, &r.Strategy, &r.StrategyHash, &r.Bound, &r.Results, &r.Pulls,
		&r.Stop, &r.Outcome, &fault, &sample, &dur, &first, &r.StartedAt,
	)
	if err != nil {
		return nil, err
	}
	r.Fault = fault.String
	r.Sample = unmarshalSample(sample.String)
	r.Duration = time.Duration(dur)
	r.FirstResult = time.Duration(first)
	return r, nil
}

// RunByID returns the run with id, or nil when there is none.
func (s *Store) RunByID(id string) (*Run, error) {
	r, err := scanRun(s.db.QueryRow("SELECT "+runColumns+" FROM runs WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("run by id: %w", err)
	}
	return r, nil
}

// Runs returns the runs matching f, newest first.
func (s *Store) Runs(f RunFilter) ([]*Run, error) {
	var conds []string
	var args []any
	if f.Suite != "" {
		conds = append(conds, "suite = ?")
		args = append(args, f.Suite)
	}
	if f.Case != "" {
		conds = append(conds, "case_name = ?")
		args = append(args, f.Case)
	}
	if f.Outcome != "" {
		conds = append(conds, "outcome = ?")
		args = append(args, f.Outcome)
	}
	q := "SELECT " + runColumns + " FROM runs" + whereClause(conds) + " ORDER BY started_at DESC, id"
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("runs: %w", err)
	}
	defer rows.Close()
	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Summaries aggregates runs per suite and case, optionally for one suite.
func (s *Store) Summaries(suite string) ([]*Summary, error) {
	var conds []string
	var args []any
	if suite != "" {
		conds = append(conds, "suite = ?")
		args = append(args, suite)
	}
	rows, err := s.db.Query(
		`SELECT suite, case_name, COUNT(*),
			SUM(CASE WHEN outcome = 'fault' THEN 1 ELSE 0 END),
			AVG(results), AVG(pulls), AVG(duration_ns), MIN(duration_ns), MAX(duration_ns)
		 FROM runs`+whereClause(conds)+`
		 GROUP BY suite, case_name
		 ORDER BY suite, case_name`, args...)
	if err != nil {
		return nil, fmt.Errorf("summaries: %w", err)
	}
	defer rows.Close()
	var out []*Summary
	for rows.Next() {
		sum := &Summary{}
		var mean float64
		var lo, hi int64
		if err := rows.Scan(&sum.Suite, &sum.Case, &sum.Runs, &sum.Faults,
			&sum.MeanResults, &sum.MeanPulls, &mean, &lo, &hi); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		sum.MeanTime = time.Duration(mean)
		sum.MinTime = time.Duration(lo)
		sum.MaxTime = time.Duration(hi)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// --- Metadata ---

// SetMetadata stores value under key, replacing any previous value.
func (s *Store) SetMetadata(key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO metadata (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set metadata %q: %w", key, err)
	}
	return nil
}

// GetMetadata returns the value under key and whether it exists.
func (s *Store) GetMetadata(key string) (string, bool, error) {
	var v string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get metadata %q: %w", key, err)
	}
	return v, true, nil
}
