package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// RunResult is the ledger row for one parsed run.
type RunResult struct {
	Experiment string
	RunDir     string
	RunID      string
	Coverage   int
	NumPlans   int
	BestCost   *int
	ParsedAt   time.Time
}

// CoverageSummary aggregates the latest parse of an experiment.
type CoverageSummary struct {
	Runs   int
	Solved int
	Plans  int
}

// RecordRunResults upserts parse results; reparsing a run replaces its row.
func (s *Store) RecordRunResults(ctx context.Context, results []RunResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO run_results (experiment, run_dir, run_id, coverage, num_plans, best_cost, parsed_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(experiment, run_dir) DO UPDATE SET
    run_id = excluded.run_id,
    coverage = excluded.coverage,
    num_plans = excluded.num_plans,
    best_cost = excluded.best_cost,
    parsed_at = excluded.parsed_at`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, r := range results {
		var best sql.NullInt64
		if r.BestCost != nil {
			best = sql.NullInt64{Int64: int64(*r.BestCost), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, r.Experiment, r.RunDir, nullString(r.RunID),
			r.Coverage, r.NumPlans, best, r.ParsedAt.UTC()); err != nil {
			return fmt.Errorf("upsert run %s: %w", r.RunDir, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run results: %w", err)
	}
	return nil
}

// Coverage summarizes the recorded runs of experiment.
func (s *Store) Coverage(ctx context.Context, experiment string) (CoverageSummary, error) {
	var sum CoverageSummary
	err := s.db.QueryRowContext(ctx, `
SELECT COUNT(*), COALESCE(SUM(coverage), 0), COALESCE(SUM(num_plans), 0)
FROM run_results WHERE experiment = ?`, experiment).Scan(&sum.Runs, &sum.Solved, &sum.Plans)
	if err != nil {
		return CoverageSummary{}, fmt.Errorf("query coverage: %w", err)
	}
	return sum, nil
}
