package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/harrison/gridlab/internal/models"
)

// NewChainID returns a fresh identifier for one submitted step chain.
func NewChainID() string {
	return uuid.NewString()
}

// RecordChain stores the submissions of one chain. Submissions without a
// ChainID are assigned a new one, shared by the whole chain; the id used is
// returned.
func (s *Store) RecordChain(ctx context.Context, subs []models.Submission) (string, error) {
	if len(subs) == 0 {
		return "", nil
	}
	chainID := subs[0].ChainID
	if chainID == "" {
		chainID = NewChainID()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO submissions (chain_id, experiment, step, position, job_name, job_file, scheduler_id, dependency, submitted_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, sub := range subs {
		if _, err := stmt.ExecContext(ctx,
			chainID, sub.Experiment, sub.Step, sub.Position, sub.JobName, sub.JobFile,
			nullString(sub.SchedulerID), nullString(sub.Dependency), sub.SubmittedAt.UTC(),
		); err != nil {
			return "", fmt.Errorf("insert submission %s: %w", sub.JobName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit submissions: %w", err)
	}
	return chainID, nil
}

// ListSubmissions returns the submissions of experiment, newest chain first
// and in chain order within a chain. limit <= 0 returns everything.
func (s *Store) ListSubmissions(ctx context.Context, experiment string, limit int) ([]models.Submission, error) {
	query := `
SELECT chain_id, experiment, step, position, job_name, job_file, scheduler_id, dependency, submitted_at
FROM submissions
WHERE experiment = ?
ORDER BY submitted_at DESC, chain_id, position ASC`
	args := []interface{}{experiment}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	var subs []models.Submission
	for rows.Next() {
		var sub models.Submission
		var schedulerID, dependency sql.NullString
		if err := rows.Scan(&sub.ChainID, &sub.Experiment, &sub.Step, &sub.Position, &sub.JobName,
			&sub.JobFile, &schedulerID, &dependency, &sub.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		sub.SchedulerID = schedulerID.String
		sub.Dependency = dependency.String
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return subs, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
