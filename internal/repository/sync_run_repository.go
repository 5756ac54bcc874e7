package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vipul43/yatco-sync/internal/models"
)

type SyncRunRepository struct {
	db *sql.DB
}

func NewSyncRunRepository(db *sql.DB) *SyncRunRepository {
	return &SyncRunRepository{db: db}
}

// Create records the start of a run
func (r *SyncRunRepository) Create(ctx context.Context, run models.SyncRun) error {
	query := `
		INSERT INTO sync_run (
			id, mode, status, processed, errors, total, started_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status
	`

	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		run.Mode,
		run.Status,
		run.Processed,
		run.Errors,
		run.Total,
		run.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create sync run: %w", err)
	}

	return nil
}

// Finish stores the outcome of a run and sets finished_at
func (r *SyncRunRepository) Finish(ctx context.Context, run models.SyncRun) error {
	query := `
		UPDATE sync_run
		SET status = $1, processed = $2, errors = $3, total = $4,
		    last_error = $5, finished_at = $6
		WHERE id = $7
	`

	now := time.Now()
	_, err := r.db.ExecContext(ctx, query,
		run.Status, run.Processed, run.Errors, run.Total, run.LastError, now, run.ID)
	if err != nil {
		return fmt.Errorf("failed to finish sync run: %w", err)
	}

	return nil
}

// ListRecent retrieves the latest runs, newest first
func (r *SyncRunRepository) ListRecent(ctx context.Context, limit int) ([]models.SyncRun, error) {
	query := `
		SELECT id, mode, status, processed, errors, total,
		       last_error, started_at, finished_at
		FROM sync_run
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync runs: %w", err)
	}
	defer rows.Close()

	var runs []models.SyncRun
	for rows.Next() {
		var run models.SyncRun
		if err := rows.Scan(
			&run.ID,
			&run.Mode,
			&run.Status,
			&run.Processed,
			&run.Errors,
			&run.Total,
			&run.LastError,
			&run.StartedAt,
			&run.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan sync run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sync runs: %w", err)
	}

	return runs, nil
}
