package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"
)

// RetryFailed resets failed items back to pending so the next cycle picks
// them up. With no ids it resets every failed item; with ids it resets only
// those that are currently failed. Returns the number of items reset.
func (s *Store) RetryFailed(ctx context.Context, ids ...int64) (int, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	if len(ids) == 0 {
		res, err := s.db.ExecContext(
			ctx,
			`UPDATE queue_items SET status = ?, error_message = NULL, updated_at = ? WHERE status = ?`,
			StatusPending,
			timestamp,
			StatusFailed,
		)
		if err != nil {
			return 0, fmt.Errorf("retry failed items: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected: %w", err)
		}
		return int(affected), nil
	}

	placeholders := makePlaceholders(len(ids))
	args := make([]any, 0, len(ids)+3)
	args = append(args, StatusPending, timestamp, StatusFailed)
	for _, id := range ids {
		args = append(args, id)
	}
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE queue_items SET status = ?, error_message = NULL, updated_at = ? WHERE status = ? AND id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("retry failed items: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(affected), nil
}

// Remove deletes a single queue item.
func (s *Store) Remove(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM queue_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("remove item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("item %d not found", id)
	}
	return nil
}

// Clear removes all queue items.
func (s *Store) Clear(ctx context.Context) (int, error) {
	return s.clearWhere(ctx, "", nil)
}

// ClearUploaded removes items that published successfully.
func (s *Store) ClearUploaded(ctx context.Context) (int, error) {
	return s.clearWhere(ctx, "status = ?", []any{StatusUploaded})
}

// ClearFailed removes items stuck in failed.
func (s *Store) ClearFailed(ctx context.Context) (int, error) {
	return s.clearWhere(ctx, "status = ?", []any{StatusFailed})
}

func (s *Store) clearWhere(ctx context.Context, where string, args []any) (int, error) {
	query := `DELETE FROM queue_items`
	if where != "" {
		query += ` WHERE ` + where
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("clear queue items: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(affected), nil
}

// Stats aggregates queue counts per lifecycle state.
func (s *Store) Stats(ctx context.Context) (HealthSummary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM queue_items GROUP BY status`)
	if err != nil {
		return HealthSummary{}, fmt.Errorf("queue stats: %w", err)
	}
	defer rows.Close()

	var summary HealthSummary
	for rows.Next() {
		var (
			status Status
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return HealthSummary{}, fmt.Errorf("scan stats row: %w", err)
		}
		summary.Total += count
		switch status {
		case StatusPending:
			summary.Pending = count
		case StatusScheduled:
			summary.Scheduled = count
		case StatusUploading:
			summary.Uploading = count
		case StatusUploaded:
			summary.Uploaded = count
		case StatusFailed:
			summary.Failed = count
		}
	}
	if err := rows.Err(); err != nil {
		return HealthSummary{}, fmt.Errorf("iterate stats: %w", err)
	}
	return summary, nil
}

// CheckHealth runs a set of diagnostics against the database file and schema.
func (s *Store) CheckHealth(ctx context.Context) DatabaseHealth {
	health := DatabaseHealth{DBPath: s.path}

	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			health.Error = "database file does not exist"
		} else {
			health.Error = fmt.Sprintf("stat database: %v", err)
		}
		return health
	}
	health.DatabaseExists = true

	if err := s.db.PingContext(ctx); err != nil {
		health.Error = fmt.Sprintf("ping database: %v", err)
		return health
	}
	health.DatabaseReadable = true

	var tableCount int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='queue_items'",
	).Scan(&tableCount)
	if err != nil {
		health.Error = fmt.Sprintf("check table: %v", err)
		return health
	}
	if tableCount == 0 {
		health.Error = "queue_items table missing"
		return health
	}
	health.TableExists = true

	var integrity string
	if err := s.db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&integrity); err != nil {
		health.Error = fmt.Sprintf("integrity check: %v", err)
		return health
	}
	health.IntegrityCheck = integrity == "ok"
	if !health.IntegrityCheck {
		health.Error = fmt.Sprintf("integrity check reported %q", integrity)
		return health
	}

	var total sql.NullInt64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM queue_items").Scan(&total); err != nil {
		health.Error = fmt.Sprintf("count items: %v", err)
		return health
	}
	health.TotalItems = int(total.Int64)
	return health
}
