package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"primetime/internal/config"
)

// Store manages queue persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the queue database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, "queue.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// NewItem appends a queue item at pending and returns the stored row.
func (s *Store) NewItem(ctx context.Context, filename, sourceLink, platform, channel string) (*Item, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return nil, errors.New("filename is required")
	}
	platform = strings.ToLower(strings.TrimSpace(platform))
	if platform == "" {
		return nil, errors.New("platform is required")
	}

	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO queue_items (
            filename, source_link, platform, channel, status, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		filename,
		nullableString(sourceLink),
		platform,
		nullableString(strings.TrimSpace(channel)),
		StatusPending,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID fetches a queue item by identifier.
func (s *Store) GetByID(ctx context.Context, id int64) (*Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM queue_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// Update persists changes to an existing queue item. Updates are full-row
// and last-write-wins; the store offers no isolation against concurrent
// manual edits, the engine's single-writer discipline compensates.
func (s *Store) Update(ctx context.Context, item *Item) error {
	if item == nil {
		return errors.New("item is nil")
	}
	item.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE queue_items
         SET filename = ?, source_link = ?, platform = ?, channel = ?,
             title = ?, description = ?, tags = ?, status = ?,
             published_link = ?, scheduled_date = ?, publish_date = ?,
             error_message = ?, updated_at = ?, uploaded_at = ?
         WHERE id = ?`,
		item.Filename,
		nullableString(item.SourceLink),
		item.Platform,
		nullableString(item.Channel),
		nullableString(item.Title),
		nullableString(item.Description),
		nullableString(item.Tags),
		item.Status,
		nullableString(item.PublishedLink),
		nullableString(item.ScheduledDate),
		nullableString(item.PublishDate),
		nullableString(item.ErrorMessage),
		item.UpdatedAt.Format(time.RFC3339Nano),
		nullableTime(item.UploadedAt),
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// List returns queue items filtered by status set (or all items when no status is provided).
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Item, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + itemColumns + ` FROM queue_items`
	orderClause := ` ORDER BY id`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		query := baseQuery + ` WHERE status IN (` + placeholders + `)` + orderClause
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list queue items: %w", err)
	}
	defer rows.Close()

	return collectItems(rows)
}

// ListForPlatform returns a platform's items matching any of the provided
// statuses, in insertion order. Insertion order is the FIFO tie-break: within
// equal priority, earlier-created items are processed first.
func (s *Store) ListForPlatform(ctx context.Context, platform string, statuses ...Status) ([]*Item, error) {
	if len(statuses) == 0 {
		rows, err := s.db.QueryContext(
			ctx,
			`SELECT `+itemColumns+` FROM queue_items WHERE platform = ? ORDER BY id`,
			platform,
		)
		if err != nil {
			return nil, fmt.Errorf("list platform items: %w", err)
		}
		defer rows.Close()
		return collectItems(rows)
	}

	placeholders := makePlaceholders(len(statuses))
	args := make([]any, 0, len(statuses)+1)
	args = append(args, platform)
	for _, status := range statuses {
		args = append(args, status)
	}
	query := `SELECT ` + itemColumns + ` FROM queue_items WHERE platform = ? AND status IN (` + placeholders + `) ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list platform items: %w", err)
	}
	defer rows.Close()
	return collectItems(rows)
}

// ScheduledOn returns a platform's scheduled items whose scheduled_date
// matches the given day, in insertion order.
func (s *Store) ScheduledOn(ctx context.Context, platform, date string) ([]*Item, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+itemColumns+` FROM queue_items
         WHERE platform = ? AND status = ? AND scheduled_date = ?
         ORDER BY id`,
		platform,
		StatusScheduled,
		date,
	)
	if err != nil {
		return nil, fmt.Errorf("list scheduled items: %w", err)
	}
	defer rows.Close()
	return collectItems(rows)
}

// CountUploaded returns how many of a platform's items consumed quota on the
// given day. This is the daily-usage counter the quota gate reads.
func (s *Store) CountUploaded(ctx context.Context, platform, date string) (int, error) {
	var count int
	err := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(1) FROM queue_items WHERE platform = ? AND status = ? AND publish_date = ?`,
		platform,
		StatusUploaded,
		date,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count uploaded: %w", err)
	}
	return count, nil
}
