package queue

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const itemColumns = `id, filename, source_link, platform, channel, title, description, tags,
    status, published_link, scheduled_date, publish_date, error_message,
    created_at, updated_at, uploaded_at`

func scanItem(scanner interface{ Scan(...any) error }) (*Item, error) {
	var (
		item          Item
		sourceLink    sql.NullString
		channel       sql.NullString
		title         sql.NullString
		description   sql.NullString
		tags          sql.NullString
		publishedLink sql.NullString
		scheduledDate sql.NullString
		publishDate   sql.NullString
		errorMessage  sql.NullString
		createdAt     string
		updatedAt     string
		uploadedAt    sql.NullString
	)

	err := scanner.Scan(
		&item.ID,
		&item.Filename,
		&sourceLink,
		&item.Platform,
		&channel,
		&title,
		&description,
		&tags,
		&item.Status,
		&publishedLink,
		&scheduledDate,
		&publishDate,
		&errorMessage,
		&createdAt,
		&updatedAt,
		&uploadedAt,
	)
	if err != nil {
		return nil, err
	}

	item.SourceLink = sourceLink.String
	item.Channel = channel.String
	item.Title = title.String
	item.Description = description.String
	item.Tags = tags.String
	item.PublishedLink = publishedLink.String
	item.ScheduledDate = scheduledDate.String
	item.PublishDate = publishDate.String
	item.ErrorMessage = errorMessage.String

	if item.CreatedAt, err = parseTimeString(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if item.UpdatedAt, err = parseTimeString(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	if uploadedAt.Valid && strings.TrimSpace(uploadedAt.String) != "" {
		parsed, parseErr := parseTimeString(uploadedAt.String)
		if parseErr != nil {
			return nil, fmt.Errorf("parse uploaded_at: %w", parseErr)
		}
		item.UploadedAt = &parsed
	}

	return &item, nil
}

func collectItems(rows *sql.Rows) ([]*Item, error) {
	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil || value.IsZero() {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return parsed, nil
	}
	if parsed, err := time.Parse("2006-01-02 15:04:05", value); err == nil {
		return parsed.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

func makePlaceholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
