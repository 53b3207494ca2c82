package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a queue item.
type Status string

const (
	StatusPending   Status = "pending"
	StatusScheduled Status = "scheduled"
	StatusUploading Status = "uploading"
	StatusUploaded  Status = "uploaded"
	StatusFailed    Status = "failed"
)

var allStatuses = []Status{
	StatusPending,
	StatusScheduled,
	StatusUploading,
	StatusUploaded,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// Terminal statuses are never revisited by the scheduling engine; only an
// operator reset (RetryFailed) returns a failed item to pending.
var terminalStatuses = map[Status]struct{}{
	StatusUploaded: {},
	StatusFailed:   {},
}

// DateFormat is the canonical layout for scheduled_date and publish_date.
const DateFormat = "2006-01-02"

// Item represents a queue item persisted in SQLite.
type Item struct {
	ID            int64
	Filename      string
	SourceLink    string
	Platform      string
	Channel       string
	Title         string
	Description   string
	Tags          string
	Status        Status
	PublishedLink string
	ScheduledDate string
	PublishDate   string
	ErrorMessage  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	UploadedAt    *time.Time
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether the item has reached a terminal status.
func (i Item) IsTerminal() bool {
	return IsTerminalStatus(i.Status)
}

// IsTerminalStatus reports whether a status is terminal.
func IsTerminalStatus(status Status) bool {
	_, ok := terminalStatuses[status]
	return ok
}

// HasMetadata reports whether generated metadata is already present. The
// engine regenerates metadata only when the title is still empty, so a
// manual edit mid-flight is preserved.
func (i Item) HasMetadata() bool {
	return strings.TrimSpace(i.Title) != ""
}

// SetMetadata stores generated metadata on the item.
func (i *Item) SetMetadata(title, description, tags string) {
	i.Title = strings.TrimSpace(title)
	i.Description = strings.TrimSpace(description)
	i.Tags = strings.TrimSpace(tags)
}

// SetScheduled moves the item to scheduled for the given date.
func (i *Item) SetScheduled(date string) {
	i.Status = StatusScheduled
	i.ScheduledDate = date
}

// SetUploaded marks the item as published, recording the link and the quota
// day the upload consumed.
func (i *Item) SetUploaded(link, publishDate string, at time.Time) {
	i.Status = StatusUploaded
	i.PublishedLink = link
	i.PublishDate = publishDate
	i.ErrorMessage = ""
	uploaded := at.UTC()
	i.UploadedAt = &uploaded
}

// SetFailed marks the item as failed with the given error message.
func (i *Item) SetFailed(message string) {
	i.Status = StatusFailed
	i.ErrorMessage = strings.TrimSpace(message)
}

// HealthSummary describes aggregated queue counts per lifecycle state.
type HealthSummary struct {
	Total     int
	Pending   int
	Scheduled int
	Uploading int
	Uploaded  int
	Failed    int
}

// DatabaseHealth captures diagnostic information about the queue database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	TableExists      bool
	IntegrityCheck   bool
	TotalItems       int
	Error            string
}
