package api

import "time"

// QueueItem is the transport shape of a queue entry.
type QueueItem struct {
	ID            int64  `json:"id"`
	Filename      string `json:"filename"`
	SourceLink    string `json:"sourceLink,omitempty"`
	Platform      string `json:"platform"`
	Channel       string `json:"channel,omitempty"`
	Title         string `json:"title,omitempty"`
	Description   string `json:"description,omitempty"`
	Tags          string `json:"tags,omitempty"`
	Status        string `json:"status"`
	PublishedLink string `json:"publishedLink,omitempty"`
	ScheduledDate string `json:"scheduledDate,omitempty"`
	PublishDate   string `json:"publishDate,omitempty"`
	ErrorMessage  string `json:"errorMessage,omitempty"`
	CreatedAt     string `json:"createdAt,omitempty"`
	UpdatedAt     string `json:"updatedAt,omitempty"`
	UploadedAt    string `json:"uploadedAt,omitempty"`
}

// QueueListResponse wraps queue listings.
type QueueListResponse struct {
	Items []QueueItem `json:"items"`
}

// QueueItemResponse wraps a single queue item lookup.
type QueueItemResponse struct {
	Item QueueItem `json:"item"`
}

// PlatformStatus reports one platform's quota position for today.
type PlatformStatus struct {
	Platform    string `json:"platform"`
	Quota       int    `json:"quota"`
	Used        int    `json:"used"`
	Remaining   int    `json:"remaining"`
	ConfigError string `json:"configError,omitempty"`
}

// QueueCounts breaks the queue down by status.
type QueueCounts struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Scheduled int `json:"scheduled"`
	Uploading int `json:"uploading"`
	Uploaded  int `json:"uploaded"`
	Failed    int `json:"failed"`
}

// DatabaseStatus reports queue database diagnostics.
type DatabaseStatus struct {
	Path    string `json:"path"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

// StatusResponse is the daemon status payload.
type StatusResponse struct {
	Running    bool             `json:"running"`
	PID        int              `json:"pid"`
	Queue      QueueCounts      `json:"queue"`
	Platforms  []PlatformStatus `json:"platforms"`
	Timezone   string           `json:"timezone"`
	InWindow   bool             `json:"inWindow"`
	NextWindow time.Time        `json:"nextWindow"`
	Database   DatabaseStatus   `json:"database"`
}

// CycleRequest asks the daemon to run a publishing cycle.
type CycleRequest struct {
	Platform string `json:"platform"`
	Force    bool   `json:"force"`
}

// ItemResult is the per-item outcome of a cycle.
type ItemResult struct {
	ID            int64  `json:"id"`
	Filename      string `json:"filename"`
	Success       bool   `json:"success"`
	PublishedLink string `json:"publishedLink,omitempty"`
	Error         string `json:"error,omitempty"`
}

// CycleResponse reports what a single cycle did.
type CycleResponse struct {
	Platform    string       `json:"platform"`
	Forced      bool         `json:"forced"`
	InWindow    bool         `json:"inWindow"`
	QuotaLimit  int          `json:"quotaLimit"`
	QuotaUsed   int          `json:"quotaUsed"`
	Uploads     int          `json:"uploads"`
	Failures    int          `json:"failures"`
	Rescheduled int          `json:"rescheduled"`
	Results     []ItemResult `json:"results"`
}

// RetryResponse reports how many failed items were reset to pending.
type RetryResponse struct {
	Reset int `json:"reset"`
}

// ErrorResponse carries a transport-level failure message.
type ErrorResponse struct {
	Error string `json:"error"`
}
