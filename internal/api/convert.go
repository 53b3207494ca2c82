package api

import (
	"time"

	"primetime/internal/queue"
	"primetime/internal/scheduler"
)

// FromQueueItem converts a persisted queue item into its transport shape.
func FromQueueItem(item *queue.Item) QueueItem {
	converted := QueueItem{
		ID:            item.ID,
		Filename:      item.Filename,
		SourceLink:    item.SourceLink,
		Platform:      item.Platform,
		Channel:       item.Channel,
		Title:         item.Title,
		Description:   item.Description,
		Tags:          item.Tags,
		Status:        string(item.Status),
		PublishedLink: item.PublishedLink,
		ScheduledDate: item.ScheduledDate,
		PublishDate:   item.PublishDate,
		ErrorMessage:  item.ErrorMessage,
		CreatedAt:     formatTime(item.CreatedAt),
		UpdatedAt:     formatTime(item.UpdatedAt),
	}
	if item.UploadedAt != nil {
		converted.UploadedAt = formatTime(*item.UploadedAt)
	}
	return converted
}

// FromQueueItems converts a slice of queue items.
func FromQueueItems(items []*queue.Item) []QueueItem {
	converted := make([]QueueItem, 0, len(items))
	for _, item := range items {
		converted = append(converted, FromQueueItem(item))
	}
	return converted
}

// FromSummary builds the status payload from an engine summary and database
// diagnostics.
func FromSummary(summary scheduler.Summary, health queue.DatabaseHealth, pid int) StatusResponse {
	response := StatusResponse{
		Running: true,
		PID:     pid,
		Queue: QueueCounts{
			Total:     summary.Queue.Total,
			Pending:   summary.Queue.Pending,
			Scheduled: summary.Queue.Scheduled,
			Uploading: summary.Queue.Uploading,
			Uploaded:  summary.Queue.Uploaded,
			Failed:    summary.Queue.Failed,
		},
		Timezone:   summary.Timezone,
		InWindow:   summary.InWindow,
		NextWindow: summary.NextWindow,
		Database: DatabaseStatus{
			Path:    health.DBPath,
			Healthy: health.Error == "" && health.IntegrityCheck,
			Error:   health.Error,
		},
	}
	for _, platform := range summary.Platforms {
		response.Platforms = append(response.Platforms, PlatformStatus{
			Platform:    platform.Platform,
			Quota:       platform.Quota,
			Used:        platform.Used,
			Remaining:   platform.Remaining,
			ConfigError: platform.ConfigError,
		})
	}
	return response
}

// FromCycleReport converts an engine cycle report.
func FromCycleReport(report scheduler.CycleReport) CycleResponse {
	response := CycleResponse{
		Platform:    report.Platform,
		Forced:      report.Forced,
		InWindow:    report.InWindow,
		QuotaLimit:  report.QuotaLimit,
		QuotaUsed:   report.QuotaUsed,
		Uploads:     report.Uploads,
		Failures:    report.Failures,
		Rescheduled: report.Rescheduled,
	}
	for _, result := range report.Results {
		response.Results = append(response.Results, ItemResult{
			ID:            result.ID,
			Filename:      result.Filename,
			Success:       result.Success,
			PublishedLink: result.PublishedLink,
			Error:         result.Error,
		})
	}
	return response
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
