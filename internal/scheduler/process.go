package scheduler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"primetime/internal/logging"
	"primetime/internal/mediastore"
	"primetime/internal/metadata"
	"primetime/internal/platform"
	"primetime/internal/queue"
)

// processItem runs one item through metadata, materialization, upload, and
// the terminal transition. Every failure path lands the item in failed with
// the reason captured; nothing here aborts the surrounding cycle.
func (e *Engine) processItem(ctx context.Context, gateway platform.Gateway, item *queue.Item, now time.Time, today string) ItemResult {
	result := ItemResult{ID: item.ID, Filename: item.Filename}

	if err := e.ensureMetadata(ctx, item); err != nil {
		return e.failItem(ctx, item, result, "generate metadata", err)
	}

	localPath, err := e.materialize(ctx, item)
	if err != nil {
		return e.failItem(ctx, item, result, "materialize staged file", err)
	}
	defer e.removeTemp(localPath)

	item.Status = queue.StatusUploading
	if err := e.store.Update(ctx, item); err != nil {
		return e.failItem(ctx, item, result, "mark uploading", err)
	}
	if err := e.notifier.NotifyUploadStarted(ctx, item.Filename, item.Platform); err != nil {
		e.logger.Warn("upload-started notification failed", logging.Error(err))
	}

	targetDay := item.ScheduledDate
	if targetDay == "" {
		targetDay = today
	}

	request := platform.Request{
		FilePath:    localPath,
		Title:       item.Title,
		Description: item.Description,
		Tags:        item.Tags,
		Channel:     item.Channel,
	}
	if gateway.SupportsDeferredPublish() {
		uploadsSoFar, err := e.store.CountUploaded(ctx, item.Platform, targetDay)
		if err != nil {
			return e.failItem(ctx, item, result, "count uploads for publish slot", err)
		}
		publishAt := e.publishInstant(now, e.dayStart(targetDay, now), uploadsSoFar)
		request.PublishAt = &publishAt
	}

	uploaded, err := gateway.Upload(ctx, request)
	if err != nil {
		return e.failItem(ctx, item, result, "upload", err)
	}

	item.SetUploaded(uploaded.Link, targetDay, e.now())
	if err := e.store.Update(ctx, item); err != nil {
		// The upload went out; surface the bookkeeping failure on the item
		// result rather than pretending the publish failed.
		result.Error = fmt.Sprintf("uploaded but persist failed: %v", err)
		return result
	}

	result.Success = true
	result.PublishedLink = uploaded.Link
	e.logger.Info("item published",
		logging.Int64(logging.FieldItemID, item.ID),
		logging.String(logging.FieldPlatform, item.Platform),
		logging.String("link", uploaded.Link),
	)
	if err := e.notifier.NotifyUploadComplete(ctx, item.Title, item.Platform, uploaded.Link); err != nil {
		e.logger.Warn("upload-complete notification failed", logging.Error(err))
	}
	return result
}

// ensureMetadata generates and persists metadata when the title is still
// empty. Metadata lands in the store before the upload so a later retry does
// not regenerate it; generator failures degrade to the filename fallback.
func (e *Engine) ensureMetadata(ctx context.Context, item *queue.Item) error {
	if item.HasMetadata() {
		return nil
	}
	meta, err := e.metadata.Generate(ctx, item.Filename, "")
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		e.logger.Warn("metadata generation failed, using fallback",
			logging.Int64(logging.FieldItemID, item.ID),
			logging.Error(err),
		)
		meta = metadata.Fallback(item.Filename)
	}
	if meta.Title == "" {
		meta = metadata.Fallback(item.Filename)
	}
	item.SetMetadata(meta.Title, meta.Description, meta.Tags)
	return e.store.Update(ctx, item)
}

// materialize resolves the object key from the item's source link and
// downloads it into the staging directory.
func (e *Engine) materialize(ctx context.Context, item *queue.Item) (string, error) {
	key, ok := mediastore.ExtractKey(item.SourceLink)
	if !ok {
		return "", fmt.Errorf("extract object key: unrecognized link %q", item.SourceLink)
	}
	localPath := filepath.Join(e.cfg.Paths.StagingDir, fmt.Sprintf("%d_%s", item.ID, item.Filename))
	if err := e.media.Fetch(ctx, key, localPath); err != nil {
		return "", fmt.Errorf("fetch object %q: %w", key, err)
	}
	return localPath, nil
}

func (e *Engine) failItem(ctx context.Context, item *queue.Item, result ItemResult, operation string, err error) ItemResult {
	if ctx.Err() != nil {
		return e.releaseInterrupted(item, result, operation)
	}
	reason := fmt.Sprintf("%s: %v", operation, err)
	item.SetFailed(reason)
	if updateErr := e.store.Update(ctx, item); updateErr != nil {
		e.logger.Error("persist failed status",
			logging.Int64(logging.FieldItemID, item.ID),
			logging.Error(updateErr),
		)
	}
	result.Error = reason
	e.logger.Warn("item failed",
		logging.Int64(logging.FieldItemID, item.ID),
		logging.String(logging.FieldPlatform, item.Platform),
		logging.String("reason", reason),
	)
	if notifyErr := e.notifier.NotifyError(ctx, err, fmt.Sprintf("%s %s", item.Platform, operation)); notifyErr != nil {
		e.logger.Warn("failure notification failed", logging.Error(notifyErr))
	}
	return result
}

// releaseInterrupted puts an item interrupted by shutdown back where the next
// cycle's scan finds it. A canceled context mid-item is a daemon stop, not an
// item fault, so the item never lands in failed. The store write runs on a
// fresh context because the cycle's own context is already done.
func (e *Engine) releaseInterrupted(item *queue.Item, result ItemResult, operation string) ItemResult {
	if item.ScheduledDate != "" {
		item.Status = queue.StatusScheduled
	} else {
		item.Status = queue.StatusPending
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.store.Update(ctx, item); err != nil {
		e.logger.Error("release interrupted item",
			logging.Int64(logging.FieldItemID, item.ID),
			logging.Error(err),
		)
	}
	result.Error = operation + ": interrupted by shutdown"
	e.logger.Info("item released for restart",
		logging.Int64(logging.FieldItemID, item.ID),
		logging.String(logging.FieldPlatform, item.Platform),
	)
	return result
}

// removeTemp clears the materialized copy. Removal failures are warnings;
// the file is scoped to one item and a leak never fails processing.
func (e *Engine) removeTemp(localPath string) {
	if localPath == "" {
		return
	}
	if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
		e.logger.Warn("remove temp file failed",
			logging.String("path", localPath),
			logging.Error(err),
		)
	}
}

// dayStart parses a YYYY-MM-DD day in the publish timezone, falling back to
// the current day when the stored date is malformed.
func (e *Engine) dayStart(day string, now time.Time) time.Time {
	parsed, err := time.ParseInLocation(queue.DateFormat, day, e.location)
	if err != nil {
		return now
	}
	return parsed
}
