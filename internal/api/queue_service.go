package api

import (
	"context"

	"primetime/internal/queue"
)

// QueueStore abstracts the queue persistence the API needs. *queue.Store
// satisfies it.
type QueueStore interface {
	List(ctx context.Context, statuses ...queue.Status) ([]*queue.Item, error)
	GetByID(ctx context.Context, id int64) (*queue.Item, error)
	RetryFailed(ctx context.Context, ids ...int64) (int, error)
	Clear(ctx context.Context) (int, error)
	ClearUploaded(ctx context.Context) (int, error)
	ClearFailed(ctx context.Context) (int, error)
}

// QueueService exposes queue operations returning API DTOs.
type QueueService struct {
	store QueueStore
}

// NewQueueService constructs a QueueService around the provided store.
func NewQueueService(store QueueStore) *QueueService {
	if store == nil {
		return nil
	}
	return &QueueService{store: store}
}

// List returns queue items filtered by status.
func (s *QueueService) List(ctx context.Context, statuses ...queue.Status) ([]QueueItem, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	items, err := s.store.List(ctx, statuses...)
	if err != nil {
		return nil, err
	}
	return FromQueueItems(items), nil
}

// Describe fetches a single queue item. A missing item returns (nil, nil).
func (s *QueueService) Describe(ctx context.Context, id int64) (*QueueItem, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	item, err := s.store.GetByID(ctx, id)
	if err != nil || item == nil {
		return nil, err
	}
	dto := FromQueueItem(item)
	return &dto, nil
}

// Retry resets failed items to pending. With no IDs it resets every failed
// item.
func (s *QueueService) Retry(ctx context.Context, ids ...int64) (int, error) {
	if s == nil || s.store == nil {
		return 0, nil
	}
	return s.store.RetryFailed(ctx, ids...)
}

// Clear removes finished queue items. Scope selects which terminal items go:
// "uploaded", "failed", or "" for both.
func (s *QueueService) Clear(ctx context.Context, scope string) (int, error) {
	if s == nil || s.store == nil {
		return 0, nil
	}
	switch scope {
	case "uploaded":
		return s.store.ClearUploaded(ctx)
	case "failed":
		return s.store.ClearFailed(ctx)
	default:
		return s.store.Clear(ctx)
	}
}
