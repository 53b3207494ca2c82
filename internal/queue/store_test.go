package queue_test

import (
	"context"
	"testing"
	"time"

	"primetime/internal/queue"
	"primetime/internal/testsupport"
)

func TestNewItemDefaultsToPending(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	item, err := store.NewItem(ctx, "beach_day.mp4", "https://media.test.invalid/d/abc123/view", "youtube", "Main")
	if err != nil {
		t.Fatalf("NewItem: %v", err)
	}
	if item.ID == 0 {
		t.Fatal("expected assigned id")
	}
	if item.Status != queue.StatusPending {
		t.Fatalf("expected pending status, got %s", item.Status)
	}
	if item.Platform != "youtube" {
		t.Fatalf("unexpected platform: %q", item.Platform)
	}
	if item.Channel != "Main" {
		t.Fatalf("unexpected channel: %q", item.Channel)
	}
	if item.CreatedAt.IsZero() || item.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be set")
	}
	if item.IsTerminal() {
		t.Fatal("pending item must not be terminal")
	}
}

func TestNewItemRequiresFilenameAndPlatform(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	if _, err := store.NewItem(ctx, "  ", "", "youtube", ""); err == nil {
		t.Fatal("expected error for blank filename")
	}
	if _, err := store.NewItem(ctx, "clip.mp4", "", "", ""); err == nil {
		t.Fatal("expected error for blank platform")
	}
}

func TestUpdateRoundTripsAllFields(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	item := testsupport.NewItem(t, store, "clip.mp4", "youtube")
	item.SetMetadata("Clip Title", "Video: clip.mp4", "video")
	item.SetScheduled("2026-08-31")
	uploadedAt := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	item.SetUploaded("https://youtu.be/xyz", "2026-08-31", uploadedAt)

	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	fetched, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched == nil {
		t.Fatal("expected item")
	}
	if fetched.Title != "Clip Title" || fetched.Description != "Video: clip.mp4" || fetched.Tags != "video" {
		t.Fatalf("metadata mismatch: %+v", fetched)
	}
	if fetched.Status != queue.StatusUploaded {
		t.Fatalf("expected uploaded, got %s", fetched.Status)
	}
	if fetched.PublishedLink != "https://youtu.be/xyz" {
		t.Fatalf("unexpected link: %q", fetched.PublishedLink)
	}
	if fetched.ScheduledDate != "2026-08-31" || fetched.PublishDate != "2026-08-31" {
		t.Fatalf("unexpected dates: %q %q", fetched.ScheduledDate, fetched.PublishDate)
	}
	if fetched.UploadedAt == nil || !fetched.UploadedAt.Equal(uploadedAt) {
		t.Fatalf("unexpected uploaded_at: %v", fetched.UploadedAt)
	}
	if !fetched.IsTerminal() {
		t.Fatal("uploaded item must be terminal")
	}
}

func TestGetByIDMissingReturnsNil(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	item, err := store.GetByID(context.Background(), 9999)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if item != nil {
		t.Fatalf("expected nil for missing item, got %+v", item)
	}
}

func TestListFiltersAndOrders(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	first := testsupport.NewItem(t, store, "a.mp4", "youtube")
	second := testsupport.NewItem(t, store, "b.mp4", "reels")
	third := testsupport.NewItem(t, store, "c.mp4", "youtube")

	third.SetFailed("upload rejected")
	if err := store.Update(ctx, third); err != nil {
		t.Fatalf("Update: %v", err)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 items, got %d", len(all))
	}
	if all[0].ID != first.ID || all[1].ID != second.ID {
		t.Fatal("expected insertion order")
	}

	pending, err := store.List(ctx, queue.StatusPending)
	if err != nil {
		t.Fatalf("List pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending, got %d", len(pending))
	}

	youtubePending, err := store.ListForPlatform(ctx, "youtube", queue.StatusPending)
	if err != nil {
		t.Fatalf("ListForPlatform: %v", err)
	}
	if len(youtubePending) != 1 || youtubePending[0].ID != first.ID {
		t.Fatalf("unexpected platform filter result: %+v", youtubePending)
	}
}

func TestScheduledOnAndCountUploaded(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	today := "2026-08-31"
	tomorrow := "2026-09-01"

	scheduledToday := testsupport.NewItem(t, store, "a.mp4", "youtube")
	scheduledToday.SetScheduled(today)
	if err := store.Update(ctx, scheduledToday); err != nil {
		t.Fatalf("Update: %v", err)
	}

	scheduledTomorrow := testsupport.NewItem(t, store, "b.mp4", "youtube")
	scheduledTomorrow.SetScheduled(tomorrow)
	if err := store.Update(ctx, scheduledTomorrow); err != nil {
		t.Fatalf("Update: %v", err)
	}

	uploaded := testsupport.NewItem(t, store, "c.mp4", "youtube")
	uploaded.SetUploaded("https://youtu.be/abc", today, time.Now())
	if err := store.Update(ctx, uploaded); err != nil {
		t.Fatalf("Update: %v", err)
	}

	onToday, err := store.ScheduledOn(ctx, "youtube", today)
	if err != nil {
		t.Fatalf("ScheduledOn: %v", err)
	}
	if len(onToday) != 1 || onToday[0].ID != scheduledToday.ID {
		t.Fatalf("unexpected scheduled set: %+v", onToday)
	}

	count, err := store.CountUploaded(ctx, "youtube", today)
	if err != nil {
		t.Fatalf("CountUploaded: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 uploaded today, got %d", count)
	}

	count, err = store.CountUploaded(ctx, "reels", today)
	if err != nil {
		t.Fatalf("CountUploaded reels: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected quota isolation per platform, got %d", count)
	}
}

func TestRetryFailedResetsOnlyFailedItems(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	failed := testsupport.NewItem(t, store, "a.mp4", "youtube")
	failed.SetFailed("token expired")
	if err := store.Update(ctx, failed); err != nil {
		t.Fatalf("Update: %v", err)
	}

	uploaded := testsupport.NewItem(t, store, "b.mp4", "youtube")
	uploaded.SetUploaded("https://youtu.be/abc", "2026-08-31", time.Now())
	if err := store.Update(ctx, uploaded); err != nil {
		t.Fatalf("Update: %v", err)
	}

	reset, err := store.RetryFailed(ctx)
	if err != nil {
		t.Fatalf("RetryFailed: %v", err)
	}
	if reset != 1 {
		t.Fatalf("expected 1 reset, got %d", reset)
	}

	fetched, err := store.GetByID(ctx, failed.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.Status != queue.StatusPending {
		t.Fatalf("expected pending after retry, got %s", fetched.Status)
	}
	if fetched.ErrorMessage != "" {
		t.Fatalf("expected error message cleared, got %q", fetched.ErrorMessage)
	}

	untouched, err := store.GetByID(ctx, uploaded.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if untouched.Status != queue.StatusUploaded {
		t.Fatalf("uploaded item must stay terminal, got %s", untouched.Status)
	}
}

func TestRetryFailedByID(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	first := testsupport.NewItem(t, store, "a.mp4", "youtube")
	first.SetFailed("network")
	if err := store.Update(ctx, first); err != nil {
		t.Fatalf("Update: %v", err)
	}
	second := testsupport.NewItem(t, store, "b.mp4", "youtube")
	second.SetFailed("network")
	if err := store.Update(ctx, second); err != nil {
		t.Fatalf("Update: %v", err)
	}

	reset, err := store.RetryFailed(ctx, first.ID)
	if err != nil {
		t.Fatalf("RetryFailed: %v", err)
	}
	if reset != 1 {
		t.Fatalf("expected 1 reset, got %d", reset)
	}
	fetched, _ := store.GetByID(ctx, second.ID)
	if fetched.Status != queue.StatusFailed {
		t.Fatalf("expected second item untouched, got %s", fetched.Status)
	}
}

func TestClearVariants(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	testsupport.NewItem(t, store, "a.mp4", "youtube")

	uploaded := testsupport.NewItem(t, store, "b.mp4", "youtube")
	uploaded.SetUploaded("https://youtu.be/abc", "2026-08-31", time.Now())
	if err := store.Update(ctx, uploaded); err != nil {
		t.Fatalf("Update: %v", err)
	}

	failed := testsupport.NewItem(t, store, "c.mp4", "reels")
	failed.SetFailed("graph error")
	if err := store.Update(ctx, failed); err != nil {
		t.Fatalf("Update: %v", err)
	}

	removed, err := store.ClearUploaded(ctx)
	if err != nil {
		t.Fatalf("ClearUploaded: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 uploaded removed, got %d", removed)
	}

	removed, err = store.ClearFailed(ctx)
	if err != nil {
		t.Fatalf("ClearFailed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 failed removed, got %d", removed)
	}

	removed, err = store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 remaining removed, got %d", removed)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 0 {
		t.Fatalf("expected empty queue, got %+v", stats)
	}
}

func TestStatsAggregatesPerStatus(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	testsupport.NewItem(t, store, "a.mp4", "youtube")
	testsupport.NewItem(t, store, "b.mp4", "youtube")
	failed := testsupport.NewItem(t, store, "c.mp4", "reels")
	failed.SetFailed("boom")
	if err := store.Update(ctx, failed); err != nil {
		t.Fatalf("Update: %v", err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 3 || stats.Pending != 2 || stats.Failed != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestCheckHealthReportsHealthyDatabase(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	testsupport.NewItem(t, store, "a.mp4", "youtube")

	health := store.CheckHealth(context.Background())
	if !health.DatabaseExists || !health.DatabaseReadable || !health.TableExists || !health.IntegrityCheck {
		t.Fatalf("expected healthy database, got %+v", health)
	}
	if health.TotalItems != 1 {
		t.Fatalf("expected 1 item, got %d", health.TotalItems)
	}
	if health.Error != "" {
		t.Fatalf("unexpected error: %q", health.Error)
	}
}

func TestRemove(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	item := testsupport.NewItem(t, store, "a.mp4", "youtube")
	if err := store.Remove(ctx, item.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := store.Remove(ctx, item.ID); err == nil {
		t.Fatal("expected error removing missing item")
	}
}

func TestParseStatus(t *testing.T) {
	if status, ok := queue.ParseStatus(" Uploaded "); !ok || status != queue.StatusUploaded {
		t.Fatalf("unexpected parse result: %v %v", status, ok)
	}
	if _, ok := queue.ParseStatus("bogus"); ok {
		t.Fatal("expected parse failure for unknown status")
	}
	if _, ok := queue.ParseStatus(""); ok {
		t.Fatal("expected parse failure for empty status")
	}
}
