package ingest_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"primetime/internal/ingest"
	"primetime/internal/logging"
	"primetime/internal/metadata"
	"primetime/internal/queue"
	"primetime/internal/services"
	"primetime/internal/testsupport"
)

type fakeObjectStore struct {
	putKeys     []string
	putSizes    []int64
	putContents []string
	putErr      error
}

func (f *fakeObjectStore) Put(_ context.Context, key string, reader io.Reader, size int64, _ string) error {
	if f.putErr != nil {
		return f.putErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	f.putKeys = append(f.putKeys, key)
	f.putSizes = append(f.putSizes, size)
	f.putContents = append(f.putContents, string(data))
	return nil
}

func (f *fakeObjectStore) Fetch(context.Context, string, string) error { return nil }
func (f *fakeObjectStore) Remove(context.Context, string) error        { return nil }
func (f *fakeObjectStore) Exists(context.Context, string) (bool, error) {
	return true, nil
}
func (f *fakeObjectStore) ShareLink(key string) string {
	return "https://media.test.invalid/d/" + key + "/view"
}

type fakeGenerator struct {
	hints []string
	meta  metadata.Metadata
	err   error
}

func (f *fakeGenerator) Generate(_ context.Context, filename, hint string) (metadata.Metadata, error) {
	f.hints = append(f.hints, hint)
	if f.err != nil {
		return metadata.Metadata{}, f.err
	}
	if f.meta.Title == "" {
		return metadata.Fallback(filename), nil
	}
	return f.meta, nil
}

func writeTempVideo(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write temp video: %v", err)
	}
	return path
}

func TestEnqueueStagesLocalFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	media := &fakeObjectStore{}
	gen := &fakeGenerator{meta: metadata.Metadata{Title: "Beach Day", Description: "Sun.", Tags: "beach"}}

	svc := ingest.NewService(cfg, store, media, gen, logging.NewNop())
	local := writeTempVideo(t, "beach_day.mp4", "payload")

	item, snapshot, err := svc.Enqueue(context.Background(), ingest.Submission{
		LocalPath: local,
		Filename:  "beach_day.mp4",
		Caption:   "our trip",
		Platform:  "youtube",
	})
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if item.Status != queue.StatusPending {
		t.Fatalf("expected pending, got %s", item.Status)
	}
	if len(media.putKeys) != 1 {
		t.Fatalf("expected one staged object, got %d", len(media.putKeys))
	}
	if !strings.HasSuffix(media.putKeys[0], ".mp4") {
		t.Fatalf("staged key must keep extension: %q", media.putKeys[0])
	}
	if media.putSizes[0] != int64(len("payload")) || media.putContents[0] != "payload" {
		t.Fatalf("unexpected staged payload: size=%d contents=%q", media.putSizes[0], media.putContents[0])
	}
	if item.SourceLink != media.ShareLink(media.putKeys[0]) {
		t.Fatalf("unexpected source link: %q", item.SourceLink)
	}
	if item.Channel != "Main" {
		t.Fatalf("expected default channel, got %q", item.Channel)
	}
	if _, err := os.Stat(local); !os.IsNotExist(err) {
		t.Fatalf("expected temp file removed, stat err = %v", err)
	}
	if len(gen.hints) != 1 || gen.hints[0] != "our trip" {
		t.Fatalf("expected caption forwarded to generator, got %v", gen.hints)
	}

	stored, err := store.GetByID(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Title != "Beach Day" || stored.Tags != "beach" {
		t.Fatalf("expected eager metadata persisted, got title=%q tags=%q", stored.Title, stored.Tags)
	}
	if snapshot.Quota != cfg.Platform.YouTube.DailyQuota || snapshot.Remaining != snapshot.Quota {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
}

func TestEnqueueAcceptsStagedLinkShapes(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	svc := ingest.NewService(cfg, store, &fakeObjectStore{}, &fakeGenerator{}, logging.NewNop())

	links := []string{
		"https://media.test.invalid/d/ABC123/view",
		"https://media.test.invalid/download?id=ABC123",
		"ABC123",
	}
	for _, link := range links {
		item, _, err := svc.Enqueue(context.Background(), ingest.Submission{
			Link:     link,
			Filename: "clip.mp4",
			Platform: "youtube",
		})
		if err != nil {
			t.Fatalf("Enqueue(%q): %v", link, err)
		}
		if item.SourceLink != link {
			t.Fatalf("link must pass through unchanged: got %q want %q", item.SourceLink, link)
		}
	}
}

func TestEnqueueRejectsUnrecognizedLink(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	svc := ingest.NewService(cfg, store, &fakeObjectStore{}, &fakeGenerator{}, logging.NewNop())

	_, _, err := svc.Enqueue(context.Background(), ingest.Submission{
		Link:     "https://media.test.invalid/browse?page=2",
		Filename: "clip.mp4",
		Platform: "youtube",
	})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	items, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("rejected submission must not be queued: %d items", len(items))
	}
}

func TestEnqueueRejectsDisabledPlatform(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	svc := ingest.NewService(cfg, store, &fakeObjectStore{}, &fakeGenerator{}, logging.NewNop())

	_, _, err := svc.Enqueue(context.Background(), ingest.Submission{
		Link:     "ABC123",
		Filename: "clip.mp4",
		Platform: "reels",
	})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestEnqueueRejectsUnknownChannel(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	svc := ingest.NewService(cfg, store, &fakeObjectStore{}, &fakeGenerator{}, logging.NewNop())

	_, _, err := svc.Enqueue(context.Background(), ingest.Submission{
		Link:     "ABC123",
		Filename: "clip.mp4",
		Platform: "youtube",
		Channel:  "Secondary",
	})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestEnqueueSurvivesMetadataFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	gen := &fakeGenerator{err: errors.New("model offline")}
	svc := ingest.NewService(cfg, store, &fakeObjectStore{}, gen, logging.NewNop())

	item, _, err := svc.Enqueue(context.Background(), ingest.Submission{
		Link:     "ABC123",
		Filename: "clip.mp4",
		Platform: "youtube",
	})
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if item.HasMetadata() {
		t.Fatalf("expected item without metadata, got title %q", item.Title)
	}
}

func TestQuotaCountsTodayInPublishTimezone(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Platform.YouTube.DailyQuota = 2
	store := testsupport.MustOpenStore(t, cfg)

	fixed := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := ingest.NewService(cfg, store, &fakeObjectStore{}, &fakeGenerator{}, logging.NewNop(),
		ingest.WithClock(func() time.Time { return fixed }),
	)

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	today := fixed.In(location).Format(queue.DateFormat)

	item := testsupport.NewItem(t, store, "done.mp4", "youtube")
	item.SetUploaded("https://youtu.be/x", today, fixed)
	if err := store.Update(context.Background(), item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	snapshot, err := svc.Quota(context.Background(), "youtube")
	if err != nil {
		t.Fatalf("Quota: %v", err)
	}
	if snapshot.Used != 1 || snapshot.Remaining != 1 || snapshot.Date != today {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
}
