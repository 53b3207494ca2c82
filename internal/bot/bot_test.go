package bot_test

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"primetime/internal/bot"
	"primetime/internal/config"
	"primetime/internal/ingest"
	"primetime/internal/logging"
	"primetime/internal/queue"
	"primetime/internal/scheduler"
	"primetime/internal/telegram"
	"primetime/internal/testsupport"
)

type fakeChat struct {
	mu      sync.Mutex
	batches [][]telegram.Update
	sent    []string
	cancel  context.CancelFunc
	file    telegram.File
	content string
}

func (f *fakeChat) GetUpdates(context.Context, int64) ([]telegram.Update, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.batches) == 0 {
		f.cancel()
		return nil, nil
	}
	batch := f.batches[0]
	f.batches = f.batches[1:]
	return batch, nil
}

func (f *fakeChat) SendMessage(_ context.Context, _ int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeChat) GetFile(context.Context, string) (telegram.File, error) {
	return f.file, nil
}

func (f *fakeChat) DownloadFile(_ context.Context, _, destPath string) error {
	return os.WriteFile(destPath, []byte(f.content), 0o644)
}

func (f *fakeChat) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

type fakeScheduler struct {
	report scheduler.CycleReport
	forced []string
}

func (f *fakeScheduler) ForceCycle(_ context.Context, platformName string) (scheduler.CycleReport, error) {
	f.forced = append(f.forced, platformName)
	report := f.report
	report.Platform = platformName
	return report, nil
}

func (f *fakeScheduler) Status(context.Context) (scheduler.Summary, error) {
	return scheduler.Summary{
		Queue: queue.HealthSummary{Total: 2, Pending: 1, Uploaded: 1},
		Platforms: []scheduler.PlatformSummary{
			{Platform: "youtube", Quota: 5, Used: 1, Remaining: 4},
		},
		Timezone:   "UTC",
		NextWindow: time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC),
	}, nil
}

type fakeEnqueuer struct {
	mu   sync.Mutex
	subs []ingest.Submission
}

func (f *fakeEnqueuer) Enqueue(_ context.Context, sub ingest.Submission) (*queue.Item, ingest.QuotaSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs = append(f.subs, sub)
	return &queue.Item{ID: int64(len(f.subs)), Filename: sub.Filename, Platform: sub.Platform, Channel: sub.Channel},
		ingest.QuotaSnapshot{Platform: sub.Platform, Used: 1, Quota: 5, Remaining: 4}, nil
}

func (f *fakeEnqueuer) submissions() []ingest.Submission {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ingest.Submission(nil), f.subs...)
}

func message(chatID int64, text string) telegram.Update {
	return telegram.Update{
		UpdateID: 1,
		Message:  &telegram.Message{Chat: telegram.Chat{ID: chatID}, Text: text},
	}
}

func runBot(t *testing.T, cfg *config.Config, chat *fakeChat, enqueuer *fakeEnqueuer, engine *fakeScheduler, store *queue.Store) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	chat.cancel = cancel

	b := bot.New(cfg, chat, ingest.NewSessions(cfg), enqueuer, engine, store, logging.NewNop())
	b.Run(ctx)
}

func expectMessageContaining(t *testing.T, chat *fakeChat, needle string) {
	t.Helper()
	for _, sent := range chat.messages() {
		if strings.Contains(sent, needle) {
			return
		}
	}
	t.Fatalf("no reply contains %q; got %v", needle, chat.messages())
}

func TestHelpAndStatusCommands(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	chat := &fakeChat{batches: [][]telegram.Update{
		{message(1000, "/help"), message(1000, "/status")},
	}}

	runBot(t, cfg, chat, &fakeEnqueuer{}, &fakeScheduler{}, store)

	expectMessageContaining(t, chat, "/platform <name>")
	expectMessageContaining(t, chat, "youtube: 1/5 used today")
	expectMessageContaining(t, chat, "Next window: 14:00 (UTC)")
}

func TestQueueCommandListsRecentItems(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewItem(t, store, "clip.mp4", "youtube")
	item.SetFailed("upload rejected")
	if err := store.Update(context.Background(), item); err != nil {
		t.Fatalf("Update: %v", err)
	}

	chat := &fakeChat{batches: [][]telegram.Update{{message(1000, "/queue")}}}
	runBot(t, cfg, chat, &fakeEnqueuer{}, &fakeScheduler{}, store)

	expectMessageContaining(t, chat, "[failed] clip.mp4 (youtube) - upload rejected")
}

func TestPlatformAndUploadCommands(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithReelsEnabled())
	store := testsupport.MustOpenStore(t, cfg)
	engine := &fakeScheduler{report: scheduler.CycleReport{
		Uploads: 1,
		Results: []scheduler.ItemResult{{ID: 7, Filename: "clip.mp4", Success: true, PublishedLink: "https://www.facebook.com/reel/9"}},
	}}
	chat := &fakeChat{batches: [][]telegram.Update{
		{message(1000, "/platform reels"), message(1000, "/upload")},
	}}

	runBot(t, cfg, chat, &fakeEnqueuer{}, engine, store)

	if len(engine.forced) != 1 || engine.forced[0] != "reels" {
		t.Fatalf("expected forced reels cycle, got %v", engine.forced)
	}
	expectMessageContaining(t, chat, "Active platform is now reels")
	expectMessageContaining(t, chat, "#7 clip.mp4 -> https://www.facebook.com/reel/9")
}

func TestAttachmentBecomesSubmission(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	store := testsupport.MustOpenStore(t, cfg)
	enqueuer := &fakeEnqueuer{}
	chat := &fakeChat{
		file:    telegram.File{FileID: "f1", FilePath: "videos/clip.mp4"},
		content: "video bytes",
		batches: [][]telegram.Update{{{
			UpdateID: 1,
			Message: &telegram.Message{
				Chat:    telegram.Chat{ID: 1000},
				Caption: "our trip",
				Video:   &telegram.Document{FileID: "f1", FileName: "clip.mp4"},
			},
		}}},
	}

	runBot(t, cfg, chat, enqueuer, &fakeScheduler{}, store)

	subs := enqueuer.submissions()
	if len(subs) != 1 {
		t.Fatalf("expected one submission, got %d", len(subs))
	}
	sub := subs[0]
	if sub.Filename != "clip.mp4" || sub.Caption != "our trip" {
		t.Fatalf("unexpected submission: %+v", sub)
	}
	if sub.Platform != "youtube" || sub.Channel != "Main" {
		t.Fatalf("expected session defaults, got %+v", sub)
	}
	data, err := os.ReadFile(sub.LocalPath)
	if err != nil {
		t.Fatalf("read downloaded file: %v", err)
	}
	if string(data) != "video bytes" {
		t.Fatalf("unexpected downloaded contents: %q", data)
	}
	expectMessageContaining(t, chat, "Queued #1 clip.mp4 for youtube")
}

func TestLinkBecomesSubmission(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	enqueuer := &fakeEnqueuer{}
	chat := &fakeChat{batches: [][]telegram.Update{
		{message(1000, "https://media.test.invalid/d/ABC123/view")},
	}}

	runBot(t, cfg, chat, enqueuer, &fakeScheduler{}, store)

	subs := enqueuer.submissions()
	if len(subs) != 1 {
		t.Fatalf("expected one submission, got %d", len(subs))
	}
	if subs[0].Link != "https://media.test.invalid/d/ABC123/view" || subs[0].Filename != "ABC123" {
		t.Fatalf("unexpected submission: %+v", subs[0])
	}
}

func TestMessagesFromOtherChatsAreIgnored(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	enqueuer := &fakeEnqueuer{}
	chat := &fakeChat{batches: [][]telegram.Update{
		{message(9999, "/status"), message(9999, "https://media.test.invalid/d/ABC/view")},
	}}

	runBot(t, cfg, chat, enqueuer, &fakeScheduler{}, store)

	if len(chat.messages()) != 0 {
		t.Fatalf("expected no replies to foreign chats, got %v", chat.messages())
	}
	if len(enqueuer.submissions()) != 0 {
		t.Fatalf("expected no submissions from foreign chats")
	}
}

func TestUnknownCommand(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	chat := &fakeChat{batches: [][]telegram.Update{{message(1000, "/frobnicate")}}}

	runBot(t, cfg, chat, &fakeEnqueuer{}, &fakeScheduler{}, store)

	expectMessageContaining(t, chat, "Unknown command")
}
