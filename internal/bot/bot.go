package bot

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"primetime/internal/config"
	"primetime/internal/ingest"
	"primetime/internal/logging"
	"primetime/internal/queue"
	"primetime/internal/scheduler"
	"primetime/internal/telegram"
)

// Chat is the Telegram surface the bot needs. *telegram.Client satisfies it.
type Chat interface {
	GetUpdates(ctx context.Context, offset int64) ([]telegram.Update, error)
	SendMessage(ctx context.Context, chatID int64, text string) error
	GetFile(ctx context.Context, fileID string) (telegram.File, error)
	DownloadFile(ctx context.Context, filePath, destPath string) error
}

// Scheduler is the engine surface the bot drives.
type Scheduler interface {
	ForceCycle(ctx context.Context, platformName string) (scheduler.CycleReport, error)
	Status(ctx context.Context) (scheduler.Summary, error)
}

// Enqueuer accepts validated submissions.
type Enqueuer interface {
	Enqueue(ctx context.Context, sub ingest.Submission) (*queue.Item, ingest.QuotaSnapshot, error)
}

// Bot long-polls Telegram and routes operator commands and video submissions.
// Slow work (downloads, uploads, forced cycles) runs on dispatched goroutines
// so the poll loop keeps answering.
type Bot struct {
	cfg      *config.Config
	chat     Chat
	sessions *ingest.Sessions
	ingest   Enqueuer
	engine   Scheduler
	store    *queue.Store
	logger   *slog.Logger

	wg sync.WaitGroup
}

// New wires the bot against its collaborators.
func New(cfg *config.Config, chat Chat, sessions *ingest.Sessions, enqueuer Enqueuer, engine Scheduler, store *queue.Store, logger *slog.Logger) *Bot {
	return &Bot{
		cfg:      cfg,
		chat:     chat,
		sessions: sessions,
		ingest:   enqueuer,
		engine:   engine,
		store:    store,
		logger:   logging.NewComponentLogger(logger, "bot"),
	}
}

// Run polls for updates until the context is canceled, then waits for
// dispatched handlers to finish.
func (b *Bot) Run(ctx context.Context) {
	defer b.wg.Wait()

	var offset int64
	for {
		if ctx.Err() != nil {
			return
		}
		updates, err := b.chat.GetUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			b.logger.Warn("poll failed", logging.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
			continue
		}
		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update telegram.Update) {
	message := update.Message
	if message == nil {
		return
	}
	// A configured chat ID pins the bot to its operator.
	if b.cfg.Telegram.ChatID != 0 && message.Chat.ID != b.cfg.Telegram.ChatID {
		b.logger.Warn("ignoring message from unknown chat", logging.Int64("chat_id", message.Chat.ID))
		return
	}

	if attachment := message.Attachment(); attachment != nil {
		b.dispatch(func() { b.handleAttachment(ctx, message, attachment) })
		return
	}

	text := strings.TrimSpace(message.Text)
	switch {
	case text == "":
		return
	case strings.HasPrefix(text, "/"):
		b.handleCommand(ctx, message.Chat.ID, text)
	case looksLikeMediaLink(text):
		b.dispatch(func() { b.handleLink(ctx, message.Chat.ID, text, message.Caption) })
	default:
		b.reply(ctx, message.Chat.ID, "Send a video file, a staged media link, or /help for commands.")
	}
}

func (b *Bot) dispatch(fn func()) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		fn()
	}()
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if err := b.chat.SendMessage(ctx, chatID, text); err != nil {
		b.logger.Warn("send reply failed", logging.Error(err))
	}
}

// handleAttachment downloads the file into the staging directory and hands it
// to the front door. The downloaded temp copy belongs to the front door after
// Enqueue; it removes it on success.
func (b *Bot) handleAttachment(ctx context.Context, message *telegram.Message, attachment *telegram.Document) {
	chatID := message.Chat.ID
	filename := attachment.FileName
	if filename == "" {
		filename = attachment.FileID + ".mp4"
	}

	file, err := b.chat.GetFile(ctx, attachment.FileID)
	if err != nil {
		b.reply(ctx, chatID, "Could not fetch the file from Telegram: "+err.Error())
		return
	}
	localPath := filepath.Join(b.cfg.Paths.StagingDir, uuid.NewString()+"_"+filepath.Base(filename))
	if err := b.chat.DownloadFile(ctx, file.FilePath, localPath); err != nil {
		b.reply(ctx, chatID, "Download failed: "+err.Error())
		return
	}

	session := b.sessions.Get(chatID)
	b.enqueue(ctx, chatID, ingest.Submission{
		LocalPath: localPath,
		Filename:  filename,
		Caption:   message.Caption,
		Platform:  session.Platform,
		Channel:   session.Channel,
	})
}

func (b *Bot) handleLink(ctx context.Context, chatID int64, link, caption string) {
	session := b.sessions.Get(chatID)
	b.enqueue(ctx, chatID, ingest.Submission{
		Link:     link,
		Filename: filenameFromLink(link),
		Caption:  caption,
		Platform: session.Platform,
		Channel:  session.Channel,
	})
}

func (b *Bot) enqueue(ctx context.Context, chatID int64, sub ingest.Submission) {
	item, snapshot, err := b.ingest.Enqueue(ctx, sub)
	if err != nil {
		b.reply(ctx, chatID, "Could not queue the video: "+err.Error())
		return
	}
	b.reply(ctx, chatID, queuedMessage(item, snapshot))
}

// looksLikeMediaLink accepts the share-link shapes the media store can
// resolve. Bare keys are intentionally excluded here: a random chat line
// should not become a queue item.
func looksLikeMediaLink(text string) bool {
	if strings.ContainsAny(text, " \t\n") {
		return false
	}
	lowered := strings.ToLower(text)
	if !strings.HasPrefix(lowered, "http://") && !strings.HasPrefix(lowered, "https://") {
		return false
	}
	return strings.Contains(text, "/d/") || strings.Contains(text, "id=")
}

func filenameFromLink(link string) string {
	trimmed := strings.TrimSuffix(strings.TrimSpace(link), "/")
	trimmed = strings.TrimSuffix(trimmed, "/view")
	base := filepath.Base(trimmed)
	if base == "" || base == "." || base == "/" {
		return "staged_video.mp4"
	}
	return base
}
