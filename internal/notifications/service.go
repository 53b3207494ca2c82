package notifications

import (
	"context"
	"fmt"
	"strings"
	"time"

	"primetime/internal/config"
)

// Sender delivers a text message to a chat. *telegram.Client satisfies it.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Service defines the notification surface exposed to the scheduler and bot.
type Service interface {
	NotifyQueued(ctx context.Context, itemID int64, filename, platformName string) error
	NotifyUploadStarted(ctx context.Context, filename, platformName string) error
	NotifyUploadComplete(ctx context.Context, title, platformName, link string) error
	NotifyRescheduled(ctx context.Context, filename, platformName, newDate string) error
	NotifyCycleCompleted(ctx context.Context, uploaded, failed int, duration time.Duration) error
	NotifyError(ctx context.Context, err error, contextLabel string) error
	NotifyDaemonStarted(ctx context.Context) error
	NotifyDaemonStopped(ctx context.Context) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by the Telegram bot when
// notifications are enabled and a chat is configured. Otherwise a noop
// implementation is returned.
func NewService(cfg *config.Config, sender Sender) Service {
	if !cfg.Notifications.Enabled || sender == nil {
		return noopService{}
	}
	chatID := cfg.Notifications.ChatID
	if chatID == 0 {
		chatID = cfg.Telegram.ChatID
	}
	if chatID == 0 {
		return noopService{}
	}
	return &telegramService{
		sender: sender,
		chatID: chatID,
		events: cfg.Notifications,
	}
}

type telegramService struct {
	sender Sender
	chatID int64
	events config.Notifications
}

func (t *telegramService) NotifyQueued(ctx context.Context, itemID int64, filename, platformName string) error {
	filename = strings.TrimSpace(filename)
	return t.send(ctx, fmt.Sprintf("📥 Queued #%d for %s: %s", itemID, platformName, filename))
}

func (t *telegramService) NotifyUploadStarted(ctx context.Context, filename, platformName string) error {
	if !t.events.UploadStarted {
		return nil
	}
	filename = strings.TrimSpace(filename)
	return t.send(ctx, fmt.Sprintf("⏫ Uploading to %s: %s", platformName, filename))
}

func (t *telegramService) NotifyUploadComplete(ctx context.Context, title, platformName, link string) error {
	if !t.events.UploadComplete {
		return nil
	}
	title = strings.TrimSpace(title)
	message := fmt.Sprintf("✅ Published to %s: %s", platformName, title)
	if link = strings.TrimSpace(link); link != "" {
		message = fmt.Sprintf("%s\n%s", message, link)
	}
	return t.send(ctx, message)
}

func (t *telegramService) NotifyRescheduled(ctx context.Context, filename, platformName, newDate string) error {
	filename = strings.TrimSpace(filename)
	return t.send(ctx, fmt.Sprintf("📅 Daily quota reached for %s, moved %s to %s", platformName, filename, newDate))
}

func (t *telegramService) NotifyCycleCompleted(ctx context.Context, uploaded, failed int, duration time.Duration) error {
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	var message string
	if failed == 0 {
		message = fmt.Sprintf("Publishing cycle complete: %d uploaded in %s", uploaded, duration)
	} else {
		message = fmt.Sprintf("Publishing cycle complete: %d uploaded, %d failed in %s", uploaded, failed, duration)
	}
	return t.send(ctx, message)
}

func (t *telegramService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !t.events.Errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("❌ Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}
	return t.send(ctx, builder.String())
}

func (t *telegramService) NotifyDaemonStarted(ctx context.Context) error {
	return t.send(ctx, "🚀 Primetime daemon started")
}

func (t *telegramService) NotifyDaemonStopped(ctx context.Context) error {
	return t.send(ctx, "🛑 Primetime daemon stopped")
}

func (t *telegramService) TestNotification(ctx context.Context) error {
	return t.send(ctx, "🧪 Notification system test")
}

func (t *telegramService) send(ctx context.Context, text string) error {
	if t == nil || t.sender == nil {
		return nil
	}
	if err := t.sender.SendMessage(ctx, t.chatID, text); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	return nil
}

type noopService struct{}

func (noopService) NotifyQueued(context.Context, int64, string, string) error           { return nil }
func (noopService) NotifyUploadStarted(context.Context, string, string) error           { return nil }
func (noopService) NotifyUploadComplete(context.Context, string, string, string) error  { return nil }
func (noopService) NotifyRescheduled(context.Context, string, string, string) error     { return nil }
func (noopService) NotifyCycleCompleted(context.Context, int, int, time.Duration) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error                    { return nil }
func (noopService) NotifyDaemonStarted(context.Context) error                           { return nil }
func (noopService) NotifyDaemonStopped(context.Context) error                           { return nil }
func (noopService) TestNotification(context.Context) error                              { return nil }
