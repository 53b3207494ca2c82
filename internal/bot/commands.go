package bot

import (
	"context"
	"fmt"
	"strings"

	"primetime/internal/ingest"
	"primetime/internal/logging"
	"primetime/internal/queue"
	"primetime/internal/scheduler"
)

const helpText = `Primetime publishing bot.

Send a video file or a staged media link to queue it for the active platform.

Commands:
/status - queue counts, quota usage, next publishing window
/queue - recent queue items
/platform <name> - switch the active platform
/channel <name> - switch the active YouTube channel
/upload - force a publishing cycle for the active platform
/help - this message`

func (b *Bot) handleCommand(ctx context.Context, chatID int64, text string) {
	fields := strings.Fields(text)
	command := strings.ToLower(fields[0])
	// Commands in groups arrive as /status@BotName.
	if at := strings.Index(command, "@"); at > 0 {
		command = command[:at]
	}
	arg := ""
	if len(fields) > 1 {
		arg = strings.Join(fields[1:], " ")
	}

	switch command {
	case "/start", "/help":
		b.reply(ctx, chatID, helpText)
	case "/status":
		b.commandStatus(ctx, chatID)
	case "/queue":
		b.commandQueue(ctx, chatID)
	case "/platform":
		b.commandPlatform(ctx, chatID, arg)
	case "/channel":
		b.commandChannel(ctx, chatID, arg)
	case "/upload":
		b.dispatch(func() { b.commandUpload(ctx, chatID) })
	default:
		b.reply(ctx, chatID, "Unknown command. Try /help.")
	}
}

func (b *Bot) commandStatus(ctx context.Context, chatID int64) {
	summary, err := b.engine.Status(ctx)
	if err != nil {
		b.reply(ctx, chatID, "Status unavailable: "+err.Error())
		return
	}
	b.reply(ctx, chatID, formatStatus(summary))
}

func (b *Bot) commandQueue(ctx context.Context, chatID int64) {
	items, err := b.store.List(ctx)
	if err != nil {
		b.reply(ctx, chatID, "Queue unavailable: "+err.Error())
		return
	}
	if len(items) == 0 {
		b.reply(ctx, chatID, "The queue is empty.")
		return
	}
	const recent = 10
	if len(items) > recent {
		items = items[len(items)-recent:]
	}
	var builder strings.Builder
	builder.WriteString("Recent queue items:\n")
	for _, item := range items {
		builder.WriteString(formatQueueLine(item))
		builder.WriteString("\n")
	}
	b.reply(ctx, chatID, strings.TrimRight(builder.String(), "\n"))
}

func (b *Bot) commandPlatform(ctx context.Context, chatID int64, arg string) {
	if arg == "" {
		session := b.sessions.Get(chatID)
		b.reply(ctx, chatID, fmt.Sprintf("Active platform: %s. Available: %s.",
			session.Platform, strings.Join(b.cfg.EnabledPlatforms(), ", ")))
		return
	}
	session, err := b.sessions.SetPlatform(chatID, arg)
	if err != nil {
		b.reply(ctx, chatID, err.Error())
		return
	}
	reply := "Active platform is now " + session.Platform
	if session.Channel != "" {
		reply += " (channel " + session.Channel + ")"
	}
	b.reply(ctx, chatID, reply+".")
}

func (b *Bot) commandChannel(ctx context.Context, chatID int64, arg string) {
	if arg == "" {
		session := b.sessions.Get(chatID)
		b.reply(ctx, chatID, fmt.Sprintf("Active channel: %s. Available: %s.",
			session.Channel, strings.Join(b.cfg.Platform.YouTube.Channels, ", ")))
		return
	}
	session, err := b.sessions.SetChannel(chatID, arg)
	if err != nil {
		b.reply(ctx, chatID, err.Error())
		return
	}
	b.reply(ctx, chatID, "Active channel is now "+session.Channel+" on "+session.Platform+".")
}

func (b *Bot) commandUpload(ctx context.Context, chatID int64) {
	session := b.sessions.Get(chatID)
	b.reply(ctx, chatID, "Starting a forced cycle for "+session.Platform+"...")

	report, err := b.engine.ForceCycle(ctx, session.Platform)
	if err != nil {
		b.logger.Warn("forced cycle failed", logging.Error(err))
		b.reply(ctx, chatID, "Cycle failed: "+err.Error())
		return
	}
	b.reply(ctx, chatID, formatReport(report))
}

func queuedMessage(item *queue.Item, snapshot ingest.QuotaSnapshot) string {
	message := fmt.Sprintf("Queued #%d %s for %s.", item.ID, item.Filename, item.Platform)
	if item.Channel != "" {
		message += " Channel: " + item.Channel + "."
	}
	message += fmt.Sprintf(" Quota today: %d/%d used.", snapshot.Used, snapshot.Quota)
	return message
}

func formatStatus(summary scheduler.Summary) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "Queue: %d total (%d pending, %d scheduled, %d uploading, %d uploaded, %d failed)\n",
		summary.Queue.Total, summary.Queue.Pending, summary.Queue.Scheduled,
		summary.Queue.Uploading, summary.Queue.Uploaded, summary.Queue.Failed)
	for _, p := range summary.Platforms {
		fmt.Fprintf(&builder, "%s: %d/%d used today\n", p.Platform, p.Used, p.Quota)
	}
	if summary.InWindow {
		builder.WriteString("A publishing window is open now.")
	} else if !summary.NextWindow.IsZero() {
		fmt.Fprintf(&builder, "Next window: %s (%s)", summary.NextWindow.Format("15:04"), summary.Timezone)
	}
	return strings.TrimRight(builder.String(), "\n")
}

func formatQueueLine(item *queue.Item) string {
	line := fmt.Sprintf("#%d [%s] %s (%s)", item.ID, item.Status, item.Filename, item.Platform)
	switch {
	case item.Status == queue.StatusUploaded && item.PublishedLink != "":
		line += " " + item.PublishedLink
	case item.Status == queue.StatusScheduled && item.ScheduledDate != "":
		line += " on " + item.ScheduledDate
	case item.Status == queue.StatusFailed && item.ErrorMessage != "":
		line += " - " + item.ErrorMessage
	}
	return line
}

func formatReport(report scheduler.CycleReport) string {
	if len(report.Results) == 0 {
		if report.Rescheduled > 0 {
			return fmt.Sprintf("Daily quota for %s is spent; %d item(s) moved to tomorrow.", report.Platform, report.Rescheduled)
		}
		return "Nothing eligible to upload for " + report.Platform + "."
	}
	var builder strings.Builder
	fmt.Fprintf(&builder, "Cycle for %s: %d uploaded, %d failed.\n", report.Platform, report.Uploads, report.Failures)
	for _, result := range report.Results {
		if result.Success {
			fmt.Fprintf(&builder, "#%d %s -> %s\n", result.ID, result.Filename, result.PublishedLink)
		} else {
			fmt.Fprintf(&builder, "#%d %s failed: %s\n", result.ID, result.Filename, result.Error)
		}
	}
	if report.Rescheduled > 0 {
		fmt.Fprintf(&builder, "%d item(s) moved to tomorrow.", report.Rescheduled)
	}
	return strings.TrimRight(builder.String(), "\n")
}
