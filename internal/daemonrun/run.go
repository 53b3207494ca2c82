package daemonrun

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"primetime/internal/bot"
	"primetime/internal/config"
	"primetime/internal/daemon"
	"primetime/internal/ingest"
	"primetime/internal/logging"
	"primetime/internal/mediastore"
	"primetime/internal/metadata"
	"primetime/internal/notifications"
	"primetime/internal/platform"
	"primetime/internal/platform/reels"
	"primetime/internal/platform/youtube"
	"primetime/internal/queue"
	"primetime/internal/scheduler"
	"primetime/internal/telegram"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel string
}

// Run wires the daemon's collaborators and blocks until a termination signal
// arrives.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("prepare directories: %w", err)
	}

	level := opts.LogLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	logPath := filepath.Join(cfg.Paths.LogDir, "primetime.log")
	logger, err := logging.New(logging.Options{
		Level:   level,
		Format:  cfg.Logging.Format,
		Outputs: []string{"stdout", logPath},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	pidPath := filepath.Join(cfg.Paths.LogDir, "primetime.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store, err := queue.Open(cfg)
	if err != nil {
		logger.Error("open queue store", logging.Error(err))
		return err
	}

	media, err := mediastore.New(cfg)
	if err != nil {
		logger.Error("connect media store", logging.Error(err))
		store.Close()
		return err
	}

	generator := metadata.NewService(metadata.NewClient(metadata.Config{
		APIKey:         cfg.Metadata.APIKey,
		BaseURL:        cfg.Metadata.BaseURL,
		Model:          cfg.Metadata.Model,
		TimeoutSeconds: cfg.Metadata.TimeoutSeconds,
	}), logger)

	var chat *telegram.Client
	if cfg.Telegram.BotToken != "" {
		chat = telegram.NewClient(cfg.Telegram)
	}
	var sender notifications.Sender
	if chat != nil {
		sender = chat
	}
	notifier := notifications.NewService(cfg, sender)

	var gateways []platform.Gateway
	if cfg.Platform.YouTube.Enabled {
		gateways = append(gateways, youtube.New(cfg.Platform.YouTube, logger))
	}
	if cfg.Platform.Reels.Enabled {
		gateways = append(gateways, reels.New(cfg.Platform.Reels, logger))
	}

	engine, err := scheduler.New(cfg, store, media, generator, platform.NewRegistry(gateways...), notifier, logger)
	if err != nil {
		logger.Error("build scheduling engine", logging.Error(err))
		store.Close()
		return err
	}

	var poller daemon.Poller
	if chat != nil {
		frontDoor := ingest.NewService(cfg, store, media, generator, logger)
		poller = bot.New(cfg, chat, ingest.NewSessions(cfg), frontDoor, engine, store, logger)
	} else {
		logger.Warn("telegram bot token not configured, running without the bot")
	}

	d, err := daemon.New(cfg, store, logger, engine, poller)
	if err != nil {
		store.Close()
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		logger.Error("daemon start failed", logging.Error(err))
		return err
	}
	if err := notifier.NotifyDaemonStarted(signalCtx); err != nil {
		logger.Warn("startup notification failed", logging.Error(err))
	}

	<-signalCtx.Done()
	logger.Info("primetime daemon shutting down")
	// The signal context is already canceled; give the farewell its own.
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	if err := notifier.NotifyDaemonStopped(stopCtx); err != nil {
		logger.Warn("shutdown notification failed", logging.Error(err))
	}
	return nil
}

func writePIDFile(path string) error {
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644)
}
