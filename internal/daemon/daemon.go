package daemon

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"

	"log/slog"

	"github.com/gofrs/flock"

	"primetime/internal/config"
	"primetime/internal/logging"
	"primetime/internal/queue"
	"primetime/internal/scheduler"
)

// Engine is the scheduling surface the daemon drives. *scheduler.Engine
// satisfies it.
type Engine interface {
	Run(ctx context.Context)
	RunCycle(ctx context.Context, platformName string) (scheduler.CycleReport, error)
	ForceCycle(ctx context.Context, platformName string) (scheduler.CycleReport, error)
	Status(ctx context.Context) (scheduler.Summary, error)
}

// Poller is a long-running collaborator that stops when the context is
// canceled. The Telegram bot satisfies it.
type Poller interface {
	Run(ctx context.Context)
}

// Daemon coordinates the background services and enforces single-instance
// execution via a file lock.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *queue.Store
	engine Engine
	bot    Poller
	api    *apiServer

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New constructs a daemon with initialized dependencies. The bot is optional;
// without one the daemon still schedules and serves the API.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger, engine Engine, bot Poller) (*Daemon, error) {
	if cfg == nil || store == nil || logger == nil || engine == nil {
		return nil, errors.New("daemon requires config, store, logger, and engine")
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "primetimed.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		engine:   engine,
		bot:      bot,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.api = newAPIServer(cfg, d, d.logger)
	return d, nil
}

// Start acquires the daemon lock and launches the scheduling loop, the bot
// poller, and the API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another primetime daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.api.start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return err
	}
	d.cancel = cancel

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.engine.Run(runCtx)
	}()
	if d.bot != nil {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.bot.Run(runCtx)
		}()
	}

	d.running.Store(true)
	d.logger.Info("primetime daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.wg.Wait()
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("primetime daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Running reports whether the daemon has started.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// LockPath returns the path of the single-instance lock file.
func (d *Daemon) LockPath() string {
	return d.lockPath
}

// APIAddr returns the bound API address, or empty when the API is disabled or
// not started.
func (d *Daemon) APIAddr() string {
	if d.api == nil || d.api.listener == nil {
		return ""
	}
	return d.api.listener.Addr().String()
}

// Cycle runs one publishing cycle for the named platform.
func (d *Daemon) Cycle(ctx context.Context, platformName string, force bool) (scheduler.CycleReport, error) {
	if force {
		return d.engine.ForceCycle(ctx, platformName)
	}
	return d.engine.RunCycle(ctx, platformName)
}
