package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"primetime/internal/config"
	"primetime/internal/logging"
	"primetime/internal/mediastore"
	"primetime/internal/metadata"
	"primetime/internal/notifications"
	"primetime/internal/platform"
	"primetime/internal/queue"
	"primetime/internal/services"
)

// publishLeadFallback replaces deferred publish targets that are already too
// close to now to satisfy the platform's minimum lead.
const publishLeadFallback = 20 * time.Minute

// Engine is the scheduling core: it decides which queue items upload when,
// enforces per-platform daily quotas and the time-window gate, and owns every
// status transition after pending.
type Engine struct {
	cfg      *config.Config
	store    *queue.Store
	media    mediastore.ObjectStore
	metadata metadata.Generator
	gateways *platform.Registry
	notifier notifications.Service
	logger   *slog.Logger

	location  *time.Location
	slots     []slot
	tolerance time.Duration
	minLead   time.Duration
	now       func() time.Time

	// Quota accounting is read-then-write with no store transaction; one
	// cycle per platform at a time keeps it single-writer.
	mu     sync.Mutex
	active map[string]bool
}

// Option customizes the engine.
type Option func(*Engine)

// WithClock overrides the engine clock (tests).
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New builds the engine. Timezone and slot configuration problems surface
// here, once, rather than on every cycle.
func New(cfg *config.Config, store *queue.Store, media mediastore.ObjectStore, generator metadata.Generator, gateways *platform.Registry, notifier notifications.Service, logger *slog.Logger, opts ...Option) (*Engine, error) {
	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "scheduler", "new", fmt.Sprintf("load timezone %q", cfg.Scheduler.Timezone), err)
	}
	slots, err := parseSlots(cfg.Scheduler.Slots)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "scheduler", "new", "parse slots", err)
	}
	if notifier == nil {
		notifier = notifications.NewService(&config.Config{}, nil)
	}
	engine := &Engine{
		cfg:       cfg,
		store:     store,
		media:     media,
		metadata:  generator,
		gateways:  gateways,
		notifier:  notifier,
		logger:    logging.NewComponentLogger(logger, "scheduler"),
		location:  location,
		slots:     slots,
		tolerance: time.Duration(cfg.Scheduler.ToleranceMinutes) * time.Minute,
		minLead:   time.Duration(cfg.Scheduler.MinLeadMinutes) * time.Minute,
		now:       time.Now,
		active:    make(map[string]bool),
	}
	for _, opt := range opts {
		opt(engine)
	}
	return engine, nil
}

// RunCycle runs one window-gated cycle for a platform. Per-item problems land
// in the result list; the error return is reserved for precondition failures
// and the reentrancy guard.
func (e *Engine) RunCycle(ctx context.Context, platformName string) (CycleReport, error) {
	return e.cycle(ctx, platformName, false)
}

// ForceCycle runs one cycle bypassing the window gate. Quota and the
// per-cycle cap still apply.
func (e *Engine) ForceCycle(ctx context.Context, platformName string) (CycleReport, error) {
	return e.cycle(ctx, platformName, true)
}

func (e *Engine) cycle(ctx context.Context, platformName string, force bool) (CycleReport, error) {
	report := CycleReport{Platform: platformName, Forced: force}

	gateway, ok := e.gateways.Lookup(platformName)
	if !ok {
		return report, services.Wrap(services.ErrConfiguration, "scheduler", "cycle", fmt.Sprintf("platform %q has no configured gateway", platformName), nil)
	}
	platformName = gateway.Name()
	report.Platform = platformName

	if !e.acquire(platformName) {
		return report, ErrCycleActive
	}
	defer e.release(platformName)

	now := e.now().In(e.location)
	today := now.Format(queue.DateFormat)
	tomorrow := now.AddDate(0, 0, 1).Format(queue.DateFormat)

	quota := e.dailyQuota(platformName)
	report.QuotaLimit = quota
	used, err := e.store.CountUploaded(ctx, platformName, today)
	if err != nil {
		return report, fmt.Errorf("count uploaded: %w", err)
	}
	report.QuotaUsed = used
	remaining := quota - used

	if remaining <= 0 {
		rescheduled, err := e.rescheduleAllPending(ctx, platformName, tomorrow)
		if err != nil {
			return report, err
		}
		report.Rescheduled = rescheduled
		if rescheduled > 0 {
			e.notifyRescheduled(ctx, platformName, rescheduled, tomorrow)
		}
		return report, nil
	}

	report.InWindow = force || e.withinWindow(now)
	if !report.InWindow {
		return report, nil
	}

	candidates, err := e.candidates(ctx, platformName, today)
	if err != nil {
		return report, err
	}
	// At most the initial remaining candidates get an attempt this cycle.
	// Failures consume an attempt but not quota; items past the cut stay
	// untouched for the next cycle.
	if len(candidates) > remaining {
		candidates = candidates[:remaining]
	}

	perCycleCap := e.maxPerCycle(platformName)
	for _, item := range candidates {
		if ctx.Err() != nil {
			break
		}
		if remaining <= 0 {
			break
		}
		if perCycleCap > 0 && report.Uploads >= perCycleCap {
			break
		}
		result := e.processItem(ctx, gateway, item, now, today)
		report.Results = append(report.Results, result)
		if result.Success {
			report.Uploads++
			remaining--
		} else {
			report.Failures++
		}
	}

	if remaining <= 0 {
		rescheduled, err := e.rescheduleAllPending(ctx, platformName, tomorrow)
		if err != nil {
			return report, err
		}
		report.Rescheduled = rescheduled
		if rescheduled > 0 {
			e.notifyRescheduled(ctx, platformName, rescheduled, tomorrow)
		}
	}

	e.logger.Info("cycle complete",
		logging.String(logging.FieldPlatform, platformName),
		logging.Bool("forced", force),
		logging.Int("uploads", report.Uploads),
		logging.Int("failures", report.Failures),
		logging.Int("rescheduled", report.Rescheduled),
	)
	return report, nil
}

// candidates builds the FIFO set: today's scheduled items first, then every
// pending item, both in insertion order.
func (e *Engine) candidates(ctx context.Context, platformName, today string) ([]*queue.Item, error) {
	scheduled, err := e.store.ScheduledOn(ctx, platformName, today)
	if err != nil {
		return nil, fmt.Errorf("list scheduled items: %w", err)
	}
	pending, err := e.store.ListForPlatform(ctx, platformName, queue.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("list pending items: %w", err)
	}
	return append(scheduled, pending...), nil
}

// rescheduleAllPending pushes every pending item in the bucket to tomorrow.
func (e *Engine) rescheduleAllPending(ctx context.Context, platformName, tomorrow string) (int, error) {
	pending, err := e.store.ListForPlatform(ctx, platformName, queue.StatusPending)
	if err != nil {
		return 0, fmt.Errorf("list pending items: %w", err)
	}
	count := 0
	for _, item := range pending {
		item.SetScheduled(tomorrow)
		if err := e.store.Update(ctx, item); err != nil {
			return count, fmt.Errorf("reschedule item %d: %w", item.ID, err)
		}
		count++
	}
	return count, nil
}

func (e *Engine) notifyRescheduled(ctx context.Context, platformName string, count int, tomorrow string) {
	if err := e.notifier.NotifyRescheduled(ctx, fmt.Sprintf("%d item(s)", count), platformName, tomorrow); err != nil {
		e.logger.Warn("reschedule notification failed", logging.Error(err))
	}
}

func (e *Engine) acquire(platformName string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active[platformName] {
		return false
	}
	e.active[platformName] = true
	return true
}

func (e *Engine) release(platformName string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.active, platformName)
}

func (e *Engine) dailyQuota(platformName string) int {
	switch platformName {
	case platform.YouTube:
		return e.cfg.Platform.YouTube.DailyQuota
	case platform.Reels:
		return e.cfg.Platform.Reels.DailyQuota
	default:
		return 0
	}
}

func (e *Engine) maxPerCycle(platformName string) int {
	switch platformName {
	case platform.YouTube:
		return e.cfg.Platform.YouTube.MaxPerCycle
	case platform.Reels:
		return e.cfg.Platform.Reels.MaxPerCycle
	default:
		return 0
	}
}
