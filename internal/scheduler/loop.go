package scheduler

import (
	"context"
	"errors"
	"time"

	"primetime/internal/logging"
)

// Run drives periodic cycles for every enabled platform until the context is
// canceled. One immediate pass runs at startup so a daemon restarted inside a
// window does not wait a full interval.
func (e *Engine) Run(ctx context.Context) {
	interval := time.Duration(e.cfg.Scheduler.IntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = 30 * time.Minute
	}

	e.runAll(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.runAll(ctx)
		}
	}
}

func (e *Engine) runAll(ctx context.Context) {
	for _, name := range e.cfg.EnabledPlatforms() {
		if ctx.Err() != nil {
			return
		}
		report, err := e.RunCycle(ctx, name)
		switch {
		case errors.Is(err, ErrCycleActive):
			e.logger.Debug("cycle skipped, platform busy", logging.String(logging.FieldPlatform, name))
		case err != nil:
			e.logger.Error("cycle failed",
				logging.String(logging.FieldPlatform, name),
				logging.Error(err),
			)
			if notifyErr := e.notifier.NotifyError(ctx, err, name+" cycle"); notifyErr != nil {
				e.logger.Warn("cycle-error notification failed", logging.Error(notifyErr))
			}
		default:
			if report.Uploads > 0 || report.Failures > 0 {
				if notifyErr := e.notifier.NotifyCycleCompleted(ctx, report.Uploads, report.Failures, 0); notifyErr != nil {
					e.logger.Warn("cycle notification failed", logging.Error(notifyErr))
				}
			}
		}
	}
}
