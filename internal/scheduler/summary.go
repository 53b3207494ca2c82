package scheduler

import (
	"context"
	"fmt"
	"time"

	"primetime/internal/queue"
)

// PlatformSummary reports one platform's quota position for today.
// ConfigError is non-empty when the gateway is missing or misconfigured.
type PlatformSummary struct {
	Platform    string
	Quota       int
	Used        int
	Remaining   int
	ConfigError string
}

// Summary is the read-only engine status: queue counts, per-platform quota,
// and the next instant a periodic cycle would be allowed to run.
type Summary struct {
	Queue      queue.HealthSummary
	Platforms  []PlatformSummary
	Timezone   string
	NextWindow time.Time
	InWindow   bool
}

// Status aggregates counts and quota usage without mutating any state.
func (e *Engine) Status(ctx context.Context) (Summary, error) {
	stats, err := e.store.Stats(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("queue stats: %w", err)
	}

	now := e.now().In(e.location)
	today := now.Format(queue.DateFormat)

	summary := Summary{
		Queue:      stats,
		Timezone:   e.cfg.Scheduler.Timezone,
		NextWindow: e.nextWindow(now),
		InWindow:   e.withinWindow(now),
	}
	for _, name := range e.cfg.EnabledPlatforms() {
		used, err := e.store.CountUploaded(ctx, name, today)
		if err != nil {
			return Summary{}, fmt.Errorf("count uploaded for %s: %w", name, err)
		}
		quota := e.dailyQuota(name)
		remaining := quota - used
		if remaining < 0 {
			remaining = 0
		}
		configError := ""
		if gateway, ok := e.gateways.Lookup(name); !ok {
			configError = "no gateway registered"
		} else if err := gateway.CheckConfig(); err != nil {
			configError = err.Error()
		}
		summary.Platforms = append(summary.Platforms, PlatformSummary{
			Platform:    name,
			Quota:       quota,
			Used:        used,
			Remaining:   remaining,
			ConfigError: configError,
		})
	}
	return summary, nil
}
