package scheduler

import (
	"fmt"
	"time"
)

// A slot is one configured time-of-day target. Slots drive both the window
// gate for periodic cycles and the deferred publish time for platforms that
// support it.
type slot struct {
	hour   int
	minute int
}

func parseSlots(values []string) ([]slot, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("no publishing slots configured")
	}
	slots := make([]slot, 0, len(values))
	for _, value := range values {
		parsed, err := time.Parse("15:04", value)
		if err != nil {
			return nil, fmt.Errorf("invalid slot %q: %w", value, err)
		}
		slots = append(slots, slot{hour: parsed.Hour(), minute: parsed.Minute()})
	}
	return slots, nil
}

// instantOn places the slot on the given day in the publish timezone.
func (s slot) instantOn(day time.Time, location *time.Location) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), s.hour, s.minute, 0, 0, location)
}

// withinWindow reports whether now falls inside any slot's tolerance band.
// Each slot is checked on yesterday, today, and tomorrow so bands straddling
// midnight behave the same as daytime ones.
func (e *Engine) withinWindow(now time.Time) bool {
	for _, s := range e.slots {
		for _, dayOffset := range []int{-1, 0, 1} {
			instant := s.instantOn(now.AddDate(0, 0, dayOffset), e.location)
			delta := now.Sub(instant)
			if delta < 0 {
				delta = -delta
			}
			if delta <= e.tolerance {
				return true
			}
		}
	}
	return false
}

// nextWindow returns the earliest in-window instant at or after now.
func (e *Engine) nextWindow(now time.Time) time.Time {
	if e.withinWindow(now) {
		return now
	}
	var best time.Time
	for _, s := range e.slots {
		for _, dayOffset := range []int{0, 1} {
			start := s.instantOn(now.AddDate(0, 0, dayOffset), e.location).Add(-e.tolerance)
			if start.Before(now) {
				continue
			}
			if best.IsZero() || start.Before(best) {
				best = start
			}
		}
	}
	return best
}

// publishInstant computes the deferred publish time for an upload targeting
// the given day. uploadsSoFar selects the slot; days that already consumed
// every slot clamp to the last one. A target closer than the minimum lead is
// pushed out to now plus a fixed safety margin so the platform accepts it.
func (e *Engine) publishInstant(now time.Time, targetDay time.Time, uploadsSoFar int) time.Time {
	index := uploadsSoFar
	if index >= len(e.slots) {
		index = len(e.slots) - 1
	}
	instant := e.slots[index].instantOn(targetDay, e.location)
	if instant.Sub(now) < e.minLead {
		return now.Add(publishLeadFallback)
	}
	return instant
}
