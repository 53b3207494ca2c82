package scheduler

import "errors"

// ErrCycleActive is returned when a cycle is requested for a platform that is
// already mid-cycle. Callers retry later; requests never queue.
var ErrCycleActive = errors.New("cycle already active for platform")

// ItemResult is the per-item outcome of one cycle.
type ItemResult struct {
	ID            int64
	Filename      string
	Success       bool
	PublishedLink string
	Error         string
}

// CycleReport aggregates one platform cycle: what the gates decided and what
// the item loop did.
type CycleReport struct {
	Platform    string
	Forced      bool
	InWindow    bool
	QuotaLimit  int
	QuotaUsed   int
	Uploads     int
	Failures    int
	Rescheduled int
	Results     []ItemResult
}
