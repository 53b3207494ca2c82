// Package scheduler is the publishing core. Each cycle runs per platform:
// the daily quota gate first, then the time-window gate (skipped when
// forced), then a FIFO pass over today's scheduled items and the pending
// backlog. Items move through metadata generation, staging-file
// materialization, and the platform gateway one at a time; uploaded and
// failed are terminal. Quota exhaustion pushes the remaining pending items to
// tomorrow.
//
// Quota accounting is read-then-write against SQLite with no transaction, so
// the engine serializes cycles per platform; a second concurrent request gets
// ErrCycleActive instead of blocking.
package scheduler
