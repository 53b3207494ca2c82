// Package ingest is the submission front door: it validates an incoming video
// against the configured platforms, stages local files into the object store,
// appends the queue row at pending, and eagerly generates metadata so operator
// captions are captured while they exist.
//
// Per-chat session state (active platform and channel) also lives here, in an
// explicit mutex-guarded table; the scheduler and queue never see it.
package ingest
