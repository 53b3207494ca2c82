// Package queue persists upload queue items in SQLite and exposes helpers
// for driving their lifecycle.
//
// The Store manages database connections, schema initialization, FIFO
// listings per platform, the daily-usage counter, stats queries, and the
// operator maintenance operations (retry, clear). Queue items capture the
// staged source link, generated metadata, scheduling dates, and publish
// results so the scheduling engine can coordinate without additional state.
//
// The database is the source of truth for what is pending, scheduled,
// uploading, uploaded, or failed; any pending or scheduled item surviving a
// process restart is discoverable and resumable on the next cycle. Schema
// changes bump the version in schema.go; users clear the database to adopt
// the new schema.
package queue
