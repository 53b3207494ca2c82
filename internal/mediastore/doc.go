// Package mediastore persists staged source videos in an S3-compatible
// object store and owns the share-link grammar that ties queue items back to
// their objects.
//
// Ingest uploads bot attachments here and records a share link on the queue
// item; the scheduling engine later extracts the object key from that link
// and fetches the bytes into local staging for upload. Keys are opaque to
// every other package.
package mediastore
