// Package telegram is a minimal Bot API client: long polling for updates,
// paced message sends, and attachment downloads. It maps only the message
// fields the bot router and ingest flow actually read.
package telegram
