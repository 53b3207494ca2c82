// Package notifications delivers pipeline events back to the operator's
// Telegram chat.
//
// The default implementation sends through the bot's chat configured in
// config.toml and gracefully degrades to a no-op when notifications are
// disabled or no chat is configured. Per-event flags let operators mute
// noisy categories (upload started, upload complete, errors) without
// turning alerts off entirely.
//
// All scheduler code depends only on the Service interface, so tests can
// capture events with an in-memory sender.
package notifications
