// Package config loads, normalizes, and validates Primetime configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// TELEGRAM_BOT_TOKEN and GROQ_API_KEY. The Config type centralizes every knob
// the daemon and CLI need, from staging directories to per-platform quotas
// and publishing windows.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
