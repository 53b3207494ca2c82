// Package metadata generates publishing titles, descriptions, and tags for
// queued videos.
//
// The Client talks to an OpenAI-compatible chat completion endpoint with
// JSON-only responses and bounded retries for rate limits and server errors.
// The Service layers a deterministic filename-derived fallback on top so the
// pipeline never stalls on a flaky model.
package metadata
