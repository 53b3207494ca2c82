// Package api defines the HTTP transport shapes shared by the daemon's API
// server and the CLI client, plus a queue service that adapts store results
// into those shapes.
package api
