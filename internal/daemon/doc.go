// Package daemon hosts the long-running primetime process: it holds the
// single-instance lock, runs the scheduling loop and the Telegram poller, and
// serves the HTTP API the CLI talks to.
package daemon
