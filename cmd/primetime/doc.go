// Command primetime is the operator CLI. Queue inspection works directly
// against the SQLite database; status and upload talk to the running daemon
// over its HTTP API.
package main
