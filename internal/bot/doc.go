// Package bot is the Telegram front door: a long-poll loop that turns chat
// messages into queue submissions and operator commands into engine calls.
// Message handling that can block (downloads, forced cycles) is dispatched to
// goroutines so polling and replies stay responsive.
package bot
