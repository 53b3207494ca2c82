// Package reels implements the Facebook Reels destination gateway.
//
// Publishing is a three-phase Graph API handshake: start allocates a video
// and upload host, transfer posts the raw bytes with OAuth and file_size
// headers, and finish flips the reel to PUBLISHED with its description. The
// platform has no deferred publishing, so reels go live immediately.
package reels
