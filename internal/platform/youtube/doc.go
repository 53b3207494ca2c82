// Package youtube implements the YouTube destination gateway.
//
// Uploads use the two-step resumable protocol: a metadata POST opens a
// session, then the staged bytes go up in a single PUT. Per-channel refresh
// tokens live as JSON files in the configured token directory and are
// exchanged for short-lived access tokens on demand.
package youtube
