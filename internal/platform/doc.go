// Package platform defines the gateway contract that destination integrations
// implement and the registry the scheduling engine resolves them from.
//
// Subpackages youtube and reels hold the concrete uploaders. The engine only
// sees Gateway: a name and an Upload call that turns a staged file plus
// metadata into a published link.
package platform
