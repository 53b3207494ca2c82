package platform

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Known platform names. Queue items store these strings.
const (
	YouTube = "youtube"
	Reels   = "reels"
)

// Request carries everything a gateway needs to publish one video.
type Request struct {
	FilePath    string
	Title       string
	Description string
	Tags        string
	Channel     string
	PublishAt   *time.Time
}

// Result reports the outcome of a publish call.
type Result struct {
	Link string
}

// Gateway publishes a staged video to one destination platform. Capabilities
// are declared, not probed: SupportsDeferredPublish tells the scheduler
// whether Request.PublishAt is honored. CheckConfig reports missing
// credentials without touching the network.
type Gateway interface {
	Name() string
	SupportsDeferredPublish() bool
	CheckConfig() error
	Upload(ctx context.Context, req Request) (Result, error)
}

// UploadError wraps a platform failure with enough detail for queue error
// messages and retry classification.
type UploadError struct {
	Platform  string
	Operation string
	Err       error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Platform, e.Operation, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// Registry holds the configured gateways keyed by platform name.
type Registry struct {
	gateways map[string]Gateway
}

// NewRegistry builds a registry from the provided gateways. Nil entries are
// skipped so callers can pass conditionally constructed gateways directly.
func NewRegistry(gateways ...Gateway) *Registry {
	registry := &Registry{gateways: make(map[string]Gateway, len(gateways))}
	for _, gw := range gateways {
		if gw == nil {
			continue
		}
		registry.gateways[strings.ToLower(gw.Name())] = gw
	}
	return registry
}

// Lookup returns the gateway for a platform name.
func (r *Registry) Lookup(name string) (Gateway, bool) {
	gw, ok := r.gateways[strings.ToLower(strings.TrimSpace(name))]
	return gw, ok
}

// Names returns the registered platform names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.gateways))
	for name := range r.gateways {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
