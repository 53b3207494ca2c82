package platform_test

import (
	"context"
	"errors"
	"testing"

	"primetime/internal/platform"
)

type fakeGateway struct {
	name string
}

func (f fakeGateway) Name() string { return f.name }

func (f fakeGateway) SupportsDeferredPublish() bool { return false }

func (f fakeGateway) CheckConfig() error { return nil }

func (f fakeGateway) Upload(context.Context, platform.Request) (platform.Result, error) {
	return platform.Result{}, nil
}

func TestRegistryLookup(t *testing.T) {
	registry := platform.NewRegistry(fakeGateway{name: "YouTube"}, nil, fakeGateway{name: "reels"})

	if _, ok := registry.Lookup("youtube"); !ok {
		t.Fatal("expected case-insensitive lookup to succeed")
	}
	if _, ok := registry.Lookup(" Reels "); !ok {
		t.Fatal("expected trimmed lookup to succeed")
	}
	if _, ok := registry.Lookup("tiktok"); ok {
		t.Fatal("expected unknown platform to miss")
	}

	names := registry.Names()
	if len(names) != 2 || names[0] != "reels" || names[1] != "youtube" {
		t.Fatalf("unexpected names: %v", names)
	}
}

func TestUploadErrorUnwraps(t *testing.T) {
	base := errors.New("session expired")
	err := &platform.UploadError{Platform: "youtube", Operation: "upload", Err: base}
	if !errors.Is(err, base) {
		t.Fatal("expected Unwrap to expose base error")
	}
	if got := err.Error(); got != "youtube upload: session expired" {
		t.Fatalf("unexpected message: %q", got)
	}
}
