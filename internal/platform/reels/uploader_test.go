package reels_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"primetime/internal/config"
	"primetime/internal/platform"
	"primetime/internal/platform/reels"
)

func stageFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, []byte("reel bytes"), 0o644); err != nil {
		t.Fatalf("write staged file: %v", err)
	}
	return path
}

func noSleep(context.Context, time.Duration) error { return nil }

func TestUploadThreePhaseHandshake(t *testing.T) {
	var transferAuth, transferOffset, transferSize string
	var finishQuery map[string]string

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/v23.0/12345/video_reels", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("upload_phase") {
		case "start":
			io.WriteString(w, `{"video_id":"reel789","upload_url":"`+server.URL+`/rupload"}`)
		case "finish":
			finishQuery = map[string]string{
				"video_id":    r.URL.Query().Get("video_id"),
				"video_state": r.URL.Query().Get("video_state"),
				"description": r.URL.Query().Get("description"),
			}
			io.WriteString(w, `{"success":true}`)
		default:
			t.Errorf("unexpected upload_phase: %q", r.URL.Query().Get("upload_phase"))
		}
	})
	mux.HandleFunc("/rupload", func(w http.ResponseWriter, r *http.Request) {
		transferAuth = r.Header.Get("Authorization")
		transferOffset = r.Header.Get("offset")
		transferSize = r.Header.Get("file_size")
		body, _ := io.ReadAll(r.Body)
		if string(body) != "reel bytes" {
			t.Errorf("unexpected transfer body: %q", body)
		}
		io.WriteString(w, `{"success":true}`)
	})

	gw := reels.New(
		config.Reels{PageID: "12345", AccessToken: "page-token", APIVersion: "v23.0"},
		nil,
		reels.WithBaseURL(server.URL),
		reels.WithSleeper(noSleep),
	)

	result, err := gw.Upload(context.Background(), platform.Request{
		FilePath:    stageFile(t),
		Title:       "ignored by reels",
		Description: "A sunny day.",
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if result.Link != "https://www.facebook.com/reel/reel789" {
		t.Fatalf("unexpected link: %q", result.Link)
	}
	if transferAuth != "OAuth page-token" {
		t.Fatalf("unexpected transfer auth: %q", transferAuth)
	}
	if transferOffset != "0" || transferSize != "10" {
		t.Fatalf("unexpected transfer headers: offset=%q file_size=%q", transferOffset, transferSize)
	}
	if finishQuery["video_id"] != "reel789" || finishQuery["video_state"] != "PUBLISHED" {
		t.Fatalf("unexpected finish query: %v", finishQuery)
	}
	if finishQuery["description"] != "A sunny day." {
		t.Fatalf("unexpected description: %q", finishQuery["description"])
	}
}

func TestUploadDecodesGraphError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":{"message":"Invalid OAuth access token","type":"OAuthException","code":190}}`)
	}))
	defer server.Close()

	gw := reels.New(
		config.Reels{PageID: "12345", AccessToken: "bad", APIVersion: "v23.0"},
		nil,
		reels.WithBaseURL(server.URL),
		reels.WithSleeper(noSleep),
	)

	_, err := gw.Upload(context.Background(), platform.Request{FilePath: stageFile(t)})
	if err == nil {
		t.Fatal("expected error")
	}
	var uploadErr *platform.UploadError
	if !errors.As(err, &uploadErr) {
		t.Fatalf("expected UploadError, got %T", err)
	}
	if uploadErr.Operation != "start" {
		t.Fatalf("unexpected operation: %q", uploadErr.Operation)
	}
	if !strings.Contains(err.Error(), "Invalid OAuth access token") || !strings.Contains(err.Error(), "code=190") {
		t.Fatalf("expected decoded graph error, got %q", err.Error())
	}
}

func TestUploadFinishFailureSurfaces(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/v23.0/12345/video_reels", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("upload_phase") {
		case "start":
			io.WriteString(w, `{"video_id":"reel1","upload_url":"`+server.URL+`/rupload"}`)
		case "finish":
			io.WriteString(w, `{"success":false}`)
		}
	})
	mux.HandleFunc("/rupload", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":true}`)
	})

	gw := reels.New(
		config.Reels{PageID: "12345", AccessToken: "tok", APIVersion: "v23.0"},
		nil,
		reels.WithBaseURL(server.URL),
		reels.WithSleeper(noSleep),
	)

	_, err := gw.Upload(context.Background(), platform.Request{FilePath: stageFile(t)})
	if err == nil {
		t.Fatal("expected error for success=false")
	}
	var uploadErr *platform.UploadError
	if !errors.As(err, &uploadErr) || uploadErr.Operation != "finish" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUploadMissingFile(t *testing.T) {
	gw := reels.New(
		config.Reels{PageID: "12345", AccessToken: "tok", APIVersion: "v23.0"},
		nil,
		reels.WithSleeper(noSleep),
	)
	if _, err := gw.Upload(context.Background(), platform.Request{FilePath: "/nope.mp4"}); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestCheckConfig(t *testing.T) {
	complete := reels.New(config.Reels{PageID: "12345", AccessToken: "tok"}, nil)
	if err := complete.CheckConfig(); err != nil {
		t.Fatalf("expected complete config to pass, got %v", err)
	}
	missing := reels.New(config.Reels{PageID: "12345"}, nil)
	if err := missing.CheckConfig(); err == nil {
		t.Fatal("expected a missing access token to fail")
	}
}
