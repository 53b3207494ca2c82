package metadata_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"primetime/internal/metadata"
)

func completionBody(t *testing.T, content string) []byte {
	t.Helper()
	payload := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal completion: %v", err)
	}
	return data
}

func TestGenerateParsesModelResponse(t *testing.T) {
	var authHeader atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader.Store(r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write(completionBody(t, `{"title":"Beach Day Highlights","description":"A sunny day.","tags":["beach","summer"]}`))
	}))
	defer server.Close()

	client := metadata.NewClient(metadata.Config{
		APIKey:  "key",
		BaseURL: server.URL,
		Model:   "test-model",
	})

	got, err := client.Generate(context.Background(), "beach_day.mp4", "a day at the beach")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got.Title != "Beach Day Highlights" {
		t.Fatalf("unexpected title: %q", got.Title)
	}
	if got.Description != "A sunny day." {
		t.Fatalf("unexpected description: %q", got.Description)
	}
	if got.Tags != "beach,summer" {
		t.Fatalf("unexpected tags: %q", got.Tags)
	}
	if auth, _ := authHeader.Load().(string); auth != "Bearer key" {
		t.Fatalf("unexpected auth header: %q", auth)
	}
}

func TestGenerateStripsCodeFences(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(completionBody(t, "```json\n{\"title\":\"Clip\",\"description\":\"d\",\"tags\":[\"video\"]}\n```"))
	}))
	defer server.Close()

	client := metadata.NewClient(metadata.Config{APIKey: "key", BaseURL: server.URL, Model: "m"})
	got, err := client.Generate(context.Background(), "clip.mp4", "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got.Title != "Clip" {
		t.Fatalf("unexpected title: %q", got.Title)
	}
}

func TestGenerateRetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "overloaded", http.StatusInternalServerError)
			return
		}
		w.Write(completionBody(t, `{"title":"Clip","description":"d","tags":["video"]}`))
	}))
	defer server.Close()

	client := metadata.NewClient(
		metadata.Config{APIKey: "key", BaseURL: server.URL, Model: "m"},
		metadata.WithRetryBackoff(time.Millisecond, time.Millisecond),
		metadata.WithSleeper(func(time.Duration) {}),
	)

	if _, err := client.Generate(context.Background(), "clip.mp4", ""); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got %d", calls.Load())
	}
}

func TestGenerateDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer server.Close()

	client := metadata.NewClient(
		metadata.Config{APIKey: "key", BaseURL: server.URL, Model: "m"},
		metadata.WithSleeper(func(time.Duration) {}),
	)

	if _, err := client.Generate(context.Background(), "clip.mp4", ""); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected single call, got %d", calls.Load())
	}
}

func TestGenerateRequiresAPIKey(t *testing.T) {
	client := metadata.NewClient(metadata.Config{Model: "m"})
	if _, err := client.Generate(context.Background(), "clip.mp4", ""); err == nil {
		t.Fatal("expected error without api key")
	}
}

func TestDecodeJSONHandlesLeadingProse(t *testing.T) {
	var parsed struct {
		Title string `json:"title"`
	}
	err := metadata.DecodeJSON("Here is the metadata: {\"title\":\"X\"}", &parsed)
	if err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	if parsed.Title != "X" {
		t.Fatalf("unexpected title: %q", parsed.Title)
	}
}
