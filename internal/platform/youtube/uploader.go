package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"primetime/internal/config"
	"primetime/internal/logging"
	"primetime/internal/platform"
	"primetime/internal/services"
)

const (
	uploadEndpoint = "https://www.googleapis.com/upload/youtube/v3/videos?uploadType=resumable&part=snippet,status"

	maxTitleLen       = 100
	maxDescriptionLen = 5000
)

// Gateway publishes videos to YouTube through the resumable upload protocol.
type Gateway struct {
	cfg        config.YouTube
	tokens     *TokenManager
	httpClient *http.Client
	endpoint   string
	logger     *slog.Logger
}

// Option customizes the gateway.
type Option func(*Gateway)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(g *Gateway) {
		if client != nil {
			g.httpClient = client
		}
	}
}

// WithEndpoint overrides the resumable upload endpoint (tests).
func WithEndpoint(endpoint string) Option {
	return func(g *Gateway) {
		if endpoint != "" {
			g.endpoint = endpoint
		}
	}
}

// WithTokenEndpoint overrides the OAuth token endpoint (tests).
func WithTokenEndpoint(endpoint string) Option {
	return func(g *Gateway) {
		if endpoint != "" {
			g.tokens.endpoint = endpoint
		}
	}
}

// New builds a YouTube gateway from config.
func New(cfg config.YouTube, logger *slog.Logger, opts ...Option) *Gateway {
	gw := &Gateway{
		cfg:        cfg,
		tokens:     NewTokenManager(cfg.TokenDir, cfg.ClientID, cfg.ClientSecret),
		httpClient: &http.Client{Timeout: 10 * time.Minute},
		endpoint:   uploadEndpoint,
		logger:     logging.NewComponentLogger(logger, "youtube"),
	}
	for _, opt := range opts {
		opt(gw)
	}
	return gw
}

// Name identifies this gateway in the registry.
func (g *Gateway) Name() string { return platform.YouTube }

// SupportsDeferredPublish reports true: a future publish time uploads the
// video private with a publishAt timestamp.
func (g *Gateway) SupportsDeferredPublish() bool { return true }

// Tokens exposes the token manager for CLI channel inspection.
func (g *Gateway) Tokens() *TokenManager { return g.tokens }

// CheckConfig verifies the OAuth client and channel list are configured.
func (g *Gateway) CheckConfig() error {
	switch {
	case strings.TrimSpace(g.cfg.ClientID) == "" || strings.TrimSpace(g.cfg.ClientSecret) == "":
		return services.Wrap(services.ErrConfiguration, "youtube", "check config", "oauth client credentials missing", nil)
	case len(g.cfg.Channels) == 0:
		return services.Wrap(services.ErrConfiguration, "youtube", "check config", "no channels configured", nil)
	}
	return nil
}

// Upload publishes the staged file. A deferred PublishAt forces the video
// private; YouTube flips it public at the scheduled instant.
func (g *Gateway) Upload(ctx context.Context, req platform.Request) (platform.Result, error) {
	var empty platform.Result

	channel := strings.TrimSpace(req.Channel)
	if channel == "" {
		channel = g.cfg.DefaultChannel
	}
	if channel == "" {
		return empty, &platform.UploadError{
			Platform:  platform.YouTube,
			Operation: "resolve channel",
			Err:       services.Wrap(services.ErrConfiguration, "youtube", "upload", "no channel configured", nil),
		}
	}

	token, err := g.tokens.AccessToken(ctx, channel)
	if err != nil {
		return empty, &platform.UploadError{Platform: platform.YouTube, Operation: "token", Err: err}
	}

	info, err := os.Stat(req.FilePath)
	if err != nil {
		return empty, &platform.UploadError{Platform: platform.YouTube, Operation: "stat file", Err: err}
	}

	sessionURL, err := g.startSession(ctx, token, req, info.Size())
	if err != nil {
		return empty, &platform.UploadError{Platform: platform.YouTube, Operation: "start session", Err: err}
	}

	videoID, err := g.transferBytes(ctx, token, sessionURL, req.FilePath, info.Size())
	if err != nil {
		return empty, &platform.UploadError{Platform: platform.YouTube, Operation: "upload", Err: err}
	}

	g.logger.Info("video published",
		logging.String("channel", channel),
		logging.String("video_id", videoID),
	)
	return platform.Result{Link: "https://youtu.be/" + videoID}, nil
}

type videoResource struct {
	Snippet struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Tags        []string `json:"tags,omitempty"`
		CategoryID  string   `json:"categoryId"`
	} `json:"snippet"`
	Status struct {
		PrivacyStatus string `json:"privacyStatus"`
		PublishAt     string `json:"publishAt,omitempty"`
	} `json:"status"`
}

func (g *Gateway) startSession(ctx context.Context, token string, req platform.Request, size int64) (string, error) {
	var resource videoResource
	resource.Snippet.Title = truncate(req.Title, maxTitleLen)
	resource.Snippet.Description = truncate(req.Description, maxDescriptionLen)
	resource.Snippet.Tags = splitTags(req.Tags)
	resource.Snippet.CategoryID = g.cfg.Category

	resource.Status.PrivacyStatus = g.cfg.Privacy
	if req.PublishAt != nil {
		// Deferred publishing only works on private videos.
		resource.Status.PrivacyStatus = "private"
		resource.Status.PublishAt = req.PublishAt.UTC().Format(time.RFC3339)
	}

	body, err := json.Marshal(resource)
	if err != nil {
		return "", fmt.Errorf("encode video resource: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new session request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Content-Type", "application/json; charset=UTF-8")
	httpReq.Header.Set("X-Upload-Content-Length", fmt.Sprintf("%d", size))
	httpReq.Header.Set("X-Upload-Content-Type", "video/*")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("session request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apiError("session rejected", resp)
	}
	sessionURL := resp.Header.Get("Location")
	if sessionURL == "" {
		return "", errors.New("session response missing Location header")
	}
	return sessionURL, nil
}

func (g *Gateway) transferBytes(ctx context.Context, token, sessionURL, filePath string, size int64) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("open staged file: %w", err)
	}
	defer file.Close()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, sessionURL, file)
	if err != nil {
		return "", fmt.Errorf("new upload request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Content-Type", "video/*")
	httpReq.ContentLength = size

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", apiError("upload rejected", resp)
	}

	var payload struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if payload.ID == "" {
		return "", errors.New("upload response missing video id")
	}
	return payload.ID, nil
}

func apiError(message string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	detail := strings.TrimSpace(string(body))
	if detail == "" {
		detail = resp.Status
	}
	marker := services.ErrExternalService
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		marker = services.ErrConfiguration
	}
	return services.Wrap(marker, "youtube", "upload", fmt.Sprintf("%s (http %d): %s", message, resp.StatusCode, detail), nil)
}

func truncate(value string, limit int) string {
	runes := []rune(strings.TrimSpace(value))
	if len(runes) <= limit {
		return string(runes)
	}
	return string(runes[:limit])
}

func splitTags(tags string) []string {
	parts := strings.Split(tags, ",")
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}
