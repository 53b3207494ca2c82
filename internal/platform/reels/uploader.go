package reels

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"primetime/internal/config"
	"primetime/internal/logging"
	"primetime/internal/platform"
	"primetime/internal/services"
)

const (
	defaultGraphBaseURL = "https://graph.facebook.com"

	// The upload host needs a moment to propagate bytes before finish
	// succeeds reliably.
	propagationDelay = 3 * time.Second
)

// Gateway publishes videos as Facebook Reels through the three-phase
// upload handshake.
type Gateway struct {
	cfg     config.Reels
	client  *resty.Client
	baseURL string
	sleeper func(context.Context, time.Duration) error
	logger  *slog.Logger
}

// Option customizes the gateway.
type Option func(*Gateway)

// WithBaseURL overrides the Graph API base URL (tests).
func WithBaseURL(baseURL string) Option {
	return func(g *Gateway) {
		if baseURL != "" {
			g.baseURL = strings.TrimSuffix(baseURL, "/")
		}
	}
}

// WithSleeper overrides the propagation delay wait (tests).
func WithSleeper(sleeper func(context.Context, time.Duration) error) Option {
	return func(g *Gateway) {
		if sleeper != nil {
			g.sleeper = sleeper
		}
	}
}

// New builds a Reels gateway from config.
func New(cfg config.Reels, logger *slog.Logger, opts ...Option) *Gateway {
	gw := &Gateway{
		cfg: cfg,
		client: resty.New().
			SetTimeout(10 * time.Minute).
			SetHeader("Accept", "application/json"),
		baseURL: defaultGraphBaseURL,
		sleeper: sleepContext,
		logger:  logging.NewComponentLogger(logger, "reels"),
	}
	for _, opt := range opts {
		opt(gw)
	}
	return gw
}

// Name identifies this gateway in the registry.
func (g *Gateway) Name() string { return platform.Reels }

// SupportsDeferredPublish reports false: reels publish immediately on finish.
func (g *Gateway) SupportsDeferredPublish() bool { return false }

// CheckConfig verifies the page and access token are configured.
func (g *Gateway) CheckConfig() error {
	if strings.TrimSpace(g.cfg.PageID) == "" || strings.TrimSpace(g.cfg.AccessToken) == "" {
		return services.Wrap(services.ErrConfiguration, "reels", "check config", "page id or access token missing", nil)
	}
	return nil
}

// Upload runs the start/transfer/finish handshake and returns the reel link.
// Reels have no deferred publishing; PublishAt is ignored and the video goes
// live on finish.
func (g *Gateway) Upload(ctx context.Context, req platform.Request) (platform.Result, error) {
	var empty platform.Result

	info, err := os.Stat(req.FilePath)
	if err != nil {
		return empty, &platform.UploadError{Platform: platform.Reels, Operation: "stat file", Err: err}
	}

	videoID, uploadURL, err := g.startUpload(ctx)
	if err != nil {
		return empty, &platform.UploadError{Platform: platform.Reels, Operation: "start", Err: err}
	}

	if err := g.transferBytes(ctx, uploadURL, req.FilePath, info.Size()); err != nil {
		return empty, &platform.UploadError{Platform: platform.Reels, Operation: "transfer", Err: err}
	}

	if err := g.sleeper(ctx, propagationDelay); err != nil {
		return empty, &platform.UploadError{Platform: platform.Reels, Operation: "transfer", Err: err}
	}

	if err := g.finishUpload(ctx, videoID, req.Description); err != nil {
		return empty, &platform.UploadError{Platform: platform.Reels, Operation: "finish", Err: err}
	}

	g.logger.Info("reel published", logging.String("video_id", videoID))
	return platform.Result{Link: "https://www.facebook.com/reel/" + videoID}, nil
}

func (g *Gateway) reelsEndpoint() string {
	return fmt.Sprintf("%s/%s/%s/video_reels", g.baseURL, g.cfg.APIVersion, g.cfg.PageID)
}

func (g *Gateway) startUpload(ctx context.Context) (videoID, uploadURL string, err error) {
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"upload_phase": "start",
			"access_token": g.cfg.AccessToken,
		}).
		Post(g.reelsEndpoint())
	if err != nil {
		return "", "", fmt.Errorf("start request: %w", err)
	}
	if resp.StatusCode() >= 300 {
		return "", "", graphError("start rejected", resp)
	}

	var payload struct {
		VideoID   string `json:"video_id"`
		UploadURL string `json:"upload_url"`
	}
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return "", "", fmt.Errorf("decode start response: %w", err)
	}
	if payload.VideoID == "" || payload.UploadURL == "" {
		return "", "", errors.New("start response missing video_id or upload_url")
	}
	return payload.VideoID, payload.UploadURL, nil
}

func (g *Gateway) transferBytes(ctx context.Context, uploadURL, filePath string, size int64) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open staged file: %w", err)
	}
	defer file.Close()

	resp, err := g.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "OAuth "+g.cfg.AccessToken).
		SetHeader("offset", "0").
		SetHeader("file_size", fmt.Sprintf("%d", size)).
		SetContentLength(true).
		SetBody(file).
		Post(uploadURL)
	if err != nil {
		return fmt.Errorf("transfer request: %w", err)
	}
	if resp.StatusCode() >= 300 {
		return graphError("transfer rejected", resp)
	}
	return nil
}

func (g *Gateway) finishUpload(ctx context.Context, videoID, description string) error {
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"upload_phase": "finish",
			"video_id":     videoID,
			"video_state":  "PUBLISHED",
			"description":  description,
			"access_token": g.cfg.AccessToken,
		}).
		Post(g.reelsEndpoint())
	if err != nil {
		return fmt.Errorf("finish request: %w", err)
	}
	if resp.StatusCode() >= 300 {
		return graphError("finish rejected", resp)
	}

	var payload struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return fmt.Errorf("decode finish response: %w", err)
	}
	if !payload.Success {
		return errors.New("finish reported success=false")
	}
	return nil
}

func graphError(message string, resp *resty.Response) error {
	var payload struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    int    `json:"code"`
		} `json:"error"`
	}
	detail := strings.TrimSpace(string(resp.Body()))
	if err := json.Unmarshal(resp.Body(), &payload); err == nil && payload.Error.Message != "" {
		detail = fmt.Sprintf("%s (type=%s code=%d)", payload.Error.Message, payload.Error.Type, payload.Error.Code)
	}
	marker := services.ErrExternalService
	if (resp.StatusCode() == 400 && strings.Contains(detail, "OAuth")) || resp.StatusCode() == 401 || resp.StatusCode() == 403 {
		marker = services.ErrConfiguration
	}
	return services.Wrap(marker, "reels", "upload", fmt.Sprintf("%s (http %d): %s", message, resp.StatusCode(), detail), nil)
}

func sleepContext(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
