package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"primetime/internal/config"
)

// Bot API allows roughly one message per second per chat; the limiter keeps
// bursts of notifications from tripping 429s.
const sendRatePerSecond = 1

// Client is a minimal Telegram Bot API client covering long polling, message
// sending, and file downloads.
type Client struct {
	token    string
	baseURL  string
	client   *resty.Client
	limiter  *rate.Limiter
	pollWait int
}

// Option customizes the client.
type Option func(*Client)

// WithBaseURL overrides the API base URL (tests).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimSuffix(baseURL, "/")
		}
	}
}

// NewClient builds a client from Telegram config.
func NewClient(cfg config.Telegram, opts ...Option) *Client {
	client := &Client{
		token:   cfg.BotToken,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		client: resty.New().
			SetTimeout(time.Duration(cfg.RequestTimeout+cfg.PollSeconds) * time.Second).
			SetHeader("Accept", "application/json"),
		limiter:  rate.NewLimiter(rate.Limit(sendRatePerSecond), 2),
		pollWait: cfg.PollSeconds,
	}
	if client.baseURL == "" {
		client.baseURL = "https://api.telegram.org"
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

func (c *Client) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
}

type apiEnvelope struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
	ErrorCode   int             `json:"error_code"`
}

func decodeEnvelope(resp *resty.Response, method string, target any) error {
	var envelope apiEnvelope
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return fmt.Errorf("telegram %s: decode response: %w", method, err)
	}
	if !envelope.OK {
		return fmt.Errorf("telegram %s: api error %d: %s", method, envelope.ErrorCode, envelope.Description)
	}
	if target == nil {
		return nil
	}
	if err := json.Unmarshal(envelope.Result, target); err != nil {
		return fmt.Errorf("telegram %s: decode result: %w", method, err)
	}
	return nil
}

// GetUpdates long-polls for new updates past the given offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64) ([]Update, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"offset":  strconv.FormatInt(offset, 10),
			"timeout": strconv.Itoa(c.pollWait),
		}).
		Get(c.methodURL("getUpdates"))
	if err != nil {
		return nil, fmt.Errorf("telegram getUpdates: %w", err)
	}

	var updates []Update
	if err := decodeEnvelope(resp, "getUpdates", &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// SendMessage delivers text to a chat, pacing sends through the rate limiter.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("telegram sendMessage: %w", err)
	}
	resp, err := c.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"chat_id": strconv.FormatInt(chatID, 10),
			"text":    text,
		}).
		Post(c.methodURL("sendMessage"))
	if err != nil {
		return fmt.Errorf("telegram sendMessage: %w", err)
	}
	return decodeEnvelope(resp, "sendMessage", nil)
}

// GetFile resolves a file_id into a downloadable path.
func (c *Client) GetFile(ctx context.Context, fileID string) (File, error) {
	var file File
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("file_id", fileID).
		Get(c.methodURL("getFile"))
	if err != nil {
		return file, fmt.Errorf("telegram getFile: %w", err)
	}
	if err := decodeEnvelope(resp, "getFile", &file); err != nil {
		return file, err
	}
	if file.FilePath == "" {
		return file, fmt.Errorf("telegram getFile: result has no file_path")
	}
	return file, nil
}

// DownloadFile streams a resolved file into destPath.
func (c *Client) DownloadFile(ctx context.Context, filePath, destPath string) error {
	url := fmt.Sprintf("%s/file/bot%s/%s", c.baseURL, c.token, filePath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("telegram download: new request: %w", err)
	}
	resp, err := c.client.GetClient().Do(req)
	if err != nil {
		return fmt.Errorf("telegram download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram download: http %d", resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("telegram download: create directory: %w", err)
	}
	file, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("telegram download: create file: %w", err)
	}
	defer file.Close()
	if _, err := io.Copy(file, resp.Body); err != nil {
		return fmt.Errorf("telegram download: write file: %w", err)
	}
	return nil
}
