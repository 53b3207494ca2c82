package api

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client talks to a running daemon's HTTP API.
type Client struct {
	client *resty.Client
}

// NewClient builds a client for the daemon listening at baseURL. The token is
// optional; when set it is sent as a bearer token.
func NewClient(baseURL, token string) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(2 * time.Minute).
		SetHeader("Accept", "application/json")
	if token != "" {
		client.SetAuthToken(token)
	}
	return &Client{client: client}
}

// Status fetches the daemon status.
func (c *Client) Status(ctx context.Context) (StatusResponse, error) {
	var (
		status StatusResponse
		apiErr ErrorResponse
	)
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&status).
		SetError(&apiErr).
		Get("/api/status")
	if err := requestError("status", resp, err, apiErr); err != nil {
		return StatusResponse{}, err
	}
	return status, nil
}

// Queue lists queue items, optionally filtered by status.
func (c *Client) Queue(ctx context.Context, status string) ([]QueueItem, error) {
	var (
		list   QueueListResponse
		apiErr ErrorResponse
	)
	req := c.client.R().
		SetContext(ctx).
		SetResult(&list).
		SetError(&apiErr)
	if status != "" {
		req.SetQueryParam("status", status)
	}
	resp, err := req.Get("/api/queue")
	if err := requestError("queue", resp, err, apiErr); err != nil {
		return nil, err
	}
	return list.Items, nil
}

// QueueItem fetches a single queue item.
func (c *Client) QueueItem(ctx context.Context, id int64) (QueueItem, error) {
	var (
		wrapper QueueItemResponse
		apiErr  ErrorResponse
	)
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&wrapper).
		SetError(&apiErr).
		Get("/api/queue/" + strconv.FormatInt(id, 10))
	if err := requestError("queue item", resp, err, apiErr); err != nil {
		return QueueItem{}, err
	}
	return wrapper.Item, nil
}

// Cycle asks the daemon to run a publishing cycle.
func (c *Client) Cycle(ctx context.Context, platform string, force bool) (CycleResponse, error) {
	var (
		cycle  CycleResponse
		apiErr ErrorResponse
	)
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(CycleRequest{Platform: platform, Force: force}).
		SetResult(&cycle).
		SetError(&apiErr).
		Post("/api/cycle")
	if err := requestError("cycle", resp, err, apiErr); err != nil {
		return CycleResponse{}, err
	}
	return cycle, nil
}

// Retry resets a failed queue item to pending.
func (c *Client) Retry(ctx context.Context, id int64) (RetryResponse, error) {
	var (
		retry  RetryResponse
		apiErr ErrorResponse
	)
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&retry).
		SetError(&apiErr).
		Post("/api/queue/" + strconv.FormatInt(id, 10) + "/retry")
	if err := requestError("retry", resp, err, apiErr); err != nil {
		return RetryResponse{}, err
	}
	return retry, nil
}

func requestError(operation string, resp *resty.Response, err error, apiErr ErrorResponse) error {
	if err != nil {
		return fmt.Errorf("%s request: %w", operation, err)
	}
	if resp.IsError() {
		if apiErr.Error != "" {
			return fmt.Errorf("%s request: %s", operation, apiErr.Error)
		}
		return fmt.Errorf("%s request: unexpected status %s", operation, resp.Status())
	}
	return nil
}
