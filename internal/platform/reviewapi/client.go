// Package reviewapi is the HTTP client for the external review store,
// the durable home of delivered review outcomes. The engine only ever
// talks to it in whole chunks: any transport error, timeout, non-2xx
// status, or malformed response marks the entire chunk as undelivered.
package reviewapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/renshu-app/renshu/internal/domain"
)

// ErrTransient marks delivery failures that are expected to succeed on a
// later retry: network trouble, timeouts, and server-side errors. The
// submission queue recovers from these by persisting the remainder
// offline; they are never surfaced to the user as hard failures.
var ErrTransient = errors.New("transient review store failure")

// batchRequest is the wire shape of POST /reviews:batch.
type batchRequest struct {
	Reviews []domain.ReviewInput `json:"reviews"`
}

// batchResponse is the acknowledged shape. Failed lists item IDs the
// store rejected. Only a fully-failed chunk is retried: retrying a
// partially-accepted chunk would redeliver the accepted items, so those
// rejections are logged and the chunk counts as delivered.
type batchResponse struct {
	Failed []string `json:"failed,omitempty"`
}

// Client submits review chunks to the review store.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a review store client. timeout bounds each request
// in addition to whatever deadline the caller's context carries; zero
// disables the client-level timeout.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("baseURL cannot be empty for reviewapi.Client")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With(slog.String("component", "review_store_client")),
	}
}

// SendChunk delivers one chunk of reviews, implementing
// submission.ChunkSender. A nil return means the whole chunk is
// acknowledged.
func (c *Client) SendChunk(ctx context.Context, reviews []domain.ReviewInput) error {
	payload, err := json.Marshal(batchRequest{Reviews: reviews})
	if err != nil {
		return fmt.Errorf("encode review batch: %w", err)
	}

	url := c.baseURL + "/reviews:batch"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build review batch request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn("failed to close review store response body", "error", closeErr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: review store returned %d", ErrTransient, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrTransient, err)
	}

	// An empty 2xx body is whole-batch success.
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	var ack batchResponse
	if err := json.Unmarshal(body, &ack); err != nil {
		return fmt.Errorf("%w: malformed response: %v", ErrTransient, err)
	}

	if len(ack.Failed) >= len(reviews) && len(reviews) > 0 {
		return fmt.Errorf("%w: store rejected the whole chunk (%d items)", ErrTransient, len(reviews))
	}

	if len(ack.Failed) > 0 {
		// Partially accepted: retrying would redeliver the accepted
		// items, so the rejections are final.
		c.logger.Warn("review store rejected some items, not retrying",
			"rejected", len(ack.Failed),
			"chunk_size", len(reviews))
	}

	return nil
}
