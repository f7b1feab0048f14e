// Package nex is the transport client for the Nex AI reasoning server. It
// sends the built conversation context and hands the raw payload back;
// interpretation belongs to the response package.
package nex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/NextShop-AI/assistant-go/conversation"

	"github.com/rs/zerolog/log"
)

// Request is the outbound conversational payload built before each send.
type Request struct {
	Query               string               `json:"query"`
	UserID              string               `json:"userId"`
	ConversationHistory []conversation.Entry `json:"conversationHistory"`
	UIHandlers          []HandlerContext     `json:"uiHandlers,omitempty"`
	AvailableCategories []string             `json:"availableCategories,omitempty"`
}

// requestClass splits requests into the long-running AI analysis class
// (extended timeout, single attempt) and ordinary requests (short timeout,
// bounded retries with exponential backoff).
type requestClass struct {
	timeout     time.Duration
	maxAttempts int
}

var (
	classAnalysis = requestClass{timeout: 90 * time.Second, maxAttempts: 1}
	classStandard = requestClass{timeout: 10 * time.Second, maxAttempts: 3}
)

const backoffBase = 500 * time.Millisecond

// Client talks to the Nex reasoning server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	categories []string
	handlers   []HandlerContext
}

// NewClient creates a Nex client advertising the given product categories.
func NewClient(baseURL string, httpClient http.Client, categories []string) Client {
	// Per-request timeouts come from the request class.
	httpClient.Timeout = 0
	return Client{
		baseURL:    baseURL,
		httpClient: &httpClient,
		categories: categories,
		handlers:   HandlerContexts(),
	}
}

// Converse sends one conversation turn and returns the raw response payload.
// Analysis-class request: one attempt under the extended timeout.
func (c *Client) Converse(ctx context.Context, req Request) (json.RawMessage, error) {
	req.UIHandlers = c.handlers
	if req.AvailableCategories == nil {
		req.AvailableCategories = c.categories
	}
	return c.send(ctx, http.MethodPost, "/api/assistant/reason", req, classAnalysis)
}

// Health checks backend reachability with the standard request class.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.send(ctx, http.MethodGet, "/health", nil, classStandard)
	return err
}

func (c *Client) send(ctx context.Context, method, path string, body any, class requestClass) (json.RawMessage, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt < class.maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := backoffBase << (attempt - 1)
			log.Warn().
				Err(lastErr).
				Str("path", path).
				Dur("backoff", backoff).
				Msg("Retrying Nex request")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		raw, retryable, err := c.attempt(ctx, method, path, payload, class.timeout)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return nil, lastErr
}

// attempt runs one request. 4xx responses and timeouts are not retryable.
func (c *Client) attempt(ctx context.Context, method, path string, payload []byte, timeout time.Duration) (json.RawMessage, bool, error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(reqCtx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// A cancelled turn (superseded send) must surface as such.
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, false, ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) || reqCtx.Err() != nil {
			return nil, false, fmt.Errorf("nex request timed out: %w", err)
		}
		return nil, true, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("failed to read response body: %w", err)
	}

	switch {
	case resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices:
		return responseBody, false, nil
	case resp.StatusCode >= http.StatusBadRequest && resp.StatusCode < http.StatusInternalServerError:
		return nil, false, fmt.Errorf("nex rejected request with status %d: %s", resp.StatusCode, responseBody)
	default:
		return nil, true, fmt.Errorf("nex returned status %d", resp.StatusCode)
	}
}
