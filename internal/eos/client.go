package eos

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"eos-swap-lab/internal/domain"
)

// DefaultEndpoint is the public Greymass v1 history endpoint.
const DefaultEndpoint = "https://eos.greymass.com/v1/history/get_actions"

// Default configuration values.
const (
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3
	DefaultRetryDelay = 2 * time.Second
	DefaultMaxDelay   = 30 * time.Second
	DefaultPageSize   = 100
)

// Client fetches paginated account history over HTTP.
// A page is requested by feed position; an empty page means the history is
// exhausted at that position, not an error.
type Client struct {
	endpoint   string
	client     *http.Client
	maxRetries int
	retryDelay time.Duration
	maxDelay   time.Duration
	now        func() time.Time
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts for transient failures.
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets the base retry delay. The delay grows linearly with the
// attempt index and is capped by WithMaxDelay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		c.retryDelay = d
	}
}

// WithMaxDelay sets the maximum retry delay.
func WithMaxDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		c.maxDelay = d
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// WithClock sets a custom clock, used to stamp ProcessedAt deterministically.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a new history client for the given endpoint.
func NewClient(endpoint string, opts ...ClientOption) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		endpoint:   endpoint,
		client:     &http.Client{Timeout: DefaultTimeout},
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
		maxDelay:   DefaultMaxDelay,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetActions fetches one page of account history starting at pos and flattens
// each action trace into a domain.RawAction. An empty slice with a nil error
// signals end of available history.
func (c *Client) GetActions(ctx context.Context, account string, pos, offset int64) ([]*domain.RawAction, error) {
	body, err := json.Marshal(getActionsRequest{
		AccountName: account,
		Pos:         pos,
		Offset:      offset,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	respBody, err := c.post(ctx, body)
	if err != nil {
		return nil, err
	}

	var resp getActionsResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	actions := make([]*domain.RawAction, 0, len(resp.Actions))
	for _, raw := range resp.Actions {
		action, err := c.flatten(raw)
		if err != nil {
			return nil, fmt.Errorf("flatten action at position %d: %w", pos, err)
		}
		actions = append(actions, action)
	}
	return actions, nil
}

// post performs the HTTP request with bounded retries and increasing backoff.
// Each failed attempt waits attempt*retryDelay, capped at maxDelay.
func (c *Client) post(ctx context.Context, body []byte) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(attempt) * c.retryDelay
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (429)")
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
			continue
		}

		return respBody, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// flatten extracts the columns the ledger store persists from one raw action
// envelope. Payload fields of non-transfer actions are left empty.
func (c *Client) flatten(raw json.RawMessage) (*domain.RawAction, error) {
	var env actionEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("unmarshal action envelope: %w", err)
	}

	var data transferData
	if len(env.ActionTrace.Act.Data) > 0 {
		// Best effort: non-transfer payloads simply don't match these fields.
		_ = json.Unmarshal(env.ActionTrace.Act.Data, &data)
	}

	var actor string
	if len(env.ActionTrace.Act.Authorization) > 0 {
		actor = env.ActionTrace.Act.Authorization[0].Actor
	}

	return &domain.RawAction{
		GlobalSeq:   env.GlobalActionSeq,
		BlockNum:    env.BlockNum,
		BlockTime:   env.BlockTime,
		TrxID:       env.ActionTrace.TrxID,
		Actor:       actor,
		ActionName:  env.ActionTrace.Act.Name,
		From:        data.From,
		To:          data.To,
		Memo:        data.Memo,
		Quantity:    data.Quantity,
		Contract:    env.ActionTrace.Act.Account,
		RawData:     string(raw),
		ProcessedAt: c.now().Format(time.RFC3339),
	}, nil
}
