// Package client implements the HTTP transport against the remote metrics
// collector: the once-per-tick snapshot fetch and the four recording-session
// commands. The client is stateless; retry policy belongs to the caller.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	// userAgent identifies resource-pulse in request headers.
	userAgent = "resource-pulse/1.0"

	// defaultTimeout bounds every request to one polling period, so a hung
	// collector surfaces as a network failure instead of a stalled tick.
	defaultTimeout = 1 * time.Second

	// maxResponseBytes limits snapshot and command response bodies to
	// prevent unbounded reads. Report downloads are streamed and exempt.
	maxResponseBytes = 1 << 20 // 1 MiB
)

// Client talks to one collector instance. All methods are safe for
// concurrent use; the client holds no request state.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// New creates a Client for the collector at baseURL (e.g.
// "http://localhost:5000"). A zero timeout falls back to one polling
// period. A nil logger discards diagnostics.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

// errorEnvelope is the collector's failure body shape.
type errorEnvelope struct {
	Error string `json:"error"`
}

// do performs one request/response cycle and returns the raw body. Any
// transport-level failure is mapped onto the TransportError taxonomy; a
// server-reported "error" field takes precedence over HTTP status.
func (c *Client) do(ctx context.Context, method, path, op string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, &TransportError{Kind: ErrNetwork, Op: op, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Kind: ErrNetwork, Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &TransportError{Kind: ErrNetwork, Op: op, Err: err}
	}

	// The collector reports logical failures as {"error": "..."} with a
	// non-2xx status. Surface those as application errors; anything else
	// unexpected is a protocol error.
	var envelope errorEnvelope
	if json.Unmarshal(body, &envelope) == nil && envelope.Error != "" {
		return nil, &TransportError{Kind: ErrApplication, Op: op, Msg: envelope.Error}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{
			Kind: ErrProtocol,
			Op:   op,
			Err:  fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	return body, nil
}
