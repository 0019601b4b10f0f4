package client

import (
	"context"
	"encoding/json"
	"net/http"

	"gitlab.com/tinyland/lab/resource-pulse/metrics"
)

// FetchSnapshot performs one GET /api/resources cycle and returns the parsed
// snapshot. It issues exactly one request with no internal retry; failures
// are classified by the TransportError taxonomy.
func (c *Client) FetchSnapshot(ctx context.Context) (*metrics.Snapshot, error) {
	const op = "fetch snapshot"

	body, err := c.do(ctx, http.MethodGet, "/api/resources", op)
	if err != nil {
		return nil, err
	}

	var snap metrics.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, &TransportError{Kind: ErrProtocol, Op: op, Err: err}
	}

	c.logger.Debug("fetched snapshot",
		"cpu_percent", snap.CPU.Percent,
		"recording", snap.Recording,
	)
	return &snap, nil
}
