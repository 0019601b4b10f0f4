package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
)

// StartResult reports the outcome of a start-recording command.
type StartResult struct {
	// AlreadyActive is true when the server reported a recording already in
	// progress. The controller treats this as an idempotent start, not a
	// failure.
	AlreadyActive bool
	// DurationSec is the server-configured capture window, when reported.
	DurationSec float64
}

// startResponse is the raw POST /api/start-recording body.
type startResponse struct {
	Status   string  `json:"status"`
	Duration float64 `json:"duration"`
}

// StartRecording asks the collector to begin a capture window. A status
// other than "started" means a session is already active; per the
// collector's contract that is a no-op, never a rejection.
func (c *Client) StartRecording(ctx context.Context) (StartResult, error) {
	const op = "start recording"

	body, err := c.do(ctx, http.MethodPost, "/api/start-recording", op)
	if err != nil {
		return StartResult{}, err
	}

	var resp startResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return StartResult{}, &TransportError{Kind: ErrProtocol, Op: op, Err: err}
	}

	res := StartResult{
		AlreadyActive: resp.Status != "started",
		DurationSec:   resp.Duration,
	}
	c.logger.Debug("start recording", "status", resp.Status, "already_active", res.AlreadyActive)
	return res, nil
}

// stopResponse is the raw POST /api/stop-recording body.
type stopResponse struct {
	Status  string `json:"status"`
	Samples int    `json:"samples"`
}

// StopRecording ends the active capture window and returns the number of
// samples the server collected. Any status other than "stopped" is a
// CommandError.
func (c *Client) StopRecording(ctx context.Context) (int, error) {
	const op = "stop recording"

	body, err := c.do(ctx, http.MethodPost, "/api/stop-recording", op)
	if err != nil {
		return 0, err
	}

	var resp stopResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, &TransportError{Kind: ErrProtocol, Op: op, Err: err}
	}
	if resp.Status != "stopped" {
		return 0, &CommandError{Op: op, Status: resp.Status}
	}

	c.logger.Debug("stopped recording", "samples", resp.Samples)
	return resp.Samples, nil
}

// generateResponse is the raw POST /api/generate-report body.
type generateResponse struct {
	Status   string `json:"status"`
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

// GenerateReport asks the collector to render the recorded samples into a
// report and returns the server-side filename. Any status other than
// "success" is a CommandError carrying the server's message.
func (c *Client) GenerateReport(ctx context.Context) (string, error) {
	const op = "generate report"

	body, err := c.do(ctx, http.MethodPost, "/api/generate-report", op)
	if err != nil {
		return "", err
	}

	var resp generateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &TransportError{Kind: ErrProtocol, Op: op, Err: err}
	}
	if resp.Status != "success" || resp.Filename == "" {
		return "", &CommandError{Op: op, Status: resp.Status, Msg: resp.Error}
	}

	c.logger.Debug("report generated", "filename", resp.Filename)
	return resp.Filename, nil
}

// DownloadReport streams GET /api/download-report/{filename} into destDir
// and returns the local path. The write is atomic: the stream lands in a
// temp file which is renamed into place only on success.
func (c *Client) DownloadReport(ctx context.Context, filename, destDir string) (string, error) {
	const op = "download report"

	if filename == "" {
		return "", &TransportError{Kind: ErrProtocol, Op: op, Err: fmt.Errorf("empty filename")}
	}

	path := "/api/download-report/" + url.PathEscape(filename)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return "", &TransportError{Kind: ErrNetwork, Op: op, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &TransportError{Kind: ErrNetwork, Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		var envelope errorEnvelope
		if json.Unmarshal(body, &envelope) == nil && envelope.Error != "" {
			return "", &TransportError{Kind: ErrApplication, Op: op, Msg: envelope.Error}
		}
		return "", &TransportError{
			Kind: ErrProtocol,
			Op:   op,
			Err:  fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("client: create download directory: %w", err)
	}

	tmp, err := os.CreateTemp(destDir, ".tmp-"+filepath.Base(filename)+"-*")
	if err != nil {
		return "", fmt.Errorf("client: create temp file: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		return "", &TransportError{Kind: ErrNetwork, Op: op, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("client: close temp file: %w", err)
	}

	dest := filepath.Join(destDir, filepath.Base(filename))
	if err := os.Rename(tmpName, dest); err != nil {
		return "", fmt.Errorf("client: rename download: %w", err)
	}

	success = true
	c.logger.Info("report downloaded", "path", dest)
	return dest, nil
}
