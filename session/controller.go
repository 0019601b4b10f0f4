// Package session mirrors the collector's recording-session workflow on the
// client. The remote process is only partially observable: its state arrives
// passively through snapshot fields and actively through command results.
// The Controller reconciles the two channels into a single state variable
// with last-writer-wins semantics.
package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"gitlab.com/tinyland/lab/resource-pulse/client"
	"gitlab.com/tinyland/lab/resource-pulse/metrics"
)

// State is the client's view of the remote recording session.
type State int

const (
	// StateIdle means no capture window has been observed or requested.
	StateIdle State = iota
	// StateRecording means a capture window is active on the server.
	StateRecording
	// StateStopped means a capture window ended (command or auto-complete)
	// and its samples are available for report generation.
	StateStopped
	// StateReportReady means a report was generated and can be downloaded.
	StateReportReady
)

// String returns the human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateStopped:
		return "stopped"
	case StateReportReady:
		return "report_ready"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Commander issues recording commands against the collector. *client.Client
// satisfies it; tests substitute fakes.
type Commander interface {
	StartRecording(ctx context.Context) (client.StartResult, error)
	StopRecording(ctx context.Context) (int, error)
	GenerateReport(ctx context.Context) (string, error)
	DownloadReport(ctx context.Context, filename, destDir string) (string, error)
}

// Controller owns the RecordingSession state. It is mutated from two
// goroutines (the poll loop's Observe and the UI's command requests), so all
// state access is mutex-guarded. A command's effect may be briefly
// overwritten by an in-flight snapshot and re-confirmed on the next tick;
// that is accepted eventual consistency within one polling period.
type Controller struct {
	commander Commander
	logger    *slog.Logger

	mu             sync.Mutex
	state          State
	elapsedSec     float64
	durationSec    float64
	sampleCount    int
	reportFilename string
}

// NewController creates a Controller in StateIdle. A nil logger discards
// diagnostics.
func NewController(commander Commander, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Controller{
		commander: commander,
		logger:    logger,
	}
}

// Observe folds the recording fields of one snapshot into the session state.
// Called by the poll loop on every successful tick.
func (c *Controller) Observe(snap *metrics.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.elapsedSec = snap.RecordingElapsed
	if snap.RecordingDuration > 0 {
		c.durationSec = snap.RecordingDuration
	}
	c.sampleCount = snap.RecordedCount

	switch {
	case snap.Recording && c.state != StateRecording:
		// A capture window is active, whether started by this client or
		// observed independently. A new window supersedes any old report.
		c.transition(StateRecording, "observed active recording")
		c.reportFilename = ""
	case !snap.Recording && c.state == StateRecording:
		c.transition(StateStopped, "observed recording end")
	}

	// Auto-completion is detected purely from snapshot data: once the
	// elapsed time reaches the capture window, the session is over even if
	// the server has not yet flipped the recording flag.
	if c.state == StateRecording && c.durationSec > 0 && c.elapsedSec >= c.durationSec {
		c.transition(StateStopped, "capture window elapsed")
	}
}

// RequestStart issues the start command. A server-side "already active"
// response is an idempotent start: the controller still lands in
// StateRecording and no error reaches the caller. Command failures leave
// the state unchanged.
func (c *Controller) RequestStart(ctx context.Context) error {
	res, err := c.commander.StartRecording(ctx)
	if err != nil {
		c.logger.Warn("start recording failed", "error", err)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if res.DurationSec > 0 {
		c.durationSec = res.DurationSec
	}
	if !res.AlreadyActive {
		c.elapsedSec = 0
		c.sampleCount = 0
	}
	c.reportFilename = ""
	if c.state != StateRecording {
		reason := "start accepted"
		if res.AlreadyActive {
			reason = "start idempotent, session already active"
		}
		c.transition(StateRecording, reason)
	}
	return nil
}

// RequestStop issues the stop command. On success the reported sample count
// becomes authoritative and the session lands in StateStopped.
func (c *Controller) RequestStop(ctx context.Context) error {
	samples, err := c.commander.StopRecording(ctx)
	if err != nil {
		c.logger.Warn("stop recording failed", "error", err)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.sampleCount = samples
	if c.state != StateStopped {
		c.transition(StateStopped, "stop accepted")
	}
	return nil
}

// RequestGenerate issues the generate-report command. On success the session
// lands in StateReportReady carrying the server-side report filename.
func (c *Controller) RequestGenerate(ctx context.Context) (string, error) {
	filename, err := c.commander.GenerateReport(ctx)
	if err != nil {
		c.logger.Warn("generate report failed", "error", err)
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.reportFilename = filename
	c.transition(StateReportReady, "report generated")
	return filename, nil
}

// Download fetches the generated report into destDir and returns the local
// path. It is valid only in StateReportReady and never changes state.
func (c *Controller) Download(ctx context.Context, destDir string) (string, error) {
	c.mu.Lock()
	filename := c.reportFilename
	ready := c.state == StateReportReady
	c.mu.Unlock()

	if !ready || filename == "" {
		return "", fmt.Errorf("session: no report available for download")
	}
	return c.commander.DownloadReport(ctx, filename, destDir)
}

// transition records a state change. Callers hold c.mu.
func (c *Controller) transition(to State, reason string) {
	from := c.state
	c.state = to
	c.logger.Info("session state changed",
		"from", from.String(),
		"to", to.String(),
		"reason", reason,
	)
}

// Status returns an immutable copy of the session state for the presenter.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		State:          c.state,
		ElapsedSec:     c.elapsedSec,
		DurationSec:    c.durationSec,
		SampleCount:    c.sampleCount,
		ReportFilename: c.reportFilename,
	}
}
