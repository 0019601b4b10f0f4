package server

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"gitlab.com/tinyland/lab/resource-pulse/metrics"
	"gitlab.com/tinyland/lab/resource-pulse/store"
)

// sessionKey is the store key for the most recent recorded session.
const sessionKey = "session"

// Sampler produces one snapshot per call. *Monitor satisfies it.
type Sampler interface {
	Snapshot(ctx context.Context) (*metrics.Snapshot, error)
}

// RecordedSession is the persisted form of one capture window.
type RecordedSession struct {
	StartTime string             `json:"start_time"`
	EndTime   string             `json:"end_time"`
	Samples   []metrics.Snapshot `json:"samples"`
}

// Recorder runs the capture-window workflow on the collector side: a
// background worker samples once per second until the window elapses or a
// stop command arrives, then the session is persisted for report
// generation.
type Recorder struct {
	sampler  Sampler
	store    *store.Store
	logger   *slog.Logger
	duration time.Duration
	interval time.Duration

	mu        sync.Mutex
	recording bool
	samples   []metrics.Snapshot
	startTime time.Time
	cancel    context.CancelFunc
}

// NewRecorder creates a Recorder with the given capture-window duration.
// A nil logger discards diagnostics.
func NewRecorder(sampler Sampler, st *store.Store, duration time.Duration, logger *slog.Logger) *Recorder {
	if duration <= 0 {
		duration = 5 * time.Minute
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Recorder{
		sampler:  sampler,
		store:    st,
		logger:   logger,
		duration: duration,
		interval: 1 * time.Second,
	}
}

// Start opens a capture window and launches the sampling worker. If a
// window is already active it reports alreadyActive and changes nothing.
func (r *Recorder) Start(ctx context.Context) (alreadyActive bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.recording {
		return true
	}

	r.recording = true
	r.samples = nil
	r.startTime = time.Now()

	workerCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	go r.record(workerCtx)

	r.logger.Info("recording started", "duration", r.duration.String())
	return false
}

// Stop closes the active capture window and returns the collected sample
// count. If no window is active it reports wasRecording=false.
func (r *Recorder) Stop() (samples int, wasRecording bool) {
	r.mu.Lock()
	if !r.recording {
		r.mu.Unlock()
		return 0, false
	}
	r.recording = false
	cancel := r.cancel
	r.cancel = nil
	count := len(r.samples)
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	r.persist()
	r.logger.Info("recording stopped", "samples", count)
	return count, true
}

// record is the sampling worker. It appends one snapshot per interval until
// the window elapses, then auto-stops.
func (r *Recorder) record(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		r.mu.Lock()
		if !r.recording {
			r.mu.Unlock()
			return
		}
		elapsed := time.Since(r.startTime)
		done := elapsed >= r.duration
		r.mu.Unlock()

		if done {
			if _, was := r.Stop(); was {
				r.logger.Info("recording auto-completed", "duration", r.duration.String())
			}
			return
		}

		snap, err := r.sampler.Snapshot(ctx)
		if err != nil {
			r.logger.Warn("recording sample failed", "error", err)
			continue
		}

		r.mu.Lock()
		if r.recording {
			r.samples = append(r.samples, *snap)
		}
		r.mu.Unlock()
	}
}

// persist writes the finished session so reports survive a service restart.
func (r *Recorder) persist() {
	r.mu.Lock()
	session := RecordedSession{
		StartTime: r.startTime.Format("2006-01-02 15:04:05"),
		EndTime:   time.Now().Format("2006-01-02 15:04:05"),
		Samples:   append([]metrics.Snapshot(nil), r.samples...),
	}
	r.mu.Unlock()

	if r.store == nil {
		return
	}
	if err := store.SetTyped(r.store, sessionKey, &session); err != nil {
		r.logger.Error("persist session failed", "error", err)
	}
}

// Session returns the samples available for report generation: the live
// in-memory session if one exists, otherwise the last persisted session.
func (r *Recorder) Session() RecordedSession {
	r.mu.Lock()
	if len(r.samples) > 0 {
		session := RecordedSession{
			StartTime: r.startTime.Format("2006-01-02 15:04:05"),
			EndTime:   time.Now().Format("2006-01-02 15:04:05"),
			Samples:   append([]metrics.Snapshot(nil), r.samples...),
		}
		r.mu.Unlock()
		return session
	}
	r.mu.Unlock()

	if r.store != nil {
		if persisted, err := store.GetTyped[RecordedSession](r.store, sessionKey); err == nil && persisted != nil {
			return *persisted
		}
	}
	return RecordedSession{}
}

// Status reports the live recording fields appended to every /api/resources
// response.
func (r *Recorder) Status() (recording bool, elapsedSec float64, samples int, startTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.recording {
		elapsedSec = time.Since(r.startTime).Seconds()
	}
	return r.recording, elapsedSec, len(r.samples), r.startTime
}

// Duration returns the configured capture-window length.
func (r *Recorder) Duration() time.Duration {
	return r.duration
}
