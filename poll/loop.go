// Package poll drives the fixed-cadence snapshot cycle: fetch, fold into
// history, fold into the session controller, notify the presenter. Ticks
// are serialized by a single-in-flight guard so two resolving polls can
// never interleave their buffer mutations.
package poll

import (
	"context"
	"io"
	"log/slog"
	"time"

	"gitlab.com/tinyland/lab/resource-pulse/history"
	"gitlab.com/tinyland/lab/resource-pulse/metrics"
	"gitlab.com/tinyland/lab/resource-pulse/session"
)

// DefaultInterval is the poll cadence.
const DefaultInterval = 1 * time.Second

// Transport performs one snapshot fetch. *client.Client satisfies it.
type Transport interface {
	FetchSnapshot(ctx context.Context) (*metrics.Snapshot, error)
}

// Observer receives every successful snapshot. *session.Controller
// satisfies it.
type Observer interface {
	Observe(snap *metrics.Snapshot)
	Status() session.Status
}

// TickUpdate is the read-only per-tick payload handed to the presenter:
// the latest snapshot plus immutable copies of the history buffer and
// session state taken after both were updated.
type TickUpdate struct {
	Snapshot *metrics.Snapshot
	History  history.View
	Session  session.Status
}

// Loop owns the timer, the transport, and the history buffer. It is started
// once and stopped only by cancelling its context; transport failures never
// stop it, change its cadence, or touch the buffer and controller.
type Loop struct {
	transport Transport
	buffer    *history.Buffer
	observer  Observer
	interval  time.Duration
	logger    *slog.Logger

	// OnTick is invoked on the loop goroutine once per successful poll.
	OnTick func(TickUpdate)
	// OnError is invoked on the loop goroutine for every absorbed failure.
	OnError func(error)
}

// New creates a Loop. A non-positive interval falls back to
// DefaultInterval; a nil logger discards diagnostics.
func New(transport Transport, buffer *history.Buffer, observer Observer, interval time.Duration, logger *slog.Logger) *Loop {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Loop{
		transport: transport,
		buffer:    buffer,
		observer:  observer,
		interval:  interval,
		logger:    logger,
	}
}

// fetchResult carries one completed fetch back onto the loop goroutine.
type fetchResult struct {
	snap *metrics.Snapshot
	err  error
}

// Run polls immediately, then at the fixed interval measured from the start
// of each tick, until ctx is cancelled. If a fetch is still in flight when
// the next tick is due, that tick is skipped: results are always applied in
// issue order and at most one mutation sequence runs at a time. A fetch
// resolving after cancellation has its result discarded.
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	// Buffered so a late fetch can always deliver and exit even when the
	// loop has already returned.
	results := make(chan fetchResult, 1)
	inFlight := true
	l.beginFetch(ctx, results)

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("poll loop stopped")
			return

		case res := <-results:
			inFlight = false
			l.apply(res)

		case <-ticker.C:
			if inFlight {
				l.logger.Debug("tick skipped, fetch still in flight")
				continue
			}
			inFlight = true
			l.beginFetch(ctx, results)
		}
	}
}

// beginFetch launches one fetch bounded to a single polling period. The
// result is handed back to the loop goroutine; nothing here mutates state.
func (l *Loop) beginFetch(ctx context.Context, results chan<- fetchResult) {
	go func() {
		fetchCtx, cancel := context.WithTimeout(ctx, l.interval)
		defer cancel()

		snap, err := l.transport.FetchSnapshot(fetchCtx)
		results <- fetchResult{snap: snap, err: err}
	}()
}

// apply folds one completed fetch into the buffer and controller. Failures
// are logged and surfaced through OnError; they mutate nothing, and the
// next tick retries at the unchanged cadence.
func (l *Loop) apply(res fetchResult) {
	if res.err != nil {
		l.logger.Warn("poll failed", "error", res.err)
		if l.OnError != nil {
			l.OnError(res.err)
		}
		return
	}

	l.buffer.Append(res.snap)
	l.observer.Observe(res.snap)

	if l.OnTick != nil {
		l.OnTick(TickUpdate{
			Snapshot: res.snap,
			History:  l.buffer.View(),
			Session:  l.observer.Status(),
		})
	}
}
