package session

import (
	"context"
	"errors"
	"testing"

	"gitlab.com/tinyland/lab/resource-pulse/client"
	"gitlab.com/tinyland/lab/resource-pulse/metrics"
)

// fakeCommander scripts command outcomes for controller tests.
type fakeCommander struct {
	startResult client.StartResult
	startErr    error
	stopSamples int
	stopErr     error
	genFilename string
	genErr      error
	downloaded  string
	downloadErr error

	startCalls    int
	stopCalls     int
	generateCalls int
	downloadCalls int
	lastFilename  string
	lastDestDir   string
}

func (f *fakeCommander) StartRecording(ctx context.Context) (client.StartResult, error) {
	f.startCalls++
	return f.startResult, f.startErr
}

func (f *fakeCommander) StopRecording(ctx context.Context) (int, error) {
	f.stopCalls++
	return f.stopSamples, f.stopErr
}

func (f *fakeCommander) GenerateReport(ctx context.Context) (string, error) {
	f.generateCalls++
	return f.genFilename, f.genErr
}

func (f *fakeCommander) DownloadReport(ctx context.Context, filename, destDir string) (string, error) {
	f.downloadCalls++
	f.lastFilename = filename
	f.lastDestDir = destDir
	return f.downloaded, f.downloadErr
}

func newTestController(t *testing.T, fake *fakeCommander) *Controller {
	t.Helper()
	return NewController(fake, nil)
}

func recordingSnap(elapsed, duration float64, samples int) *metrics.Snapshot {
	return &metrics.Snapshot{
		Recording:         true,
		RecordingElapsed:  elapsed,
		RecordingDuration: duration,
		RecordedCount:     samples,
	}
}

func idleSnap() *metrics.Snapshot {
	return &metrics.Snapshot{}
}

func TestInitialState(t *testing.T) {
	c := newTestController(t, &fakeCommander{})
	st := c.Status()
	if st.State != StateIdle {
		t.Errorf("initial state = %v, want idle", st.State)
	}
	if !st.StartEnabled() || st.StopEnabled() || st.GenerateEnabled() || st.DownloadEnabled() {
		t.Errorf("initial enablement wrong: %+v", st)
	}
}

func TestRequestStartTransitionsToRecording(t *testing.T) {
	fake := &fakeCommander{startResult: client.StartResult{DurationSec: 300}}
	c := newTestController(t, fake)

	if err := c.RequestStart(context.Background()); err != nil {
		t.Fatalf("RequestStart: %v", err)
	}

	st := c.Status()
	if st.State != StateRecording {
		t.Errorf("state = %v, want recording", st.State)
	}
	if st.DurationSec != 300 {
		t.Errorf("duration = %v, want 300", st.DurationSec)
	}
	if st.StartEnabled() {
		t.Error("start should be disabled while recording")
	}
	if !st.StopEnabled() {
		t.Error("stop should be enabled while recording")
	}
}

func TestRequestStartIdempotentWhenAlreadyActive(t *testing.T) {
	fake := &fakeCommander{startResult: client.StartResult{AlreadyActive: true, DurationSec: 300}}
	c := newTestController(t, fake)

	// Simulate an observed session with progress before the start request.
	c.Observe(recordingSnap(42, 300, 40))

	if err := c.RequestStart(context.Background()); err != nil {
		t.Fatalf("idempotent start returned error: %v", err)
	}

	st := c.Status()
	if st.State != StateRecording {
		t.Errorf("state = %v, want recording", st.State)
	}
	// An already-active response must not reset observed progress.
	if st.ElapsedSec != 42 {
		t.Errorf("elapsed = %v, want 42 (preserved)", st.ElapsedSec)
	}
}

func TestRequestStartFailureLeavesStateUnchanged(t *testing.T) {
	fake := &fakeCommander{startErr: errors.New("connect refused")}
	c := newTestController(t, fake)

	if err := c.RequestStart(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if st := c.Status(); st.State != StateIdle {
		t.Errorf("state = %v, want idle after failed start", st.State)
	}
}

func TestRequestStopTransitionsToStopped(t *testing.T) {
	fake := &fakeCommander{
		startResult: client.StartResult{DurationSec: 300},
		stopSamples: 17,
	}
	c := newTestController(t, fake)
	_ = c.RequestStart(context.Background())

	if err := c.RequestStop(context.Background()); err != nil {
		t.Fatalf("RequestStop: %v", err)
	}

	st := c.Status()
	if st.State != StateStopped {
		t.Errorf("state = %v, want stopped", st.State)
	}
	if st.SampleCount != 17 {
		t.Errorf("samples = %d, want 17", st.SampleCount)
	}
	if !st.GenerateEnabled() {
		t.Error("generate should be enabled once stopped")
	}
}

func TestRequestGenerateTransitionsToReportReady(t *testing.T) {
	fake := &fakeCommander{
		startResult: client.StartResult{DurationSec: 300},
		stopSamples: 17,
		genFilename: "system_report_20260826_120000.json",
	}
	c := newTestController(t, fake)
	_ = c.RequestStart(context.Background())
	_ = c.RequestStop(context.Background())

	filename, err := c.RequestGenerate(context.Background())
	if err != nil {
		t.Fatalf("RequestGenerate: %v", err)
	}
	if filename != fake.genFilename {
		t.Errorf("filename = %q, want %q", filename, fake.genFilename)
	}

	st := c.Status()
	if st.State != StateReportReady {
		t.Errorf("state = %v, want report_ready", st.State)
	}
	if !st.DownloadEnabled() {
		t.Error("download should be enabled in report_ready")
	}
}

func TestRequestGenerateFailureKeepsStopped(t *testing.T) {
	fake := &fakeCommander{
		startResult: client.StartResult{DurationSec: 300},
		genErr:      errors.New("no data recorded"),
	}
	c := newTestController(t, fake)
	_ = c.RequestStart(context.Background())
	_ = c.RequestStop(context.Background())

	if _, err := c.RequestGenerate(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if st := c.Status(); st.State != StateStopped {
		t.Errorf("state = %v, want stopped after failed generate", st.State)
	}
}

func TestDownloadOnlyInReportReady(t *testing.T) {
	fake := &fakeCommander{downloaded: "/tmp/report.json"}
	c := newTestController(t, fake)

	if _, err := c.Download(context.Background(), "/tmp"); err == nil {
		t.Fatal("download from idle should fail")
	}
	if fake.downloadCalls != 0 {
		t.Errorf("commander called %d times, want 0", fake.downloadCalls)
	}
}

func TestDownloadPassesFilename(t *testing.T) {
	fake := &fakeCommander{
		startResult: client.StartResult{DurationSec: 300},
		genFilename: "system_report_x.json",
		downloaded:  "/downloads/system_report_x.json",
	}
	c := newTestController(t, fake)
	_ = c.RequestStart(context.Background())
	_ = c.RequestStop(context.Background())
	_, _ = c.RequestGenerate(context.Background())

	path, err := c.Download(context.Background(), "/downloads")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if path != fake.downloaded {
		t.Errorf("path = %q, want %q", path, fake.downloaded)
	}
	if fake.lastFilename != "system_report_x.json" || fake.lastDestDir != "/downloads" {
		t.Errorf("commander got (%q, %q)", fake.lastFilename, fake.lastDestDir)
	}

	// Download never changes state; a second download still works.
	if st := c.Status(); st.State != StateReportReady {
		t.Errorf("state = %v, want report_ready after download", st.State)
	}
}

func TestObserveActivatesRecording(t *testing.T) {
	c := newTestController(t, &fakeCommander{})

	c.Observe(recordingSnap(5, 300, 5))

	st := c.Status()
	if st.State != StateRecording {
		t.Errorf("state = %v, want recording", st.State)
	}
	if st.ElapsedSec != 5 || st.SampleCount != 5 {
		t.Errorf("status = %+v", st)
	}
}

func TestObserveActiveDiscardsStaleReport(t *testing.T) {
	fake := &fakeCommander{
		startResult: client.StartResult{DurationSec: 300},
		genFilename: "system_report_old.json",
	}
	c := newTestController(t, fake)
	_ = c.RequestStart(context.Background())
	_ = c.RequestStop(context.Background())
	_, _ = c.RequestGenerate(context.Background())

	// A new capture window observed from the server supersedes the report.
	c.Observe(recordingSnap(1, 300, 1))

	st := c.Status()
	if st.State != StateRecording {
		t.Errorf("state = %v, want recording", st.State)
	}
	if st.ReportFilename != "" {
		t.Errorf("stale report filename survived: %q", st.ReportFilename)
	}
	if st.DownloadEnabled() {
		t.Error("download should be disabled after new session started")
	}
}

func TestObserveEndTransitionsToStopped(t *testing.T) {
	c := newTestController(t, &fakeCommander{})
	c.Observe(recordingSnap(5, 300, 5))

	snap := idleSnap()
	snap.RecordedCount = 5
	c.Observe(snap)

	if st := c.Status(); st.State != StateStopped {
		t.Errorf("state = %v, want stopped", st.State)
	}
}

func TestObserveIdleStaysIdle(t *testing.T) {
	c := newTestController(t, &fakeCommander{})
	c.Observe(idleSnap())
	if st := c.Status(); st.State != StateIdle {
		t.Errorf("state = %v, want idle", st.State)
	}
}

func TestAutoCompleteOnElapsedDuration(t *testing.T) {
	tests := []struct {
		name     string
		elapsed  float64
		duration float64
		want     State
	}{
		{"under window", 299, 300, StateRecording},
		{"exactly at window", 300, 300, StateStopped},
		{"past window", 301, 300, StateStopped},
		{"no window configured", 1000, 0, StateRecording},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestController(t, &fakeCommander{})
			c.Observe(recordingSnap(tt.elapsed, tt.duration, 10))
			if st := c.Status(); st.State != tt.want {
				t.Errorf("state = %v, want %v", st.State, tt.want)
			}
		})
	}
}

func TestProgress(t *testing.T) {
	tests := []struct {
		name     string
		elapsed  float64
		duration float64
		want     float64
	}{
		{"halfway", 150, 300, 0.5},
		{"zero duration", 150, 0, 0},
		{"overshoot clamps", 400, 300, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := Status{State: StateRecording, ElapsedSec: tt.elapsed, DurationSec: tt.duration}
			if got := st.Progress(); got != tt.want {
				t.Errorf("Progress() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateIdle, "idle"},
		{StateRecording, "recording"},
		{StateStopped, "stopped"},
		{StateReportReady, "report_ready"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

// TestFullSessionLifecycle walks the happy path end to end: observe idle,
// start, observe progress, auto-complete, generate, download.
func TestFullSessionLifecycle(t *testing.T) {
	fake := &fakeCommander{
		startResult: client.StartResult{DurationSec: 300},
		genFilename: "system_report_20260826_130000.json",
		downloaded:  "/dl/system_report_20260826_130000.json",
	}
	c := newTestController(t, fake)

	c.Observe(idleSnap())
	if err := c.RequestStart(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	c.Observe(recordingSnap(150, 300, 150))
	st := c.Status()
	if st.State != StateRecording || st.Progress() != 0.5 {
		t.Fatalf("midway status = %+v", st)
	}

	c.Observe(recordingSnap(300, 300, 300))
	if st := c.Status(); st.State != StateStopped {
		t.Fatalf("state after window elapsed = %v, want stopped", st.State)
	}

	if _, err := c.RequestGenerate(context.Background()); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := c.Download(context.Background(), "/dl"); err != nil {
		t.Fatalf("download: %v", err)
	}
}
