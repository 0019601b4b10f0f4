package session

import "gitlab.com/tinyland/lab/resource-pulse/metrics"

// Status is a read-only snapshot of the session for the presenter. Control
// enablement is a pure projection of this value, recomputed every tick;
// there is no independently mutable "button enabled" flag to drift out of
// sync with the state machine.
type Status struct {
	State          State
	ElapsedSec     float64
	DurationSec    float64
	SampleCount    int
	ReportFilename string
}

// StartEnabled reports whether the start control is active: always, except
// while a capture window is running.
func (s Status) StartEnabled() bool {
	return s.State != StateRecording
}

// StopEnabled reports whether the stop control is active.
func (s Status) StopEnabled() bool {
	return s.State == StateRecording
}

// GenerateEnabled reports whether the generate-report control is active:
// after a stop, after an observed auto-completion, or whenever recorded
// samples exist while no capture window is running.
func (s Status) GenerateEnabled() bool {
	switch {
	case s.State == StateStopped:
		return true
	case s.State == StateRecording && s.DurationSec > 0 && s.ElapsedSec >= s.DurationSec:
		return true
	case s.State != StateRecording && s.SampleCount > 0:
		return true
	}
	return false
}

// DownloadEnabled reports whether the download control is active.
func (s Status) DownloadEnabled() bool {
	return s.State == StateReportReady && s.ReportFilename != ""
}

// Progress returns the capture-window completion fraction in [0, 1].
func (s Status) Progress() float64 {
	if s.DurationSec <= 0 {
		return 0
	}
	return metrics.ClampFraction(s.ElapsedSec / s.DurationSec)
}
