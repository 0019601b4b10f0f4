// Package server implements the collector service the dashboard polls: the
// resource snapshot endpoint plus the recording-session command endpoints.
// It exists so resource-pulse runs end to end without an external collector.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"gitlab.com/tinyland/lab/resource-pulse/config"
	"gitlab.com/tinyland/lab/resource-pulse/store"
)

// Server wires the monitor, recorder and report generation behind the HTTP
// API.
type Server struct {
	echo      *echo.Echo
	monitor   Sampler
	recorder  *Recorder
	store     *store.Store
	logger    *slog.Logger
	listen    string
	reportDir string
}

// New creates a Server from configuration. A nil logger discards
// diagnostics.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	st, err := store.New(cfg.Server.DataDir, logger)
	if err != nil {
		return nil, fmt.Errorf("server: open data store: %w", err)
	}

	monitor := NewMonitor()

	s := &Server{
		echo:      echo.New(),
		monitor:   monitor,
		recorder:  NewRecorder(monitor, st, cfg.RecordingDuration(), logger),
		store:     st,
		logger:    logger,
		listen:    cfg.Server.Listen,
		reportDir: cfg.Server.ReportDir,
	}

	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.echo.GET("/api/resources", s.handleResources)
	s.echo.POST("/api/start-recording", s.handleStartRecording)
	s.echo.POST("/api/stop-recording", s.handleStopRecording)
	s.echo.POST("/api/generate-report", s.handleGenerateReport)
	s.echo.GET("/api/download-report/:filename", s.handleDownloadReport)
	s.echo.GET("/api/recording-status", s.handleRecordingStatus)
}

// Run starts the HTTP listener and blocks until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.echo.Start(s.listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.logger.Info("collector service listening", "addr", s.listen)

	select {
	case err := <-errCh:
		return fmt.Errorf("server: listen on %s: %w", s.listen, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.echo.Shutdown(shutdownCtx)
}

// handleResources returns the live snapshot with the recording fields the
// dashboard's session controller observes.
// GET /api/resources
func (s *Server) handleResources(c echo.Context) error {
	snap, err := s.monitor.Snapshot(c.Request().Context())
	if err != nil {
		s.logger.Error("snapshot failed", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": err.Error(),
		})
	}

	recording, elapsed, samples, _ := s.recorder.Status()
	duration := s.recorder.Duration().Seconds()

	snap.Recording = recording
	snap.RecordedCount = samples
	snap.RecordingDuration = duration
	if recording {
		snap.RecordingElapsed = elapsed
		if remaining := duration - elapsed; remaining > 0 {
			snap.RecordingRemaining = remaining
		}
	}

	return c.JSON(http.StatusOK, snap)
}

// handleStartRecording opens a capture window.
// POST /api/start-recording
func (s *Server) handleStartRecording(c echo.Context) error {
	if already := s.recorder.Start(context.Background()); already {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status": "already_recording",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":     "started",
		"start_time": time.Now().Format("2006-01-02 15:04:05"),
		"duration":   s.recorder.Duration().Seconds(),
	})
}

// handleStopRecording closes the capture window.
// POST /api/stop-recording
func (s *Server) handleStopRecording(c echo.Context) error {
	samples, wasRecording := s.recorder.Stop()
	if !wasRecording {
		return c.JSON(http.StatusOK, map[string]string{
			"status": "not_recording",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "stopped",
		"samples": samples,
	})
}

// handleGenerateReport renders the recorded session into a report file.
// POST /api/generate-report
func (s *Server) handleGenerateReport(c echo.Context) error {
	session := s.recorder.Session()
	if len(session.Samples) < 2 {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "not enough data to generate report",
		})
	}

	filename, err := GenerateReport(session, s.reportDir, s.store)
	if err != nil {
		s.logger.Error("report generation failed", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"status": "error",
			"error":  err.Error(),
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":   "success",
		"filename": filename,
		"samples":  len(session.Samples),
	})
}

// handleDownloadReport streams a generated report. The filename is reduced
// to its base name so the endpoint can never serve outside the report
// directory.
// GET /api/download-report/:filename
func (s *Server) handleDownloadReport(c echo.Context) error {
	filename := filepath.Base(c.Param("filename"))
	if filename == "." || filename == "/" || strings.Contains(filename, "..") {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid filename",
		})
	}

	path := filepath.Join(s.reportDir, filename)
	if _, err := os.Stat(path); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "file not found",
		})
	}
	return c.Attachment(path, filename)
}

// handleRecordingStatus reports the live capture-window state.
// GET /api/recording-status
func (s *Server) handleRecordingStatus(c echo.Context) error {
	recording, _, samples, startTime := s.recorder.Status()

	resp := map[string]interface{}{
		"recording": recording,
		"samples":   samples,
	}
	if !startTime.IsZero() {
		resp["start_time"] = startTime.Format("2006-01-02 15:04:05")
	}
	return c.JSON(http.StatusOK, resp)
}
