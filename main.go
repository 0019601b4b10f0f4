// resource-pulse is a terminal dashboard for remote system telemetry.
//
// It polls a collector's HTTP API once per second, keeps a rolling
// minute of history for its charts, and drives the collector's
// recording workflow (start, stop, generate report, download). The
// same binary can also run the collector itself.
//
// Usage:
//
//	resource-pulse [flags]
//
// Flags:
//
//	-serve            Run the collector HTTP API instead of the dashboard
//	-url string       Collector base URL (overrides config)
//	-listen string    Listen address for -serve (overrides config)
//	-config string    Path to configuration file (default: ~/.config/resource-pulse/config.yaml)
//	-log string       Log file path (default: stderr; the TUI always logs to a file)
//	-verbose          Enable debug logging
//	-version          Print version and exit
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/x/term"

	"gitlab.com/tinyland/lab/resource-pulse/config"
	"gitlab.com/tinyland/lab/resource-pulse/server"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to configuration file (default: ~/.config/resource-pulse/config.yaml)")
		runServe    = flag.Bool("serve", false, "Run the collector HTTP API instead of the dashboard")
		urlFlag     = flag.String("url", "", "Collector base URL (overrides config)")
		listenFlag  = flag.String("listen", "", "Listen address for -serve (overrides config)")
		logPath     = flag.String("log", "", "Log file path (default: stderr)")
		verbose     = flag.Bool("verbose", false, "Enable debug logging")
		showVersion = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("resource-pulse %s (%s) built %s\n", version, commit, date)
		os.Exit(0)
	}

	// ---------------------------------------------------------------
	// Load configuration
	// ---------------------------------------------------------------

	var cfg *config.Config
	var cfgErr error

	if *configPath != "" {
		cfg, cfgErr = config.LoadFromFile(*configPath)
	} else {
		cfg, cfgErr = config.Load()
	}
	if cfgErr != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", cfgErr)
		os.Exit(1)
	}

	if *urlFlag != "" {
		cfg.Collector.URL = *urlFlag
	}
	if *listenFlag != "" {
		cfg.Server.Listen = *listenFlag
	}
	if *logPath != "" {
		cfg.Log.File = *logPath
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}

	// ---------------------------------------------------------------
	// Context with signal handling
	// ---------------------------------------------------------------

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// ---------------------------------------------------------------
	// Collector mode
	// ---------------------------------------------------------------

	if *runServe {
		logger, closeLog, err := setupLogger(cfg, false)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
			os.Exit(1)
		}
		defer closeLog()

		srv, err := server.New(cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "collector init failed: %v\n", err)
			os.Exit(1)
		}
		if err := srv.Run(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "collector error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// ---------------------------------------------------------------
	// Dashboard mode (default)
	// ---------------------------------------------------------------

	if !term.IsTerminal(os.Stdout.Fd()) {
		fmt.Fprintln(os.Stderr, "resource-pulse: stdout is not a terminal (use -serve for the collector)")
		os.Exit(1)
	}

	defer func() {
		if r := recover(); r != nil {
			// Attempt to restore terminal from alt-screen before printing error.
			fmt.Print("\x1b[?1049l\x1b[?25h")
			fmt.Fprintf(os.Stderr, "resource-pulse: TUI panic: %v\n", r)
			os.Exit(1)
		}
	}()

	// The TUI owns the terminal, so logs always go to a file in
	// dashboard mode.
	logger, closeLog, err := setupLogger(cfg, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if err := runDashboard(ctx, cfg, logger); err != nil {
		fmt.Fprintf(os.Stderr, "dashboard error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogger builds the process-wide slog logger. In TUI mode logs must not
// hit the terminal, so fileOnly forces a file sink even without -log.
func setupLogger(cfg *config.Config, fileOnly bool) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	switch cfg.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var w io.Writer = os.Stderr
	closeLog := func() {}

	path := cfg.Log.File
	if path == "" && fileOnly {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, nil, err
		}
		path = filepath.Join(home, ".local", "state", "resource-pulse", "resource-pulse.log")
	}
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, err
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		w = f
		closeLog = func() { f.Close() }
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	return logger, closeLog, nil
}
