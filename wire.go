package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"gitlab.com/tinyland/lab/resource-pulse/client"
	"gitlab.com/tinyland/lab/resource-pulse/config"
	"gitlab.com/tinyland/lab/resource-pulse/history"
	"gitlab.com/tinyland/lab/resource-pulse/poll"
	"gitlab.com/tinyland/lab/resource-pulse/session"
	"gitlab.com/tinyland/lab/resource-pulse/tui"
)

// runDashboard wires the collector client, session controller, history
// buffer, and poll loop to the Bubbletea program, then blocks until
// the user quits or ctx is cancelled.
func runDashboard(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c := client.New(cfg.Collector.URL, cfg.RequestTimeout(), logger)
	controller := session.NewController(c, logger)

	capacity := cfg.History.Capacity
	if capacity <= 0 {
		capacity = history.DefaultCapacity
	}
	buffer := history.New(capacity)

	if err := os.MkdirAll(cfg.Downloads.Dir, 0o755); err != nil {
		return fmt.Errorf("create downloads dir: %w", err)
	}

	// Zones must be initialized before the first View call registers
	// clickable regions.
	zone.NewGlobal()
	defer zone.Close()

	model := tui.NewModel(controller, cfg.Downloads.Dir)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	loop := poll.New(c, buffer, controller, cfg.PollInterval(), logger)

	// Bridge: poll loop callbacks run on the loop goroutine and are
	// forwarded to Bubbletea as messages.
	loop.OnTick = func(u poll.TickUpdate) {
		p.Send(tui.TickMsg(u))
	}
	loop.OnError = func(err error) {
		p.Send(tui.PollErrorMsg{Err: err})
	}

	go loop.Run(ctx)

	logger.Info("dashboard starting",
		"collector", cfg.Collector.URL,
		"interval", cfg.PollInterval().String(),
		"history", capacity,
	)

	_, err := p.Run()
	cancel() // stop the poll loop before returning
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
