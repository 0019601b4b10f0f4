// Package widgets provides the chart primitives the dashboard tabs render:
// horizontal bar gauges for instantaneous values and unicode sparklines for
// the rolling history series.
package widgets

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// GaugeConfig controls the appearance of a horizontal bar gauge.
type GaugeConfig struct {
	// Width is the total character width of the gauge bar.
	Width int
	// Percent is the value from 0 to 100.
	Percent float64
	// Label is optional text shown to the left of the bar.
	Label string
	// ShowPercent controls whether "XX%" is shown to the right.
	ShowPercent bool
	// ThresholdWarning is the % at which color changes to yellow (default: 70).
	ThresholdWarning float64
	// ThresholdDanger is the % at which color changes to red (default: 90).
	ThresholdDanger float64
}

// gaugeColor returns the lipgloss color for the given percentage based on thresholds.
func gaugeColor(percent, warning, danger float64) lipgloss.Color {
	switch {
	case percent >= danger:
		return lipgloss.Color("#EF4444")
	case percent >= warning:
		return lipgloss.Color("#EAB308")
	default:
		return lipgloss.Color("#22C55E")
	}
}

// RenderGauge renders a horizontal bar gauge with optional label and percentage.
// Format: [Label] [████████░░░░] [XX%]
func RenderGauge(cfg GaugeConfig) string {
	// Clamp percent to 0-100; the producer should have already, but the
	// renderer must not trust that.
	percent := math.Max(0, math.Min(100, cfg.Percent))

	width := cfg.Width
	if width <= 0 {
		width = 20
	}
	warning := cfg.ThresholdWarning
	if warning <= 0 {
		warning = 70
	}
	danger := cfg.ThresholdDanger
	if danger <= 0 {
		danger = 90
	}

	filledCount := int(math.Round(percent / 100.0 * float64(width)))
	emptyCount := width - filledCount

	style := lipgloss.NewStyle().Foreground(gaugeColor(percent, warning, danger))
	bar := style.Render(strings.Repeat("█", filledCount)) + strings.Repeat("░", emptyCount)

	var sb strings.Builder
	if cfg.Label != "" {
		sb.WriteString(cfg.Label)
		sb.WriteString(" ")
	}
	sb.WriteString(bar)
	if cfg.ShowPercent {
		sb.WriteString(fmt.Sprintf(" %3.0f%%", percent))
	}
	return sb.String()
}

// RenderMiniGauge renders a compact gauge bar with no label or percentage text.
func RenderMiniGauge(percent float64, width int) string {
	return RenderGauge(GaugeConfig{
		Width:   width,
		Percent: percent,
	})
}
