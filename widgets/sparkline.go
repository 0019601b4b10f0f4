package widgets

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// sparkBlocks contains 8 unicode block characters for sparkline rendering,
// ordered from lowest to highest.
var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// SparklineConfig controls the appearance of a sparkline chart.
type SparklineConfig struct {
	// Data points to render, oldest first. The rolling history series
	// arrive in exactly this order.
	Data []float64
	// Width is the number of characters to render. If 0, uses len(Data).
	Width int
	// Min is the minimum value for scaling. If Min == Max, auto-scale.
	Min float64
	// Max is the maximum value for scaling.
	Max float64
	// Label is optional text shown before the sparkline.
	Label string
	// Color is the lipgloss color for the sparkline characters.
	Color lipgloss.Color
}

// RenderSparkline renders a unicode sparkline chart from the given configuration.
func RenderSparkline(cfg SparklineConfig) string {
	if len(cfg.Data) == 0 {
		return ""
	}

	data := cfg.Data

	width := cfg.Width
	if width <= 0 {
		width = len(data)
	}

	// Show the most recent Width points; older ones have scrolled off.
	if width < len(data) {
		data = data[len(data)-width:]
	}

	// Auto-scale if Min == Max.
	minVal := cfg.Min
	maxVal := cfg.Max
	if minVal == maxVal {
		minVal = data[0]
		maxVal = data[0]
		for _, v := range data {
			if v < minVal {
				minVal = v
			}
			if v > maxVal {
				maxVal = v
			}
		}
	}

	var runes []rune
	allEqual := minVal == maxVal

	for _, v := range data {
		if allEqual {
			runes = append(runes, sparkBlocks[len(sparkBlocks)/2])
			continue
		}
		normalized := (v - minVal) / (maxVal - minVal)
		normalized = math.Max(0, math.Min(1, normalized))
		idx := int(normalized * float64(len(sparkBlocks)-1))
		if idx >= len(sparkBlocks) {
			idx = len(sparkBlocks) - 1
		}
		runes = append(runes, sparkBlocks[idx])
	}

	// Left-pad with spaces so a filling buffer grows in from the right.
	sparkStr := string(runes)
	if width > len(data) {
		sparkStr = strings.Repeat(" ", width-len(data)) + sparkStr
	}

	if cfg.Color != "" {
		sparkStr = lipgloss.NewStyle().Foreground(cfg.Color).Render(sparkStr)
	}
	if cfg.Label != "" {
		sparkStr = cfg.Label + " " + sparkStr
	}
	return sparkStr
}
