package tui

import (
	"fmt"
	"strings"

	"gitlab.com/tinyland/lab/resource-pulse/history"
	"gitlab.com/tinyland/lab/resource-pulse/internal/format"
	"gitlab.com/tinyland/lab/resource-pulse/metrics"
	"gitlab.com/tinyland/lab/resource-pulse/widgets"
)

// renderGPUContent renders the GPU tab. Hosts without a usable GPU get
// a static notice rather than empty charts.
func renderGPUContent(snap *metrics.Snapshot, hist history.View, width, height int) string {
	if snap == nil {
		return "Waiting for first sample..."
	}
	if !snap.GPU.Available || len(snap.GPU.Devices) == 0 {
		return "No GPU detected on the monitored host."
	}

	gaugeWidth := width / 3
	if gaugeWidth < 10 {
		gaugeWidth = 10
	}
	sparkWidth := width - 30
	if sparkWidth < 10 {
		sparkWidth = 10
	}
	if sparkWidth > history.DefaultCapacity {
		sparkWidth = history.DefaultCapacity
	}

	var sections []string
	sections = append(sections, styleTitle.Render("GPU"))

	for i, dev := range snap.GPU.Devices {
		name := format.TruncateWithEllipsis(dev.Name, width-12)
		if name == "" {
			name = fmt.Sprintf("GPU %d", i)
		}
		if dev.TemperatureC != nil {
			name += fmt.Sprintf("  %.0f°C", *dev.TemperatureC)
		}
		sections = append(sections, "")
		sections = append(sections, styleLabel.Render(name))

		sections = append(sections, widgets.RenderGauge(widgets.GaugeConfig{
			Width:       gaugeWidth,
			Percent:     dev.Load,
			Label:       "load",
			ShowPercent: true,
		}))
		sections = append(sections, widgets.RenderSparkline(widgets.SparklineConfig{
			Data:  hist.Values(history.GPULoadSeries(i)),
			Width: sparkWidth,
			Min:   0,
			Max:   100,
			Color: colorSecondary,
		}))

		sections = append(sections, widgets.RenderGauge(widgets.GaugeConfig{
			Width:       gaugeWidth,
			Percent:     dev.MemoryPercent,
			Label:       "vram",
			ShowPercent: true,
		}))
		sections = append(sections, widgets.RenderSparkline(widgets.SparklineConfig{
			Data:  hist.Values(history.GPUMemorySeries(i)),
			Width: sparkWidth,
			Min:   0,
			Max:   100,
			Color: colorPrimary,
		}))
	}

	return strings.Join(sections, "\n")
}
