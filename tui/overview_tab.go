package tui

import (
	"fmt"
	"strings"

	"gitlab.com/tinyland/lab/resource-pulse/history"
	"gitlab.com/tinyland/lab/resource-pulse/internal/format"
	"gitlab.com/tinyland/lab/resource-pulse/metrics"
	"gitlab.com/tinyland/lab/resource-pulse/widgets"
)

// renderOverviewContent renders the Overview tab: CPU and memory
// gauges with rolling sparklines, network and disk throughput, and
// host information.
func renderOverviewContent(snap *metrics.Snapshot, hist history.View, width, height int) string {
	if snap == nil {
		return "Waiting for first sample...\n\nEnsure the collector is reachable."
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

	sections = append(sections, styleTitle.Render("System Overview"))
	sections = append(sections, "")

	// CPU.
	cpuLabel := fmt.Sprintf("CPU (%dC/%dT", snap.CPU.CoresPhysical, snap.CPU.CoresLogical)
	if snap.CPU.FrequencyMHz > 0 {
		cpuLabel += fmt.Sprintf(" @ %.0f MHz", snap.CPU.FrequencyMHz)
	}
	cpuLabel += ")"
	if snap.CPU.TemperatureC != nil {
		cpuLabel += fmt.Sprintf(" %.0f°C", *snap.CPU.TemperatureC)
	}
	sections = append(sections, styleLabel.Render(cpuLabel))
	sections = append(sections, widgets.RenderGauge(widgets.GaugeConfig{
		Width:       gaugeWidth,
		Percent:     snap.CPU.Percent,
		ShowPercent: true,
	}))
	sections = append(sections, widgets.RenderSparkline(widgets.SparklineConfig{
		Data:  hist.Values(history.SeriesCPU),
		Width: sparkWidth,
		Min:   0,
		Max:   100,
		Color: colorSecondary,
	}))
	sections = append(sections, "")

	// Memory.
	memLabel := "Memory " + format.UsedTotalGB(snap.Memory.UsedGB, snap.Memory.TotalGB)
	sections = append(sections, styleLabel.Render(memLabel))
	sections = append(sections, widgets.RenderGauge(widgets.GaugeConfig{
		Width:       gaugeWidth,
		Percent:     snap.Memory.Percent,
		ShowPercent: true,
	}))
	sections = append(sections, widgets.RenderSparkline(widgets.SparklineConfig{
		Data:  hist.Values(history.SeriesMemory),
		Width: sparkWidth,
		Min:   0,
		Max:   100,
		Color: colorSecondary,
	}))
	sections = append(sections, "")

	// Throughput rows with auto-scaled sparklines.
	sections = append(sections, styleLabel.Render("Network"))
	sections = append(sections, fmt.Sprintf("  ↑ %s  ↓ %s",
		styleValue.Render(format.SpeedKB(snap.Network.SendSpeedKBps)),
		styleValue.Render(format.SpeedKB(snap.Network.RecvSpeedKBps))))
	sections = append(sections, widgets.RenderSparkline(widgets.SparklineConfig{
		Data:  hist.Values(history.SeriesNetSend),
		Width: sparkWidth,
		Label: "tx",
		Color: colorPrimary,
	}))
	sections = append(sections, widgets.RenderSparkline(widgets.SparklineConfig{
		Data:  hist.Values(history.SeriesNetRecv),
		Width: sparkWidth,
		Label: "rx",
		Color: colorSecondary,
	}))
	sections = append(sections, "")

	sections = append(sections, styleLabel.Render("Disk I/O"))
	sections = append(sections, fmt.Sprintf("  read %s  write %s",
		styleValue.Render(format.SpeedMB(snap.Disk.IO.ReadSpeedMBps)),
		styleValue.Render(format.SpeedMB(snap.Disk.IO.WriteSpeedMBps))))
	sections = append(sections, "")

	// Host line.
	host := fmt.Sprintf("%s  up %s", snap.System.Hostname, snap.System.UptimeFormatted)
	sections = append(sections, styleLabel.Render("Host:")+" "+styleValue.Render(host))

	return strings.Join(sections, "\n")
}
