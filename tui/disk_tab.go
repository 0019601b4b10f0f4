package tui

import (
	"fmt"
	"strings"

	"gitlab.com/tinyland/lab/resource-pulse/internal/format"
	"gitlab.com/tinyland/lab/resource-pulse/metrics"
	"gitlab.com/tinyland/lab/resource-pulse/widgets"
)

// renderDiskContent renders the Disk tab: a usage gauge per mounted
// partition plus the current I/O rates.
func renderDiskContent(snap *metrics.Snapshot, width, height int) string {
	if snap == nil {
		return "Waiting for first sample..."
	}

	gaugeWidth := width / 3
	if gaugeWidth < 10 {
		gaugeWidth = 10
	}

	var sections []string
	sections = append(sections, styleTitle.Render("Disk"))
	sections = append(sections, "")

	sections = append(sections, fmt.Sprintf("%s %s   %s %s",
		styleLabel.Render("read"),
		styleValue.Render(format.SpeedMB(snap.Disk.IO.ReadSpeedMBps)),
		styleLabel.Render("write"),
		styleValue.Render(format.SpeedMB(snap.Disk.IO.WriteSpeedMBps))))
	sections = append(sections, "")

	if len(snap.Disk.Partitions) == 0 {
		sections = append(sections, "No partitions reported.")
		return strings.Join(sections, "\n")
	}

	for _, p := range snap.Disk.Partitions {
		mount := format.TruncateWithEllipsis(p.Mountpoint, width/2)
		line := styleLabel.Render(mount) + "  " +
			styleValue.Render(format.UsedTotalGB(p.UsedGB, p.TotalGB))
		sections = append(sections, line)
		sections = append(sections, widgets.RenderGauge(widgets.GaugeConfig{
			Width:       gaugeWidth,
			Percent:     p.Percent,
			ShowPercent: true,
		}))
		sections = append(sections, "")
	}

	return strings.Join(sections, "\n")
}
