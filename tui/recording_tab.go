package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"gitlab.com/tinyland/lab/resource-pulse/internal/format"
	"gitlab.com/tinyland/lab/resource-pulse/session"
)

// renderRecordingContent renders the Recording tab: session state,
// elapsed progress, and the clickable command buttons.
func (m Model) renderRecordingContent(height int) string {
	var sections []string
	sections = append(sections, styleTitle.Render("Recording Session"))
	sections = append(sections, "")

	stateStyle := lipgloss.NewStyle().Bold(true)
	switch m.sess.State {
	case session.StateRecording:
		stateStyle = stateStyle.Foreground(colorDanger)
	case session.StateReportReady:
		stateStyle = stateStyle.Foreground(colorSuccess)
	default:
		stateStyle = stateStyle.Foreground(colorMuted)
	}
	sections = append(sections,
		styleLabel.Render("State:")+" "+stateStyle.Render(m.sess.State.String()))

	switch m.sess.State {
	case session.StateRecording:
		sections = append(sections,
			styleLabel.Render("Elapsed:")+" "+
				styleValue.Render(format.Clock(m.sess.ElapsedSec, m.sess.DurationSec)))
		if m.sess.DurationSec > 0 {
			sections = append(sections, m.progress.ViewAs(m.sess.Progress()))
		}
		sections = append(sections,
			styleLabel.Render("Samples:")+" "+
				styleValue.Render(fmt.Sprintf("%d", m.sess.SampleCount)))

	case session.StateStopped:
		sections = append(sections,
			styleLabel.Render("Samples:")+" "+
				styleValue.Render(fmt.Sprintf("%d", m.sess.SampleCount)))

	case session.StateReportReady:
		sections = append(sections,
			styleLabel.Render("Report:")+" "+styleValue.Render(m.sess.ReportFilename))
	}

	sections = append(sections, "")
	sections = append(sections, m.renderButtons())

	sections = append(sections, "")
	hint := "s start · x stop · g generate · d download (buttons are clickable)"
	sections = append(sections, lipgloss.NewStyle().Foreground(colorMuted).Render(hint))

	return strings.Join(sections, "\n")
}

// renderButtons renders the four command buttons. Disabled buttons are
// dimmed and are not registered as click zones.
func (m Model) renderButtons() string {
	btn := func(id, label string, enabled bool) string {
		if !enabled {
			return styleButtonOff.Render(label)
		}
		return zone.Mark(id, styleButton.Render(label))
	}

	buttons := []string{
		btn(zoneStart, "Start", m.sess.StartEnabled()),
		btn(zoneStop, "Stop", m.sess.StopEnabled()),
		btn(zoneGenerate, "Generate Report", m.sess.GenerateEnabled()),
		btn(zoneDownload, "Download", m.sess.DownloadEnabled()),
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		buttons[0], "  ", buttons[1], "  ", buttons[2], "  ", buttons[3])
}
