package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"gitlab.com/tinyland/lab/resource-pulse/history"
	"gitlab.com/tinyland/lab/resource-pulse/metrics"
	"gitlab.com/tinyland/lab/resource-pulse/poll"
	"gitlab.com/tinyland/lab/resource-pulse/session"
)

// Tab identifies which tab is currently active.
type Tab int

const (
	TabOverview Tab = iota
	TabGPU
	TabDisk
	TabRecording
	tabCount // sentinel for wrapping
)

// tabNames maps each Tab value to its display label.
var tabNames = map[Tab]string{
	TabOverview:  "Overview",
	TabGPU:       "GPU",
	TabDisk:      "Disk",
	TabRecording: "Recording",
}

// Clickable zone identifiers for the recording controls.
const (
	zoneStart    = "btn-start"
	zoneStop     = "btn-stop"
	zoneGenerate = "btn-generate"
	zoneDownload = "btn-download"
)

// commandTimeout bounds each recording command issued from the TUI.
const commandTimeout = 5 * time.Second

// TickMsg carries a fresh poll result into the model.
type TickMsg poll.TickUpdate

// PollErrorMsg reports a failed poll cycle. The dashboard keeps
// showing the last good data.
type PollErrorMsg struct {
	Err error
}

// cmdResultMsg reports the outcome of a recording command.
type cmdResultMsg struct {
	notice string
	err    error
	sess   session.Status
}

// Model is the top-level Bubbletea model for the resource-pulse TUI.
type Model struct {
	keys     keyMap
	help     help.Model
	progress progress.Model

	controller   *session.Controller
	downloadsDir string

	activeTab Tab
	width     int
	height    int
	ready     bool

	snapshot    *metrics.Snapshot
	history     history.View
	sess        session.Status
	lastUpdated time.Time

	notice    string
	noticeErr bool
	lastErr   string
}

// NewModel returns an initialized Model with the Overview tab active.
func NewModel(controller *session.Controller, downloadsDir string) Model {
	return Model{
		keys:         defaultKeyMap(),
		help:         help.New(),
		progress:     progress.New(progress.WithDefaultGradient()),
		controller:   controller,
		downloadsDir: downloadsDir,
		activeTab:    TabOverview,
	}
}

// Init implements tea.Model. No initial commands are needed; data
// arrives via the poll loop bridge.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.progress.Width = msg.Width / 2
		m.ready = true

	case TickMsg:
		m.snapshot = msg.Snapshot
		m.history = msg.History
		m.sess = msg.Session
		m.lastUpdated = time.Now()
		m.lastErr = ""

	case PollErrorMsg:
		if msg.Err != nil {
			m.lastErr = msg.Err.Error()
		}

	case cmdResultMsg:
		m.sess = msg.sess
		if msg.err != nil {
			m.notice = msg.err.Error()
			m.noticeErr = true
		} else {
			m.notice = msg.notice
			m.noticeErr = false
		}
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.NextTab):
		m.activeTab = (m.activeTab + 1) % tabCount
	case key.Matches(msg, m.keys.PrevTab):
		m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
	case key.Matches(msg, m.keys.Tab1):
		m.activeTab = TabOverview
	case key.Matches(msg, m.keys.Tab2):
		m.activeTab = TabGPU
	case key.Matches(msg, m.keys.Tab3):
		m.activeTab = TabDisk
	case key.Matches(msg, m.keys.Tab4):
		m.activeTab = TabRecording
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.StartRecording):
		return m, m.cmdStart()
	case key.Matches(msg, m.keys.StopRecording):
		return m, m.cmdStop()
	case key.Matches(msg, m.keys.GenerateReport):
		return m, m.cmdGenerate()
	case key.Matches(msg, m.keys.DownloadReport):
		return m, m.cmdDownload()
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	switch {
	case zone.Get(zoneStart).InBounds(msg):
		return m, m.cmdStart()
	case zone.Get(zoneStop).InBounds(msg):
		return m, m.cmdStop()
	case zone.Get(zoneGenerate).InBounds(msg):
		return m, m.cmdGenerate()
	case zone.Get(zoneDownload).InBounds(msg):
		return m, m.cmdDownload()
	}
	return m, nil
}

// cmdStart requests the collector to begin a recording session.
func (m Model) cmdStart() tea.Cmd {
	if !m.sess.StartEnabled() || m.controller == nil {
		return nil
	}
	ctrl := m.controller
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		if err := ctrl.RequestStart(ctx); err != nil {
			return cmdResultMsg{err: err, sess: ctrl.Status()}
		}
		return cmdResultMsg{notice: "Recording started", sess: ctrl.Status()}
	}
}

// cmdStop requests the collector to end the recording session.
func (m Model) cmdStop() tea.Cmd {
	if !m.sess.StopEnabled() || m.controller == nil {
		return nil
	}
	ctrl := m.controller
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		if err := ctrl.RequestStop(ctx); err != nil {
			return cmdResultMsg{err: err, sess: ctrl.Status()}
		}
		st := ctrl.Status()
		return cmdResultMsg{
			notice: fmt.Sprintf("Recording stopped (%d samples)", st.SampleCount),
			sess:   st,
		}
	}
}

// cmdGenerate asks the collector to build a report from the recorded
// session.
func (m Model) cmdGenerate() tea.Cmd {
	if !m.sess.GenerateEnabled() || m.controller == nil {
		return nil
	}
	ctrl := m.controller
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		filename, err := ctrl.RequestGenerate(ctx)
		if err != nil {
			return cmdResultMsg{err: err, sess: ctrl.Status()}
		}
		return cmdResultMsg{
			notice: fmt.Sprintf("Report ready: %s", filename),
			sess:   ctrl.Status(),
		}
	}
}

// cmdDownload fetches the generated report to the local downloads
// directory.
func (m Model) cmdDownload() tea.Cmd {
	if !m.sess.DownloadEnabled() || m.controller == nil {
		return nil
	}
	ctrl := m.controller
	dir := m.downloadsDir
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		path, err := ctrl.Download(ctx, dir)
		if err != nil {
			return cmdResultMsg{err: err, sess: ctrl.Status()}
		}
		return cmdResultMsg{
			notice: fmt.Sprintf("Saved to %s", path),
			sess:   ctrl.Status(),
		}
	}
}

// View implements tea.Model. It renders the header, active tab
// content, and footer. The whole frame is scanned by bubblezone so
// clickable regions stay registered across renders.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	header := m.renderHeader()
	content := m.renderTabContent()
	footer := m.renderFooter()

	return zone.Scan(lipgloss.JoinVertical(lipgloss.Left, header, content, footer))
}

// renderHeader renders the tab bar with the active tab highlighted,
// plus a recording indicator when a session is live.
func (m Model) renderHeader() string {
	var tabs []string
	for i := Tab(0); i < tabCount; i++ {
		name := tabNames[i]
		if i == m.activeTab {
			tabs = append(tabs, styleActiveTab.Render(name))
		} else {
			tabs = append(tabs, styleInactiveTab.Render(name))
		}
	}

	tabBar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	if m.sess.State == session.StateRecording {
		rec := lipgloss.NewStyle().Foreground(colorDanger).Bold(true).Render("  ● REC")
		tabBar = lipgloss.JoinHorizontal(lipgloss.Top, tabBar, rec)
	}
	return styleHeader.Width(m.width).Render(tabBar)
}

// renderTabContent delegates to the appropriate tab renderer based on
// the active tab.
func (m Model) renderTabContent() string {
	// Reserve space for header and footer (approximate).
	contentHeight := m.height - 6
	if contentHeight < 1 {
		contentHeight = 1
	}

	var content string
	switch m.activeTab {
	case TabOverview:
		content = renderOverviewContent(m.snapshot, m.history, m.width, contentHeight)
	case TabGPU:
		content = renderGPUContent(m.snapshot, m.history, m.width, contentHeight)
	case TabDisk:
		content = renderDiskContent(m.snapshot, m.width, contentHeight)
	case TabRecording:
		content = m.renderRecordingContent(contentHeight)
	default:
		content = ""
	}

	return styleContent.Width(m.width).Render(content)
}

// renderFooter renders the help line, the last poll timestamp, and
// any pending notice or poll error.
func (m Model) renderFooter() string {
	lines := m.help.View(m.keys)

	var status string
	if !m.lastUpdated.IsZero() {
		status = fmt.Sprintf("Updated: %s", m.lastUpdated.Format("15:04:05"))
	}
	if m.lastErr != "" {
		status += "  " + styleErrNotice.Render("collector unreachable: "+m.lastErr)
	}
	if m.notice != "" {
		style := styleNotice
		if m.noticeErr {
			style = styleErrNotice
		}
		status += "  " + style.Render(m.notice)
	}
	if status != "" {
		lines += "\n" + status
	}

	return styleFooter.Width(m.width).Render(lines)
}
