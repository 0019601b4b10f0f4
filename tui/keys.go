package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keybindings for the dashboard.
type keyMap struct {
	Quit           key.Binding
	NextTab        key.Binding
	PrevTab        key.Binding
	Tab1           key.Binding
	Tab2           key.Binding
	Tab3           key.Binding
	Tab4           key.Binding
	StartRecording key.Binding
	StopRecording  key.Binding
	GenerateReport key.Binding
	DownloadReport key.Binding
	Help           key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab", "right"),
			key.WithHelp("tab", "next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab", "left"),
			key.WithHelp("shift+tab", "prev tab"),
		),
		Tab1: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "overview"),
		),
		Tab2: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "gpu"),
		),
		Tab3: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "disk"),
		),
		Tab4: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "recording"),
		),
		StartRecording: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "start recording"),
		),
		StopRecording: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "stop recording"),
		),
		GenerateReport: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "generate report"),
		),
		DownloadReport: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "download report"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

// ShortHelp returns the bindings shown in the collapsed help line.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.StartRecording, k.StopRecording, k.Help, k.Quit}
}

// FullHelp returns the bindings shown in the expanded help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextTab, k.PrevTab, k.Tab1, k.Tab2, k.Tab3, k.Tab4},
		{k.StartRecording, k.StopRecording, k.GenerateReport, k.DownloadReport},
		{k.Help, k.Quit},
	}
}
