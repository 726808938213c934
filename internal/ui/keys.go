package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the device view.
type keyMap struct {
	Up          key.Binding
	Down        key.Binding
	Select      key.Binding
	MakeDefault key.Binding
	Refresh     key.Binding
	Monitoring  key.Binding
	Notify      key.Binding
	BootLaunch  key.Binding
	CycleTheme  key.Binding
	Help        key.Binding
	Hide        key.Binding
	Quit        key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Use on battery"),
		),
		MakeDefault: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Make default now"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Refresh"),
		),
		Monitoring: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "Pause Monitoring"),
		),
		Notify: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "Disable Notifications"),
		),
		BootLaunch: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "Enable Launch at Boot"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		Hide: key.NewBinding(
			key.WithKeys("h", "esc"),
			key.WithHelp("h", "Run in background"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "Quit"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.Monitoring, k.Notify, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.MakeDefault},
		{k.Refresh, k.Monitoring, k.Notify, k.BootLaunch},
		{k.CycleTheme, k.Help, k.Hide, k.Quit},
	}
}
