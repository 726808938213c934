// Package ui provides the Bubble Tea device picker for AudioSwitch.
package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/777genius/audioswitch/internal/prefs"
	"github.com/777genius/audioswitch/internal/reconciler"
)

// Controller is the part of the reconciler the view drives.
// The view never mutates state directly.
type Controller interface {
	Snapshot() reconciler.Snapshot
	Subscribe() (<-chan reconciler.Snapshot, func())
	RefreshInventory(ctx context.Context) error
	SetOfflinePreference(ctx context.Context, id string) error
	SetDefaultDevice(ctx context.Context, id string) error
	ToggleMonitoring(ctx context.Context) error
	ToggleNotifications(ctx context.Context) error
	ToggleBootLaunch(ctx context.Context) error
	UpdateWindow(ctx context.Context, w prefs.Window) error
	SetTheme(ctx context.Context, name string) error
}

// Options configures the UI.
type Options struct {
	Context    context.Context
	Controller Controller
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx         context.Context
	ctrl        Controller
	snapshots   <-chan reconciler.Snapshot
	unsubscribe func()

	keys keyMap
	help help.Model

	theme  Theme
	width  int
	height int

	snapshot reconciler.Snapshot
	cursor   int
	lastErr  string
	hidden   bool
}

// New creates a new Bubble Tea model subscribed to the controller.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	snaps, cancel := opts.Controller.Subscribe()
	snap := opts.Controller.Snapshot()

	m := Model{
		ctx:         ctx,
		ctrl:        opts.Controller,
		snapshots:   snaps,
		unsubscribe: cancel,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		theme:       GetTheme(snap.Theme),
		width:       snap.Window.Width,
		height:      snap.Window.Height,
		snapshot:    snap,
	}
	m.cursor = initialCursor(snap)
	m.syncKeyLabels()
	return m
}

// Hidden reports whether the user asked to keep running in the background
func (m Model) Hidden() bool {
	return m.hidden
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tea.EnterAltScreen, waitForSnapshot(m.snapshots))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, m.action(func(ctx context.Context) error {
			return m.ctrl.UpdateWindow(ctx, m.window(prefs.WindowShown))
		})

	case snapshotMsg:
		m.snapshot = reconciler.Snapshot(msg)
		m.theme = GetTheme(m.snapshot.Theme)
		m.cursor = clampCursor(m.cursor, len(m.snapshot.Inventory))
		m.syncKeyLabels()
		return m, waitForSnapshot(m.snapshots)

	case snapshotsClosedMsg:
		return m, tea.Quit

	case actionResultMsg:
		m.lastErr = ""
		if msg.err != nil {
			m.lastErr = msg.err.Error()
		}
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.unsubscribe()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Hide):
		m.hidden = true
		m.unsubscribe()
		win := m.window(prefs.WindowHidden)
		return m, tea.Sequence(m.action(func(ctx context.Context) error {
			return m.ctrl.UpdateWindow(ctx, win)
		}), tea.Quit)

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.cursor = clampCursor(m.cursor-1, len(m.snapshot.Inventory))
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.cursor = clampCursor(m.cursor+1, len(m.snapshot.Inventory))
		return m, nil

	case key.Matches(msg, m.keys.Select):
		id, ok := m.selectedID()
		if !ok {
			return m, nil
		}
		return m, m.action(func(ctx context.Context) error {
			return m.ctrl.SetOfflinePreference(ctx, id)
		})

	case key.Matches(msg, m.keys.MakeDefault):
		id, ok := m.selectedID()
		if !ok {
			return m, nil
		}
		return m, m.action(func(ctx context.Context) error {
			return m.ctrl.SetDefaultDevice(ctx, id)
		})

	case key.Matches(msg, m.keys.Refresh):
		return m, m.action(m.ctrl.RefreshInventory)

	case key.Matches(msg, m.keys.Monitoring):
		return m, m.action(m.ctrl.ToggleMonitoring)

	case key.Matches(msg, m.keys.Notify):
		return m, m.action(m.ctrl.ToggleNotifications)

	case key.Matches(msg, m.keys.BootLaunch):
		return m, m.action(m.ctrl.ToggleBootLaunch)

	case key.Matches(msg, m.keys.CycleTheme):
		next := NextTheme(m.theme.Name)
		m.theme = GetTheme(next)
		return m, m.action(func(ctx context.Context) error {
			return m.ctrl.SetTheme(ctx, next)
		})
	}

	return m, nil
}

func (m Model) selectedID() (string, bool) {
	inv := m.snapshot.Inventory
	if m.cursor < 0 || m.cursor >= len(inv) {
		return "", false
	}
	return inv[m.cursor].ID, true
}

func (m Model) window(state string) prefs.Window {
	return prefs.Window{State: state, Width: m.width, Height: m.height}
}

// syncKeyLabels renders the toggle labels from the current modes
func (m *Model) syncKeyLabels() {
	m.keys.Monitoring.SetHelp("p", monitoringLabel(m.snapshot.Monitoring))
	m.keys.Notify.SetHelp("n", notificationsLabel(m.snapshot.Notifications))
	m.keys.BootLaunch.SetHelp("b", bootLaunchLabel(m.snapshot.BootLaunch))
	m.keys.BootLaunch.SetEnabled(m.snapshot.BootLaunch != reconciler.BootLaunchUnavailable)
}

// Messages

type snapshotMsg reconciler.Snapshot

type snapshotsClosedMsg struct{}

type actionResultMsg struct {
	err error
}

// Commands

func waitForSnapshot(ch <-chan reconciler.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return snapshotsClosedMsg{}
		}
		return snapshotMsg(snap)
	}
}

// action runs a reconciler command off the update loop
func (m Model) action(fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return actionResultMsg{err: fn(ctx)}
	}
}

// Run starts the Bubble Tea program and reports whether the user chose to
// keep running in the background.
func Run(opts Options) (hidden bool, err error) {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(opts.Context))
	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.unsubscribe()
		hidden = fm.Hidden()
	}
	return hidden, err
}
