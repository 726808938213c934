package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/777genius/audioswitch/internal/reconciler"
)

const (
	cursorMarker  = "> "
	defaultMarker = "(default)"
	offlineMarker = "[battery]"
)

// View implements tea.Model.
func (m Model) View() string {
	if m.hidden {
		return ""
	}

	s := m.theme.Styles()
	var b strings.Builder

	header := s.Header.Render(m.snapshot.Title())
	if m.width > 0 {
		header = s.Header.Width(m.width).Render(m.snapshot.Title())
	}
	b.WriteString(header)
	b.WriteString("\n\n")

	if status := m.statusLine(s); status != "" {
		b.WriteString(status)
		b.WriteString("\n\n")
	}

	b.WriteString(m.deviceList(s))
	b.WriteString("\n")

	if m.lastErr != "" {
		b.WriteString(s.Danger.Render("Error: " + m.lastErr))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// statusLine describes why automatic switching is not running, if it is not
func (m Model) statusLine(s Styles) string {
	snap := m.snapshot
	switch {
	case snap.AutoSwitch == reconciler.AutoSwitchUnavailable:
		msg := "Automatic switching unavailable"
		if snap.AutoSwitchError != "" {
			msg += ": " + snap.AutoSwitchError
		}
		return s.Danger.Render(msg)
	case snap.ManualPause:
		return s.Warning.Render("Monitoring paused")
	case snap.AutoSuspended:
		return s.Warning.Render("Monitoring suspended: fewer than two output devices")
	}
	return s.Muted.Render(fmt.Sprintf("Monitoring %s, notifications %s",
		snap.Monitoring, snap.Notifications))
}

func (m Model) deviceList(s Styles) string {
	inv := m.snapshot.Inventory
	if len(inv) == 0 {
		return s.Muted.Render("No active output devices")
	}

	rows := make([]string, 0, len(inv))
	for i, d := range inv {
		prefix := strings.Repeat(" ", lipgloss.Width(cursorMarker))
		if i == m.cursor {
			prefix = s.Cursor.Render(cursorMarker)
		}

		name := d.Name
		if name == "" {
			name = d.ID
		}

		style := s.Text
		if d.IsDefault {
			style = s.DefaultDevice
		}
		if m.snapshot.IsOfflinePreference(d.ID) {
			style = style.Inherit(s.OfflineDevice).Underline(true)
		}

		var tags []string
		if d.IsDefault {
			tags = append(tags, defaultMarker)
		}
		if m.snapshot.IsOfflinePreference(d.ID) {
			tags = append(tags, offlineMarker)
		}

		row := prefix + style.Render(name)
		if len(tags) > 0 {
			row += " " + s.Muted.Render(strings.Join(tags, " "))
		}
		rows = append(rows, row)
	}
	return strings.Join(rows, "\n")
}

// initialCursor starts on the offline preference, then the default device
func initialCursor(snap reconciler.Snapshot) int {
	for i, d := range snap.Inventory {
		if snap.IsOfflinePreference(d.ID) {
			return i
		}
	}
	for i, d := range snap.Inventory {
		if d.IsDefault {
			return i
		}
	}
	return 0
}

func clampCursor(cursor, n int) int {
	if n == 0 || cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}

func monitoringLabel(m reconciler.Monitoring) string {
	if m == reconciler.MonitoringActive {
		return "Pause Monitoring"
	}
	return "Resume Monitoring"
}

func notificationsLabel(n reconciler.Notifications) string {
	if n == reconciler.NotificationsEnabled {
		return "Disable Notifications"
	}
	return "Enable Notifications"
}

func bootLaunchLabel(b reconciler.BootLaunch) string {
	switch b {
	case reconciler.BootLaunchEnabled:
		return "Disable Launch at Boot"
	case reconciler.BootLaunchDisabled:
		return "Enable Launch at Boot"
	default:
		return "Launch at Boot unavailable"
	}
}
