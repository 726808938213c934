package autostart

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/777genius/audioswitch/internal/platform"
)

// XDG manages a freedesktop autostart entry (~/.config/autostart/audioswitch.desktop)
type XDG struct {
	Dir      string
	ExecPath string
}

func (x *XDG) path() string {
	return filepath.Join(x.Dir, "audioswitch.desktop")
}

// IsEnabled reports whether the desktop entry exists
func (x *XDG) IsEnabled() (bool, error) {
	return platform.FileExists(x.path()), nil
}

// Enable writes the desktop entry
func (x *XDG) Enable() error {
	return writeFile(x.path(), []byte(x.desktopEntry()))
}

// Disable removes the desktop entry
func (x *XDG) Disable() error {
	return removeFile(x.path())
}

func (x *XDG) desktopEntry() string {
	var b strings.Builder
	b.WriteString("[Desktop Entry]\n")
	b.WriteString("Type=Application\n")
	fmt.Fprintf(&b, "Name=%s\n", EntryName)
	b.WriteString("Comment=Switch audio output when the power source changes\n")
	fmt.Fprintf(&b, "Exec=%s\n", commandLine(x.ExecPath))
	b.WriteString("Terminal=false\n")
	b.WriteString("X-GNOME-Autostart-enabled=true\n")
	return b.String()
}
