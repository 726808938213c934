// ABOUTME: Launch-at-boot registration for the current user.
// ABOUTME: Registry Run key (Windows), XDG autostart entry (Linux), LaunchAgent (macOS).

package autostart

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/777genius/audioswitch/internal/platform"
)

// EntryName is the name the registration is stored under
const EntryName = "AudioSwitch"

// ErrUnsupported is returned when boot launch cannot be managed on this platform
var ErrUnsupported = errors.New("launch at boot not supported on this platform")

// Manager registers and unregisters the app for launch at login.
type Manager interface {
	IsEnabled() (bool, error)
	Enable() error
	Disable() error
}

// New returns the manager for the current platform.
// execPath is the binary to launch; empty means the running executable.
func New(execPath string) (Manager, error) {
	if execPath == "" {
		exe, err := platform.Executable()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve executable: %w", err)
		}
		execPath = exe
	}

	switch {
	case platform.IsWindows():
		return newRegistry(execPath)
	case platform.IsMacOS():
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		return &LaunchAgent{Dir: filepath.Join(home, "Library", "LaunchAgents"), ExecPath: execPath}, nil
	case platform.IsLinux():
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve config dir: %w", err)
		}
		return &XDG{Dir: filepath.Join(base, "autostart"), ExecPath: execPath}, nil
	default:
		return nil, ErrUnsupported
	}
}

// commandLine is what gets launched at login
func commandLine(execPath string) string {
	if strings.ContainsAny(execPath, " \t") {
		return `"` + execPath + `" run`
	}
	return execPath + " run"
}

// writeFile writes data to path, creating the directory first
func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create autostart dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write autostart entry: %w", err)
	}
	return nil
}

func removeFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove autostart entry: %w", err)
	}
	return nil
}
