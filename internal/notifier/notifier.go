package notifier

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gen2brain/beeep"

	"github.com/777genius/audioswitch/internal/config"
	"github.com/777genius/audioswitch/internal/logging"
	"github.com/777genius/audioswitch/internal/platform"
)

// AppName is the fixed application name used for Windows toasts
const AppName = "AudioSwitch"

const maxOSC9Length = 200

var (
	// desktopNotify is swapped in tests
	desktopNotify = func(title, message, icon string) error {
		return beeep.Notify(title, message, icon)
	}

	openTTY = func() (io.WriteCloser, error) {
		return os.OpenFile("/dev/tty", os.O_WRONLY, 0)
	}
)

// Notifier shows balloon notifications
type Notifier struct {
	method  string
	appIcon string
}

// New creates a new notifier
func New(cfg *config.Config) *Notifier {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	appIcon := cfg.Notifications.AppIcon
	if appIcon != "" && !platform.FileExists(appIcon) {
		logging.Warn("App icon not found: %s, using default", appIcon)
		appIcon = ""
	}

	return &Notifier{
		method:  cfg.Notifications.Method,
		appIcon: appIcon,
	}
}

// Method returns the configured delivery method
func (n *Notifier) Method() string {
	if n.method == "" {
		return "auto"
	}
	return n.method
}

// Notify shows a notification with the given title and body
// Methods: "osc9", "beeep", "auto" (default)
func (n *Notifier) Notify(title, body string) error {
	switch n.Method() {
	case "osc9":
		// OSC9: Terminal escape sequence notification (iTerm2, kitty, etc.)
		return n.sendWithOSC9(title, body)
	default:
		return n.sendWithBeeep(title, body)
	}
}

// sendWithBeeep sends notification via beeep (cross-platform)
func (n *Notifier) sendWithBeeep(title, message string) error {
	// Windows: a fixed AppName keeps a single entry under
	// HKCU\SOFTWARE\Microsoft\Windows\CurrentVersion\Notifications\Settings.
	// macOS/Linux: a unique AppName keeps consecutive switches from replacing each other.
	originalAppName := beeep.AppName
	if platform.IsWindows() {
		beeep.AppName = AppName
	} else {
		beeep.AppName = fmt.Sprintf("audioswitch-%d", time.Now().UnixNano())
	}
	defer func() {
		beeep.AppName = originalAppName
	}()

	if err := desktopNotify(title, message, n.appIcon); err != nil {
		logging.Error("Failed to send notification: %v", err)
		return err
	}

	logging.Debug("Notification sent via beeep: title=%s", title)
	return nil
}

// sendWithOSC9 sends notification via OSC9 escape sequence
// Format: ESC ] 9 ; message ESC \
func (n *Notifier) sendWithOSC9(title, message string) error {
	tty, err := openTTY()
	if err != nil {
		logging.Error("Failed to open /dev/tty for OSC9: %v", err)
		return fmt.Errorf("failed to open /dev/tty: %w", err)
	}
	defer tty.Close()

	if _, err := io.WriteString(tty, formatOSC9(title, message)); err != nil {
		logging.Error("Failed to write OSC9 sequence: %v", err)
		return fmt.Errorf("failed to write OSC9: %w", err)
	}

	logging.Debug("Notification sent via OSC9: title=%s", title)
	return nil
}

func formatOSC9(title, message string) string {
	text := title
	if message != "" {
		text = fmt.Sprintf("%s: %s", title, message)
	}

	runes := []rune(text)
	if len(runes) > maxOSC9Length {
		text = string(runes[:maxOSC9Length-3]) + "..."
	}

	return fmt.Sprintf("\033]9;%s\033\\", text)
}
