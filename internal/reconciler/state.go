package reconciler

import (
	"time"

	"github.com/777genius/audioswitch/internal/device"
	"github.com/777genius/audioswitch/internal/prefs"
)

// Monitoring reports whether power events are being followed
type Monitoring int

const (
	MonitoringActive Monitoring = iota
	MonitoringPaused
)

func (m Monitoring) String() string {
	if m == MonitoringActive {
		return "active"
	}
	return "paused"
}

// Notifications reports whether balloons are shown
type Notifications int

const (
	NotificationsEnabled Notifications = iota
	NotificationsDisabled
)

func (n Notifications) String() string {
	if n == NotificationsEnabled {
		return "enabled"
	}
	return "disabled"
}

// BootLaunch reports the launch-at-login registration
type BootLaunch int

const (
	BootLaunchDisabled BootLaunch = iota
	BootLaunchEnabled
	BootLaunchUnavailable
)

func (b BootLaunch) String() string {
	switch b {
	case BootLaunchEnabled:
		return "enabled"
	case BootLaunchDisabled:
		return "disabled"
	default:
		return "unavailable"
	}
}

// AutoSwitch reports whether power-driven switching can work at all
type AutoSwitch int

const (
	AutoSwitchAvailable AutoSwitch = iota
	AutoSwitchUnavailable
)

func (a AutoSwitch) String() string {
	if a == AutoSwitchAvailable {
		return "available"
	}
	return "unavailable"
}

// Snapshot is an immutable view of reconciler state, published after every command
type Snapshot struct {
	Seq       uint64
	UpdatedAt time.Time

	Inventory         device.Inventory
	OnBattery         bool
	OfflinePreference string
	// PendingRestoreID is empty whenever OnBattery is false
	PendingRestoreID string

	Monitoring    Monitoring
	ManualPause   bool
	AutoSuspended bool
	Notifications Notifications
	BootLaunch    BootLaunch
	AutoSwitch    AutoSwitch
	// AutoSwitchError explains AutoSwitchUnavailable
	AutoSwitchError string

	Theme  string
	Window prefs.Window
}

// Clone returns a copy whose inventory shares no memory with s
func (s Snapshot) Clone() Snapshot {
	s.Inventory = s.Inventory.Clone()
	return s
}

// PowerLabel is the human power state shown in titles and notifications
func (s Snapshot) PowerLabel() string {
	if s.OnBattery {
		return TitleOnBattery
	}
	return TitlePluggedIn
}

// Title is the header text, e.g. "AudioSwitch - On Battery"
func (s Snapshot) Title() string {
	return AppTitle + " - " + s.PowerLabel()
}

// Default returns the device marked default in the inventory
func (s Snapshot) Default() (device.Device, bool) {
	return s.Inventory.Default()
}

// IsOfflinePreference reports whether id is the chosen battery-mode device
func (s Snapshot) IsOfflinePreference(id string) bool {
	return id != "" && id == s.OfflinePreference
}
