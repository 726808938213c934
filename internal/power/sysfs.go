package power

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

const defaultSysfsRoot = "/sys/class/power_supply"

// Sysfs reads the line status from the Linux power_supply class
type Sysfs struct {
	root string
}

// NewSysfs creates a sysfs reader rooted at root (default /sys/class/power_supply)
func NewSysfs(root string) *Sysfs {
	if root == "" {
		root = defaultSysfsRoot
	}
	return &Sysfs{root: root}
}

// Available reports whether any power supply is exposed
func (s *Sysfs) Available() bool {
	entries, err := os.ReadDir(s.root)
	return err == nil && len(entries) > 0
}

// ReadStatus returns Online when any mains adapter is online, Offline when
// mains adapters exist but none is online or a battery is discharging, and
// Unknown otherwise.
func (s *Sysfs) ReadStatus(ctx context.Context) (Status, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return StatusUnknown, err
	}

	sawMains := false
	discharging := false

	for _, entry := range entries {
		dir := filepath.Join(s.root, entry.Name())
		switch readAttr(dir, "type") {
		case "Mains", "USB", "USB_C", "USB_PD":
			online := readAttr(dir, "online")
			if online == "" {
				continue
			}
			sawMains = true
			if online == "1" {
				return StatusOnline, nil
			}
		case "Battery":
			if readAttr(dir, "scope") == "Device" {
				continue // peripheral batteries (mice, headsets)
			}
			if readAttr(dir, "status") == "Discharging" {
				discharging = true
			}
		}
	}

	if sawMains || discharging {
		return StatusOffline, nil
	}
	return StatusUnknown, nil
}

func readAttr(dir, name string) string {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
