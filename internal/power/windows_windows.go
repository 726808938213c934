//go:build windows

package power

import (
	"context"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

var procGetSystemPowerStatus = windows.NewLazySystemDLL("kernel32.dll").NewProc("GetSystemPowerStatus")

// systemPowerStatus mirrors SYSTEM_POWER_STATUS
type systemPowerStatus struct {
	ACLineStatus        byte
	BatteryFlag         byte
	BatteryLifePercent  byte
	SystemStatusFlag    byte
	BatteryLifeTime     uint32
	BatteryFullLifeTime uint32
}

// WindowsReader reads the AC line status with GetSystemPowerStatus
type WindowsReader struct{}

// NewWindowsReader creates the Win32 reader
func NewWindowsReader() (*WindowsReader, error) {
	if err := procGetSystemPowerStatus.Find(); err != nil {
		return nil, fmt.Errorf("GetSystemPowerStatus: %w", err)
	}
	return &WindowsReader{}, nil
}

// ReadStatus maps ACLineStatus 0/1/255 to Offline/Online/Unknown
func (w *WindowsReader) ReadStatus(ctx context.Context) (Status, error) {
	var sps systemPowerStatus
	ret, _, err := procGetSystemPowerStatus.Call(uintptr(unsafe.Pointer(&sps)))
	if ret == 0 {
		return StatusUnknown, fmt.Errorf("GetSystemPowerStatus: %w", err)
	}

	switch sps.ACLineStatus {
	case 0:
		return StatusOffline, nil
	case 1:
		return StatusOnline, nil
	default:
		return StatusUnknown, nil
	}
}
