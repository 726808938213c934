//go:build windows

package autostart

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"
)

const runKey = `SOFTWARE\Microsoft\Windows\CurrentVersion\Run`

// Registry manages the HKCU Run value
type Registry struct {
	ExecPath string
}

func newRegistry(execPath string) (Manager, error) {
	return &Registry{ExecPath: execPath}, nil
}

// IsEnabled reports whether the Run value exists
func (r *Registry) IsEnabled() (bool, error) {
	k, err := registry.OpenKey(registry.CURRENT_USER, runKey, registry.QUERY_VALUE)
	if err != nil {
		return false, fmt.Errorf("open Run key: %w", err)
	}
	defer k.Close()

	if _, _, err := k.GetStringValue(EntryName); err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read Run value: %w", err)
	}
	return true, nil
}

// Enable sets the Run value to the executable command line
func (r *Registry) Enable() error {
	k, _, err := registry.CreateKey(registry.CURRENT_USER, runKey, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("open Run key: %w", err)
	}
	defer k.Close()

	if err := k.SetStringValue(EntryName, commandLine(r.ExecPath)); err != nil {
		return fmt.Errorf("write Run value: %w", err)
	}
	return nil
}

// Disable deletes the Run value
func (r *Registry) Disable() error {
	k, err := registry.OpenKey(registry.CURRENT_USER, runKey, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("open Run key: %w", err)
	}
	defer k.Close()

	if err := k.DeleteValue(EntryName); err != nil && !errors.Is(err, registry.ErrNotExist) {
		return fmt.Errorf("delete Run value: %w", err)
	}
	return nil
}
