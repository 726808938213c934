package app

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/777genius/audioswitch/internal/autostart"
	"github.com/777genius/audioswitch/internal/device"
	"github.com/777genius/audioswitch/internal/endpoint"
	"github.com/777genius/audioswitch/internal/reconciler"
)

// Inventory enumerates active output devices the same way the reconciler does
func Inventory(ctx context.Context, enum endpoint.Enumerator) (device.Inventory, error) {
	endpoints, err := enum.ListActiveRenderDevices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list output devices: %w", err)
	}
	if len(endpoints) == 0 {
		return nil, nil
	}

	defaultID, err := enum.DefaultRenderDeviceID(ctx, endpoint.RoleMultimedia)
	if err != nil {
		defaultID = ""
	}

	ids := make([]string, len(endpoints))
	names := make([]string, len(endpoints))
	for i, ep := range endpoints {
		ids[i] = ep.ID
		names[i] = ep.Name
	}
	return device.Build(ids, names, defaultID), nil
}

// PrintInventory writes one row per device, marking the default and the
// offline preference.
func PrintInventory(w io.Writer, inv device.Inventory, offlineID string) error {
	if len(inv) == 0 {
		_, err := fmt.Fprintln(w, "No active output devices")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\tID\tNAME\t")
	for _, d := range inv {
		mark := " "
		if d.IsDefault {
			mark = "*"
		}
		tag := ""
		if offlineID != "" && d.ID == offlineID {
			tag = "[battery]"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", mark, d.ID, d.Name, tag)
	}
	return tw.Flush()
}

// ListDevices prints the current inventory using the configured backend
func ListDevices(ctx context.Context, configPath string, w io.Writer) error {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return err
	}
	backend, err := endpoint.New(cfg.Backend)
	if err != nil {
		return fmt.Errorf("failed to open audio backend: %w", err)
	}

	inv, err := Inventory(ctx, backend)
	if err != nil {
		return err
	}

	store := newPrefsStore(cfg)
	p, err := store.Load()
	if err != nil {
		p.OfflineDevice = ""
	}
	return PrintInventory(w, inv, p.OfflineDevice)
}

// SetOffline stores id as the battery-mode device without starting the app.
// It takes effect on the next start; a running instance keeps its own choice.
func SetOffline(configPath, id string, w io.Writer) error {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return err
	}
	return setOffline(newPrefsStore(cfg), id, w)
}

func setOffline(store reconciler.PreferenceStore, id string, w io.Writer) error {
	p, err := store.Load()
	if err != nil {
		fmt.Fprintf(w, "Warning: %v, starting from defaults\n", err)
	}
	p.OfflineDevice = id
	if err := store.Save(p); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	fmt.Fprintf(w, "Offline device set to %s\n", id)
	return nil
}

// Boot manages launch-at-login registration: enable, disable or status
func Boot(action string, w io.Writer) error {
	m, err := autostart.New("")
	if err != nil {
		return err
	}
	return boot(m, action, w)
}

func boot(m autostart.Manager, action string, w io.Writer) error {
	switch action {
	case "enable":
		if err := m.Enable(); err != nil {
			return fmt.Errorf("failed to enable launch at boot: %w", err)
		}
	case "disable":
		if err := m.Disable(); err != nil {
			return fmt.Errorf("failed to disable launch at boot: %w", err)
		}
	case "status", "":
	default:
		return fmt.Errorf("unknown boot action: %s", action)
	}

	enabled, err := m.IsEnabled()
	if err != nil {
		return fmt.Errorf("failed to read launch at boot: %w", err)
	}
	state := reconciler.BootLaunchDisabled
	if enabled {
		state = reconciler.BootLaunchEnabled
	}
	fmt.Fprintf(w, "Launch at boot: %s\n", state)
	return nil
}
