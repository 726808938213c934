package endpoint

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

const switchAudioBin = "SwitchAudioSource"

// SwitchAudio drives CoreAudio through the SwitchAudioSource CLI.
// Device UIDs are used as endpoint ids; the communications role maps to
// the "system" (alert sound) device.
type SwitchAudio struct {
	runner Runner
}

type switchAudioDevice struct {
	Name string `json:"name"`
	Type string `json:"type"`
	ID   string `json:"id"`
	UID  string `json:"uid"`
}

// NewSwitchAudio creates a SwitchAudioSource backend
func NewSwitchAudio(runner Runner) *SwitchAudio {
	return &SwitchAudio{runner: runner}
}

// Name returns the backend name
func (s *SwitchAudio) Name() string { return "switchaudio" }

// ListActiveRenderDevices lists output devices
func (s *SwitchAudio) ListActiveRenderDevices(ctx context.Context) ([]Endpoint, error) {
	out, err := s.runner.Run(ctx, switchAudioBin, "-a", "-t", "output", "-f", "json")
	if err != nil {
		return nil, fmt.Errorf("failed to list output devices: %w", err)
	}

	devices, err := parseSwitchAudioLines(out)
	if err != nil {
		return nil, err
	}

	result := make([]Endpoint, 0, len(devices))
	for _, d := range devices {
		if d.Type != "" && d.Type != "output" {
			continue
		}
		result = append(result, Endpoint{ID: d.key(), Name: d.Name})
	}
	return result, nil
}

// DefaultRenderDeviceID returns the current output (or system) device
func (s *SwitchAudio) DefaultRenderDeviceID(ctx context.Context, role Role) (string, error) {
	out, err := s.runner.Run(ctx, switchAudioBin, "-c", "-t", switchAudioType(role), "-f", "json")
	if err != nil {
		return "", fmt.Errorf("failed to query current device: %w", err)
	}

	devices, err := parseSwitchAudioLines(out)
	if err != nil {
		return "", err
	}
	if len(devices) == 0 {
		return "", nil
	}
	return devices[0].key(), nil
}

// SetDefault switches the device for the role
func (s *SwitchAudio) SetDefault(ctx context.Context, id string, role Role) error {
	if _, err := s.runner.Run(ctx, switchAudioBin, "-u", id, "-t", switchAudioType(role)); err != nil {
		if strings.Contains(err.Error(), "not found") {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return fmt.Errorf("failed to set %s device: %w", role, err)
	}
	return nil
}

func switchAudioType(role Role) string {
	if role == RoleCommunications {
		return "system"
	}
	return "output"
}

func (d switchAudioDevice) key() string {
	if d.UID != "" {
		return d.UID
	}
	return d.ID
}

// parseSwitchAudioLines decodes one JSON object per line
func parseSwitchAudioLines(out []byte) ([]switchAudioDevice, error) {
	var devices []switchAudioDevice

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var d switchAudioDevice
		if err := json.Unmarshal([]byte(line), &d); err != nil {
			return nil, fmt.Errorf("failed to parse SwitchAudioSource output: %w", err)
		}
		devices = append(devices, d)
	}
	return devices, nil
}
