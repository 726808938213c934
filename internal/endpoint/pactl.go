package endpoint

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"
)

// Pactl drives PulseAudio / PipeWire through the pactl CLI.
// Sink names are used as endpoint ids.
type Pactl struct {
	runner Runner
}

// NewPactl creates a pactl backend
func NewPactl(runner Runner) *Pactl {
	return &Pactl{runner: runner}
}

// Name returns the backend name
func (p *Pactl) Name() string { return "pactl" }

// ListActiveRenderDevices parses "pactl list sinks"
func (p *Pactl) ListActiveRenderDevices(ctx context.Context) ([]Endpoint, error) {
	out, err := p.runner.Run(ctx, "pactl", "list", "sinks")
	if err != nil {
		return nil, fmt.Errorf("failed to list sinks: %w", err)
	}
	return parsePactlSinks(out), nil
}

// DefaultRenderDeviceID returns the default sink. PulseAudio keeps a single
// default sink, so both roles resolve to it.
func (p *Pactl) DefaultRenderDeviceID(ctx context.Context, role Role) (string, error) {
	out, err := p.runner.Run(ctx, "pactl", "get-default-sink")
	if err == nil {
		if name := strings.TrimSpace(string(out)); name != "" {
			return name, nil
		}
	}

	// pactl < 15 has no get-default-sink
	out, err = p.runner.Run(ctx, "pactl", "info")
	if err != nil {
		return "", fmt.Errorf("failed to query default sink: %w", err)
	}
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "Default Sink:") {
			return strings.TrimSpace(strings.TrimPrefix(line, "Default Sink:")), nil
		}
	}
	return "", nil
}

// SetDefault sets the default sink. The communications role has no separate
// designation and is accepted without a second call.
func (p *Pactl) SetDefault(ctx context.Context, id string, role Role) error {
	if role == RoleCommunications {
		return nil
	}
	if _, err := p.runner.Run(ctx, "pactl", "set-default-sink", id); err != nil {
		if strings.Contains(err.Error(), "No such entity") {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return fmt.Errorf("failed to set default sink: %w", err)
	}
	return nil
}

// parsePactlSinks extracts Name/Description pairs from "pactl list sinks".
// Sinks without a description fall back to their name.
func parsePactlSinks(out []byte) []Endpoint {
	var result []Endpoint
	var current *Endpoint

	flush := func() {
		if current != nil && current.ID != "" {
			if current.Name == "" {
				current.Name = current.ID
			}
			result = append(result, *current)
		}
		current = nil
	}

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(line, "Sink #"):
			flush()
			current = &Endpoint{}
		case current == nil:
			continue
		case strings.HasPrefix(trimmed, "Name:"):
			current.ID = strings.TrimSpace(strings.TrimPrefix(trimmed, "Name:"))
		case strings.HasPrefix(trimmed, "Description:"):
			current.Name = strings.TrimSpace(strings.TrimPrefix(trimmed, "Description:"))
		}
	}
	flush()

	return result
}
