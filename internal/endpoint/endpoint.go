// ABOUTME: Platform audio endpoint backends: list render devices, read and set the default.
// ABOUTME: pactl (Linux), SwitchAudioSource (macOS) and WASAPI via malgo + COM (Windows).

package endpoint

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/777genius/audioswitch/internal/platform"
)

// Role is one of the default-device designations the OS keeps per category
type Role int

const (
	RoleMultimedia Role = iota
	RoleCommunications
)

func (r Role) String() string {
	switch r {
	case RoleMultimedia:
		return "multimedia"
	case RoleCommunications:
		return "communications"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// Roles lists every role a switch has to set, in the order they are applied
var Roles = []Role{RoleMultimedia, RoleCommunications}

var (
	// ErrNotFound is returned when the platform does not know the endpoint id
	ErrNotFound = errors.New("audio endpoint not found")
	// ErrUnsupported is returned when a backend cannot run on this platform
	ErrUnsupported = errors.New("audio backend not supported on this platform")
)

// Endpoint is one active render endpoint
type Endpoint struct {
	ID   string
	Name string
}

// Enumerator lists currently active output endpoints
type Enumerator interface {
	ListActiveRenderDevices(ctx context.Context) ([]Endpoint, error)
	DefaultRenderDeviceID(ctx context.Context, role Role) (string, error)
}

// Setter commits a new default render endpoint for one role
type Setter interface {
	SetDefault(ctx context.Context, id string, role Role) error
}

// Backend is a full platform implementation
type Backend interface {
	Enumerator
	Setter
	Name() string
}

// Runner executes an external command and returns its stdout
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

const commandTimeout = 5 * time.Second

// ExecRunner runs commands with os/exec
type ExecRunner struct{}

// Run executes name with args, bounded by commandTimeout
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return nil, fmt.Errorf("%s: %w: %s", name, err, msg)
	}
	return stdout.Bytes(), nil
}

// New returns the backend with the given name.
// "auto" (or empty) picks the native backend for the running OS.
func New(name string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		switch {
		case platform.IsWindows():
			return newWASAPIBackend()
		case platform.IsMacOS():
			return NewSwitchAudio(ExecRunner{}), nil
		case platform.IsLinux():
			return NewPactl(ExecRunner{}), nil
		default:
			return nil, ErrUnsupported
		}
	case "pactl":
		return NewPactl(ExecRunner{}), nil
	case "switchaudio":
		return NewSwitchAudio(ExecRunner{}), nil
	case "wasapi":
		return newWASAPIBackend()
	default:
		return nil, fmt.Errorf("unknown audio backend: %s", name)
	}
}

func newWASAPIBackend() (Backend, error) {
	w, err := NewWASAPI()
	if err != nil {
		return nil, err
	}
	return w, nil
}
