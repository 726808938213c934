// ABOUTME: Power-line status model and event sources (UPower D-Bus, sysfs, pmset, Win32).
// ABOUTME: Sources deliver Events asynchronously and stop synchronously.

package power

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/777genius/audioswitch/internal/logging"
	"github.com/777genius/audioswitch/internal/platform"
)

// Status is the power-line status
type Status int

const (
	StatusUnknown Status = iota
	StatusOnline
	StatusOffline
)

func (s Status) String() string {
	switch s {
	case StatusOnline:
		return "online"
	case StatusOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// OnBattery reports whether the status means running from battery
func (s Status) OnBattery() bool {
	return s == StatusOffline
}

// Event is one power-status notification
type Event struct {
	Status Status
	Source string
	At     time.Time
}

// ErrUnsupported is returned when a source cannot run on this platform
var ErrUnsupported = errors.New("power source not supported on this platform")

// StatusReader performs a direct, synchronous power-status check
type StatusReader interface {
	ReadStatus(ctx context.Context) (Status, error)
}

// Source delivers power events asynchronously.
// Start is a no-op while running. Stop returns only after the delivering
// goroutine has exited, so no event is sent after Stop returns.
type Source interface {
	StatusReader
	Name() string
	Start(ctx context.Context, events chan<- Event) error
	Stop()
}

// Runner executes an external command and returns its stdout
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// Options configure New
type Options struct {
	Source       string        // auto, upower, sysfs, pmset, windows
	PollInterval time.Duration // for polling sources
	Runner       Runner        // for pmset
	SysfsRoot    string        // defaults to /sys/class/power_supply
}

// New builds the source named in opts. "auto" picks by OS and, on Linux,
// prefers UPower signals over sysfs polling.
func New(opts Options) (Source, error) {
	name := strings.ToLower(strings.TrimSpace(opts.Source))

	switch name {
	case "", "auto":
		switch {
		case platform.IsLinux():
			upower, err := NewUPower()
			if err == nil {
				return upower, nil
			}
			logging.Debug("UPower unavailable, falling back to sysfs: %v", err)
			return New(Options{Source: "sysfs", PollInterval: opts.PollInterval, SysfsRoot: opts.SysfsRoot})
		case platform.IsMacOS():
			return New(Options{Source: "pmset", PollInterval: opts.PollInterval, Runner: opts.Runner})
		case platform.IsWindows():
			return New(Options{Source: "windows", PollInterval: opts.PollInterval})
		default:
			return nil, ErrUnsupported
		}
	case "upower":
		upower, err := NewUPower()
		if err != nil {
			return nil, err
		}
		return upower, nil
	case "sysfs":
		reader := NewSysfs(opts.SysfsRoot)
		if !reader.Available() {
			return nil, fmt.Errorf("sysfs: %w", ErrUnsupported)
		}
		return NewPoller("sysfs", reader, opts.PollInterval), nil
	case "pmset":
		pmset, err := NewPmset(opts.Runner)
		if err != nil {
			return nil, err
		}
		return NewPoller("pmset", pmset, opts.PollInterval), nil
	case "windows":
		win, err := NewWindowsReader()
		if err != nil {
			return nil, err
		}
		return NewPoller("windows", win, opts.PollInterval), nil
	default:
		return nil, fmt.Errorf("unknown power source: %s", opts.Source)
	}
}
