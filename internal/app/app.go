// ABOUTME: Application context and lifecycle for the audio switcher.
// ABOUTME: Wires platform backends into the reconciler and decides headless vs interactive.

package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/777genius/audioswitch/internal/audio"
	"github.com/777genius/audioswitch/internal/autostart"
	"github.com/777genius/audioswitch/internal/config"
	"github.com/777genius/audioswitch/internal/endpoint"
	"github.com/777genius/audioswitch/internal/logging"
	"github.com/777genius/audioswitch/internal/notifier"
	"github.com/777genius/audioswitch/internal/platform"
	"github.com/777genius/audioswitch/internal/power"
	"github.com/777genius/audioswitch/internal/prefs"
	"github.com/777genius/audioswitch/internal/reconciler"
	"github.com/777genius/audioswitch/internal/ui"
)

// BackgroundMessage is shown once when the app starts without a window
const BackgroundMessage = "AudioSwitch is running in the background"

// Mode selects how the app presents itself
type Mode string

const (
	// ModeAuto runs headless when an offline device is already chosen and present
	ModeAuto Mode = "auto"
	// ModeHeadless never opens the interactive view
	ModeHeadless Mode = "headless"
	// ModeUI always opens the interactive view first
	ModeUI Mode = "ui"
)

// Chime is the switch sound, released when the app exits
type Chime interface {
	Play()
	Close() error
}

// ShowFunc runs the interactive view and reports whether the user hid it
type ShowFunc func(opts ui.Options) (hidden bool, err error)

// Context holds the collaborators of one running instance.
type Context struct {
	Config     *config.Config
	Backend    endpoint.Backend
	Power      power.Source
	Notifier   reconciler.Notifier
	Chime      Chime
	Boot       autostart.Manager
	Prefs      reconciler.PreferenceStore
	Reconciler *reconciler.Reconciler

	// Show is the interactive view; nil means ui.Run
	Show ShowFunc
}

// NewContext builds every platform collaborator from cfg. Only a missing
// device backend is fatal; power and boot launch degrade to unavailable.
func NewContext(cfg *config.Config) (*Context, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	log := logging.Component("app")

	backend, err := endpoint.New(cfg.Backend)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio backend: %w", err)
	}
	log.Info().Str("backend", backend.Name()).Msg("audio backend ready")

	src, err := power.New(power.Options{
		Source:       cfg.Power.Source,
		PollInterval: cfg.PollInterval(),
	})
	if err != nil {
		log.Warn().Err(err).Str("source", cfg.Power.Source).Msg("power source unavailable")
		src = nil
	}

	boot, err := autostart.New("")
	if err != nil {
		log.Warn().Err(err).Msg("launch at boot unavailable")
		boot = nil
	}

	c := &Context{
		Config:   cfg,
		Backend:  backend,
		Power:    src,
		Notifier: notifier.New(cfg),
		Chime:    audio.NewChime(cfg),
		Boot:     boot,
		Prefs:    newPrefsStore(cfg),
	}
	if err := c.wire(); err != nil {
		return nil, err
	}
	return c, nil
}

// wire creates the reconciler from the collaborators already set on c
func (c *Context) wire() error {
	opts := reconciler.Options{
		Enumerator: c.Backend,
		Setter:     c.Backend,
		Notifier:   c.Notifier,
		Prefs:      c.Prefs,
	}
	if c.Power != nil {
		opts.Power = c.Power
	}
	if c.Boot != nil {
		opts.Boot = c.Boot
	}
	if c.Chime != nil {
		opts.Chime = c.Chime
	}

	r, err := reconciler.New(opts)
	if err != nil {
		return fmt.Errorf("failed to create reconciler: %w", err)
	}
	c.Reconciler = r
	return nil
}

func newPrefsStore(cfg *config.Config) *prefs.Store {
	return prefs.NewStore(cfg.PrefsPath)
}

// Close releases resources that outlive the reconciler
func (c *Context) Close() {
	if c.Chime != nil {
		if err := c.Chime.Close(); err != nil {
			logging.Warn("Failed to close chime: %v", err)
		}
	}
}

// Serve runs the reconciler until ctx is cancelled or the user quits the
// interactive view.
func (c *Context) Serve(ctx context.Context, mode Mode) error {
	log := logging.Component("app")

	rctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runErr := make(chan error, 1)
	go func() {
		runErr <- c.Reconciler.Run(rctx)
	}()

	select {
	case <-c.Reconciler.Ready():
	case err := <-runErr:
		return err
	}

	snap := c.Reconciler.Snapshot()
	hidden := startHidden(mode, snap)
	log.Info().
		Str("mode", string(mode)).
		Bool("hidden", hidden).
		Str("power", snap.PowerLabel()).
		Msg("app started")

	if hidden {
		if snap.Notifications == reconciler.NotificationsEnabled {
			if err := c.Notifier.Notify(reconciler.AppTitle, BackgroundMessage); err != nil {
				log.Warn().Err(err).Msg("failed to show startup notification")
			}
		}
	} else {
		show := c.Show
		if show == nil {
			show = ui.Run
		}
		var err error
		hidden, err = show(ui.Options{Context: rctx, Controller: c.Reconciler})
		if ctx.Err() != nil {
			// interrupted by a signal, not a view failure
			err = nil
		}
		if err != nil {
			log.Error().Err(err).Msg("interactive view failed")
		}
		if !hidden {
			log.Info().Msg("quit from interactive view")
			cancel()
			return waitRun(runErr, err)
		}
		log.Info().Msg("continuing in the background")
	}

	select {
	case <-ctx.Done():
	case <-c.Reconciler.Done():
	}
	cancel()
	return waitRun(runErr, nil)
}

func waitRun(runErr <-chan error, viewErr error) error {
	err := <-runErr
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if viewErr != nil {
		return fmt.Errorf("interactive view: %w", viewErr)
	}
	return err
}

// startHidden reports whether the app can start without showing the view
func startHidden(mode Mode, snap reconciler.Snapshot) bool {
	switch mode {
	case ModeHeadless:
		return true
	case ModeUI:
		return false
	}
	_, found := snap.Inventory.Find(snap.OfflinePreference)
	return found
}

// Options configures Run
type Options struct {
	Mode       Mode
	ConfigPath string
}

// Run loads configuration, sets up logging and serves until ctx is done.
func Run(ctx context.Context, opts Options) error {
	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	mode := opts.Mode
	if mode == "" {
		mode = ModeAuto
	}

	logPath, err := logging.InitLogger(platform.DataDir())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logging.Close()

	logging.SetLevel(cfg.LogLevel)
	logging.SetPrefix(fmt.Sprintf("PID:%d", os.Getpid()))
	// stderr belongs to the interactive view unless we never show it
	logging.SetConsole(cfg.LogToStderr && mode == ModeHeadless)
	logging.Debug("Logging to %s", logPath)

	c, err := NewContext(cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	return c.Serve(ctx, mode)
}

// LoadConfig reads and validates the config file ("" means the default path)
func LoadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}
