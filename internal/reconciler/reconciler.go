// ABOUTME: Power/device reconciler: follows AC/battery transitions and switches the default output.
// ABOUTME: All state is owned by the Run goroutine; callers talk to it through a command channel.

package reconciler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/777genius/audioswitch/internal/device"
	"github.com/777genius/audioswitch/internal/endpoint"
	"github.com/777genius/audioswitch/internal/errorhandler"
	"github.com/777genius/audioswitch/internal/logging"
	"github.com/777genius/audioswitch/internal/power"
	"github.com/777genius/audioswitch/internal/prefs"
)

// Notification titles and header text
const (
	AppTitle       = "AudioSwitch"
	TitleOnBattery = "On Battery"
	TitlePluggedIn = "Plugged In"
	changeBodyFmt  = "Audio Device Change -> %s"
)

const commandQueueSize = 16

var (
	// ErrStopped is returned for commands submitted after Run has returned
	ErrStopped = errors.New("reconciler stopped")
	// ErrAlreadyRunning is returned by a second concurrent Run
	ErrAlreadyRunning = errors.New("reconciler already running")
)

// Notifier shows a balloon notification
type Notifier interface {
	Notify(title, body string) error
}

// PreferenceStore loads and saves user preferences
type PreferenceStore interface {
	Load() (prefs.Prefs, error)
	Save(prefs.Prefs) error
}

// BootLaunchManager registers the app for launch at login
type BootLaunchManager interface {
	IsEnabled() (bool, error)
	Enable() error
	Disable() error
}

// Chime plays a short sound after a switch
type Chime interface {
	Play()
}

// Options wire the reconciler to its collaborators
type Options struct {
	Enumerator endpoint.Enumerator
	Setter     endpoint.Setter
	// Power may be nil; automatic switching is then reported unavailable
	Power    power.Source
	Notifier Notifier
	Prefs    PreferenceStore
	// Boot may be nil; boot launch is then reported unavailable
	Boot  BootLaunchManager
	Chime Chime
}

type commandKind int

const (
	cmdRefresh commandKind = iota
	cmdPower
	cmdSetOffline
	cmdSetDefault
	cmdPause
	cmdResume
	cmdToggleMonitoring
	cmdToggleNotifications
	cmdToggleBoot
	cmdUpdateWindow
	cmdSetTheme
)

var commandNames = map[commandKind]string{
	cmdRefresh:             "refresh",
	cmdPower:               "power",
	cmdSetOffline:          "set-offline",
	cmdSetDefault:          "set-default",
	cmdPause:               "pause",
	cmdResume:              "resume",
	cmdToggleMonitoring:    "toggle-monitoring",
	cmdToggleNotifications: "toggle-notifications",
	cmdToggleBoot:          "toggle-boot",
	cmdUpdateWindow:        "update-window",
	cmdSetTheme:            "set-theme",
}

func (k commandKind) String() string {
	if name, ok := commandNames[k]; ok {
		return name
	}
	return fmt.Sprintf("command(%d)", int(k))
}

type command struct {
	kind   commandKind
	id     string
	status power.Status
	window prefs.Window
	// epoch is the subscription that produced a power command, 0 for callers
	epoch uint64
	done  chan struct{}
}

// Reconciler keeps the default output device in line with the power source
type Reconciler struct {
	enumerator endpoint.Enumerator
	setter     endpoint.Setter
	source     power.Source
	notifier   Notifier
	store      PreferenceStore
	boot       BootLaunchManager
	chime      Chime

	cmds    chan command
	ready   chan struct{}
	stopped chan struct{}
	running atomic.Bool

	// owned by the Run goroutine
	runCtx           context.Context
	inventory        device.Inventory
	onBattery        bool
	pendingRestoreID string
	prefs            prefs.Prefs
	subscribed       bool
	epoch            uint64
	stopForward      context.CancelFunc
	forwarders       sync.WaitGroup
	manualPaused     bool
	autoSuspended    bool
	subscriptionErr  string
	bootState        BootLaunch

	mu       sync.RWMutex
	snap     Snapshot
	subs     map[int]chan Snapshot
	nextSub  int
	subsDone bool
}

// New creates a reconciler. Run must be called to start it.
func New(opts Options) (*Reconciler, error) {
	if opts.Enumerator == nil {
		return nil, errors.New("reconciler: enumerator is required")
	}
	if opts.Setter == nil {
		return nil, errors.New("reconciler: setter is required")
	}
	if opts.Prefs == nil {
		return nil, errors.New("reconciler: preference store is required")
	}
	if opts.Notifier == nil {
		opts.Notifier = nopNotifier{}
	}

	return &Reconciler{
		enumerator: opts.Enumerator,
		setter:     opts.Setter,
		source:     opts.Power,
		notifier:   opts.Notifier,
		store:      opts.Prefs,
		boot:       opts.Boot,
		chime:      opts.Chime,
		cmds:       make(chan command, commandQueueSize),
		ready:      make(chan struct{}),
		stopped:    make(chan struct{}),
		prefs:      prefs.Defaults(),
		subs:       make(map[int]chan Snapshot),
	}, nil
}

// Run loads preferences, reads the initial power status, takes the first
// inventory and then serves commands until ctx is cancelled. On return the
// power subscription is stopped and preferences are saved.
func (r *Reconciler) Run(ctx context.Context) error {
	if !r.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(r.stopped)

	r.runCtx = ctx
	r.startup(ctx)
	r.publish()
	close(r.ready)

	for {
		select {
		case <-ctx.Done():
			r.shutdown()
			r.forwarders.Wait()
			return nil
		case cmd := <-r.cmds:
			r.handle(ctx, cmd)
		}
	}
}

// Ready is closed once startup has completed and the first snapshot is published
func (r *Reconciler) Ready() <-chan struct{} {
	return r.ready
}

// Done is closed when Run has returned
func (r *Reconciler) Done() <-chan struct{} {
	return r.stopped
}

// forwardPowerEvents turns power events of one subscription into commands
// on the single queue
func (r *Reconciler) forwardPowerEvents(ctx context.Context, epoch uint64, events <-chan power.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			select {
			case r.cmds <- command{kind: cmdPower, status: ev.Status, epoch: epoch}:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (r *Reconciler) handle(ctx context.Context, cmd command) {
	defer func() {
		if cmd.done != nil {
			close(cmd.done)
		}
	}()
	defer r.publish()
	defer errorhandler.HandlePanic()

	log := cycleLogger(cmd.kind.String())
	start := time.Now()

	switch cmd.kind {
	case cmdRefresh:
		r.refreshInventory(ctx, log)
	case cmdPower:
		if cmd.epoch != 0 && (cmd.epoch != r.epoch || !r.subscribed) {
			log.Debug().Str("status", cmd.status.String()).Msg("dropping event from a stopped subscription")
			return
		}
		r.onPowerTransition(ctx, log, cmd.status)
	case cmdSetOffline:
		r.setOfflinePreference(ctx, log, cmd.id)
	case cmdSetDefault:
		r.setDefaultDevice(ctx, log, cmd.id)
	case cmdPause:
		r.pause(log)
	case cmdResume:
		r.resume(log)
	case cmdToggleMonitoring:
		if r.subscribed {
			r.pause(log)
		} else {
			r.resume(log)
		}
	case cmdToggleNotifications:
		r.toggleNotifications(log)
	case cmdToggleBoot:
		r.toggleBootLaunch(log)
	case cmdUpdateWindow:
		r.prefs.Window = cmd.window
	case cmdSetTheme:
		r.prefs.Theme = cmd.id
		r.savePrefs(log)
	}

	log.Debug().Dur("took", time.Since(start)).Msg("command handled")
}

// cycleLogger tags every line of one command with a correlation id
func cycleLogger(op string) zerolog.Logger {
	return logging.Component("reconciler").With().
		Str("cycle", uuid.NewString()).
		Str("op", op).
		Logger()
}

// submit queues cmd and waits until the owner goroutine has handled it
func (r *Reconciler) submit(ctx context.Context, cmd command) error {
	cmd.done = make(chan struct{})

	select {
	case r.cmds <- cmd:
	case <-ctx.Done():
		return ctx.Err()
	case <-r.stopped:
		return ErrStopped
	}

	select {
	case <-cmd.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-r.stopped:
		return ErrStopped
	}
}

// RefreshInventory re-enumerates the active output devices
func (r *Reconciler) RefreshInventory(ctx context.Context) error {
	return r.submit(ctx, command{kind: cmdRefresh})
}

// OnPowerTransition feeds a power status as if the power source had reported it
func (r *Reconciler) OnPowerTransition(ctx context.Context, status power.Status) error {
	return r.submit(ctx, command{kind: cmdPower, status: status})
}

// SetOfflinePreference chooses the device used on battery. No switch happens now.
func (r *Reconciler) SetOfflinePreference(ctx context.Context, id string) error {
	return r.submit(ctx, command{kind: cmdSetOffline, id: id})
}

// SetDefaultDevice makes id the default for both render roles
func (r *Reconciler) SetDefaultDevice(ctx context.Context, id string) error {
	return r.submit(ctx, command{kind: cmdSetDefault, id: id})
}

// Pause stops following power events until Resume
func (r *Reconciler) Pause(ctx context.Context) error {
	return r.submit(ctx, command{kind: cmdPause})
}

// Resume restarts following power events
func (r *Reconciler) Resume(ctx context.Context) error {
	return r.submit(ctx, command{kind: cmdResume})
}

// ToggleMonitoring pauses when following power events, resumes otherwise
func (r *Reconciler) ToggleMonitoring(ctx context.Context) error {
	return r.submit(ctx, command{kind: cmdToggleMonitoring})
}

// ToggleNotifications flips notifications and saves the preference immediately
func (r *Reconciler) ToggleNotifications(ctx context.Context) error {
	return r.submit(ctx, command{kind: cmdToggleNotifications})
}

// ToggleBootLaunch flips the launch-at-login registration
func (r *Reconciler) ToggleBootLaunch(ctx context.Context) error {
	return r.submit(ctx, command{kind: cmdToggleBoot})
}

// UpdateWindow records the interactive view geometry, saved at shutdown
func (r *Reconciler) UpdateWindow(ctx context.Context, w prefs.Window) error {
	return r.submit(ctx, command{kind: cmdUpdateWindow, window: w})
}

// SetTheme records the interface theme and saves it immediately
func (r *Reconciler) SetTheme(ctx context.Context, name string) error {
	return r.submit(ctx, command{kind: cmdSetTheme, id: name})
}

// Snapshot returns a private copy of the latest published state
func (r *Reconciler) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snap.Clone()
}

// Subscribe returns a channel receiving the latest snapshot after every
// command. Slow readers only miss intermediate snapshots. The channel is
// closed when Run returns or cancel is called.
func (r *Reconciler) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	r.mu.Lock()
	if r.subsDone {
		r.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := r.nextSub
	r.nextSub++
	r.subs[id] = ch
	ch <- r.snap.Clone()
	r.mu.Unlock()

	cancel := func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if c, ok := r.subs[id]; ok {
			delete(r.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

func (r *Reconciler) publish() {
	snap := Snapshot{
		UpdatedAt:         time.Now(),
		Inventory:         r.inventory.Clone(),
		OnBattery:         r.onBattery,
		OfflinePreference: r.prefs.OfflineDevice,
		ManualPause:       r.manualPaused,
		AutoSuspended:     r.autoSuspended,
		BootLaunch:        r.bootState,
		AutoSwitchError:   r.subscriptionErr,
		Theme:             r.prefs.Theme,
		Window:            r.prefs.Window,
	}
	if r.onBattery {
		snap.PendingRestoreID = r.pendingRestoreID
	}
	snap.Monitoring = MonitoringPaused
	if r.subscribed {
		snap.Monitoring = MonitoringActive
	}
	snap.Notifications = NotificationsDisabled
	if r.prefs.Notify {
		snap.Notifications = NotificationsEnabled
	}
	snap.AutoSwitch = AutoSwitchAvailable
	if r.subscriptionErr != "" {
		snap.AutoSwitch = AutoSwitchUnavailable
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	snap.Seq = r.snap.Seq + 1
	r.snap = snap
	for _, ch := range r.subs {
		// latest wins
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap.Clone():
		default:
		}
	}
}

func (r *Reconciler) closeSubscribers() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, ch := range r.subs {
		delete(r.subs, id)
		close(ch)
	}
	r.subsDone = true
}

type nopNotifier struct{}

func (nopNotifier) Notify(title, body string) error { return nil }
