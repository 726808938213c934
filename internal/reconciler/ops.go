package reconciler

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/777genius/audioswitch/internal/device"
	"github.com/777genius/audioswitch/internal/endpoint"
	"github.com/777genius/audioswitch/internal/power"
	"github.com/777genius/audioswitch/internal/prefs"
)

// minSwitchableDevices is the inventory size below which there is nothing to switch between
const minSwitchableDevices = 2

func (r *Reconciler) startup(ctx context.Context) {
	log := cycleLogger("startup")

	p, err := r.store.Load()
	if err != nil {
		log.Warn().Err(err).Msg("failed to load preferences, using defaults")
		p = prefs.Defaults()
	}
	r.prefs = p

	r.readBootLaunch(log)

	if r.source == nil {
		r.subscriptionErr = "no power source available"
		log.Warn().Msg("automatic switching unavailable: no power source")
	} else {
		status, err := r.source.ReadStatus(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("failed to read initial power status")
		}
		r.onBattery = status.OnBattery()
		log.Info().
			Str("source", r.source.Name()).
			Str("status", status.String()).
			Msg("initial power status")
	}

	r.refreshInventory(ctx, log)

	log.Info().
		Int("devices", len(r.inventory)).
		Str("offline_device", r.prefs.OfflineDevice).
		Bool("notify", r.prefs.Notify).
		Msg("reconciler started")
}

func (r *Reconciler) shutdown() {
	log := cycleLogger("shutdown")

	r.stopSubscription(log)

	if err := r.store.Save(r.prefs); err != nil {
		log.Error().Err(err).Msg("failed to save preferences")
	} else {
		log.Debug().Msg("preferences saved")
	}

	r.publish()
	r.closeSubscribers()
	log.Info().Msg("reconciler stopped")
}

// refreshInventory replaces the inventory and suspends or resumes the power
// subscription depending on how many devices there are to switch between
func (r *Reconciler) refreshInventory(ctx context.Context, log zerolog.Logger) {
	endpoints, err := r.enumerator.ListActiveRenderDevices(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("device enumeration failed, treating inventory as empty")
		endpoints = nil
	}

	defaultID := ""
	if len(endpoints) > 0 {
		defaultID, err = r.enumerator.DefaultRenderDeviceID(ctx, endpoint.RoleMultimedia)
		if err != nil {
			log.Warn().Err(err).Msg("failed to read default device")
			defaultID = ""
		}
	}

	ids := make([]string, len(endpoints))
	names := make([]string, len(endpoints))
	for i, ep := range endpoints {
		ids[i] = ep.ID
		names[i] = ep.Name
	}
	r.inventory = device.Build(ids, names, defaultID)

	wasSuspended := r.autoSuspended
	r.autoSuspended = len(r.inventory) < minSwitchableDevices
	switch {
	case r.autoSuspended && !wasSuspended:
		log.Info().Int("devices", len(r.inventory)).Msg("fewer than two devices, suspending power monitoring")
	case !r.autoSuspended && wasSuspended:
		log.Info().Int("devices", len(r.inventory)).Msg("devices available again, resuming power monitoring")
	}
	r.syncSubscription(log)

	log.Debug().
		Int("devices", len(r.inventory)).
		Str("default", defaultID).
		Msg("inventory refreshed")
}

// onPowerTransition performs at most one switch per actual transition
func (r *Reconciler) onPowerTransition(ctx context.Context, log zerolog.Logger, status power.Status) {
	if status == power.StatusUnknown {
		log.Debug().Msg("ignoring unknown power status")
		return
	}

	onBattery := status.OnBattery()
	if onBattery == r.onBattery {
		log.Debug().Str("status", status.String()).Msg("power status unchanged")
		return
	}

	log.Info().Str("status", status.String()).Msg("power transition")
	r.refreshInventory(ctx, log)

	if onBattery {
		r.pendingRestoreID = r.inventory.DefaultID()
		r.toBattery(ctx, log)
	} else {
		r.toMains(ctx, log)
	}

	r.onBattery = onBattery
}

func (r *Reconciler) toBattery(ctx context.Context, log zerolog.Logger) {
	preferred := r.prefs.OfflineDevice
	if r.pendingRestoreID == preferred {
		log.Debug().Str("device", preferred).Msg("offline device already default")
		return
	}

	d, ok := r.inventory.Find(preferred)
	if !ok {
		log.Info().Str("device", preferred).Msg("offline device not present, leaving default unchanged")
		return
	}

	if r.setDefaultDevice(ctx, log, d.ID) {
		r.notify(log, TitleOnBattery, fmt.Sprintf(changeBodyFmt, d.Name))
	}
}

func (r *Reconciler) toMains(ctx context.Context, log zerolog.Logger) {
	d, ok := r.inventory.Find(r.pendingRestoreID)
	if !ok {
		log.Info().Str("device", r.pendingRestoreID).Msg("restore device not present, leaving default unchanged")
		return
	}
	if d.IsDefault {
		log.Debug().Str("device", d.ID).Msg("restore device already default")
		r.pendingRestoreID = ""
		r.notify(log, TitlePluggedIn, fmt.Sprintf(changeBodyFmt, d.Name))
		return
	}

	if r.setDefaultDevice(ctx, log, d.ID) {
		r.pendingRestoreID = ""
		r.notify(log, TitlePluggedIn, fmt.Sprintf(changeBodyFmt, d.Name))
	}
}

// setDefaultDevice sets both render roles to id. It reports whether id is
// the default afterwards. Platform rejection is logged and not retried.
func (r *Reconciler) setDefaultDevice(ctx context.Context, log zerolog.Logger, id string) bool {
	if id == "" {
		return false
	}
	if id == r.inventory.DefaultID() {
		log.Debug().Str("device", id).Msg("device already default, skipping")
		return true
	}

	for _, role := range endpoint.Roles {
		if err := r.setter.SetDefault(ctx, id, role); err != nil {
			ev := log.Warn()
			if errors.Is(err, endpoint.ErrNotFound) {
				ev = log.Info()
			}
			ev.Err(err).Str("device", id).Str("role", role.String()).Msg("platform rejected default device")
			return false
		}
	}

	r.markDefault(id)
	log.Info().Str("device", id).Msg("default device changed")

	if r.chime != nil {
		r.chime.Play()
	}
	return true
}

// markDefault moves the default mark to id without re-enumerating
func (r *Reconciler) markDefault(id string) {
	inv := r.inventory.Clone()
	for i := range inv {
		inv[i].IsDefault = inv[i].ID == id
	}
	r.inventory = inv
}

func (r *Reconciler) setOfflinePreference(ctx context.Context, log zerolog.Logger, id string) {
	r.prefs.OfflineDevice = id
	r.savePrefs(log)
	log.Info().Str("device", id).Msg("offline device selected")
	r.refreshInventory(ctx, log)
}

func (r *Reconciler) pause(log zerolog.Logger) {
	r.manualPaused = true
	r.syncSubscription(log)
	log.Info().Msg("monitoring paused")
}

// resume clears the manual pause and any earlier subscription error. The
// subscription stays suspended while there are fewer than two devices.
func (r *Reconciler) resume(log zerolog.Logger) {
	r.manualPaused = false
	r.autoSuspended = len(r.inventory) < minSwitchableDevices
	if r.source != nil {
		r.subscriptionErr = ""
	}
	r.syncSubscription(log)
	log.Info().Bool("active", r.subscribed).Msg("monitoring resumed")
}

func (r *Reconciler) toggleNotifications(log zerolog.Logger) {
	r.prefs.Notify = !r.prefs.Notify
	r.savePrefs(log)
	log.Info().Bool("enabled", r.prefs.Notify).Msg("notifications toggled")
}

func (r *Reconciler) readBootLaunch(log zerolog.Logger) {
	if r.boot == nil {
		r.bootState = BootLaunchUnavailable
		return
	}
	enabled, err := r.boot.IsEnabled()
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("failed to read boot launch registration")
		r.bootState = BootLaunchUnavailable
	case enabled:
		r.bootState = BootLaunchEnabled
	default:
		r.bootState = BootLaunchDisabled
	}
}

func (r *Reconciler) toggleBootLaunch(log zerolog.Logger) {
	if r.boot == nil {
		log.Warn().Msg("boot launch not supported")
		return
	}

	var err error
	if r.bootState == BootLaunchEnabled {
		err = r.boot.Disable()
	} else {
		err = r.boot.Enable()
	}
	if err != nil {
		log.Warn().Err(err).Msg("failed to change boot launch registration")
	}

	r.readBootLaunch(log)
	log.Info().Str("boot_launch", r.bootState.String()).Msg("boot launch toggled")
}

// syncSubscription starts or stops the power source to match the pause flags
func (r *Reconciler) syncSubscription(log zerolog.Logger) {
	want := r.source != nil && !r.manualPaused && !r.autoSuspended && r.subscriptionErr == ""

	switch {
	case want && !r.subscribed:
		r.startSubscription(log)
	case !want && r.subscribed:
		r.stopSubscription(log)
	}
}

func (r *Reconciler) startSubscription(log zerolog.Logger) {
	r.epoch++
	epoch := r.epoch
	events := make(chan power.Event, 4)
	ctx, cancel := context.WithCancel(r.runCtx)

	if err := r.source.Start(ctx, events); err != nil {
		cancel()
		r.subscriptionErr = err.Error()
		log.Error().Err(err).Str("source", r.source.Name()).Msg("power subscription failed, automatic switching unavailable")
		return
	}

	r.subscribed = true
	r.stopForward = cancel
	r.forwarders.Add(1)
	go func() {
		defer r.forwarders.Done()
		r.forwardPowerEvents(ctx, epoch, events)
	}()
	log.Debug().Str("source", r.source.Name()).Uint64("epoch", epoch).Msg("power subscription started")
}

// stopSubscription returns once the source can no longer deliver events
func (r *Reconciler) stopSubscription(log zerolog.Logger) {
	if !r.subscribed {
		return
	}
	r.source.Stop()
	if r.stopForward != nil {
		r.stopForward()
		r.stopForward = nil
	}
	r.subscribed = false
	log.Debug().Str("source", r.source.Name()).Msg("power subscription stopped")
}

func (r *Reconciler) savePrefs(log zerolog.Logger) {
	if err := r.store.Save(r.prefs); err != nil {
		log.Error().Err(err).Msg("failed to save preferences")
	}
}

func (r *Reconciler) notify(log zerolog.Logger, title, body string) {
	if !r.prefs.Notify {
		log.Debug().Str("title", title).Msg("notifications disabled, skipping")
		return
	}
	if err := r.notifier.Notify(title, body); err != nil {
		log.Warn().Err(err).Str("title", title).Msg("failed to show notification")
	}
}
