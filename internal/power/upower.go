package power

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/777genius/audioswitch/internal/logging"
)

const (
	upowerService    = "org.freedesktop.UPower"
	upowerPath       = dbus.ObjectPath("/org/freedesktop/UPower")
	upowerInterface  = "org.freedesktop.UPower"
	upowerOnBattery  = upowerInterface + ".OnBattery"
	propertiesIface  = "org.freedesktop.DBus.Properties"
	propertiesSignal = propertiesIface + ".PropertiesChanged"
)

// UPower follows the OnBattery property of the UPower daemon over the system
// bus. Every PropertiesChanged signal on the UPower object triggers a status
// check; the OnBattery value carried by the signal is used when present.
type UPower struct {
	conn *dbus.Conn
	obj  dbus.BusObject

	mu      sync.Mutex
	cancel  context.CancelFunc
	signals chan *dbus.Signal
	wg      sync.WaitGroup
}

// NewUPower connects to the system bus and checks that UPower answers
func NewUPower() (*UPower, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to system bus: %w", err)
	}

	u := &UPower{
		conn: conn,
		obj:  conn.Object(upowerService, upowerPath),
	}
	if _, err := u.ReadStatus(context.Background()); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("UPower not available: %w", err)
	}
	return u, nil
}

// Name returns the source name
func (u *UPower) Name() string { return "upower" }

// ReadStatus reads the OnBattery property
func (u *UPower) ReadStatus(ctx context.Context) (Status, error) {
	v, err := u.obj.GetProperty(upowerOnBattery)
	if err != nil {
		return StatusUnknown, err
	}
	onBattery, ok := v.Value().(bool)
	if !ok {
		return StatusUnknown, fmt.Errorf("unexpected OnBattery type %T", v.Value())
	}
	return statusFromOnBattery(onBattery), nil
}

// Start subscribes to PropertiesChanged and starts delivering events
func (u *UPower) Start(ctx context.Context, events chan<- Event) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.cancel != nil {
		return nil
	}

	if err := u.conn.AddMatchSignal(u.matchOptions()...); err != nil {
		return fmt.Errorf("failed to subscribe to UPower signals: %w", err)
	}

	signals := make(chan *dbus.Signal, 16)
	u.conn.Signal(signals)

	ctx, cancel := context.WithCancel(ctx)
	u.cancel = cancel
	u.signals = signals

	u.wg.Add(1)
	go func() {
		defer u.wg.Done()
		u.loop(ctx, signals, events)
	}()

	logging.Debug("UPower subscription started")
	return nil
}

// Stop unsubscribes and waits for the delivering goroutine to exit
func (u *UPower) Stop() {
	u.mu.Lock()
	cancel := u.cancel
	signals := u.signals
	u.cancel = nil
	u.signals = nil
	u.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	u.wg.Wait()

	u.conn.RemoveSignal(signals)
	if err := u.conn.RemoveMatchSignal(u.matchOptions()...); err != nil {
		logging.Warn("Failed to remove UPower match rule: %v", err)
	}
	logging.Debug("UPower subscription stopped")
}

// Close stops the subscription and closes the bus connection
func (u *UPower) Close() error {
	u.Stop()
	return u.conn.Close()
}

func (u *UPower) matchOptions() []dbus.MatchOption {
	return []dbus.MatchOption{
		dbus.WithMatchObjectPath(upowerPath),
		dbus.WithMatchInterface(propertiesIface),
		dbus.WithMatchMember("PropertiesChanged"),
	}
}

func (u *UPower) loop(ctx context.Context, signals <-chan *dbus.Signal, events chan<- Event) {
	last := StatusUnknown

	emit := func(status Status) bool {
		if status == StatusUnknown || status == last {
			return true
		}
		last = status
		select {
		case events <- Event{Status: status, Source: u.Name(), At: time.Now()}:
			return true
		case <-ctx.Done():
			return false
		}
	}

	// Report the current state first so a resumed subscription catches up
	if status, err := u.ReadStatus(ctx); err == nil {
		if !emit(status) {
			return
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-signals:
			if !ok {
				return
			}
			if sig == nil || sig.Path != upowerPath || sig.Name != propertiesSignal {
				continue
			}

			status, found := statusFromSignal(sig)
			if !found {
				var err error
				status, err = u.ReadStatus(ctx)
				if err != nil {
					logging.Warn("UPower status check failed: %v", err)
					continue
				}
			}
			if !emit(status) {
				return
			}
		}
	}
}

// statusFromSignal extracts OnBattery from a PropertiesChanged body
// (interface, changed map, invalidated list).
func statusFromSignal(sig *dbus.Signal) (Status, bool) {
	if len(sig.Body) < 2 {
		return StatusUnknown, false
	}
	if iface, ok := sig.Body[0].(string); !ok || iface != upowerInterface {
		return StatusUnknown, false
	}
	changed, ok := sig.Body[1].(map[string]dbus.Variant)
	if !ok {
		return StatusUnknown, false
	}
	v, ok := changed["OnBattery"]
	if !ok {
		return StatusUnknown, false
	}
	onBattery, ok := v.Value().(bool)
	if !ok {
		return StatusUnknown, false
	}
	return statusFromOnBattery(onBattery), true
}

func statusFromOnBattery(onBattery bool) Status {
	if onBattery {
		return StatusOffline
	}
	return StatusOnline
}
