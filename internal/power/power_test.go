package power

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// === Fake reader ===

type fakeReader struct {
	mu     sync.Mutex
	status Status
	err    error
	reads  int
}

func (f *fakeReader) set(s Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = s
}

func (f *fakeReader) ReadStatus(ctx context.Context) (Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	return f.status, f.err
}

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for power event")
		return Event{}
	}
}

func TestPollerEmitsInitialAndChanges(t *testing.T) {
	reader := &fakeReader{status: StatusOnline}
	p := NewPoller("fake", reader, 5*time.Millisecond)
	events := make(chan Event, 4)

	require.NoError(t, p.Start(context.Background(), events))
	defer p.Stop()

	ev := receive(t, events)
	assert.Equal(t, StatusOnline, ev.Status)
	assert.Equal(t, "fake", ev.Source)

	reader.set(StatusOffline)
	ev = receive(t, events)
	assert.Equal(t, StatusOffline, ev.Status)
}

func TestPollerDoesNotRepeatSameStatus(t *testing.T) {
	reader := &fakeReader{status: StatusOffline}
	p := NewPoller("fake", reader, 2*time.Millisecond)
	events := make(chan Event, 16)

	require.NoError(t, p.Start(context.Background(), events))
	receive(t, events)
	time.Sleep(30 * time.Millisecond)
	p.Stop()

	assert.Len(t, events, 0)
}

func TestPollerStopIsSynchronous(t *testing.T) {
	reader := &fakeReader{status: StatusOnline}
	p := NewPoller("fake", reader, time.Millisecond)
	events := make(chan Event) // unbuffered: the goroutine blocks on send

	require.NoError(t, p.Start(context.Background(), events))
	time.Sleep(10 * time.Millisecond)
	p.Stop()

	reader.set(StatusOffline)
	select {
	case ev := <-events:
		t.Fatalf("event delivered after Stop: %+v", ev)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestPollerRestart(t *testing.T) {
	reader := &fakeReader{status: StatusOnline}
	p := NewPoller("fake", reader, time.Millisecond)
	events := make(chan Event, 4)

	require.NoError(t, p.Start(context.Background(), events))
	require.NoError(t, p.Start(context.Background(), events), "second Start is a no-op")
	receive(t, events)
	p.Stop()
	p.Stop()

	require.NoError(t, p.Start(context.Background(), events))
	defer p.Stop()
	ev := receive(t, events)
	assert.Equal(t, StatusOnline, ev.Status, "restart re-reports the current status")
}

func TestPollerSkipsUnknownAndErrors(t *testing.T) {
	reader := &fakeReader{status: StatusUnknown}
	p := NewPoller("fake", reader, time.Millisecond)
	events := make(chan Event, 4)

	require.NoError(t, p.Start(context.Background(), events))
	time.Sleep(10 * time.Millisecond)

	reader.mu.Lock()
	reader.err = errors.New("read failed")
	reader.status = StatusOffline
	reader.mu.Unlock()
	time.Sleep(10 * time.Millisecond)
	p.Stop()

	assert.Len(t, events, 0)
}

func writeSupply(t *testing.T, root, name string, attrs map[string]string) {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0755))
	for k, v := range attrs {
		require.NoError(t, os.WriteFile(filepath.Join(dir, k), []byte(v+"\n"), 0644))
	}
}

func TestSysfsReadStatus(t *testing.T) {
	tests := []struct {
		name     string
		supplies map[string]map[string]string
		want     Status
	}{
		{
			name: "mains online",
			supplies: map[string]map[string]string{
				"AC":   {"type": "Mains", "online": "1"},
				"BAT0": {"type": "Battery", "status": "Charging"},
			},
			want: StatusOnline,
		},
		{
			name: "mains offline",
			supplies: map[string]map[string]string{
				"AC":   {"type": "Mains", "online": "0"},
				"BAT0": {"type": "Battery", "status": "Discharging"},
			},
			want: StatusOffline,
		},
		{
			name: "usb-c adapter online",
			supplies: map[string]map[string]string{
				"ucsi-source-psy-USBC000:001": {"type": "USB", "online": "1"},
				"BAT0":                        {"type": "Battery", "status": "Charging"},
			},
			want: StatusOnline,
		},
		{
			name: "battery only discharging",
			supplies: map[string]map[string]string{
				"BAT1": {"type": "Battery", "status": "Discharging"},
			},
			want: StatusOffline,
		},
		{
			name: "peripheral battery ignored",
			supplies: map[string]map[string]string{
				"hidpp_battery_0": {"type": "Battery", "status": "Discharging", "scope": "Device"},
			},
			want: StatusUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			for name, attrs := range tt.supplies {
				writeSupply(t, root, name, attrs)
			}
			s := NewSysfs(root)
			assert.True(t, s.Available())

			got, err := s.ReadStatus(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSysfsUnavailable(t *testing.T) {
	s := NewSysfs(filepath.Join(t.TempDir(), "missing"))
	assert.False(t, s.Available())

	_, err := s.ReadStatus(context.Background())
	assert.Error(t, err)
}

func TestParsePmset(t *testing.T) {
	ac := "Now drawing from 'AC Power'\n -InternalBattery-0 (id=1234)\t100%; charged; 0:00 remaining present: true\n"
	batt := "Now drawing from 'Battery Power'\n -InternalBattery-0 (id=1234)\t87%; discharging; 5:12 remaining present: true\n"

	assert.Equal(t, StatusOnline, parsePmset(ac))
	assert.Equal(t, StatusOffline, parsePmset(batt))
	assert.Equal(t, StatusUnknown, parsePmset("No batteries available\n"))
}

type stubRunner struct {
	out string
	err error
}

func (s stubRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return []byte(s.out), s.err
}

func TestPmsetReader(t *testing.T) {
	_, err := NewPmset(nil)
	assert.Error(t, err)

	p, err := NewPmset(stubRunner{out: "Now drawing from 'Battery Power'\n"})
	require.NoError(t, err)
	status, err := p.ReadStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusOffline, status)

	p, _ = NewPmset(stubRunner{err: errors.New("not found")})
	_, err = p.ReadStatus(context.Background())
	assert.Error(t, err)
}

func TestStatusFromSignal(t *testing.T) {
	sig := &dbus.Signal{
		Path: upowerPath,
		Name: propertiesSignal,
		Body: []interface{}{
			upowerInterface,
			map[string]dbus.Variant{"OnBattery": dbus.MakeVariant(true)},
			[]string{},
		},
	}
	status, ok := statusFromSignal(sig)
	assert.True(t, ok)
	assert.Equal(t, StatusOffline, status)

	sig.Body[1] = map[string]dbus.Variant{"OnBattery": dbus.MakeVariant(false)}
	status, ok = statusFromSignal(sig)
	assert.True(t, ok)
	assert.Equal(t, StatusOnline, status)

	sig.Body[1] = map[string]dbus.Variant{"LidIsClosed": dbus.MakeVariant(true)}
	_, ok = statusFromSignal(sig)
	assert.False(t, ok, "other properties trigger a direct poll instead")

	sig.Body[0] = "org.freedesktop.UPower.Device"
	_, ok = statusFromSignal(sig)
	assert.False(t, ok)

	_, ok = statusFromSignal(&dbus.Signal{})
	assert.False(t, ok)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "online", StatusOnline.String())
	assert.Equal(t, "offline", StatusOffline.String())
	assert.Equal(t, "unknown", StatusUnknown.String())
	assert.True(t, StatusOffline.OnBattery())
	assert.False(t, StatusOnline.OnBattery())
}

func TestNewUnknownSource(t *testing.T) {
	_, err := New(Options{Source: "acpi-magic"})
	assert.Error(t, err)
}

func TestNewSysfsSource(t *testing.T) {
	root := t.TempDir()
	writeSupply(t, root, "AC", map[string]string{"type": "Mains", "online": "1"})

	src, err := New(Options{Source: "sysfs", SysfsRoot: root, PollInterval: time.Second})
	require.NoError(t, err)
	assert.Equal(t, "sysfs", src.Name())

	status, err := src.ReadStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusOnline, status)

	_, err = New(Options{Source: "sysfs", SysfsRoot: filepath.Join(root, "nope")})
	assert.True(t, errors.Is(err, ErrUnsupported))
}
