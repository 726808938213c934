//go:build windows

package endpoint

import (
	"context"
	"fmt"
	"runtime"
	"syscall"
	"unsafe"

	"github.com/gen2brain/malgo"
	"github.com/go-ole/go-ole"
	"golang.org/x/sys/windows"
)

// Undocumented but stable PolicyConfig COM interface used by the Windows sound
// control panel to change default endpoints.
var (
	clsidPolicyConfigClient = ole.NewGUID("{870AF99C-171D-4F9E-AF0D-E63DF40C2BC9}")
	iidPolicyConfig         = ole.NewGUID("{F8679F50-850A-41CF-9C72-430F290290C8}")
)

// ERole values
const (
	eConsole        = 0
	eMultimedia     = 1
	eCommunications = 2
)

type iPolicyConfigVtbl struct {
	ole.IUnknownVtbl
	GetMixFormat          uintptr
	GetDeviceFormat       uintptr
	ResetDeviceFormat     uintptr
	SetDeviceFormat       uintptr
	GetProcessingPeriod   uintptr
	SetProcessingPeriod   uintptr
	GetShareMode          uintptr
	SetShareMode          uintptr
	GetPropertyValue      uintptr
	SetPropertyValue      uintptr
	SetDefaultEndpoint    uintptr
	SetEndpointVisibility uintptr
}

// WASAPI enumerates endpoints with malgo's WASAPI backend and sets the default
// through IPolicyConfig. Endpoint ids are the MMDevice id strings.
type WASAPI struct{}

// NewWASAPI creates the Windows backend
func NewWASAPI() (*WASAPI, error) {
	return &WASAPI{}, nil
}

// Name returns the backend name
func (w *WASAPI) Name() string { return "wasapi" }

// ListActiveRenderDevices lists active playback endpoints
func (w *WASAPI) ListActiveRenderDevices(ctx context.Context) ([]Endpoint, error) {
	infos, err := w.playbackDevices()
	if err != nil {
		return nil, err
	}

	result := make([]Endpoint, 0, len(infos))
	for _, dev := range infos {
		result = append(result, Endpoint{ID: wasapiID(dev.ID), Name: dev.Name()})
	}
	return result, nil
}

// DefaultRenderDeviceID returns the endpoint miniaudio reports as default.
// miniaudio resolves the default with the console role, which Windows keeps
// in step with multimedia; communications is answered the same way.
func (w *WASAPI) DefaultRenderDeviceID(ctx context.Context, role Role) (string, error) {
	infos, err := w.playbackDevices()
	if err != nil {
		return "", err
	}
	for _, dev := range infos {
		if dev.IsDefault != 0 {
			return wasapiID(dev.ID), nil
		}
	}
	return "", nil
}

// SetDefault calls IPolicyConfig::SetDefaultEndpoint for the role.
// The multimedia role also sets the console role so legacy apps follow.
func (w *WASAPI) SetDefault(ctx context.Context, id string, role Role) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
		// S_FALSE: already initialized on this thread
		if oleErr, ok := err.(*ole.OleError); !ok || oleErr.Code() != 1 {
			return fmt.Errorf("failed to initialize COM: %w", err)
		}
	}
	defer ole.CoUninitialize()

	unk, err := ole.CreateInstance(clsidPolicyConfigClient, iidPolicyConfig)
	if err != nil {
		return fmt.Errorf("failed to create PolicyConfig client: %w", err)
	}
	defer unk.Release()

	idPtr, err := windows.UTF16PtrFromString(id)
	if err != nil {
		return fmt.Errorf("invalid endpoint id: %w", err)
	}

	roles := []uintptr{eCommunications}
	if role == RoleMultimedia {
		roles = []uintptr{eMultimedia, eConsole}
	}

	vtbl := (*iPolicyConfigVtbl)(unsafe.Pointer(unk.RawVTable))
	for _, r := range roles {
		hr, _, _ := syscall.SyscallN(vtbl.SetDefaultEndpoint,
			uintptr(unsafe.Pointer(unk)),
			uintptr(unsafe.Pointer(idPtr)),
			r,
		)
		if hr != 0 {
			if uint32(hr) == 0x80070490 { // HRESULT_FROM_WIN32(ERROR_NOT_FOUND)
				return fmt.Errorf("%w: %s", ErrNotFound, id)
			}
			return fmt.Errorf("SetDefaultEndpoint(%s): %w", role, ole.NewError(hr))
		}
	}
	return nil
}

func (w *WASAPI) playbackDevices() ([]malgo.DeviceInfo, error) {
	mctx, err := malgo.InitContext([]malgo.Backend{malgo.BackendWasapi}, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to init audio context: %w", err)
	}
	defer func() {
		_ = mctx.Uninit()
		mctx.Free()
	}()

	devices, err := mctx.Devices(malgo.Playback)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}
	return devices, nil
}

// wasapiID decodes miniaudio's WASAPI device id, a NUL-terminated wchar string
func wasapiID(id malgo.DeviceID) string {
	raw := id[:]
	units := make([]uint16, 0, len(raw)/2)
	for i := 0; i+1 < len(raw); i += 2 {
		u := uint16(raw[i]) | uint16(raw[i+1])<<8
		if u == 0 {
			break
		}
		units = append(units, u)
	}
	return windows.UTF16ToString(units)
}
