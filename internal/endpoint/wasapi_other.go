//go:build !windows

package endpoint

import "context"

// WASAPI is only available on Windows
type WASAPI struct{}

// NewWASAPI reports ErrUnsupported outside Windows
func NewWASAPI() (*WASAPI, error) {
	return nil, ErrUnsupported
}

func (w *WASAPI) Name() string { return "wasapi" }

func (w *WASAPI) ListActiveRenderDevices(ctx context.Context) ([]Endpoint, error) {
	return nil, ErrUnsupported
}

func (w *WASAPI) DefaultRenderDeviceID(ctx context.Context, role Role) (string, error) {
	return "", ErrUnsupported
}

func (w *WASAPI) SetDefault(ctx context.Context, id string, role Role) error {
	return ErrUnsupported
}
