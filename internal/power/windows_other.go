//go:build !windows

package power

import "context"

// WindowsReader is only available on Windows
type WindowsReader struct{}

// NewWindowsReader reports ErrUnsupported outside Windows
func NewWindowsReader() (*WindowsReader, error) {
	return nil, ErrUnsupported
}

func (w *WindowsReader) ReadStatus(ctx context.Context) (Status, error) {
	return StatusUnknown, ErrUnsupported
}
