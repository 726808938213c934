//go:build !windows

package autostart

func newRegistry(execPath string) (Manager, error) {
	return nil, ErrUnsupported
}
