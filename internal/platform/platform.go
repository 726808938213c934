package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const appName = "audioswitch"

// IsWindows returns true when running on Windows
func IsWindows() bool {
	return runtime.GOOS == "windows"
}

// IsMacOS returns true when running on macOS
func IsMacOS() bool {
	return runtime.GOOS == "darwin"
}

// IsLinux returns true when running on Linux
func IsLinux() bool {
	return runtime.GOOS == "linux"
}

// FileExists reports whether path exists (file or directory)
func FileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// ExpandEnv expands ${VAR}/$VAR references and a leading "~" in path.
// Unset variables are left untouched so callers can detect them.
func ExpandEnv(path string) string {
	if path == "" {
		return path
	}

	expanded := os.Expand(path, func(key string) string {
		if val, ok := os.LookupEnv(key); ok {
			return val
		}
		return "${" + key + "}"
	})

	if strings.HasPrefix(expanded, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			expanded = filepath.Join(home, strings.TrimPrefix(expanded, "~"))
		}
	}

	return expanded
}

// ConfigDir returns the per-user configuration directory for audioswitch.
// AUDIOSWITCH_HOME overrides the location.
func ConfigDir() string {
	if dir := os.Getenv("AUDIOSWITCH_HOME"); dir != "" {
		return dir
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(base, appName)
}

// DataDir returns the directory used for logs and other runtime files.
func DataDir() string {
	if dir := os.Getenv("AUDIOSWITCH_HOME"); dir != "" {
		return dir
	}
	if IsWindows() || IsMacOS() {
		return ConfigDir()
	}
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "state", appName)
}

// Executable returns the absolute path of the running binary.
func Executable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return exe, nil
}
