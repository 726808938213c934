package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/777genius/audioswitch/internal/prefs"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Help(t *testing.T) {
	code, out, _ := runCLI(t, "help")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "set-offline <id>")
}

func TestRun_Version(t *testing.T) {
	code, out, _ := runCLI(t, "--version")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "audioswitch v"+version)
}

func TestRun_UnknownCommand(t *testing.T) {
	code, _, errOut := runCLI(t, "frobnicate")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "unknown command: frobnicate")
	assert.Contains(t, errOut, "Usage:")
}

func TestRun_SetOfflineRequiresID(t *testing.T) {
	code, _, errOut := runCLI(t, "set-offline")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "device id required")
}

func TestRun_SetOfflineWritesPrefs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("AUDIOSWITCH_HOME", home)
	t.Setenv(configEnv, filepath.Join(home, "config.json"))

	code, out, errOut := runCLI(t, "set-offline", "alsa_output.usb-headset")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "Offline device set to alsa_output.usb-headset")

	p, err := prefs.Load(filepath.Join(home, "prefs.toml"))
	require.NoError(t, err)
	assert.Equal(t, "alsa_output.usb-headset", p.OfflineDevice)
}

func TestRun_InvalidConfigFails(t *testing.T) {
	home := t.TempDir()
	cfgPath := filepath.Join(home, "config.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{"backend": "oss"}`), 0644))
	t.Setenv("AUDIOSWITCH_HOME", home)
	t.Setenv(configEnv, cfgPath)

	code, _, errOut := runCLI(t, "set-offline", "x")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "invalid config")
}

func TestRun_ChimeValidation(t *testing.T) {
	home := t.TempDir()
	t.Setenv("AUDIOSWITCH_HOME", home)
	t.Setenv(configEnv, filepath.Join(home, "config.json"))

	t.Run("missing file", func(t *testing.T) {
		code, _, errOut := runCLI(t, "chime", "/nonexistent/file.mp3")
		assert.Equal(t, 1, code)
		assert.Contains(t, errOut, "not found")
	})

	t.Run("invalid volume", func(t *testing.T) {
		dummy := filepath.Join(home, "test.mp3")
		require.NoError(t, os.WriteFile(dummy, []byte{}, 0644))

		code, _, errOut := runCLI(t, "chime", "--volume", "2.0", dummy)
		assert.Equal(t, 1, code)
		assert.Contains(t, errOut, "Volume must be between")
	})

	t.Run("unsupported format", func(t *testing.T) {
		dummy := filepath.Join(home, "test.txt")
		require.NoError(t, os.WriteFile(dummy, []byte("x"), 0644))

		code, _, errOut := runCLI(t, "chime", dummy)
		assert.Equal(t, 1, code)
		assert.Contains(t, errOut, "unsupported format")
	})
}
