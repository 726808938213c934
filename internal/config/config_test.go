package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "auto", cfg.Backend)
	assert.Equal(t, "auto", cfg.Power.Source)
	assert.Equal(t, "5s", cfg.Power.PollInterval)
	assert.Equal(t, "auto", cfg.Notifications.Method)
	assert.False(t, cfg.Chime.Enabled)
	assert.Equal(t, 1.0, cfg.Chime.Volume)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	configJSON := `{
		"backend": "pactl",
		"power": {
			"source": "sysfs",
			"pollInterval": "2s"
		},
		"notifications": {
			"method": "beeep"
		},
		"chime": {
			"enabled": true,
			"sound": "/usr/share/sounds/chime.wav",
			"volume": 0.4
		},
		"logLevel": "debug"
	}`

	err := os.WriteFile(configPath, []byte(configJSON), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "pactl", cfg.Backend)
	assert.Equal(t, "sysfs", cfg.Power.Source)
	assert.Equal(t, 2*time.Second, cfg.PollInterval())
	assert.Equal(t, "beeep", cfg.Notifications.Method)
	assert.True(t, cfg.IsChimeEnabled())
	assert.Equal(t, 0.4, cfg.Chime.Volume)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigNotExists(t *testing.T) {
	cfg, err := Load("/nonexistent/config.json")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, "auto", cfg.Backend)
}

func TestLoadConfigInvalidJSON(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(configPath, []byte("{not json"), 0644))

	_, err := Load(configPath)
	assert.Error(t, err)
}

func TestLoadConfigExpandsEnv(t *testing.T) {
	t.Setenv("AUDIOSWITCH_SOUNDS", "/opt/sounds")
	configPath := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(configPath, []byte(`{"chime":{"enabled":true,"sound":"${AUDIOSWITCH_SOUNDS}/ding.mp3"}}`), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "/opt/sounds/ding.mp3", cfg.Chime.Sound)
}

func TestLoadConfigDefaultPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AUDIOSWITCH_HOME", dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"backend":"switchaudio"}`), 0644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "switchaudio", cfg.Backend)
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()

	assert.Equal(t, "auto", cfg.Backend)
	assert.Equal(t, "auto", cfg.Power.Source)
	assert.Equal(t, "5s", cfg.Power.PollInterval)
	assert.Equal(t, "auto", cfg.Notifications.Method)
	assert.Equal(t, 1.0, cfg.Chime.Volume)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid config", mutate: func(*Config) {}, wantErr: false},
		{name: "invalid backend", mutate: func(c *Config) { c.Backend = "alsa" }, wantErr: true},
		{name: "invalid power source", mutate: func(c *Config) { c.Power.Source = "acpi" }, wantErr: true},
		{name: "unparseable poll interval", mutate: func(c *Config) { c.Power.PollInterval = "often" }, wantErr: true},
		{name: "poll interval too short", mutate: func(c *Config) { c.Power.PollInterval = "10ms" }, wantErr: true},
		{name: "invalid notification method", mutate: func(c *Config) { c.Notifications.Method = "terminal-notifier" }, wantErr: true},
		{name: "volume too high", mutate: func(c *Config) { c.Chime.Volume = 1.5 }, wantErr: true},
		{name: "negative volume", mutate: func(c *Config) { c.Chime.Volume = -0.1 }, wantErr: true},
		{name: "chime enabled without sound", mutate: func(c *Config) { c.Chime.Enabled = true }, wantErr: true},
		{name: "chime disabled without sound", mutate: func(c *Config) { c.Chime.Enabled = false }, wantErr: false},
		{name: "invalid log level", mutate: func(c *Config) { c.LogLevel = "trace" }, wantErr: true},
		{name: "empty values mean auto", mutate: func(c *Config) { c.Backend = ""; c.Power.Source = ""; c.Notifications.Method = "" }, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPollIntervalFallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Power.PollInterval = "garbage"
	assert.Equal(t, 5*time.Second, cfg.PollInterval())
}

func TestIsChimeEnabled(t *testing.T) {
	cfg := DefaultConfig()
	assert.False(t, cfg.IsChimeEnabled())

	cfg.Chime.Enabled = true
	assert.False(t, cfg.IsChimeEnabled(), "no sound configured")

	cfg.Chime.Sound = "chime.wav"
	assert.True(t, cfg.IsChimeEnabled())
}
