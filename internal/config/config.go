package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/777genius/audioswitch/internal/platform"
)

// Config represents the application configuration
type Config struct {
	Backend       string              `json:"backend"` // Device backend: "auto", "pactl", "switchaudio", "wasapi"
	Power         PowerConfig         `json:"power"`
	Notifications NotificationsConfig `json:"notifications"`
	Chime         ChimeConfig         `json:"chime"`
	LogLevel      string              `json:"logLevel"`    // "debug", "info", "warn", "error"
	LogToStderr   bool                `json:"logToStderr"` // Mirror log lines to stderr (headless mode)
	PrefsPath     string              `json:"prefsPath"`   // empty = ~/.config/audioswitch/prefs.toml
}

// PowerConfig represents power-event source settings
type PowerConfig struct {
	Source       string `json:"source"`       // "auto", "upower", "sysfs", "pmset", "windows"
	PollInterval string `json:"pollInterval"` // Polling sources only, e.g. "5s"
}

// NotificationsConfig represents balloon notification settings
type NotificationsConfig struct {
	Method  string `json:"method"`  // "auto", "beeep", "osc9"
	AppIcon string `json:"appIcon"` // Path to app icon
}

// ChimeConfig represents the optional sound played after a switch
type ChimeConfig struct {
	Enabled bool    `json:"enabled"`
	Sound   string  `json:"sound"`
	Volume  float64 `json:"volume"` // Volume level 0.0-1.0, default 1.0
}

const (
	defaultPollInterval = "5s"
	defaultLogLevel     = "info"
)

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Backend: "auto",
		Power: PowerConfig{
			Source:       "auto",
			PollInterval: defaultPollInterval,
		},
		Notifications: NotificationsConfig{
			Method: "auto",
		},
		Chime: ChimeConfig{
			Enabled: false,
			Volume:  1.0,
		},
		LogLevel: defaultLogLevel,
	}
}

// DefaultPath returns the default config file location
func DefaultPath() string {
	return filepath.Join(platform.ConfigDir(), "config.json")
}

// Load loads configuration from a file
// If the file doesn't exist, returns default config
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	if !platform.FileExists(path) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Expand environment variables in paths
	config.Notifications.AppIcon = platform.ExpandEnv(config.Notifications.AppIcon)
	config.Chime.Sound = platform.ExpandEnv(config.Chime.Sound)
	config.PrefsPath = platform.ExpandEnv(config.PrefsPath)

	config.ApplyDefaults()

	return config, nil
}

// ApplyDefaults fills in missing fields with default values
func (c *Config) ApplyDefaults() {
	if c.Backend == "" {
		c.Backend = "auto"
	}
	if c.Power.Source == "" {
		c.Power.Source = "auto"
	}
	if c.Power.PollInterval == "" {
		c.Power.PollInterval = defaultPollInterval
	}
	if c.Notifications.Method == "" {
		c.Notifications.Method = "auto"
	}
	if c.Chime.Volume == 0 {
		c.Chime.Volume = 1.0
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	validBackends := map[string]bool{
		"":            true, // empty means auto
		"auto":        true,
		"pactl":       true,
		"switchaudio": true,
		"wasapi":      true,
	}
	if !validBackends[c.Backend] {
		return fmt.Errorf("invalid backend: %s (must be one of: auto, pactl, switchaudio, wasapi)", c.Backend)
	}

	validSources := map[string]bool{
		"":        true,
		"auto":    true,
		"upower":  true,
		"sysfs":   true,
		"pmset":   true,
		"windows": true,
	}
	if !validSources[c.Power.Source] {
		return fmt.Errorf("invalid power source: %s (must be one of: auto, upower, sysfs, pmset, windows)", c.Power.Source)
	}

	if c.Power.PollInterval != "" {
		d, err := time.ParseDuration(c.Power.PollInterval)
		if err != nil {
			return fmt.Errorf("invalid power pollInterval: %w", err)
		}
		if d < 100*time.Millisecond {
			return fmt.Errorf("power pollInterval must be at least 100ms (got %s)", d)
		}
	}

	validMethods := map[string]bool{
		"":      true,
		"auto":  true,
		"beeep": true,
		"osc9":  true,
	}
	if !validMethods[c.Notifications.Method] {
		return fmt.Errorf("invalid notification method: %s (must be one of: auto, beeep, osc9)", c.Notifications.Method)
	}

	if c.Chime.Volume < 0.0 || c.Chime.Volume > 1.0 {
		return fmt.Errorf("chime volume must be between 0.0 and 1.0 (got %.2f)", c.Chime.Volume)
	}
	if c.Chime.Enabled && c.Chime.Sound == "" {
		return fmt.Errorf("chime sound is required when the chime is enabled")
	}

	validLevels := map[string]bool{
		"":      true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid logLevel: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// PollInterval returns the parsed power poll interval (default on parse failure)
func (c *Config) PollInterval() time.Duration {
	d, err := time.ParseDuration(c.Power.PollInterval)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(defaultPollInterval)
	}
	return d
}

// IsChimeEnabled returns true if a sound should play after each switch
func (c *Config) IsChimeEnabled() bool {
	return c.Chime.Enabled && c.Chime.Sound != ""
}
