// Package prefs handles AudioSwitch user preferences persistence.
// Preferences are stored in ~/.config/audioswitch/prefs.toml.
package prefs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/777genius/audioswitch/internal/platform"
)

// Window state values
const (
	WindowShown  = "shown"
	WindowHidden = "hidden"
)

// Window holds the last interactive view geometry.
type Window struct {
	State  string `toml:"state"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

// Prefs holds user preferences for AudioSwitch.
type Prefs struct {
	OfflineDevice string `toml:"offline_device"`
	Notify        bool   `toml:"notify"`
	Theme         string `toml:"theme"`
	Window        Window `toml:"window"`
}

const (
	fileName      = "prefs.toml"
	defaultTheme  = "Nightfox"
	defaultWidth  = 80
	defaultHeight = 24
)

// Defaults returns the preferences used when nothing is stored yet.
func Defaults() Prefs {
	return Prefs{
		Notify: true,
		Theme:  defaultTheme,
		Window: Window{
			State:  WindowShown,
			Width:  defaultWidth,
			Height: defaultHeight,
		},
	}
}

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return filepath.Join(platform.ConfigDir(), fileName)
}

// Load reads preferences from the given path, falling back to defaults if missing.
func Load(path string) (Prefs, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Defaults(), nil
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Defaults(), nil
		}
		return Defaults(), nil // Graceful degradation
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Defaults(), nil // Graceful degradation
	}

	p := Defaults()
	if err := toml.Unmarshal(bytes, &p); err != nil {
		return Defaults(), nil // Graceful degradation
	}

	p.normalize()
	return p, nil
}

// Save writes preferences to the given path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	p.normalize()
	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	// write-then-rename
	tmp := resolved + ".tmp"
	if err := os.WriteFile(tmp, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := os.Rename(tmp, resolved); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write prefs: %w", err)
	}

	return nil
}

func (p *Prefs) normalize() {
	p.OfflineDevice = strings.TrimSpace(p.OfflineDevice)
	if strings.TrimSpace(p.Theme) == "" {
		p.Theme = defaultTheme
	}
	if p.Window.State != WindowShown && p.Window.State != WindowHidden {
		p.Window.State = WindowShown
	}
	if p.Window.Width <= 0 {
		p.Window.Width = defaultWidth
	}
	if p.Window.Height <= 0 {
		p.Window.Height = defaultHeight
	}
}

// Store is a file-backed preference store bound to one path.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore returns a store for path ("" means DefaultPath).
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the resolved file path.
func (s *Store) Path() string {
	resolved, err := resolvePath(s.path)
	if err != nil {
		return s.path
	}
	return resolved
}

// Load reads the stored preferences.
func (s *Store) Load() (Prefs, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Load(s.path)
}

// Save writes p to the store.
func (s *Store) Save(p Prefs) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Save(s.path, p)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return filepath.Abs(DefaultPath())
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
