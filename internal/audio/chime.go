package audio

import (
	"sync"

	"github.com/777genius/audioswitch/internal/config"
	"github.com/777genius/audioswitch/internal/logging"
)

type playCloser interface {
	Play(soundPath string) error
	Close() error
}

// Chime plays the configured sound asynchronously after a device switch
type Chime struct {
	sound   string
	volume  float64
	enabled bool

	initOnce  sync.Once
	initErr   error
	player    playCloser
	newPlayer func(volume float64) (playCloser, error)

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewChime creates a chime from config. A disabled chime ignores Play.
func NewChime(cfg *config.Config) *Chime {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Chime{
		sound:   cfg.Chime.Sound,
		volume:  cfg.Chime.Volume,
		enabled: cfg.IsChimeEnabled(),
		newPlayer: func(volume float64) (playCloser, error) {
			p, err := NewPlayer(volume)
			if err != nil {
				return nil, err
			}
			return p, nil
		},
	}
}

// Enabled reports whether the chime will play anything
func (c *Chime) Enabled() bool {
	return c != nil && c.enabled
}

// Play starts the chime in the background
func (c *Chime) Play() {
	if !c.Enabled() {
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		if err := c.initPlayer(); err != nil {
			logging.Warn("Chime unavailable: %v", err)
			return
		}
		if err := c.player.Play(c.sound); err != nil {
			logging.Warn("Chime playback failed: %v", err)
		}
	}()
}

func (c *Chime) initPlayer() error {
	c.initOnce.Do(func() {
		c.player, c.initErr = c.newPlayer(c.volume)
	})
	return c.initErr
}

// Close waits for pending chimes and releases the player
func (c *Chime) Close() error {
	if c == nil {
		return nil
	}

	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.wg.Wait()

	if c.player != nil {
		return c.player.Close()
	}
	return nil
}
