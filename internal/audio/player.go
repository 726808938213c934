// ABOUTME: Chime playback on the current default output device.
// ABOUTME: Uses malgo (miniaudio bindings) for cross-platform audio output.

package audio

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gen2brain/malgo"

	"github.com/777genius/audioswitch/internal/logging"
)

const playbackTimeout = 30 * time.Second

// DeviceInfo represents an audio output device as seen by miniaudio
type DeviceInfo struct {
	Name      string
	IsDefault bool
}

// ListDevices returns all playback devices known to miniaudio
func ListDevices() ([]DeviceInfo, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to init audio context: %w", err)
	}
	defer func() {
		_ = ctx.Uninit()
		ctx.Free()
	}()

	devices, err := ctx.Devices(malgo.Playback)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}

	result := make([]DeviceInfo, 0, len(devices))
	for _, dev := range devices {
		result = append(result, DeviceInfo{
			Name:      dev.Name(),
			IsDefault: dev.IsDefault != 0,
		})
	}
	return result, nil
}

// Player plays decoded sounds on the system default playback device.
// The default is resolved per Play call so a chime follows a switch.
type Player struct {
	ctx    *malgo.AllocatedContext
	volume float64
	mu     sync.Mutex
}

// NewPlayer creates a player with the given volume (0.0-1.0)
func NewPlayer(volume float64) (*Player, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to init audio context: %w", err)
	}
	return &Player{ctx: ctx, volume: volume}, nil
}

// Play decodes and plays soundPath, blocking until playback ends
func (p *Player) Play(soundPath string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctx == nil {
		return fmt.Errorf("player closed")
	}

	if _, err := os.Stat(soundPath); os.IsNotExist(err) {
		return fmt.Errorf("sound file not found: %s", soundPath)
	}

	decoded, err := decodeFile(soundPath)
	if err != nil {
		return fmt.Errorf("failed to decode audio: %w", err)
	}
	if decoded.channels <= 0 || len(decoded.samples) == 0 {
		return fmt.Errorf("no audio data in %s", soundPath)
	}

	applyVolume(decoded.samples, p.volume)
	audioData := samplesToBytes(decoded.samples)

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = uint32(decoded.channels)
	deviceConfig.SampleRate = decoded.sampleRate
	deviceConfig.PeriodSizeInFrames = 4096
	deviceConfig.Periods = 4
	deviceConfig.Alsa.NoMMap = 1

	var pos int
	done := make(chan struct{})
	var doneOnce sync.Once
	frameBytes := decoded.channels * 2

	onData := func(output, _ []byte, frameCount uint32) {
		n := int(frameCount) * frameBytes
		if pos+n > len(audioData) {
			n = len(audioData) - pos
		}
		if n > 0 {
			copy(output, audioData[pos:pos+n])
			pos += n
		}
		for i := n; i < len(output); i++ {
			output[i] = 0
		}
		if pos >= len(audioData) {
			doneOnce.Do(func() { close(done) })
		}
	}

	device, err := malgo.InitDevice(p.ctx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: onData,
	})
	if err != nil {
		return fmt.Errorf("failed to init audio device: %w", err)
	}
	defer device.Uninit()

	if err := device.Start(); err != nil {
		return fmt.Errorf("failed to start audio device: %w", err)
	}

	select {
	case <-done:
		// let the device buffer drain
		time.Sleep(200 * time.Millisecond)
		logging.Debug("Chime playback completed: %s", soundPath)
	case <-time.After(playbackTimeout):
		logging.Warn("Chime playback timeout: %s", soundPath)
	}

	_ = device.Stop()
	return nil
}

// Close releases the audio context
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctx != nil {
		_ = p.ctx.Uninit()
		p.ctx.Free()
		p.ctx = nil
	}
	return nil
}
