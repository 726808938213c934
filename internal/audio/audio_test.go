package audio

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/777genius/audioswitch/internal/config"
)

// === Decoding ===

func writeWAV(t *testing.T, path string, channels int, sampleRate int, samples []int16) {
	t.Helper()
	dataSize := len(samples) * 2
	buf := make([]byte, 0, 44+dataSize)
	le := binary.LittleEndian

	buf = append(buf, "RIFF"...)
	buf = le.AppendUint32(buf, uint32(36+dataSize))
	buf = append(buf, "WAVE"...)
	buf = append(buf, "fmt "...)
	buf = le.AppendUint32(buf, 16)
	buf = le.AppendUint16(buf, 1)
	buf = le.AppendUint16(buf, uint16(channels))
	buf = le.AppendUint32(buf, uint32(sampleRate))
	buf = le.AppendUint32(buf, uint32(sampleRate*channels*2))
	buf = le.AppendUint16(buf, uint16(channels*2))
	buf = le.AppendUint16(buf, 16)
	buf = append(buf, "data"...)
	buf = le.AppendUint32(buf, uint32(dataSize))
	for _, s := range samples {
		buf = le.AppendUint16(buf, uint16(s))
	}

	require.NoError(t, os.WriteFile(path, buf, 0644))
}

func TestDecodeWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chime.wav")
	writeWAV(t, path, 2, 44100, []int16{0, 0, 16384, -16384, 32767, -32768})

	decoded, err := decodeFile(path)
	require.NoError(t, err)

	assert.Equal(t, uint32(44100), decoded.sampleRate)
	assert.Equal(t, 2, decoded.channels)
	require.Len(t, decoded.samples, 6)
	assert.InDelta(t, 16384, decoded.samples[2], 2)
	assert.InDelta(t, -16384, decoded.samples[3], 2)
	assert.InDelta(t, 32767, decoded.samples[4], 2, "full scale survives decoding")
	assert.InDelta(t, -32767, decoded.samples[5], 2)
}

func TestDecodeWAV_MonoKeepsAmplitude(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mono.wav")
	writeWAV(t, path, 1, 22050, []int16{8192, -8192, 24000})

	decoded, err := decodeFile(path)
	require.NoError(t, err)

	assert.Equal(t, 1, decoded.channels)
	require.Len(t, decoded.samples, 3)
	assert.InDelta(t, 8192, decoded.samples[0], 2)
	assert.InDelta(t, -8192, decoded.samples[1], 2)
	assert.InDelta(t, 24000, decoded.samples[2], 2)
}

func TestDecodeUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chime.xyz")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0644))

	_, err := decodeFile(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported audio format")
}

func TestDecodeMissingFile(t *testing.T) {
	_, err := decodeFile(filepath.Join(t.TempDir(), "missing.wav"))
	assert.Error(t, err)
}

func TestDecodeInvalidAIFF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.aiff")
	require.NoError(t, os.WriteFile(path, []byte("not an aiff file at all"), 0644))

	_, err := decodeFile(path)
	assert.Error(t, err)
}

func TestIsSupported(t *testing.T) {
	for _, p := range []string{"a.mp3", "b.WAV", "c.flac", "d.ogg", "e.aiff", "f.aif"} {
		assert.True(t, IsSupported(p), p)
	}
	assert.False(t, IsSupported("g.m4a"))
	assert.False(t, IsSupported("noext"))
}

func TestIntBufferToSamples(t *testing.T) {
	tests := []struct {
		name     string
		bitDepth int
		in       []int
		want     []int16
	}{
		{"8-bit", 8, []int{1, -1}, []int16{256, -256}},
		{"16-bit", 16, []int{1000, -1000}, []int16{1000, -1000}},
		{"24-bit", 24, []int{0x7FFF00, -256}, []int16{0x7FFF, -1}},
		{"32-bit", 32, []int{0x7FFF0000, -65536}, []int16{0x7FFF, -1}},
		{"unknown depth", 12, []int{42}, []int16{42}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &goaudio.IntBuffer{Data: tt.in}
			assert.Equal(t, tt.want, intBufferToSamples(buf, tt.bitDepth))
		})
	}
}

type sliceStreamer struct {
	frames [][2]float64
}

func (s *sliceStreamer) Stream(buf [][2]float64) (int, bool) {
	if len(s.frames) == 0 {
		return 0, false
	}
	n := copy(buf, s.frames)
	s.frames = s.frames[n:]
	return n, true
}

func TestStreamToPCM(t *testing.T) {
	frames := make([][2]float64, 600)
	for i := range frames {
		frames[i] = [2]float64{0.5, -0.5}
	}
	frames[0] = [2]float64{2, -2}

	stereo := streamToPCM(&sliceStreamer{frames: frames}, 48000, 2)
	assert.Len(t, stereo.samples, 1200)
	assert.Equal(t, int16(32767), stereo.samples[0], "clipped")
	assert.Equal(t, int16(-32767), stereo.samples[1], "clipped")
	assert.Equal(t, uint32(48000), stereo.sampleRate)

	mono := streamToPCM(&sliceStreamer{frames: frames[:10]}, 22050, 1)
	assert.Len(t, mono.samples, 10)
}

func TestApplyVolume(t *testing.T) {
	samples := []int16{1000, -1000}
	applyVolume(samples, 0.5)
	assert.Equal(t, []int16{500, -500}, samples)

	applyVolume(samples, 1.0)
	assert.Equal(t, []int16{500, -500}, samples)

	applyVolume(samples, -1)
	assert.Equal(t, []int16{0, 0}, samples)
}

func TestSamplesToBytes(t *testing.T) {
	assert.Equal(t, []byte{0x01, 0x00, 0xFF, 0xFF, 0x00, 0x80}, samplesToBytes([]int16{1, -1, -32768}))
}

// === Chime ===

type fakePlayer struct {
	mu     sync.Mutex
	played []string
	closed bool
	err    error
}

func (f *fakePlayer) Play(soundPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.played = append(f.played, soundPath)
	return f.err
}

func (f *fakePlayer) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func newTestChime(cfg *config.Config, p *fakePlayer, initErr error) *Chime {
	c := NewChime(cfg)
	c.newPlayer = func(volume float64) (playCloser, error) {
		if initErr != nil {
			return nil, initErr
		}
		return p, nil
	}
	return c
}

func chimeConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Chime.Enabled = true
	cfg.Chime.Sound = "/sounds/switch.wav"
	return cfg
}

func TestChimeDisabledIsNoop(t *testing.T) {
	p := &fakePlayer{}
	c := newTestChime(config.DefaultConfig(), p, nil)

	assert.False(t, c.Enabled())
	c.Play()
	require.NoError(t, c.Close())
	assert.Empty(t, p.played)
}

func TestChimePlaysAndCloseWaits(t *testing.T) {
	p := &fakePlayer{}
	c := newTestChime(chimeConfig(), p, nil)

	c.Play()
	c.Play()
	require.NoError(t, c.Close())

	assert.Equal(t, []string{"/sounds/switch.wav", "/sounds/switch.wav"}, p.played)
	assert.True(t, p.closed)
}

func TestChimeAfterCloseIgnored(t *testing.T) {
	p := &fakePlayer{}
	c := newTestChime(chimeConfig(), p, nil)
	require.NoError(t, c.Close())

	c.Play()
	assert.Empty(t, p.played)
}

func TestChimePlayerInitFailure(t *testing.T) {
	c := newTestChime(chimeConfig(), nil, errors.New("no audio backend"))
	c.Play()
	assert.NoError(t, c.Close())
}

func TestChimeNil(t *testing.T) {
	var c *Chime
	assert.False(t, c.Enabled())
	c.Play()
	assert.NoError(t, c.Close())
}
