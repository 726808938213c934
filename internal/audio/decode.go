package audio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/flac"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"
)

// pcm is decoded interleaved 16-bit audio
type pcm struct {
	samples    []int16
	sampleRate uint32
	channels   int
}

// SupportedFormats lists the file extensions the chime can decode
var SupportedFormats = []string{".mp3", ".wav", ".flac", ".ogg", ".aiff", ".aif"}

// IsSupported reports whether path has a decodable extension
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, f := range SupportedFormats {
		if ext == f {
			return true
		}
	}
	return false
}

// decodeFile decodes an audio file into interleaved int16 samples
func decodeFile(soundPath string) (*pcm, error) {
	ext := strings.ToLower(filepath.Ext(soundPath))
	if !IsSupported(soundPath) {
		return nil, fmt.Errorf("unsupported audio format: %s", ext)
	}

	f, err := os.Open(soundPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	switch ext {
	case ".mp3":
		streamer, format, err := mp3.Decode(f)
		if err != nil {
			return nil, err
		}
		defer streamer.Close()
		return streamToPCM(streamer, int(format.SampleRate), format.NumChannels), nil
	case ".wav":
		streamer, format, err := wav.Decode(f)
		if err != nil {
			return nil, err
		}
		defer streamer.Close()
		return streamToPCM(wavFullScale(streamer, format), int(format.SampleRate), format.NumChannels), nil
	case ".flac":
		streamer, format, err := flac.Decode(f)
		if err != nil {
			return nil, err
		}
		defer streamer.Close()
		return streamToPCM(streamer, int(format.SampleRate), format.NumChannels), nil
	case ".ogg":
		streamer, format, err := vorbis.Decode(f)
		if err != nil {
			return nil, err
		}
		defer streamer.Close()
		return streamToPCM(streamer, int(format.SampleRate), format.NumChannels), nil
	default:
		return decodeAIFF(f)
	}
}

func decodeAIFF(r io.ReadSeeker) (*pcm, error) {
	decoder := aiff.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("invalid AIFF file")
	}

	decoder.ReadInfo()

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read AIFF data: %w", err)
	}

	return &pcm{
		samples:    intBufferToSamples(buf, int(decoder.BitDepth)),
		sampleRate: uint32(decoder.SampleRate),
		channels:   int(decoder.NumChans),
	}, nil
}

type streamer interface {
	Stream([][2]float64) (int, bool)
}

// streamToPCM drains a beep streamer into int16 samples
func streamToPCM(s streamer, sampleRate int, numChannels int) *pcm {
	var all []int16
	buffer := make([][2]float64, 512)

	for {
		n, ok := s.Stream(buffer)
		if n == 0 {
			break
		}

		for i := 0; i < n; i++ {
			all = append(all, floatToInt16(buffer[i][0]))
			if numChannels >= 2 {
				all = append(all, floatToInt16(buffer[i][1]))
			}
		}

		if !ok {
			break
		}
	}

	return &pcm{samples: all, sampleRate: uint32(sampleRate), channels: numChannels}
}

// wavFullScale undoes the wav decoder's half-range scaling of signed
// 16 and 24 bit samples, which divides by 2^N-1 instead of 2^(N-1).
func wavFullScale(s beep.Streamer, format beep.Format) beep.Streamer {
	if format.Precision < 2 {
		return s
	}
	return &effects.Gain{Streamer: s, Gain: 1}
}

func floatToInt16(v float64) int16 {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	return int16(v * 32767)
}

// intBufferToSamples converts a go-audio IntBuffer of the given bit depth to int16
func intBufferToSamples(buf *goaudio.IntBuffer, bitDepth int) []int16 {
	samples := make([]int16, len(buf.Data))

	var convert func(int) int16
	switch bitDepth {
	case 8:
		convert = func(v int) int16 { return int16(v << 8) }
	case 24:
		convert = func(v int) int16 { return int16(v >> 8) }
	case 32:
		convert = func(v int) int16 { return int16(v >> 16) }
	default:
		convert = func(v int) int16 { return int16(v) }
	}

	for i, v := range buf.Data {
		samples[i] = convert(v)
	}
	return samples
}

// applyVolume scales samples in place
func applyVolume(samples []int16, volume float64) {
	if volume >= 1.0 {
		return
	}
	if volume < 0 {
		volume = 0
	}
	for i := range samples {
		samples[i] = int16(float64(samples[i]) * volume)
	}
}

// samplesToBytes converts int16 samples to bytes (little-endian)
func samplesToBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		out[i*2] = byte(s)
		out[i*2+1] = byte(s >> 8)
	}
	return out
}
