// Package audio decodes WAV audio and selects clip cut points from
// waveform energy. Detection finds non-silent spans; when nothing
// usable is found the selector falls back to uniform time slicing.
package audio

import (
	"fmt"
	"os"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Track holds decoded PCM16 audio. It is read-only once decoded and
// lives only for the duration of one detection call.
type Track struct {
	Samples    []int16 // interleaved when Channels > 1
	SampleRate int
	Channels   int
}

// NumFrames returns the number of sample frames (samples per channel).
func (t Track) NumFrames() int {
	if t.Channels == 0 {
		return 0
	}
	return len(t.Samples) / t.Channels
}

// Duration returns the track length.
func (t Track) Duration() time.Duration {
	if t.SampleRate == 0 {
		return 0
	}
	return time.Duration(t.NumFrames()) * time.Second / time.Duration(t.SampleRate)
}

// LoadWAV decodes a PCM16 WAV file into a Track.
// The audio extraction collaborator always produces pcm_s16le at
// 44.1 kHz, so anything else is rejected.
func LoadWAV(path string) (Track, error) {
	f, err := os.Open(path) // #nosec G304 -- path is produced by the pipeline's own workspace
	if err != nil {
		return Track{}, fmt.Errorf("failed to open wav: %w", err)
	}
	defer func() { _ = f.Close() }()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return Track{}, fmt.Errorf("%w: %s is not a valid wav file", ErrUnsupportedFormat, path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Track{}, fmt.Errorf("failed to decode wav: %w", err)
	}
	if dec.BitDepth != 16 {
		return Track{}, fmt.Errorf("%w: bit depth %d, want 16", ErrUnsupportedFormat, dec.BitDepth)
	}

	return trackFromBuffer(buf), nil
}

// trackFromBuffer converts a decoded PCM buffer into a Track.
func trackFromBuffer(buf *goaudio.IntBuffer) Track {
	samples := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		samples[i] = int16(v)
	}
	return Track{
		Samples:    samples,
		SampleRate: buf.Format.SampleRate,
		Channels:   buf.Format.NumChannels,
	}
}
