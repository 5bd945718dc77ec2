package audio

import (
	"errors"
	"fmt"
	"os"
)

// WarnFunc is a callback for warning messages during cut point selection.
// Set to nil to suppress warnings.
type WarnFunc func(msg string)

// defaultWarnFunc writes warnings to stderr.
func defaultWarnFunc(msg string) {
	fmt.Fprintln(os.Stderr, msg)
}

// trackLoader decodes a WAV file into a Track. Injectable for tests.
type trackLoader func(path string) (Track, error)

// Selector turns a decoded audio file into an ordered list of clip cut
// points. It guarantees a non-empty, strictly increasing result:
// detection failures and empty detections fall back to uniform
// slicing, so callers never special-case "no segments found".
type Selector struct {
	detector     Detector
	clipDuration float64
	load         trackLoader
	warn         WarnFunc
}

// SelectorOption configures a Selector.
type SelectorOption func(*Selector)

// WithLoader sets the WAV loader (for testing).
func WithLoader(load trackLoader) SelectorOption {
	return func(s *Selector) {
		s.load = load
	}
}

// WithWarnFunc sets a callback for warning messages.
func WithWarnFunc(fn WarnFunc) SelectorOption {
	return func(s *Selector) {
		s.warn = fn
	}
}

// NewSelector creates a Selector.
// clipDuration is validated lazily by the fallback slicer.
func NewSelector(detector Detector, clipDuration float64, opts ...SelectorOption) *Selector {
	s := &Selector{
		detector:     detector,
		clipDuration: clipDuration,
		load:         LoadWAV,
		warn:         defaultWarnFunc,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CutPoints selects clip start offsets for the audio at wavPath.
// totalDuration is the source duration in seconds, used for the
// fallback when decoding or detection fails.
func (s *Selector) CutPoints(wavPath string, totalDuration float64) ([]float64, error) {
	track, err := s.load(wavPath)
	if err != nil {
		if s.warn != nil {
			s.warn(fmt.Sprintf("Warning: audio decode failed (%v), using uniform slicing", err))
		}
		return Slice(totalDuration, s.clipDuration)
	}

	cuts, err := s.detector.Detect(track)
	if err != nil {
		if !errors.Is(err, ErrNoSpans) && s.warn != nil {
			s.warn(fmt.Sprintf("Warning: detection failed (%v), using uniform slicing", err))
		}
		return Slice(totalDuration, s.clipDuration)
	}
	return cuts, nil
}
