package audio

import "errors"

// Sentinel errors for audio analysis.
var (
	// ErrNoSpans indicates the detector found no usable non-silent spans.
	// Callers fall back to uniform slicing via the Selector.
	ErrNoSpans = errors.New("no non-silent spans detected")

	// ErrInvalidClipDuration indicates a non-positive clip duration.
	// This is a configuration error, not a runtime one.
	ErrInvalidClipDuration = errors.New("clip duration must be positive")

	// ErrUnsupportedFormat indicates the WAV file is not PCM16.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
)
