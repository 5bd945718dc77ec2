package render

import "errors"

// Sentinel errors for caption rendering.
var (
	// ErrFontNotFound indicates the configured font could not be resolved.
	ErrFontNotFound = errors.New("font not found")

	// ErrMeasureFailed indicates text could not be measured with the
	// resolved face. The compositor falls back to a static render.
	ErrMeasureFailed = errors.New("text measurement failed")

	// ErrNoCaptions indicates that no chunk of a clip rendered
	// successfully. The clip is reported as having no valid captions.
	ErrNoCaptions = errors.New("no captions rendered")

	// ErrUnknownColor indicates an unrecognized color name in the style.
	ErrUnknownColor = errors.New("unknown color name")
)
