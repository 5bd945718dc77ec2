// Package render synthesizes animated caption overlay frames: words
// reveal in sync with estimated speech timing, the current word is
// highlighted, and a cursor blinks at the trailing edge. A chunk that
// cannot be animated degrades to a static render; a chunk that cannot
// be rendered at all is skipped by the caller.
package render

import (
	"fmt"
	"image/color"
	"strings"
)

// Caption positions within the frame.
const (
	PositionTop    = "top"
	PositionMiddle = "middle"
	PositionBottom = "bottom"
)

// Layout constants, matching the burn-in offsets used by the
// compositing collaborator.
const (
	topOffsetPx    = 50
	bottomOffsetPx = 100
)

// Style describes how caption chunks are drawn.
type Style struct {
	FontName       string
	FontSize       float64
	FontColor      color.Color
	HighlightColor color.Color
	StrokeColor    color.Color // nil disables the stroke
	StrokeWidth    float64
	Position       string // top, middle, or bottom
	Width          int    // video frame width in pixels
	Height         int    // video frame height in pixels
	FPS            int
	Animate        bool
}

// namedColors are the color names accepted in configuration.
var namedColors = map[string]color.RGBA{
	"white":  {R: 255, G: 255, B: 255, A: 255},
	"yellow": {R: 255, G: 255, B: 0, A: 255},
	"red":    {R: 255, G: 0, B: 0, A: 255},
	"green":  {R: 0, G: 128, B: 0, A: 255},
	"blue":   {R: 0, G: 0, B: 255, A: 255},
	"black":  {R: 0, G: 0, B: 0, A: 255},
}

// ParseColor resolves a configured color name.
// "none" and "" return nil, which disables the corresponding layer.
func ParseColor(name string) (color.Color, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "none" {
		return nil, nil
	}
	c, ok := namedColors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColor, name)
	}
	return c, nil
}
