package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"iter"
	"math"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/lucasmne/clipforge/internal/caption"
)

// Compositor renders caption chunks into overlay frames.
type Compositor struct {
	style Style
	face  font.Face
	warn  func(msg string)
}

// CompositorOption configures a Compositor.
type CompositorOption func(*Compositor)

// WithWarn sets a callback for warning messages. Nil suppresses them.
func WithWarn(fn func(msg string)) CompositorOption {
	return func(c *Compositor) {
		c.warn = fn
	}
}

// NewCompositor creates a Compositor. The configured font is resolved
// once; when resolution fails the built-in face is used so playback
// never aborts over a font error.
func NewCompositor(style Style, resolver Resolver, opts ...CompositorOption) *Compositor {
	c := &Compositor{
		style: style,
		warn:  func(msg string) { fmt.Fprintln(os.Stderr, msg) },
	}
	for _, opt := range opts {
		opt(c)
	}

	face, err := resolver.Resolve(style.FontName, style.FontSize)
	if err != nil {
		if c.warn != nil {
			c.warn(fmt.Sprintf("Warning: %v, using built-in font", err))
		}
		face = basicfont.Face7x13
	}
	c.face = face
	return c
}

// Frames returns a lazy, finite, restartable sequence of overlay
// frames for the chunk, indexed by time t in [0, duration). Ranging
// over the sequence again restarts it from t=0.
func (c *Compositor) Frames(chunk caption.Chunk) iter.Seq2[float64, *image.RGBA] {
	tl := NewTimeline(chunk)
	step := 1.0 / float64(c.style.FPS)

	return func(yield func(float64, *image.RGBA) bool) {
		for i := 0; ; i++ {
			t := float64(i) * step
			if t >= tl.Duration() {
				return
			}
			frame, err := c.renderState(tl.StateAt(t))
			if err != nil {
				return
			}
			if !yield(t, frame) {
				return
			}
		}
	}
}

// StaticFrame renders the whole chunk text as a single frame, used
// for the chunk's entire duration when animation is disabled or the
// animated path fails.
func (c *Compositor) StaticFrame(chunk caption.Chunk) (*image.RGBA, error) {
	words := chunk.WordsOf()
	return c.render(words, "", false, 1.0)
}

// RenderSequence writes the chunk's animated frames as a PNG sequence
// into dir, named frame_%05d.png. Returns the number of frames
// written. A measurement failure is reported so the caller can fall
// back to the static render.
func (c *Compositor) RenderSequence(chunk caption.Chunk, dir string) (int, error) {
	tl := NewTimeline(chunk)
	step := 1.0 / float64(c.style.FPS)

	n := 0
	for i := 0; ; i++ {
		t := float64(i) * step
		if t >= tl.Duration() {
			break
		}
		frame, err := c.renderState(tl.StateAt(t))
		if err != nil {
			return 0, err
		}
		if err := writePNG(filepath.Join(dir, fmt.Sprintf("frame_%05d.png", n)), frame); err != nil {
			return 0, err
		}
		n++
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: chunk %q produced no frames", ErrMeasureFailed, chunk.Text)
	}
	return n, nil
}

// RenderStatic writes the chunk's static frame to path.
func (c *Compositor) RenderStatic(chunk caption.Chunk, path string) error {
	frame, err := c.StaticFrame(chunk)
	if err != nil {
		return err
	}
	return writePNG(path, frame)
}

// renderState draws one animated frame.
func (c *Compositor) renderState(state FrameState) (*image.RGBA, error) {
	if len(state.Revealed) == 0 {
		// Nothing revealed yet: an empty transparent frame, with the
		// cursor when it is on.
		return c.render(nil, "", state.CursorVisible, state.Opacity)
	}
	prior := state.Revealed[:len(state.Revealed)-1]
	return c.render(prior, state.Current, state.CursorVisible, state.Opacity)
}

// render lays out prior words in the base color, the current word in
// the highlight color, and an optional trailing cursor, then applies
// the whole-chunk opacity.
func (c *Compositor) render(prior []string, current string, cursor bool, opacity float64) (*image.RGBA, error) {
	img := image.NewRGBA(image.Rect(0, 0, c.style.Width, c.style.Height))

	line := strings.Join(prior, " ")
	if current != "" {
		if line != "" {
			line += " "
		}
		line += current
	}

	metrics := c.face.Metrics()
	spaceW, _ := c.face.GlyphAdvance(' ')
	cursorW := spaceW
	if cursorW == 0 {
		cursorW = fixed.I(int(c.style.FontSize / 4))
	}

	totalW, err := c.measure(line)
	if err != nil {
		return nil, err
	}
	if cursor {
		totalW += cursorW
	}

	x := fixed.I((c.style.Width - totalW.Ceil()) / 2)
	if x < 0 {
		x = 0
	}
	y := c.baselineY(metrics)

	pen := x
	for _, w := range prior {
		pen = c.drawWord(img, w+" ", pen, y, c.style.FontColor)
	}
	if current != "" {
		pen = c.drawWord(img, current, pen, y, c.style.HighlightColor)
	}
	if cursor {
		c.drawCursor(img, pen, y, cursorW, metrics)
	}

	if opacity < 1 {
		applyOpacity(img, opacity)
	}
	return img, nil
}

// measure returns the advance of s, reporting a failure when a
// non-empty string measures to nothing.
func (c *Compositor) measure(s string) (fixed.Int26_6, error) {
	w := font.MeasureString(c.face, s)
	if w == 0 && s != "" {
		return 0, fmt.Errorf("%w: %q", ErrMeasureFailed, s)
	}
	return w, nil
}

// baselineY positions the caption line per the configured position.
func (c *Compositor) baselineY(m font.Metrics) fixed.Int26_6 {
	switch c.style.Position {
	case PositionTop:
		return fixed.I(topOffsetPx) + m.Ascent
	case PositionMiddle:
		return fixed.I(c.style.Height / 2)
	default:
		return fixed.I(c.style.Height - bottomOffsetPx)
	}
}

// drawWord draws one word with its stroke and returns the advanced pen.
func (c *Compositor) drawWord(img *image.RGBA, s string, x, y fixed.Int26_6, col color.Color) fixed.Int26_6 {
	if col == nil {
		col = color.White
	}

	if c.style.StrokeColor != nil && c.style.StrokeWidth > 0 {
		r := fixed.I(int(math.Round(c.style.StrokeWidth)))
		if r == 0 {
			r = fixed.I(1)
		}
		offsets := [][2]fixed.Int26_6{
			{-r, 0}, {r, 0}, {0, -r}, {0, r},
			{-r, -r}, {-r, r}, {r, -r}, {r, r},
		}
		for _, off := range offsets {
			c.drawString(img, s, x+off[0], y+off[1], c.style.StrokeColor)
		}
	}

	c.drawString(img, s, x, y, col)
	return x + font.MeasureString(c.face, s)
}

func (c *Compositor) drawString(img *image.RGBA, s string, x, y fixed.Int26_6, col color.Color) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: c.face,
		Dot:  fixed.Point26_6{X: x, Y: y},
	}
	d.DrawString(s)
}

// drawCursor fills a block at the trailing edge of the revealed text.
func (c *Compositor) drawCursor(img *image.RGBA, x, baseline, w fixed.Int26_6, m font.Metrics) {
	col := c.style.FontColor
	if col == nil {
		col = color.White
	}
	rect := image.Rect(
		x.Ceil(), (baseline - m.Ascent).Ceil(),
		(x + w).Ceil(), baseline.Ceil(),
	)
	draw.Draw(img, rect, image.NewUniform(col), image.Point{}, draw.Over)
}

// applyOpacity scales every pixel's alpha (and premultiplied color)
// by a in [0, 1].
func applyOpacity(img *image.RGBA, a float64) {
	if a >= 1 {
		return
	}
	if a < 0 {
		a = 0
	}
	scale := uint32(a * 256)
	for i := 0; i < len(img.Pix); i++ {
		img.Pix[i] = uint8(uint32(img.Pix[i]) * scale >> 8)
	}
}

// writePNG encodes a frame to path.
func writePNG(path string, img *image.RGBA) error {
	f, err := os.Create(path) // #nosec G304 -- path is inside the run workspace
	if err != nil {
		return fmt.Errorf("failed to create frame file: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to encode frame: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close frame file: %w", err)
	}
	return nil
}
