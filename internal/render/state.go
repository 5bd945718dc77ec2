package render

import (
	"math"

	"github.com/lucasmne/clipforge/internal/caption"
)

// Timing constants for the reveal state machine.
const (
	// earlyRevealFraction pulls the next word in slightly ahead of its
	// nominal slot, masking perceptible lag between speech and text.
	earlyRevealFraction = 0.8

	// cursorPeriodS is the blink period of the trailing cursor.
	cursorPeriodS = 1.0

	// cursorDuty is the fraction of the period the cursor is visible.
	cursorDuty = 0.5

	// fadeDurationS is the chunk entry/exit opacity fade.
	fadeDurationS = 0.3
)

// FrameState is the derived, per-frame reveal state of a chunk.
// Recomputed for every frame time t; never persisted.
type FrameState struct {
	// Revealed holds the words visible at t, in order. The last
	// element is the current word.
	Revealed []string

	// Current is the highlighted word, or "" before the first reveal.
	Current string

	// CursorVisible reports whether the trailing cursor is drawn.
	CursorVisible bool

	// Opacity is the whole-chunk alpha in [0, 1].
	Opacity float64
}

// Timeline computes reveal states for one chunk. It is pure: the same
// t always yields the same state.
type Timeline struct {
	words    []string
	duration float64
	wps      float64
}

// NewTimeline builds the reveal timeline for a chunk.
func NewTimeline(chunk caption.Chunk) Timeline {
	words := chunk.WordsOf()
	duration := chunk.Duration()
	wps := 1.0
	if duration > 0 {
		wps = math.Max(1, float64(len(words))/duration)
	}
	return Timeline{words: words, duration: duration, wps: wps}
}

// WordCount returns the number of words in the chunk.
func (tl Timeline) WordCount() int {
	return len(tl.words)
}

// Duration returns the chunk duration in seconds.
func (tl Timeline) Duration() float64 {
	return tl.duration
}

// RevealedCount returns how many words are visible at time t.
// Monotonically non-decreasing in t: 0 at t=0, the full word count as
// t approaches the duration.
func (tl Timeline) RevealedCount(t float64) int {
	if t <= 0 || len(tl.words) == 0 {
		return 0
	}
	progress := t * tl.wps
	n := int(progress)
	if progress-math.Floor(progress) > earlyRevealFraction {
		n++
	}
	return min(n, len(tl.words))
}

// StateAt computes the frame state at time t.
func (tl Timeline) StateAt(t float64) FrameState {
	n := tl.RevealedCount(t)

	state := FrameState{
		Revealed: tl.words[:n],
		Opacity:  tl.opacityAt(t),
	}
	if n > 0 {
		state.Current = tl.words[n-1]
	}
	if n < len(tl.words) {
		state.CursorVisible = math.Mod(t, cursorPeriodS) < cursorPeriodS*cursorDuty
	}
	return state
}

// opacityAt applies the entry and exit fades.
func (tl Timeline) opacityAt(t float64) float64 {
	if t < 0 || t > tl.duration {
		return 0
	}
	a := 1.0
	if fadeDurationS > 0 {
		a = math.Min(a, t/fadeDurationS)
		a = math.Min(a, (tl.duration-t)/fadeDurationS)
	}
	return math.Max(0, math.Min(1, a))
}
