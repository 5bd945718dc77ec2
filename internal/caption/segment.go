// Package caption turns raw transcript segments into display-ready
// caption chunks, derives keyword phrases for output naming, and
// writes SRT sidecar files. Chunk construction is a pure fold over the
// segment sequence; downstream stages only read the result.
package caption

import "strings"

// Word is a single transcribed word with clip-relative timing.
type Word struct {
	Start float64
	End   float64
	Text  string
}

// Segment is a raw transcript segment as emitted by the transcription
// collaborator. Times are clip-relative seconds with End >= Start.
// Words carries word-level timing when the model provides it; the
// chunker interpolates linearly when it does not.
type Segment struct {
	Start float64
	End   float64
	Text  string
	Words []Word
}

// Chunk is a contiguous, duration-bounded unit of caption text.
// Invariants: End > Start, trimmed text non-empty, and chunks within
// one clip are time-ordered and non-overlapping.
type Chunk struct {
	Start float64
	End   float64
	Text  string
}

// Duration returns the on-screen life of the chunk in seconds.
func (c Chunk) Duration() float64 {
	return c.End - c.Start
}

// WordsOf tokenizes chunk text into display words.
func (c Chunk) WordsOf() []string {
	return strings.Fields(c.Text)
}
