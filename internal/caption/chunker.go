package caption

import (
	"slices"
	"strings"
)

// Chunking defaults.
const (
	// defaultMaxChunkDuration bounds the on-screen life of one chunk.
	defaultMaxChunkDuration = 5.0

	// defaultSpeakerGap is the transcript silence, in seconds, that
	// closes the open chunk and starts a new one.
	defaultSpeakerGap = 1.5

	// defaultMinTextLen discards segments with shorter trimmed text.
	defaultMinTextLen = 3

	// PlaceholderText is emitted when every segment is discarded, so a
	// captioned clip never ends up with an empty caption layer.
	PlaceholderText = "[Conteúdo não verbal]"
)

// nonSpeechMarkers are transcription placeholders that carry no
// caption-worthy speech.
var nonSpeechMarkers = []string{
	"...",
	"[música]",
	"[risos]",
	"[aplausos]",
	"[music]",
	"[laughter]",
	"[applause]",
}

// Chunker groups transcript segments into caption chunks.
type Chunker struct {
	maxChunkDuration float64
	speakerGap       float64
	minTextLen       int
}

// ChunkerOption configures a Chunker.
type ChunkerOption func(*Chunker)

// WithMaxChunkDuration sets the maximum chunk duration in seconds.
func WithMaxChunkDuration(s float64) ChunkerOption {
	return func(c *Chunker) {
		if s > 0 {
			c.maxChunkDuration = s
		}
	}
}

// WithSpeakerGap sets the gap, in seconds, that closes a chunk.
func WithSpeakerGap(s float64) ChunkerOption {
	return func(c *Chunker) {
		if s >= 0 {
			c.speakerGap = s
		}
	}
}

// WithMinTextLen sets the minimum trimmed text length for a segment
// to survive filtering.
func WithMinTextLen(n int) ChunkerOption {
	return func(c *Chunker) {
		if n >= 0 {
			c.minTextLen = n
		}
	}
}

// NewChunker creates a Chunker with the given options.
func NewChunker(opts ...ChunkerOption) Chunker {
	c := Chunker{
		maxChunkDuration: defaultMaxChunkDuration,
		speakerGap:       defaultSpeakerGap,
		minTextLen:       defaultMinTextLen,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// accumulated is an open chunk being built during the fold.
type accumulated struct {
	start float64
	end   float64
	parts []string
	words []Word
}

func (a accumulated) text() string {
	return strings.Join(a.parts, " ")
}

// Chunk folds the segment sequence into caption chunks.
//
// Segments with too-short or non-speech text are discarded; surviving
// segments merge while the gap to the previous segment stays within
// the speaker gap; any chunk spanning more than the duration bound is
// split at word boundaries. When everything is discarded, exactly one
// placeholder chunk spanning [0, clipDuration] is returned.
func (c Chunker) Chunk(segments []Segment, clipDuration float64) []Chunk {
	var groups []accumulated
	var open *accumulated

	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if !c.keep(text) {
			continue
		}

		if open != nil && seg.Start-open.end > c.speakerGap {
			groups = append(groups, *open)
			open = nil
		}

		if open == nil {
			open = &accumulated{start: seg.Start, end: seg.End, parts: []string{text}}
		} else {
			open.parts = append(open.parts, text)
			if seg.End > open.end {
				open.end = seg.End
			}
		}
		open.words = append(open.words, seg.Words...)
	}
	if open != nil {
		groups = append(groups, *open)
	}

	var chunks []Chunk
	for _, g := range groups {
		chunks = append(chunks, c.split(g)...)
	}
	chunks = normalize(chunks)

	if len(chunks) == 0 {
		return []Chunk{{Start: 0, End: clipDuration, Text: PlaceholderText}}
	}
	return chunks
}

// keep reports whether a trimmed segment text survives filtering.
func (c Chunker) keep(text string) bool {
	if len([]rune(text)) < c.minTextLen {
		return false
	}
	return !slices.Contains(nonSpeechMarkers, strings.ToLower(text))
}

// split cuts an accumulated group into sub-chunks within the duration
// bound. Word timings drive the cut positions when available;
// otherwise times are interpolated linearly across the group's span.
func (c Chunker) split(g accumulated) []Chunk {
	if g.end-g.start <= c.maxChunkDuration {
		return []Chunk{{Start: g.start, End: g.end, Text: g.text()}}
	}

	words := timedWords(g)
	if len(words) == 0 {
		return nil
	}

	var out []Chunk
	from := 0
	for from < len(words) {
		to := c.cutIndex(words, from)
		sub := Chunk{
			Start: words[from].Start,
			End:   words[to].End,
			Text:  joinWords(words[from : to+1]),
		}
		if sub.End-sub.Start > c.maxChunkDuration {
			sub.End = sub.Start + c.maxChunkDuration
		}
		out = append(out, sub)
		from = to + 1
	}
	return out
}

// cutIndex returns the index of the last word of the sub-chunk
// starting at from. Prefers the latest sentence-terminal word that
// still fits; falls back to the last fitting word; always advances by
// at least one word.
func (c Chunker) cutIndex(words []Word, from int) int {
	last := from
	punct := -1
	for i := from; i < len(words); i++ {
		if words[i].End-words[from].Start > c.maxChunkDuration {
			break
		}
		last = i
		if endsSentence(words[i].Text) {
			punct = i
		}
	}
	if punct >= from && punct < len(words)-1 {
		return punct
	}
	return last
}

// endsSentence reports whether a word carries sentence-terminal
// punctuation.
func endsSentence(w string) bool {
	w = strings.TrimRight(w, `"')]»`)
	return strings.HasSuffix(w, ".") ||
		strings.HasSuffix(w, "!") ||
		strings.HasSuffix(w, "?") ||
		strings.HasSuffix(w, "…")
}

// timedWords returns one timed Word per display token. Model word
// timings are used when they cover the tokens exactly; otherwise each
// token gets an equal share of the group's span.
func timedWords(g accumulated) []Word {
	tokens := strings.Fields(g.text())
	if len(tokens) == 0 {
		return nil
	}
	if len(g.words) == len(tokens) {
		timed := make([]Word, len(tokens))
		for i, w := range g.words {
			timed[i] = Word{Start: w.Start, End: w.End, Text: tokens[i]}
		}
		return timed
	}

	span := g.end - g.start
	per := span / float64(len(tokens))
	timed := make([]Word, len(tokens))
	for i, tok := range tokens {
		timed[i] = Word{
			Start: g.start + per*float64(i),
			End:   g.start + per*float64(i+1),
			Text:  tok,
		}
	}
	return timed
}

func joinWords(words []Word) string {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = w.Text
	}
	return strings.Join(parts, " ")
}

// normalize enforces the output invariants: time order, no overlap,
// end > start, non-empty text.
func normalize(chunks []Chunk) []Chunk {
	out := chunks[:0]
	prevEnd := 0.0
	for _, ch := range chunks {
		if strings.TrimSpace(ch.Text) == "" {
			continue
		}
		if ch.Start < prevEnd {
			ch.Start = prevEnd
		}
		if ch.End <= ch.Start {
			continue
		}
		out = append(out, ch)
		prevEnd = ch.End
	}
	return out
}
