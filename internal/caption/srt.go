package caption

import (
	"fmt"
	"io"
	"math"
)

// WriteSRT writes chunks as a SubRip subtitle file.
// Produced as a sidecar next to each captioned clip so the text stays
// editable after the burn-in.
func WriteSRT(w io.Writer, chunks []Chunk) error {
	for i, ch := range chunks {
		_, err := fmt.Fprintf(w, "%d\n%s --> %s\n%s\n\n",
			i+1, srtTime(ch.Start), srtTime(ch.End), ch.Text)
		if err != nil {
			return fmt.Errorf("failed to write srt entry %d: %w", i+1, err)
		}
	}
	return nil
}

// srtTime converts seconds to the SRT time format HH:MM:SS,mmm.
func srtTime(seconds float64) string {
	totalMS := int(math.Round(math.Abs(seconds) * 1000))
	h := totalMS / 3_600_000
	m := totalMS % 3_600_000 / 60_000
	s := totalMS % 60_000 / 1000
	ms := totalMS % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}
