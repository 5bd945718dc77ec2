package audio

import (
	"fmt"
	"math"
	"time"
)

// Detection parameters.
const (
	// defaultThresholdDB is the silence threshold in dBFS.
	// -40dB suits voice recordings with typical background noise.
	defaultThresholdDB = -40.0

	// defaultMinSilence is the minimum silence duration separating spans.
	defaultMinSilence = 1000 * time.Millisecond

	// defaultSafetyMargin pads each detected span outward on both sides
	// so speech onsets are not clipped.
	defaultSafetyMargin = 500 * time.Millisecond

	// minSpanDuration discards padded spans shorter than this.
	// Rejects noise blips that would produce unusably short clips.
	minSpanDuration = 2000 * time.Millisecond

	// energyWindow is the short-window size for the RMS scan.
	energyWindow = 10 * time.Millisecond
)

// Detector finds non-silent spans in a decoded track and returns their
// start offsets as clip cut points. It never falls back by itself:
// when nothing usable is found it reports ErrNoSpans and the Selector
// decides what to do.
type Detector struct {
	thresholdDB  float64
	minSilence   time.Duration
	safetyMargin time.Duration
}

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithThresholdDB sets the silence threshold in dBFS.
// Lower values (more negative) treat quieter audio as speech.
func WithThresholdDB(db float64) DetectorOption {
	return func(d *Detector) {
		if db < 0 {
			d.thresholdDB = db
		}
	}
}

// WithMinSilence sets the minimum silence duration separating spans.
func WithMinSilence(min time.Duration) DetectorOption {
	return func(d *Detector) {
		if min > 0 {
			d.minSilence = min
		}
	}
}

// WithSafetyMargin sets the outward padding applied to each span.
func WithSafetyMargin(margin time.Duration) DetectorOption {
	return func(d *Detector) {
		if margin >= 0 {
			d.safetyMargin = margin
		}
	}
}

// NewDetector creates a Detector with the given options.
func NewDetector(opts ...DetectorOption) Detector {
	d := Detector{
		thresholdDB:  defaultThresholdDB,
		minSilence:   defaultMinSilence,
		safetyMargin: defaultSafetyMargin,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// span is a half-open time interval within the track.
type span struct {
	start time.Duration
	end   time.Duration
}

func (s span) length() time.Duration {
	return s.end - s.start
}

// Detect scans the track and returns cut points, in seconds, at the
// padded start of each surviving non-silent span. Results are
// time-ordered and strictly increasing. Returns ErrNoSpans when no
// span survives.
func (d Detector) Detect(track Track) ([]float64, error) {
	total := track.Duration()
	if total == 0 {
		return nil, fmt.Errorf("empty track: %w", ErrNoSpans)
	}

	silences := d.findSilences(track)
	spans := complement(silences, total)

	cuts := make([]float64, 0, len(spans))
	for _, sp := range spans {
		// Pad outward and clamp to the track.
		sp.start = max(0, sp.start-d.safetyMargin)
		sp.end = min(total, sp.end+d.safetyMargin)

		if sp.length() < minSpanDuration {
			continue
		}
		cuts = append(cuts, sp.start.Seconds())
	}

	if len(cuts) == 0 {
		return nil, ErrNoSpans
	}
	return cuts, nil
}

// findSilences returns runs of consecutive windows whose RMS energy
// stays below the threshold for at least minSilence.
func (d Detector) findSilences(track Track) []span {
	windowFrames := int(time.Duration(track.SampleRate) * energyWindow / time.Second)
	if windowFrames < 1 {
		windowFrames = 1
	}

	var silences []span
	var runStart time.Duration
	inRun := false

	numFrames := track.NumFrames()
	for frame := 0; frame < numFrames; frame += windowFrames {
		endFrame := min(frame+windowFrames, numFrames)
		t := frameTime(frame, track.SampleRate)

		if windowDB(track, frame, endFrame) < d.thresholdDB {
			if !inRun {
				runStart = t
				inRun = true
			}
			continue
		}
		if inRun {
			if run := (span{start: runStart, end: t}); run.length() >= d.minSilence {
				silences = append(silences, run)
			}
			inRun = false
		}
	}

	if inRun {
		if run := (span{start: runStart, end: track.Duration()}); run.length() >= d.minSilence {
			silences = append(silences, run)
		}
	}

	return silences
}

// windowDB computes the RMS level of frames [from, to) in dBFS.
// A window of digital silence yields -Inf.
func windowDB(track Track, from, to int) float64 {
	var sum float64
	n := 0
	for frame := from; frame < to; frame++ {
		for ch := 0; ch < track.Channels; ch++ {
			s := float64(track.Samples[frame*track.Channels+ch]) / 32768.0
			sum += s * s
			n++
		}
	}
	if n == 0 || sum == 0 {
		return math.Inf(-1)
	}
	rms := math.Sqrt(sum / float64(n))
	return 20 * math.Log10(rms)
}

// complement returns the non-silent spans between silences over [0, total).
func complement(silences []span, total time.Duration) []span {
	var spans []span
	cursor := time.Duration(0)
	for _, s := range silences {
		if s.start > cursor {
			spans = append(spans, span{start: cursor, end: s.start})
		}
		cursor = s.end
	}
	if cursor < total {
		spans = append(spans, span{start: cursor, end: total})
	}
	return spans
}

// frameTime converts a frame index to a time offset.
func frameTime(frame, sampleRate int) time.Duration {
	return time.Duration(frame) * time.Second / time.Duration(sampleRate)
}
