package ffmpeg

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Output encoding constants shared by every clip-producing command.
const (
	videoCodec   = "libx264"
	videoPreset  = "fast"
	audioCodec   = "aac"
	audioBitrate = "192k"
	sampleRate   = "44100"
)

// Default frame size assumed when a probe cannot determine it.
const (
	DefaultWidth  = 1280
	DefaultHeight = 720
)

// Overlay describes one caption chunk's burn-in source: either a PNG
// frame sequence (animated) or a single PNG (static), shown over the
// clip between Start and End seconds.
type Overlay struct {
	// Pattern is the image input: a frame_%05d.png pattern for
	// animated overlays, a single file path for static ones.
	Pattern string

	// Animated selects frame-sequence input over a looped still.
	Animated bool

	// FPS is the frame rate of an animated sequence.
	FPS int

	Start float64
	End   float64
}

// Processor drives ffmpeg for the clip pipeline.
type Processor struct {
	path string
	exec *Executor
}

// NewProcessor creates a Processor around a resolved ffmpeg binary.
func NewProcessor(ffmpegPath string, exec *Executor) *Processor {
	return &Processor{path: ffmpegPath, exec: exec}
}

// ExtractClip cuts duration seconds starting at cut from src into out,
// re-encoded for standalone playback.
func (p *Processor) ExtractClip(ctx context.Context, src, out string, cut, duration float64) error {
	args := []string{
		"-y",
		"-ss", formatSeconds(cut),
		"-i", src,
		"-t", formatSeconds(duration),
		"-c:v", videoCodec,
		"-preset", videoPreset,
		"-c:a", audioCodec,
		"-b:a", audioBitrate,
		"-ar", sampleRate,
		"-movflags", "+faststart",
		out,
	}
	return p.exec.Run(ctx, p.path, args)
}

// ExtractAudio writes src's audio track as 16-bit PCM WAV to out.
func (p *Processor) ExtractAudio(ctx context.Context, src, out string) error {
	args := []string{
		"-y",
		"-i", src,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", sampleRate,
		out,
	}
	return p.exec.Run(ctx, p.path, args)
}

var (
	durationRe = regexp.MustCompile(`Duration:\s*(\d+):(\d+):(\d+(?:\.\d+)?)`)
	timeRe     = regexp.MustCompile(`time=(\d+):(\d+):(\d+(?:\.\d+)?)`)
	videoRe    = regexp.MustCompile(`Stream .*Video:.* (\d{2,5})x(\d{2,5})`)
)

// ProbeDuration reads the media duration in seconds from ffmpeg's
// diagnostic output. A bare `-i` probe exits non-zero; the output still
// carries the header.
func (p *Processor) ProbeDuration(ctx context.Context, src string) (float64, error) {
	output, _ := p.exec.RunOutput(ctx, p.path, []string{"-i", src})

	if d, ok := parseClock(durationRe, output); ok {
		return d, nil
	}
	// Fall back to the last progress timestamp for files with broken
	// headers.
	if d, ok := parseLastClock(timeRe, output); ok {
		return d, nil
	}
	return 0, fmt.Errorf("%w: no duration in ffmpeg output for %s", ErrProbeFailed, src)
}

// ProbeVideoSize reads the frame size of src's first video stream.
// When the probe cannot determine it, the default size is returned
// with ok=false so the caller can log the assumption.
func (p *Processor) ProbeVideoSize(ctx context.Context, src string) (width, height int, ok bool) {
	output, _ := p.exec.RunOutput(ctx, p.path, []string{"-i", src})

	m := videoRe.FindStringSubmatch(output)
	if m == nil {
		return DefaultWidth, DefaultHeight, false
	}
	w, errW := strconv.Atoi(m[1])
	h, errH := strconv.Atoi(m[2])
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return DefaultWidth, DefaultHeight, false
	}
	return w, h, true
}

// BurnOverlays composites the overlays onto base and writes out. The
// video is re-encoded; the audio track is copied bit-for-bit from
// base.
func (p *Processor) BurnOverlays(ctx context.Context, base, out string, overlays []Overlay) error {
	if len(overlays) == 0 {
		return fmt.Errorf("%w: no overlays to burn", ErrExecFailed)
	}

	args := []string{"-y", "-i", base}
	for _, ov := range overlays {
		if ov.Animated {
			args = append(args,
				"-framerate", strconv.Itoa(ov.FPS),
				"-start_number", "0",
				"-itsoffset", formatSeconds(ov.Start),
				"-i", ov.Pattern,
			)
		} else {
			args = append(args, "-loop", "1", "-i", ov.Pattern)
		}
	}

	args = append(args,
		"-filter_complex", buildOverlayFilter(overlays),
		"-map", fmt.Sprintf("[v%d]", len(overlays)),
		"-map", "0:a:0",
		"-c:v", videoCodec,
		"-preset", videoPreset,
		"-c:a", "copy",
		"-movflags", "+faststart",
		out,
	)
	return p.exec.Run(ctx, p.path, args)
}

// buildOverlayFilter chains one overlay filter per caption chunk, each
// gated to its chunk's time window.
func buildOverlayFilter(overlays []Overlay) string {
	var b strings.Builder
	prev := "[0:v]"
	for i, ov := range overlays {
		next := fmt.Sprintf("[v%d]", i+1)
		fmt.Fprintf(&b, "%s[%d:v]overlay=0:0:enable='between(t,%s,%s)'%s",
			prev, i+1, formatSeconds(ov.Start), formatSeconds(ov.End), next)
		if i < len(overlays)-1 {
			b.WriteString(";")
		}
		prev = next
	}
	return b.String()
}

// formatSeconds renders a seconds value for an ffmpeg argument.
func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}

// parseClock parses the first HH:MM:SS.ff match of re in output.
func parseClock(re *regexp.Regexp, output string) (float64, bool) {
	return clockToSeconds(re.FindStringSubmatch(output))
}

// parseLastClock parses the final HH:MM:SS.ff match of re in output.
func parseLastClock(re *regexp.Regexp, output string) (float64, bool) {
	all := re.FindAllStringSubmatch(output, -1)
	if len(all) == 0 {
		return 0, false
	}
	return clockToSeconds(all[len(all)-1])
}

func clockToSeconds(m []string) (float64, bool) {
	if len(m) != 4 {
		return 0, false
	}
	h, err1 := strconv.Atoi(m[1])
	min, err2 := strconv.Atoi(m[2])
	sec, err3 := strconv.ParseFloat(m[3], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, false
	}
	return float64(h)*3600 + float64(min)*60 + sec, true
}
