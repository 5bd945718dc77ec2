// Package pipeline orchestrates a full clip-cutting run: cut point
// selection, clip extraction, transcription, caption rendering, and
// burn-in. Progress is reported as tagged events on a channel owned by
// the run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/lucasmne/clipforge/internal/audio"
	"github.com/lucasmne/clipforge/internal/caption"
	"github.com/lucasmne/clipforge/internal/config"
	"github.com/lucasmne/clipforge/internal/ffmpeg"
	"github.com/lucasmne/clipforge/internal/format"
	"github.com/lucasmne/clipforge/internal/lang"
	"github.com/lucasmne/clipforge/internal/render"
	"github.com/lucasmne/clipforge/internal/transcribe"
	"github.com/lucasmne/clipforge/internal/workspace"
)

// ErrNoClips indicates a run in which every clip failed.
var ErrNoClips = errors.New("no clips could be produced")

// VideoProcessor is the transcoder surface the pipeline needs.
// *ffmpeg.Processor implements it.
type VideoProcessor interface {
	ExtractClip(ctx context.Context, src, out string, cut, duration float64) error
	ExtractAudio(ctx context.Context, src, out string) error
	ProbeDuration(ctx context.Context, src string) (float64, error)
	ProbeVideoSize(ctx context.Context, src string) (width, height int, ok bool)
	BurnOverlays(ctx context.Context, base, out string, overlays []ffmpeg.Overlay) error
}

// Compile-time interface compliance check.
var _ VideoProcessor = (*ffmpeg.Processor)(nil)

// cutSelector selects clip start offsets. *audio.Selector implements it.
type cutSelector interface {
	CutPoints(wavPath string, totalDuration float64) ([]float64, error)
}

// FrameRenderer renders caption overlays. *render.Compositor
// implements it.
type FrameRenderer interface {
	RenderSequence(chunk caption.Chunk, dir string) (int, error)
	RenderStatic(chunk caption.Chunk, path string) error
}

// Runner executes pipeline runs against one configuration.
type Runner struct {
	settings    config.Settings
	proc        VideoProcessor
	transcriber transcribe.Transcriber

	selector      cutSelector
	chunker       caption.Chunker
	newWorkspace  func(baseDir string) (*workspace.Workspace, error)
	newCompositor func(style render.Style, warn func(string)) FrameRenderer
}

// Option configures a Runner.
type Option func(*Runner)

// WithSelector overrides the cut point selector (for testing).
func WithSelector(s cutSelector) Option {
	return func(r *Runner) { r.selector = s }
}

// WithWorkspaceFactory overrides workspace creation (for testing).
func WithWorkspaceFactory(fn func(baseDir string) (*workspace.Workspace, error)) Option {
	return func(r *Runner) { r.newWorkspace = fn }
}

// WithCompositorFactory overrides overlay renderer creation (for testing).
func WithCompositorFactory(fn func(style render.Style, warn func(string)) FrameRenderer) Option {
	return func(r *Runner) { r.newCompositor = fn }
}

// New creates a Runner. The transcriber may be nil when captions are
// disabled.
func New(settings config.Settings, proc VideoProcessor, transcriber transcribe.Transcriber, opts ...Option) *Runner {
	r := &Runner{
		settings:    settings,
		proc:        proc,
		transcriber: transcriber,
		chunker: caption.NewChunker(
			caption.WithMaxChunkDuration(settings.Captions.MaxChunkDurationS),
			caption.WithSpeakerGap(settings.Captions.SpeakerGapS),
			caption.WithMinTextLen(settings.Captions.MinTextLen),
		),
		newWorkspace: workspace.New,
		newCompositor: func(style render.Style, warn func(string)) FrameRenderer {
			return render.NewCompositor(style, render.NewFileResolver(), render.WithWarn(warn))
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run processes one input video and writes finished clips into the
// configured output directory. Events are sent on events, which Run
// closes before returning. Cancellation is honored between clips; an
// in-flight clip always finishes.
func (r *Runner) Run(ctx context.Context, input string, events chan<- Event) error {
	defer close(events)

	emit := func(e Event) { events <- e }
	logf := func(level LogLevel, format string, args ...any) {
		emit(Event{Kind: EventLog, Level: level, Message: fmt.Sprintf(format, args...)})
	}

	outputDir := r.settings.Paths.Output
	if outputDir == "" {
		outputDir = "."
	}
	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		err = fmt.Errorf("failed to create output directory: %w", err)
		emit(Event{Kind: EventFailed, Err: err})
		return err
	}

	ws, err := r.newWorkspace(r.settings.Paths.Temp)
	if err != nil {
		emit(Event{Kind: EventFailed, Err: err})
		return err
	}
	defer func() {
		if err := ws.Cleanup(); err != nil {
			logf(LevelWarn, "workspace cleanup failed: %v", err)
		}
	}()

	logf(LevelInfo, "run %s: probing %s", ws.RunID(), filepath.Base(input))
	total, err := r.proc.ProbeDuration(ctx, input)
	if err != nil {
		emit(Event{Kind: EventFailed, Err: err})
		return err
	}
	logf(LevelInfo, "input duration %s", format.Duration(secondsToDuration(total)))

	cuts, err := r.selectCuts(ctx, ws, input, total, logf)
	if err != nil {
		emit(Event{Kind: EventFailed, Err: err})
		return err
	}
	logf(LevelInfo, "selected %d cut point(s)", len(cuts))

	var comp FrameRenderer
	if r.settings.Captions.Enabled {
		comp, err = r.buildCompositor(ctx, input, logf)
		if err != nil {
			emit(Event{Kind: EventFailed, Err: err})
			return err
		}
	}

	var produced []string
	for i, cut := range cuts {
		if ctx.Err() != nil {
			logf(LevelWarn, "interrupted after %d clip(s)", len(produced))
			return ctx.Err()
		}

		duration := min(r.settings.Clips.DurationS, total-cut)
		if duration <= 0 {
			continue
		}

		outPath, err := r.processClip(ctx, ws, input, outputDir, i, cut, duration, comp, logf)
		if err != nil {
			logf(LevelError, "clip %d failed, skipping: %v", i+1, err)
			continue
		}

		produced = append(produced, outPath)
		if fi, err := os.Stat(outPath); err == nil {
			logf(LevelInfo, "clip %d written (%s)", i+1, format.Size(fi.Size()))
		}
		emit(Event{
			Kind:    EventProgress,
			Percent: float64(i+1) / float64(len(cuts)) * 100,
			Message: fmt.Sprintf("clip %d/%d", i+1, len(cuts)),
		})
		emit(Event{Kind: EventClipDone, ClipIndex: i, ClipPath: outPath})
	}

	if len(produced) == 0 {
		emit(Event{Kind: EventFailed, Err: ErrNoClips})
		return ErrNoClips
	}
	emit(Event{Kind: EventComplete, Clips: produced})
	return nil
}

// selectCuts extracts the source audio and picks clip start offsets.
// Extraction failure degrades to uniform slicing inside the selector.
func (r *Runner) selectCuts(ctx context.Context, ws *workspace.Workspace, input string, total float64, logf func(LogLevel, string, ...any)) ([]float64, error) {
	wavPath, err := ws.CreateFile("source-*.wav")
	if err != nil {
		return nil, err
	}
	if err := r.proc.ExtractAudio(ctx, input, wavPath); err != nil {
		logf(LevelWarn, "audio extraction failed (%v), using uniform slicing", err)
	}

	sel := r.selector
	if sel == nil {
		sel = audio.NewSelector(
			audio.NewDetector(
				audio.WithThresholdDB(r.settings.Detection.SilenceThresholdDB),
				audio.WithMinSilence(secondsToDuration(r.settings.Detection.MinSilenceLenS)),
				audio.WithSafetyMargin(secondsToDuration(r.settings.Detection.SafetyMarginS)),
			),
			r.settings.Clips.DurationS,
			audio.WithWarnFunc(func(msg string) { logf(LevelWarn, "%s", msg) }),
		)
	}
	return sel.CutPoints(wavPath, total)
}

// buildCompositor probes the frame size and assembles the overlay
// renderer from the caption settings.
func (r *Runner) buildCompositor(ctx context.Context, input string, logf func(LogLevel, string, ...any)) (FrameRenderer, error) {
	w, h, ok := r.proc.ProbeVideoSize(ctx, input)
	if !ok {
		logf(LevelWarn, "cannot determine frame size, assuming %dx%d", w, h)
	}

	style, err := r.captionStyle(w, h)
	if err != nil {
		return nil, err
	}
	return r.newCompositor(style, func(msg string) { logf(LevelWarn, "%s", msg) }), nil
}

// captionStyle maps caption settings onto a render style.
func (r *Runner) captionStyle(width, height int) (render.Style, error) {
	cs := r.settings.Captions

	fontColor, err := render.ParseColor(cs.FontColor)
	if err != nil {
		return render.Style{}, err
	}
	highlight, err := render.ParseColor(cs.HighlightColor)
	if err != nil {
		return render.Style{}, err
	}
	stroke, err := render.ParseColor(cs.StrokeColor)
	if err != nil {
		return render.Style{}, err
	}

	return render.Style{
		FontName:       cs.Font,
		FontSize:       cs.FontSize,
		FontColor:      fontColor,
		HighlightColor: highlight,
		StrokeColor:    stroke,
		StrokeWidth:    cs.StrokeWidth,
		Position:       cs.Position,
		Width:          width,
		Height:         height,
		FPS:            cs.FPS,
		Animate:        cs.Animation,
	}, nil
}

// processClip produces one finished clip: extraction, captions when
// enabled, and the move into the output directory.
func (r *Runner) processClip(ctx context.Context, ws *workspace.Workspace, input, outputDir string, i int, cut, duration float64, comp FrameRenderer, logf func(LogLevel, string, ...any)) (string, error) {
	logf(LevelInfo, "extracting clip %d at %s", i+1, format.Seconds(cut))

	clipPath, err := ws.CreateFile(fmt.Sprintf("clip%02d-*.mp4", i+1))
	if err != nil {
		return "", err
	}
	if err := r.proc.ExtractClip(ctx, input, clipPath, cut, duration); err != nil {
		return "", err
	}

	finalPath := clipPath
	baseName := fmt.Sprintf("clip_%02d", i+1)

	if r.settings.Captions.Enabled {
		chunks, err := r.transcribeClip(ctx, ws, clipPath, duration)
		if err != nil {
			return "", fmt.Errorf("transcription failed: %w", err)
		}

		if phrase := caption.KeywordPhrase(chunksText(chunks), caption.DefaultKeywordCount); phrase != "" {
			baseName += "_" + slugify(phrase)
		}
		if err := writeSidecar(filepath.Join(outputDir, baseName+".srt"), chunks); err != nil {
			logf(LevelWarn, "clip %d subtitle sidecar failed: %v", i+1, err)
		}
		burned, err := r.burnCaptions(ctx, ws, clipPath, i, chunks, comp, logf)
		if err != nil {
			logf(LevelWarn, "clip %d burn-in failed (%v), keeping clip without captions", i+1, err)
		} else {
			finalPath = burned
		}
	}

	outPath := filepath.Join(outputDir, baseName+".mp4")
	if err := moveFile(finalPath, outPath); err != nil {
		return "", err
	}
	return outPath, nil
}

// transcribeClip extracts the clip audio, transcribes it, and chunks
// the transcript for display.
func (r *Runner) transcribeClip(ctx context.Context, ws *workspace.Workspace, clipPath string, duration float64) ([]caption.Chunk, error) {
	if r.transcriber == nil {
		return nil, fmt.Errorf("no transcriber configured")
	}

	wavPath, err := ws.CreateFile("clip-audio-*.wav")
	if err != nil {
		return nil, err
	}
	if err := r.proc.ExtractAudio(ctx, clipPath, wavPath); err != nil {
		return nil, err
	}

	language, err := lang.Parse(r.settings.Whisper.Language)
	if err != nil {
		return nil, err
	}
	segments, err := r.transcriber.Transcribe(ctx, wavPath, transcribe.Options{
		Model:    r.settings.Whisper.Model,
		Language: language,
	})
	if err != nil {
		return nil, err
	}
	return r.chunker.Chunk(segments, duration), nil
}

// burnCaptions renders each chunk's overlay and composites them onto
// the clip. Chunks that cannot be rendered at all are dropped; when
// every chunk drops, ErrNoCaptions is returned and the caller keeps
// the uncaptioned clip.
func (r *Runner) burnCaptions(ctx context.Context, ws *workspace.Workspace, clipPath string, i int, chunks []caption.Chunk, comp FrameRenderer, logf func(LogLevel, string, ...any)) (string, error) {
	var overlays []ffmpeg.Overlay
	for j, chunk := range chunks {
		ov, err := r.renderOverlay(ws, i, j, chunk, comp)
		if err != nil {
			logf(LevelWarn, "chunk %d of clip %d skipped: %v", j+1, i+1, err)
			continue
		}
		overlays = append(overlays, ov)
	}
	if len(overlays) == 0 {
		return "", render.ErrNoCaptions
	}

	burned, err := ws.CreateFile(fmt.Sprintf("final%02d-*.mp4", i+1))
	if err != nil {
		return "", err
	}
	if err := r.proc.BurnOverlays(ctx, clipPath, burned, overlays); err != nil {
		return "", err
	}
	return burned, nil
}

// renderOverlay produces one chunk's overlay input: an animated frame
// sequence, degrading to a single static frame when animation fails.
func (r *Runner) renderOverlay(ws *workspace.Workspace, i, j int, chunk caption.Chunk, comp FrameRenderer) (ffmpeg.Overlay, error) {
	if r.settings.Captions.Animation {
		dir, err := ws.Dir(fmt.Sprintf("clip%02d-chunk%02d", i+1, j+1))
		if err != nil {
			return ffmpeg.Overlay{}, err
		}
		if _, err := comp.RenderSequence(chunk, dir); err == nil {
			return ffmpeg.Overlay{
				Pattern:  filepath.Join(dir, "frame_%05d.png"),
				Animated: true,
				FPS:      r.settings.Captions.FPS,
				Start:    chunk.Start,
				End:      chunk.End,
			}, nil
		}
	}

	path, err := ws.CreateFile(fmt.Sprintf("clip%02d-chunk%02d-*.png", i+1, j+1))
	if err != nil {
		return ffmpeg.Overlay{}, err
	}
	if err := comp.RenderStatic(chunk, path); err != nil {
		return ffmpeg.Overlay{}, err
	}
	return ffmpeg.Overlay{Pattern: path, Start: chunk.Start, End: chunk.End}, nil
}

// writeSidecar writes the chunks as an SRT file next to the clip.
func writeSidecar(path string, chunks []caption.Chunk) error {
	f, err := os.Create(path) // #nosec G304 -- path is inside the output directory
	if err != nil {
		return err
	}
	if err := caption.WriteSRT(f, chunks); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// chunksText joins the display text of all chunks for keyword
// extraction, skipping the non-verbal placeholder.
func chunksText(chunks []caption.Chunk) string {
	var parts []string
	for _, c := range chunks {
		if c.Text == caption.PlaceholderText {
			continue
		}
		parts = append(parts, c.Text)
	}
	return strings.Join(parts, " ")
}

// secondsToDuration converts configured seconds into a time.Duration.
func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// slugRe matches characters unsafe in output file names.
var slugRe = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// slugify turns a keyword phrase into a file name fragment.
func slugify(s string) string {
	return strings.Trim(slugRe.ReplaceAllString(s, "_"), "_")
}

// moveFile renames src to dst, copying across filesystems when rename
// is not possible.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src) // #nosec G304 -- both paths are pipeline-owned
	if err != nil {
		return fmt.Errorf("failed to move clip: %w", err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst) // #nosec G304 -- both paths are pipeline-owned
	if err != nil {
		return fmt.Errorf("failed to move clip: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("failed to move clip: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to move clip: %w", err)
	}
	return os.Remove(src)
}
