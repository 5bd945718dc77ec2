// Package transcribe converts clip audio into timed transcript
// segments using OpenAI's transcription API.
package transcribe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/lucasmne/clipforge/internal/apierr"
	"github.com/lucasmne/clipforge/internal/caption"
	"github.com/lucasmne/clipforge/internal/lang"
)

// ErrAPIKeyMissing indicates OPENAI_API_KEY environment variable is not set.
var ErrAPIKeyMissing = errors.New("OPENAI_API_KEY environment variable not set")

// Options configures transcription behavior.
type Options struct {
	// Model is the transcription model. Empty means whisper-1.
	Model string

	// Prompt provides context to improve transcription accuracy,
	// such as domain vocabulary or expected speaker names.
	Prompt string

	// Language is the audio language hint.
	// Zero value means auto-detect.
	Language lang.Language
}

// Transcriber transcribes audio files into timed segments.
type Transcriber interface {
	// Transcribe converts an audio file into transcript segments
	// ordered by start time, with per-word timings when the provider
	// supplies them. audioPath must be a file in a format the provider
	// accepts (wav, mp3, m4a, ogg, webm).
	Transcribe(ctx context.Context, audioPath string, opts Options) ([]caption.Segment, error)
}

// audioTranscriber is an internal interface for OpenAI audio
// transcription. *openai.Client implements this implicitly. This
// allows injecting mocks in tests.
type audioTranscriber interface {
	CreateTranscription(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error)
}

// Compile-time interface compliance checks.
var (
	_ Transcriber      = (*OpenAITranscriber)(nil)
	_ audioTranscriber = (*openai.Client)(nil)
)

// OpenAITranscriber transcribes audio using OpenAI's transcription
// API. Failures are classified but never retried automatically; a
// failed transcription is fatal for the clip being processed and the
// pipeline moves on to the next one.
type OpenAITranscriber struct {
	client audioTranscriber
}

// NewOpenAITranscriber creates a new OpenAITranscriber.
func NewOpenAITranscriber(client *openai.Client) *OpenAITranscriber {
	return &OpenAITranscriber{client: client}
}

// Transcribe requests a verbose transcription with word and segment
// timestamps and maps the response into caption segments.
func (t *OpenAITranscriber) Transcribe(ctx context.Context, audioPath string, opts Options) ([]caption.Segment, error) {
	model := opts.Model
	if model == "" {
		model = openai.Whisper1
	}

	req := openai.AudioRequest{
		Model:    model,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
		Prompt:   opts.Prompt,
		TimestampGranularities: []openai.TranscriptionTimestampGranularity{
			openai.TranscriptionTimestampGranularityWord,
			openai.TranscriptionTimestampGranularitySegment,
		},
	}
	if !opts.Language.IsAuto() {
		req.Language = opts.Language.Code()
	}

	resp, err := t.client.CreateTranscription(ctx, req)
	if err != nil {
		return nil, classifyError(err)
	}
	return toSegments(resp), nil
}

// toSegments maps the API response to caption segments. Word timings
// arrive as a flat response-level list; each word is attached to the
// segment whose time range contains its start.
func toSegments(resp openai.AudioResponse) []caption.Segment {
	segments := make([]caption.Segment, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		segments = append(segments, caption.Segment{
			Start: s.Start,
			End:   s.End,
			Text:  strings.TrimSpace(s.Text),
		})
	}

	for _, w := range resp.Words {
		word := caption.Word{
			Start: w.Start,
			End:   w.End,
			Text:  strings.TrimSpace(w.Word),
		}
		if i := segmentIndexAt(segments, w.Start); i >= 0 {
			segments[i].Words = append(segments[i].Words, word)
		}
	}
	return segments
}

// segmentIndexAt returns the index of the segment containing time t,
// or the last segment when t is past the end (trailing words keep
// their transcript).
func segmentIndexAt(segments []caption.Segment, t float64) int {
	for i, s := range segments {
		if t >= s.Start && t < s.End {
			return i
		}
	}
	if n := len(segments); n > 0 && t >= segments[n-1].End {
		return n - 1
	}
	return -1
}

// classifyError maps OpenAI API errors to sentinel errors.
func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests:
			// A 429 may be a temporary rate limit or an exhausted
			// quota; the latter needs user action, not patience.
			if strings.Contains(apiErr.Message, "quota") ||
				strings.Contains(apiErr.Message, "billing") {
				return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrQuotaExceeded)
			}
			return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrRateLimit)
		case http.StatusUnauthorized:
			return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrAuthFailed)
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrTimeout)
		case http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound:
			return fmt.Errorf("%s: %w", apiErr.Message, apierr.ErrBadRequest)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", apierr.ErrTimeout)
	}

	return err
}
