package transcribe_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/lucasmne/clipforge/internal/apierr"
	"github.com/lucasmne/clipforge/internal/lang"
	"github.com/lucasmne/clipforge/internal/transcribe"
)

// verboseResponse is a trimmed whisper-1 verbose_json payload with
// word and segment granularity.
const verboseResponse = `{
	"task": "transcribe",
	"language": "portuguese",
	"duration": 6.0,
	"text": "oi tudo bem",
	"segments": [
		{"id": 0, "start": 0.0, "end": 2.5, "text": " oi tudo"},
		{"id": 1, "start": 2.5, "end": 6.0, "text": " bem"}
	],
	"words": [
		{"word": "oi", "start": 0.1, "end": 0.5},
		{"word": "tudo", "start": 0.7, "end": 1.2},
		{"word": "bem", "start": 2.6, "end": 3.0}
	]
}`

func decodeResponse(t *testing.T, payload string) openai.AudioResponse {
	t.Helper()
	var resp openai.AudioResponse
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		t.Fatalf("decoding fixture: %v", err)
	}
	return resp
}

// mockClient implements the transcription call with a canned response,
// recording the request it received.
type mockClient struct {
	resp openai.AudioResponse
	err  error
	got  openai.AudioRequest
}

func (m *mockClient) CreateTranscription(_ context.Context, req openai.AudioRequest) (openai.AudioResponse, error) {
	m.got = req
	return m.resp, m.err
}

func TestOpenAITranscriber_Transcribe(t *testing.T) {
	t.Parallel()

	ptBR, err := lang.Parse("pt-BR")
	if err != nil {
		t.Fatal(err)
	}

	mock := &mockClient{resp: decodeResponse(t, verboseResponse)}
	tr := transcribe.NewTestTranscriber(mock)

	segments, err := tr.Transcribe(context.Background(), "audio.wav", transcribe.Options{
		Language: ptBR,
	})
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}

	if mock.got.Model != openai.Whisper1 {
		t.Errorf("request model = %q, want %q", mock.got.Model, openai.Whisper1)
	}
	if mock.got.Format != openai.AudioResponseFormatVerboseJSON {
		t.Errorf("request format = %q, want verbose_json", mock.got.Format)
	}
	if mock.got.Language != "pt" {
		t.Errorf("request language = %q, want %q", mock.got.Language, "pt")
	}
	if len(mock.got.TimestampGranularities) != 2 {
		t.Errorf("request granularities = %v, want word and segment", mock.got.TimestampGranularities)
	}

	if len(segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(segments))
	}
	if segments[0].Text != "oi tudo" {
		t.Errorf("segment 0 text = %q, want %q", segments[0].Text, "oi tudo")
	}
	if len(segments[0].Words) != 2 {
		t.Errorf("segment 0 has %d words, want 2", len(segments[0].Words))
	}
	if len(segments[1].Words) != 1 || segments[1].Words[0].Text != "bem" {
		t.Errorf("segment 1 words = %+v, want [bem]", segments[1].Words)
	}
}

func TestOpenAITranscriber_Transcribe_AutoLanguage(t *testing.T) {
	t.Parallel()

	mock := &mockClient{resp: decodeResponse(t, verboseResponse)}
	tr := transcribe.NewTestTranscriber(mock)

	if _, err := tr.Transcribe(context.Background(), "audio.wav", transcribe.Options{}); err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if mock.got.Language != "" {
		t.Errorf("request language = %q, want empty for auto-detect", mock.got.Language)
	}
}

func TestToSegments_TrailingWordKeepsLastSegment(t *testing.T) {
	t.Parallel()

	// A word timestamped past the final segment end still belongs to
	// the transcript.
	resp := decodeResponse(t, `{
		"segments": [{"id": 0, "start": 0.0, "end": 2.0, "text": "oi"}],
		"words": [{"word": "oi", "start": 2.4, "end": 2.8}]
	}`)

	segments := transcribe.ToSegments(resp)
	if len(segments) != 1 || len(segments[0].Words) != 1 {
		t.Fatalf("segments = %+v, want trailing word attached", segments)
	}
}

func TestClassifyError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "rate limit",
			err:  &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests, Message: "slow down"},
			want: apierr.ErrRateLimit,
		},
		{
			name: "quota exceeded",
			err:  &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests, Message: "you exceeded your current quota"},
			want: apierr.ErrQuotaExceeded,
		},
		{
			name: "auth failure",
			err:  &openai.APIError{HTTPStatusCode: http.StatusUnauthorized, Message: "invalid api key"},
			want: apierr.ErrAuthFailed,
		},
		{
			name: "gateway timeout",
			err:  &openai.APIError{HTTPStatusCode: http.StatusGatewayTimeout, Message: "upstream timeout"},
			want: apierr.ErrTimeout,
		},
		{
			name: "bad request",
			err:  &openai.APIError{HTTPStatusCode: http.StatusBadRequest, Message: "unsupported file"},
			want: apierr.ErrBadRequest,
		},
		{
			name: "context deadline",
			err:  context.DeadlineExceeded,
			want: apierr.ErrTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := transcribe.ClassifyError(tt.err); !errors.Is(got, tt.want) {
				t.Errorf("ClassifyError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyError_PassesThroughUnknown(t *testing.T) {
	t.Parallel()

	unknown := errors.New("connection reset")
	if got := transcribe.ClassifyError(unknown); !errors.Is(got, unknown) {
		t.Errorf("ClassifyError() = %v, want the original error", got)
	}
}

func TestOpenAITranscriber_Transcribe_ClassifiesErrors(t *testing.T) {
	t.Parallel()

	mock := &mockClient{err: &openai.APIError{HTTPStatusCode: http.StatusUnauthorized, Message: "bad key"}}
	tr := transcribe.NewTestTranscriber(mock)

	_, err := tr.Transcribe(context.Background(), "audio.wav", transcribe.Options{})
	if !errors.Is(err, apierr.ErrAuthFailed) {
		t.Errorf("Transcribe() error = %v, want ErrAuthFailed", err)
	}
}
