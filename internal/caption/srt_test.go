package caption_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/lucasmne/clipforge/internal/caption"
)

func TestWriteSRT(t *testing.T) {
	t.Parallel()

	chunks := []caption.Chunk{
		{Start: 0, End: 2.5, Text: "oi tudo bem"},
		{Start: 3661.25, End: 3663, Text: "uma hora depois"},
	}

	var b strings.Builder
	if err := caption.WriteSRT(&b, chunks); err != nil {
		t.Fatalf("WriteSRT: %v", err)
	}

	want := "1\n00:00:00,000 --> 00:00:02,500\noi tudo bem\n\n" +
		"2\n01:01:01,250 --> 01:01:03,000\numa hora depois\n\n"
	if b.String() != want {
		t.Errorf("WriteSRT output:\n%q\nwant:\n%q", b.String(), want)
	}
}

func TestWriteSRT_Empty(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	if err := caption.WriteSRT(&b, nil); err != nil {
		t.Fatalf("WriteSRT: %v", err)
	}
	if b.String() != "" {
		t.Errorf("WriteSRT(nil) wrote %q, want empty", b.String())
	}
}

// failWriter fails after n bytes written.
type failWriter struct{ n int }

func (w *failWriter) Write(p []byte) (int, error) {
	if w.n <= 0 {
		return 0, errors.New("disk full")
	}
	w.n -= len(p)
	return len(p), nil
}

func TestWriteSRT_WriteError(t *testing.T) {
	t.Parallel()

	chunks := []caption.Chunk{
		{Start: 0, End: 1, Text: "a"},
		{Start: 1, End: 2, Text: "b"},
	}
	err := caption.WriteSRT(&failWriter{n: 10}, chunks)
	if err == nil {
		t.Error("WriteSRT with failing writer: expected error")
	}
}
