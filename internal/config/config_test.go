package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lucasmne/clipforge/internal/config"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	s := config.Default()

	if s.Detection.SilenceThresholdDB != -40 {
		t.Errorf("SilenceThresholdDB = %v, want -40", s.Detection.SilenceThresholdDB)
	}
	if s.Detection.MinSilenceLenS != 1.0 {
		t.Errorf("MinSilenceLenS = %v, want 1.0", s.Detection.MinSilenceLenS)
	}
	if s.Detection.SafetyMarginS != 0.5 {
		t.Errorf("SafetyMarginS = %v, want 0.5", s.Detection.SafetyMarginS)
	}
	if s.Captions.MaxChunkDurationS != 5.0 {
		t.Errorf("MaxChunkDurationS = %v, want 5.0", s.Captions.MaxChunkDurationS)
	}
	if s.Captions.SpeakerGapS != 1.5 {
		t.Errorf("SpeakerGapS = %v, want 1.5", s.Captions.SpeakerGapS)
	}
	if s.Captions.MinTextLen != 3 {
		t.Errorf("MinTextLen = %v, want 3", s.Captions.MinTextLen)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Default() does not validate: %v", err)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	s, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load on missing file: %v", err)
	}
	if s.Clips.DurationS != 45 {
		t.Errorf("DurationS = %v, want default 45", s.Clips.DurationS)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
detection:
  silence_threshold_db: -35
clips:
  duration_s: 30
captions:
  enabled: true
  max_chunk_duration_s: 4
  speaker_gap_s: 1.5
  min_text_len: 3
  animation: false
  fps: 24
  position: top
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Detection.SilenceThresholdDB != -35 {
		t.Errorf("SilenceThresholdDB = %v, want -35", s.Detection.SilenceThresholdDB)
	}
	if s.Clips.DurationS != 30 {
		t.Errorf("DurationS = %v, want 30", s.Clips.DurationS)
	}
	if s.Captions.Animation {
		t.Error("Animation = true, want false from file")
	}
	if s.Captions.Position != config.PositionTop {
		t.Errorf("Position = %q, want top", s.Captions.Position)
	}
	// Untouched keys keep defaults.
	if s.Detection.MinSilenceLenS != 1.0 {
		t.Errorf("MinSilenceLenS = %v, want default 1.0", s.Detection.MinSilenceLenS)
	}
}

func TestLoad_EnvFallbackForOutputDir(t *testing.T) {
	t.Setenv(config.EnvOutputDir, "/videos/out")

	s, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Paths.Output != "/videos/out" {
		t.Errorf("Paths.Output = %q, want env fallback", s.Paths.Output)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("clips: ["), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := config.Load(path); err == nil {
		t.Error("Load on malformed YAML: expected error")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*config.Settings)
		wantErr bool
	}{
		{name: "defaults valid", mutate: func(s *config.Settings) {}},
		{name: "zero clip duration", mutate: func(s *config.Settings) { s.Clips.DurationS = 0 }, wantErr: true},
		{name: "negative clip duration", mutate: func(s *config.Settings) { s.Clips.DurationS = -5 }, wantErr: true},
		{name: "zero min silence", mutate: func(s *config.Settings) { s.Detection.MinSilenceLenS = 0 }, wantErr: true},
		{name: "negative margin", mutate: func(s *config.Settings) { s.Detection.SafetyMarginS = -1 }, wantErr: true},
		{name: "zero chunk duration", mutate: func(s *config.Settings) { s.Captions.MaxChunkDurationS = 0 }, wantErr: true},
		{name: "negative speaker gap", mutate: func(s *config.Settings) { s.Captions.SpeakerGapS = -0.1 }, wantErr: true},
		{name: "zero fps", mutate: func(s *config.Settings) { s.Captions.FPS = 0 }, wantErr: true},
		{name: "bad position", mutate: func(s *config.Settings) { s.Captions.Position = "left" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := config.Default()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}
