// Package config loads pipeline settings from a YAML file, environment
// variables, and built-in defaults, in that order of increasing
// precedence being file over default and env filling gaps.
//
// There is no process-wide settings object: Load returns a Settings
// value that callers pass explicitly into every pipeline invocation.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Environment variable fallbacks.
const (
	// EnvOutputDir overrides paths.output when the config file leaves it empty.
	EnvOutputDir = "CLIPFORGE_OUTPUT_DIR"

	// EnvInputDir overrides paths.input when the config file leaves it empty.
	EnvInputDir = "CLIPFORGE_INPUT_DIR"
)

// Caption positions.
const (
	PositionTop    = "top"
	PositionMiddle = "middle"
	PositionBottom = "bottom"
)

// Settings holds one run's configuration.
type Settings struct {
	Detection DetectionSettings `yaml:"detection"`
	Clips     ClipSettings      `yaml:"clips"`
	Captions  CaptionSettings   `yaml:"captions"`
	Whisper   WhisperSettings   `yaml:"whisper"`
	Paths     PathSettings      `yaml:"paths"`
	Logging   LoggingSettings   `yaml:"logging"`
}

// DetectionSettings controls non-silent span detection.
type DetectionSettings struct {
	// SilenceThresholdDB is the energy level below which audio counts
	// as silence. More negative means more sensitive to quiet speech.
	SilenceThresholdDB float64 `yaml:"silence_threshold_db"`

	// MinSilenceLenS is the minimum silence duration, in seconds, that
	// separates two spans.
	MinSilenceLenS float64 `yaml:"min_silence_len_s"`

	// SafetyMarginS pads each detected span outward on both sides.
	SafetyMarginS float64 `yaml:"safety_margin_s"`
}

// ClipSettings controls clip extraction.
type ClipSettings struct {
	// DurationS is the fixed length of each extracted clip in seconds.
	DurationS float64 `yaml:"duration_s"`
}

// CaptionSettings controls caption chunking and rendering.
type CaptionSettings struct {
	Enabled bool `yaml:"enabled"`

	// MaxChunkDurationS bounds the on-screen life of one caption chunk.
	MaxChunkDurationS float64 `yaml:"max_chunk_duration_s"`

	// SpeakerGapS is the transcript gap that closes a chunk.
	SpeakerGapS float64 `yaml:"speaker_gap_s"`

	// MinTextLen discards transcript segments with shorter trimmed text.
	MinTextLen int `yaml:"min_text_len"`

	// Animation enables word-by-word reveal; false burns static chunks.
	Animation bool `yaml:"animation"`

	// FPS is the overlay frame rate when animation is enabled.
	FPS int `yaml:"fps"`

	Font           string  `yaml:"font"`
	FontSize       float64 `yaml:"font_size"`
	FontColor      string  `yaml:"font_color"`
	HighlightColor string  `yaml:"highlight_color"`
	StrokeColor    string  `yaml:"stroke_color"`
	StrokeWidth    float64 `yaml:"stroke_width"`
	Position       string  `yaml:"position"`
}

// WhisperSettings selects the transcription model and language hint.
type WhisperSettings struct {
	Model    string `yaml:"model"`
	Language string `yaml:"language"`
}

// PathSettings locates input, output, and temp directories.
type PathSettings struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
	Temp   string `yaml:"temp"`
}

// LoggingSettings controls operational log output.
type LoggingSettings struct {
	Level string `yaml:"level"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		Detection: DetectionSettings{
			SilenceThresholdDB: -40,
			MinSilenceLenS:     1.0,
			SafetyMarginS:      0.5,
		},
		Clips: ClipSettings{
			DurationS: 45,
		},
		Captions: CaptionSettings{
			Enabled:           true,
			MaxChunkDurationS: 5.0,
			SpeakerGapS:       1.5,
			MinTextLen:        3,
			Animation:         true,
			FPS:               30,
			Font:              "Arial",
			FontSize:          62,
			FontColor:         "yellow",
			HighlightColor:    "white",
			StrokeColor:       "black",
			StrokeWidth:       1.5,
			Position:          PositionBottom,
		},
		Whisper: WhisperSettings{
			Model:    "whisper-1",
			Language: "pt",
		},
		Logging: LoggingSettings{
			Level: "info",
		},
	}
}

// DefaultPath returns the conventional config file location.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/clipforge.
func DefaultPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "clipforge", "config.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "clipforge", "config.yaml"), nil
}

// Load reads settings from path, merged over Default().
// A missing file is not an error: defaults plus environment fallbacks
// are returned. The result is validated.
func Load(path string) (Settings, error) {
	s := Default()

	data, err := os.ReadFile(path) // #nosec G304 -- config path comes from the user's own flags/home dir
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &s); err != nil {
			return s, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Defaults only.
	default:
		return s, fmt.Errorf("failed to read config: %w", err)
	}

	// Environment variable fallbacks (only for values the file left empty).
	if s.Paths.Output == "" {
		s.Paths.Output = os.Getenv(EnvOutputDir)
	}
	if s.Paths.Input == "" {
		s.Paths.Input = os.Getenv(EnvInputDir)
	}

	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// Validate checks settings for configuration errors.
func (s Settings) Validate() error {
	if s.Clips.DurationS <= 0 {
		return fmt.Errorf("clips.duration_s must be positive, got %v", s.Clips.DurationS)
	}
	if s.Detection.MinSilenceLenS <= 0 {
		return fmt.Errorf("detection.min_silence_len_s must be positive, got %v", s.Detection.MinSilenceLenS)
	}
	if s.Detection.SafetyMarginS < 0 {
		return fmt.Errorf("detection.safety_margin_s cannot be negative, got %v", s.Detection.SafetyMarginS)
	}
	if s.Captions.MaxChunkDurationS <= 0 {
		return fmt.Errorf("captions.max_chunk_duration_s must be positive, got %v", s.Captions.MaxChunkDurationS)
	}
	if s.Captions.SpeakerGapS < 0 {
		return fmt.Errorf("captions.speaker_gap_s cannot be negative, got %v", s.Captions.SpeakerGapS)
	}
	if s.Captions.FPS <= 0 {
		return fmt.Errorf("captions.fps must be positive, got %d", s.Captions.FPS)
	}
	switch s.Captions.Position {
	case PositionTop, PositionMiddle, PositionBottom:
	default:
		return fmt.Errorf("captions.position must be top, middle, or bottom, got %q", s.Captions.Position)
	}
	return nil
}
