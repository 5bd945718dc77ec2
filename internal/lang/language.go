// Package lang provides language hints for the transcription API.
package lang

import (
	"fmt"
	"strings"
)

// Language is an ISO 639-1 language hint for transcription.
// The zero value means auto-detect.
type Language struct {
	code string
}

// supported lists the language codes the pipeline has stop-word and
// caption support for, plus common transcription targets.
var supported = map[string]string{
	"pt": "Portuguese",
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"it": "Italian",
	"ja": "Japanese",
	"ko": "Korean",
	"zh": "Chinese",
}

// Parse validates a language code string.
// Accepts base codes ("pt") and region-qualified codes ("pt-BR");
// only the base code is kept. Empty input means auto-detect.
func Parse(s string) (Language, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Language{}, nil
	}

	base, _, _ := strings.Cut(s, "-")
	if _, ok := supported[base]; !ok {
		return Language{}, fmt.Errorf("unsupported language code %q", s)
	}
	return Language{code: base}, nil
}

// Code returns the ISO 639-1 base code, or "" for auto-detect.
func (l Language) Code() string {
	return l.code
}

// IsAuto reports whether the language is auto-detect.
func (l Language) IsAuto() bool {
	return l.code == ""
}

// String returns the English name of the language, or "auto".
func (l Language) String() string {
	if l.code == "" {
		return "auto"
	}
	return supported[l.code]
}
