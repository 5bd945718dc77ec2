// Package ffmpeg locates the ffmpeg binary and drives it for clip
// extraction, audio extraction, media probing, and caption burn-in.
// Every invocation is bounded by a hard timeout and failures surface
// as errors; operations are never retried.
package ffmpeg

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
)

// envFFmpegPath is the environment variable for a custom ffmpeg path.
const envFFmpegPath = "CLIPFORGE_FFMPEG"

// minMajorVersion is the oldest ffmpeg release with the filter and
// codec behavior the burn-in pipeline depends on.
const minMajorVersion = 4

// Resolver finds the ffmpeg binary.
type Resolver struct {
	env    envProvider
	stater fileStater
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithEnvProvider sets the environment provider implementation.
func WithEnvProvider(e envProvider) ResolverOption {
	return func(r *Resolver) { r.env = e }
}

// WithFileStater sets the file stat implementation.
func WithFileStater(s fileStater) ResolverOption {
	return func(r *Resolver) { r.stater = s }
}

// NewResolver creates a Resolver with the given options.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		env:    osEnvProvider{},
		stater: osFileStater{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve finds ffmpeg using the following precedence:
//  1. CLIPFORGE_FFMPEG environment variable (error if set but invalid)
//  2. System PATH
func (r *Resolver) Resolve() (string, error) {
	if envPath := r.env.Getenv(envFFmpegPath); envPath != "" {
		if _, err := r.stater.Stat(envPath); err != nil {
			return "", fmt.Errorf("%w: %s is set to %q but the binary does not exist",
				ErrNotFound, envFFmpegPath, envPath)
		}
		return envPath, nil
	}

	path, err := r.env.LookPath("ffmpeg")
	if err != nil {
		return "", fmt.Errorf("%w: install ffmpeg or set %s", ErrNotFound, envFFmpegPath)
	}
	return path, nil
}

// versionRe matches the leading version token of `ffmpeg -version`.
var versionRe = regexp.MustCompile(`ffmpeg version (?:n)?(\d+)(?:\.\d+)*`)

// CheckVersion runs `ffmpeg -version` and returns a warning message
// when the installed major version is older than the minimum the
// pipeline is exercised against. An unparseable banner is not an
// error; the binary may still work.
func CheckVersion(ctx context.Context, exec *Executor, ffmpegPath string) (warning string, err error) {
	output, err := exec.RunOutput(ctx, ffmpegPath, []string{"-version"})
	if err != nil && output == "" {
		return "", fmt.Errorf("%w: cannot run %q: %v", ErrNotFound, ffmpegPath, err)
	}

	m := versionRe.FindStringSubmatch(output)
	if m == nil {
		return "", nil
	}

	major, err := strconv.Atoi(m[1])
	if err != nil {
		return "", nil
	}
	if major < minMajorVersion {
		return fmt.Sprintf("ffmpeg %d is older than the supported minimum (%d); burn-in filters may misbehave",
			major, minMajorVersion), nil
	}
	return "", nil
}
