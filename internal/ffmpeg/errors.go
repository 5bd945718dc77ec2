package ffmpeg

import "errors"

// ErrNotFound indicates no usable ffmpeg binary could be located.
var ErrNotFound = errors.New("ffmpeg not found")

// ErrExecFailed indicates ffmpeg exited with a non-zero status.
var ErrExecFailed = errors.New("ffmpeg execution failed")

// ErrTimeout indicates ffmpeg did not finish within the operation timeout.
var ErrTimeout = errors.New("ffmpeg operation timed out")

// ErrProbeFailed indicates media metadata could not be read from ffmpeg output.
var ErrProbeFailed = errors.New("media probe failed")
