package cli

import "errors"

// CLI-specific sentinel errors. These are validation and usage errors
// that don't belong to domain packages.
var (
	// ErrFileNotFound indicates the specified input file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrUnsupportedFormat indicates an input file has an unsupported extension.
	ErrUnsupportedFormat = errors.New("unsupported video format")

	// ErrNoInputDir indicates watch mode has no directory to monitor.
	ErrNoInputDir = errors.New("no input directory configured")
)
