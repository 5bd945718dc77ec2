package pipeline

import "fmt"

// EventKind tags a progress event.
type EventKind int

// Event kinds, in the order a consumer typically sees them.
const (
	// EventLog carries an operational message.
	EventLog EventKind = iota

	// EventProgress reports completion percentage across the run.
	EventProgress

	// EventClipDone reports one finished clip.
	EventClipDone

	// EventComplete reports a finished run with at least one clip.
	EventComplete

	// EventFailed reports a run that produced nothing.
	EventFailed
)

// LogLevel distinguishes informational from warning log events.
type LogLevel int

// Log event severities.
const (
	LevelInfo LogLevel = iota
	LevelWarn
	LevelError
)

// Event is one tagged progress message from a pipeline run. The run
// is the single producer; events arrive in the order they happened.
type Event struct {
	Kind EventKind

	// Level qualifies EventLog messages.
	Level LogLevel

	// Message is set for EventLog and EventProgress.
	Message string

	// Percent is the overall run progress, set for EventProgress.
	Percent float64

	// ClipIndex and ClipPath are set for EventClipDone.
	ClipIndex int
	ClipPath  string

	// Clips lists the produced files, set for EventComplete.
	Clips []string

	// Err is set for EventFailed.
	Err error
}

// String renders the event for plain-text consumers.
func (e Event) String() string {
	switch e.Kind {
	case EventProgress:
		return fmt.Sprintf("[%3.0f%%] %s", e.Percent, e.Message)
	case EventClipDone:
		return fmt.Sprintf("clip %d ready: %s", e.ClipIndex+1, e.ClipPath)
	case EventComplete:
		return fmt.Sprintf("done: %d clip(s)", len(e.Clips))
	case EventFailed:
		return fmt.Sprintf("failed: %v", e.Err)
	default:
		return e.Message
	}
}
