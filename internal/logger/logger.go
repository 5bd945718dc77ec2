// Package logger provides a small leveled logger used by the pipeline
// and the watch loop. Progress meant for the user travels on the
// pipeline event channel; this logger is for operational output.
package logger

import (
	"io"
	"log"
	"strings"
)

// Level identifies a log severity.
type Level int

// Log levels, lowest to highest severity.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel converts a level name to a Level.
// Unknown names default to LevelInfo.
func ParseLevel(name string) Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger writes leveled log lines.
type Logger interface {
	Debugf(msg string, args ...any)
	Infof(msg string, args ...any)
	Warnf(msg string, args ...any)
	Errorf(msg string, args ...any)
}

// Compile-time interface compliance check.
var _ Logger = (*StdLogger)(nil)

// StdLogger is a Logger backed by the standard library log package.
type StdLogger struct {
	logger *log.Logger
	level  Level
}

// New creates a StdLogger writing to out at the given minimum level.
func New(out io.Writer, level Level) *StdLogger {
	return &StdLogger{
		logger: log.New(out, "", log.LstdFlags),
		level:  level,
	}
}

func (l *StdLogger) logf(level Level, prefix, msg string, args ...any) {
	if level < l.level {
		return
	}
	l.logger.Printf(prefix+msg, args...)
}

// Debugf logs at debug level.
func (l *StdLogger) Debugf(msg string, args ...any) {
	l.logf(LevelDebug, "[DEBUG] ", msg, args...)
}

// Infof logs at info level.
func (l *StdLogger) Infof(msg string, args ...any) {
	l.logf(LevelInfo, "[INFO] ", msg, args...)
}

// Warnf logs at warn level.
func (l *StdLogger) Warnf(msg string, args ...any) {
	l.logf(LevelWarn, "[WARN] ", msg, args...)
}

// Errorf logs at error level.
func (l *StdLogger) Errorf(msg string, args ...any) {
	l.logf(LevelError, "[ERROR] ", msg, args...)
}

// Nop is a Logger that discards everything.
type Nop struct{}

func (Nop) Debugf(string, ...any) {}
func (Nop) Infof(string, ...any)  {}
func (Nop) Warnf(string, ...any)  {}
func (Nop) Errorf(string, ...any) {}
