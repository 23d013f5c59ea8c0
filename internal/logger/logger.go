// Package logger provides the diagnostic channel for trialsift runs.
//
// Every stage reports through the Logger interface: per-file read errors,
// match counts, saved-file counts and parity verdicts. ConsoleLogger writes to a
// terminal or buffer, FileLogger keeps a per-run log on disk, and Tee fans a
// message out to several loggers.
package logger

import (
	"fmt"
	"strings"
)

// Logger receives leveled diagnostic messages.
type Logger interface {
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)
}

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// ValidLevels lists the accepted level names in increasing severity.
var ValidLevels = []string{"trace", "debug", "info", "warn", "error"}

// IsValidLevel reports whether level is one of ValidLevels (case-insensitive).
func IsValidLevel(level string) bool {
	l := strings.ToLower(strings.TrimSpace(level))
	for _, v := range ValidLevels {
		if v == l {
			return true
		}
	}
	return false
}

// normalizeLogLevel lower-cases level and falls back to "info" when it is unknown.
func normalizeLogLevel(level string) string {
	if IsValidLevel(level) {
		return strings.ToLower(strings.TrimSpace(level))
	}
	return "info"
}

func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// Infof formats and logs at info level.
func Infof(l Logger, format string, args ...interface{}) {
	l.LogInfo(fmt.Sprintf(format, args...))
}

// Warnf formats and logs at warn level.
func Warnf(l Logger, format string, args ...interface{}) {
	l.LogWarn(fmt.Sprintf(format, args...))
}

// Errorf formats and logs at error level.
func Errorf(l Logger, format string, args ...interface{}) {
	l.LogError(fmt.Sprintf(format, args...))
}

// Debugf formats and logs at debug level.
func Debugf(l Logger, format string, args ...interface{}) {
	l.LogDebug(fmt.Sprintf(format, args...))
}

type teeLogger []Logger

// Tee returns a Logger that forwards every message to each non-nil logger.
func Tee(loggers ...Logger) Logger {
	var out teeLogger
	for _, l := range loggers {
		if l != nil {
			out = append(out, l)
		}
	}
	return out
}

func (t teeLogger) LogDebug(m string) {
	for _, l := range t {
		l.LogDebug(m)
	}
}

func (t teeLogger) LogInfo(m string) {
	for _, l := range t {
		l.LogInfo(m)
	}
}

func (t teeLogger) LogWarn(m string) {
	for _, l := range t {
		l.LogWarn(m)
	}
}

func (t teeLogger) LogError(m string) {
	for _, l := range t {
		l.LogError(m)
	}
}

// NoOpLogger discards everything.
type NoOpLogger struct{}

// NewNoOpLogger creates a logger that drops all messages.
func NewNoOpLogger() *NoOpLogger { return &NoOpLogger{} }

func (*NoOpLogger) LogDebug(string) {}
func (*NoOpLogger) LogInfo(string)  {}
func (*NoOpLogger) LogWarn(string)  {}
func (*NoOpLogger) LogError(string) {}

// OrNoOp returns l, or a NoOpLogger when l is nil.
func OrNoOp(l Logger) Logger {
	if l == nil {
		return NewNoOpLogger()
	}
	return l
}
