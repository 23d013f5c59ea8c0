package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ConsoleLogger writes "[HH:MM:SS] [LEVEL] message" lines to a writer.
// Level tags are coloured when the writer is a terminal.
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger. A nil writer discards messages.
// Unknown levels fall back to "info".
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
	}
}

// isTerminal reports whether w is a TTY that should receive colour codes.
// NO_COLOR is honoured through fatih/color.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	if color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Level returns the active level name.
func (cl *ConsoleLogger) Level() string { return cl.logLevel }

func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(cl.logLevel)
}

// LogTrace logs a trace-level message.
func (cl *ConsoleLogger) LogTrace(message string) { cl.logWithLevel("TRACE", message) }

// LogDebug logs a debug-level message.
func (cl *ConsoleLogger) LogDebug(message string) { cl.logWithLevel("DEBUG", message) }

// LogInfo logs an info-level message.
func (cl *ConsoleLogger) LogInfo(message string) { cl.logWithLevel("INFO", message) }

// LogWarn logs a warning.
func (cl *ConsoleLogger) LogWarn(message string) { cl.logWithLevel("WARN", message) }

// LogError logs an error.
func (cl *ConsoleLogger) LogError(message string) { cl.logWithLevel("ERROR", message) }

func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil || !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	tag := level
	if cl.colorOutput {
		tag = colorLevel(level)
	}
	fmt.Fprintf(cl.writer, "[%s] [%s] %s\n", timestamp(), tag, message)
}

func colorLevel(level string) string {
	switch level {
	case "TRACE":
		return color.New(color.FgHiBlack).Sprint(level)
	case "DEBUG":
		return color.New(color.FgCyan).Sprint(level)
	case "INFO":
		return color.New(color.FgBlue).Sprint(level)
	case "WARN":
		return color.New(color.FgYellow).Sprint(level)
	case "ERROR":
		return color.New(color.FgRed).Sprint(level)
	default:
		return level
	}
}

func timestamp() string {
	return time.Now().Format("15:04:05")
}
