package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FileLogger appends run diagnostics to <logDir>/run-YYYYMMDD-HHMMSS.log and keeps
// <logDir>/latest.log pointing at the newest run. Each run gets a UUID that is
// written into the log header so reports can be correlated with their log.
type FileLogger struct {
	logDir   string
	runLog   *os.File
	runFile  string
	runID    string
	command  string
	logLevel string
	mu       sync.Mutex
}

// NewFileLogger opens a new run log in logDir for the named command.
func NewFileLogger(logDir, command, logLevel string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	started := time.Now()
	runFile := filepath.Join(logDir, fmt.Sprintf("run-%s.log", started.Format("20060102-150405")))

	file, err := os.OpenFile(runFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log file: %w", err)
	}

	symlinkPath := filepath.Join(logDir, "latest.log")
	if _, err := os.Lstat(symlinkPath); err == nil {
		if err := os.Remove(symlinkPath); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to remove old symlink: %w", err)
		}
	}
	if err := os.Symlink(filepath.Base(runFile), symlinkPath); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create symlink: %w", err)
	}

	fl := &FileLogger{
		logDir:   logDir,
		runLog:   file,
		runFile:  runFile,
		runID:    uuid.NewString(),
		command:  command,
		logLevel: normalizeLogLevel(logLevel),
	}

	fl.writeRunLog("=== trialsift run log ===\n")
	fl.writeRunLog(fmt.Sprintf("Run ID:     %s\n", fl.runID))
	fl.writeRunLog(fmt.Sprintf("Command:    %s\n", command))
	fl.writeRunLog(fmt.Sprintf("Started at: %s\n\n", started.Format(time.RFC3339)))

	return fl, nil
}

// RunID returns the identifier written into the log header.
func (fl *FileLogger) RunID() string { return fl.runID }

// Path returns the path of the run log.
func (fl *FileLogger) Path() string { return fl.runFile }

func (fl *FileLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(fl.logLevel)
}

// LogDebug logs a debug-level message.
func (fl *FileLogger) LogDebug(message string) { fl.logWithLevel("DEBUG", message) }

// LogInfo logs an info-level message.
func (fl *FileLogger) LogInfo(message string) { fl.logWithLevel("INFO", message) }

// LogWarn logs a warning.
func (fl *FileLogger) LogWarn(message string) { fl.logWithLevel("WARN", message) }

// LogError logs an error.
func (fl *FileLogger) LogError(message string) { fl.logWithLevel("ERROR", message) }

func (fl *FileLogger) logWithLevel(level string, message string) {
	if !fl.shouldLog(strings.ToLower(level)) {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] [%s] %s\n", timestamp(), level, message))
}

// Close writes the footer and closes the run log.
func (fl *FileLogger) Close() error {
	fl.writeRunLog(fmt.Sprintf("\nFinished at: %s\n", time.Now().Format(time.RFC3339)))

	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		if err := fl.runLog.Sync(); err != nil {
			return fmt.Errorf("failed to sync run log: %w", err)
		}
		if err := fl.runLog.Close(); err != nil {
			return fmt.Errorf("failed to close run log: %w", err)
		}
		fl.runLog = nil
	}
	return nil
}

func (fl *FileLogger) writeRunLog(message string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		fl.runLog.WriteString(message)
	}
}
