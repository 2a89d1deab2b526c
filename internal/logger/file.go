package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/harrison/filefuser/internal/models"
)

// FileLogger writes a per-run log file named run-YYYYMMDD-HHMMSS.log and
// keeps latest.log pointing at the most recent one. Colors are never used.
type FileLogger struct {
	logDir   string
	runLog   *os.File
	runFile  string
	logLevel string
	mu       sync.Mutex
}

// NewFileLogger creates a FileLogger in logDir with the given minimum level.
// The directory is created if missing.
func NewFileLogger(logDir string, logLevel string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	now := time.Now()
	runFile := filepath.Join(logDir, fmt.Sprintf("run-%s.log", now.Format("20060102-150405")))

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
		logLevel: normalizeLogLevel(logLevel),
	}

	fl.writeRunLog("=== filefuser run log ===\n")
	fl.writeRunLog(fmt.Sprintf("Started at: %s\n\n", now.Format(time.RFC3339)))

	return fl, nil
}

// Path returns the run log file path.
func (fl *FileLogger) Path() string {
	return fl.runFile
}

// LogTrace logs a trace-level message (most verbose).
func (fl *FileLogger) LogTrace(message string) {
	fl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (fl *FileLogger) LogDebug(message string) {
	fl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (fl *FileLogger) LogInfo(message string) {
	fl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (fl *FileLogger) LogWarn(message string) {
	fl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (fl *FileLogger) LogError(message string) {
	fl.logWithLevel("ERROR", message)
}

func (fl *FileLogger) logWithLevel(level string, message string) {
	if !enabled(fl.logLevel, level) {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] [%s] %s\n", timestamp(), level, message))
}

// LogProgress is a no-op: per-record lines already land in the run log.
func (fl *FileLogger) LogProgress(done, total int) {}

// LogSummary writes the run summary at INFO level.
func (fl *FileLogger) LogSummary(summary models.RunSummary) {
	if !enabled(fl.logLevel, "info") {
		return
	}

	ts := timestamp()
	msg := fmt.Sprintf("[%s] === Run Summary ===\n", ts)
	msg += fmt.Sprintf("[%s] Search dir: %s\n", ts, summary.SearchDir)
	msg += fmt.Sprintf("[%s] Output: %s (%s)\n", ts, summary.Output, summary.FileType)
	msg += fmt.Sprintf("[%s] Candidates: %d\n", ts, summary.Candidates)
	msg += fmt.Sprintf("[%s] Text: %d\n", ts, summary.Text)
	msg += fmt.Sprintf("[%s] Binary (skipped): %d\n", ts, summary.Binary)
	msg += fmt.Sprintf("[%s] Errors: %d\n", ts, summary.Errors)
	msg += fmt.Sprintf("[%s] Archived: %d\n", ts, summary.Archived)
	msg += fmt.Sprintf("[%s] Skipped while archiving: %d\n", ts, summary.SkippedUnreadable)
	msg += fmt.Sprintf("[%s] Bytes: %d\n", ts, summary.Bytes)
	msg += fmt.Sprintf("[%s] Duration: %s\n", ts, formatDuration(summary.Duration))
	msg += fmt.Sprintf("[%s] Status: %s\n", ts, summary.Status)

	fl.writeRunLog(msg)
}

// Close flushes and closes the run log file.
func (fl *FileLogger) Close() error {
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
