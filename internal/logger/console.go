// Package logger provides leveled logging for filefuser runs.
//
// ConsoleLogger writes "[HH:MM:SS] [LEVEL] message" lines to a writer,
// colorizing the level when the writer is a terminal. FileLogger keeps a
// per-run log file under the log directory. MultiLogger fans a message out
// to several loggers. All implementations are safe for concurrent use, which
// matters because classification progress is reported from worker goroutines.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/harrison/filefuser/internal/models"
	"github.com/mattn/go-isatty"
)

// Logger is the full logging interface used by the CLI.
type Logger interface {
	LogTrace(message string)
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)
	LogProgress(done, total int)
	LogSummary(summary models.RunSummary)
}

// ConsoleLogger logs run progress to a writer with timestamps and thread safety.
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided io.Writer.
// If writer is nil, messages are silently discarded. An empty or unknown
// logLevel defaults to "info".
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
	}
}

// isTerminal reports whether w is a TTY that should receive colors.
// NO_COLOR (honoured by fatih/color) disables colors everywhere.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil || color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Level returns the normalized minimum level.
func (cl *ConsoleLogger) Level() string {
	return cl.logLevel
}

// LogTrace logs a trace-level message (most verbose).
func (cl *ConsoleLogger) LogTrace(message string) {
	cl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil || !enabled(cl.logLevel, level) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	if cl.colorOutput {
		fmt.Fprintf(cl.writer, "[%s] [%s] %s\n", ts, levelColor(level).Sprint(level), message)
		return
	}
	fmt.Fprintf(cl.writer, "[%s] [%s] %s\n", ts, level, message)
}

func levelColor(level string) *color.Color {
	switch strings.ToUpper(level) {
	case "TRACE":
		return color.New(color.FgHiBlack)
	case "DEBUG":
		return color.New(color.FgCyan)
	case "WARN":
		return color.New(color.FgYellow)
	case "ERROR":
		return color.New(color.FgRed)
	default:
		return color.New(color.FgBlue)
	}
}

// LogProgress logs classification progress at DEBUG level.
// Format: "[HH:MM:SS] Classified: [=====     ] 5/10 (50%)"
func (cl *ConsoleLogger) LogProgress(done, total int) {
	if cl.writer == nil || !enabled(cl.logLevel, "debug") {
		return
	}

	pb := NewProgressBar(total, 20, cl.colorOutput)
	pb.SetPrefix("Classified: ")
	pb.Update(done)

	cl.mutex.Lock()
	defer cl.mutex.Unlock()
	fmt.Fprintf(cl.writer, "[%s] %s\n", timestamp(), pb.Render())
}

// LogSummary logs the run summary at INFO level.
func (cl *ConsoleLogger) LogSummary(summary models.RunSummary) {
	if cl.writer == nil || !enabled(cl.logLevel, "info") {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)
	if !cl.colorOutput {
		for _, c := range []*color.Color{bold, green, yellow, red} {
			c.DisableColor()
		}
	}

	errorsLine := fmt.Sprintf("Errors: %d", summary.Errors)
	if summary.Errors > 0 {
		errorsLine = red.Sprint(errorsLine)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s\n", ts, bold.Sprint("=== Run Summary ==="))
	fmt.Fprintf(&b, "[%s] Candidates: %d\n", ts, summary.Candidates)
	fmt.Fprintf(&b, "[%s] %s\n", ts, green.Sprintf("Text: %d", summary.Text))
	fmt.Fprintf(&b, "[%s] %s\n", ts, yellow.Sprintf("Binary (skipped): %d", summary.Binary))
	fmt.Fprintf(&b, "[%s] %s\n", ts, errorsLine)
	fmt.Fprintf(&b, "[%s] Archived: %d\n", ts, summary.Archived)
	if summary.SkippedUnreadable > 0 {
		fmt.Fprintf(&b, "[%s] %s\n", ts, yellow.Sprintf("Skipped while archiving: %d", summary.SkippedUnreadable))
	}
	fmt.Fprintf(&b, "[%s] Duration: %s\n", ts, formatDuration(summary.Duration))
	if summary.Status != "" {
		statusColor := green
		if summary.Status != models.StatusSuccess {
			statusColor = red
		}
		fmt.Fprintf(&b, "[%s] Status: %s\n", ts, statusColor.Sprint(summary.Status))
	}

	io.WriteString(cl.writer, b.String())
}

// NoOpLogger is a Logger implementation that discards all log messages.
type NoOpLogger struct{}

// NewNoOpLogger creates a NoOpLogger instance.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (n *NoOpLogger) LogTrace(string) {}
func (n *NoOpLogger) LogDebug(string) {}
func (n *NoOpLogger) LogInfo(string) {}
func (n *NoOpLogger) LogWarn(string) {}
func (n *NoOpLogger) LogError(string) {}
func (n *NoOpLogger) LogProgress(int, int) {}
func (n *NoOpLogger) LogSummary(models.RunSummary) {}
