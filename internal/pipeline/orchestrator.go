// Package pipeline wires a resolved request through the scan, classify and
// archive stages and reports the outcome. It never terminates the process;
// exit decisions belong to the caller.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harrison/filefuser/internal/archive"
	"github.com/harrison/filefuser/internal/classifier"
	"github.com/harrison/filefuser/internal/fileutil"
	"github.com/harrison/filefuser/internal/models"
	"github.com/harrison/filefuser/internal/pattern"
)

// Logger is the logging interface used by the orchestrator.
type Logger interface {
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)
}

type nopLogger struct{}

func (nopLogger) LogDebug(string) {}
func (nopLogger) LogInfo(string) {}
func (nopLogger) LogWarn(string) {}
func (nopLogger) LogError(string) {}

// Request is a fully resolved run: absolute paths, an existing search
// directory and the raw pattern strings.
type Request struct {
	OutputPath string
	FileType   string
	Patterns   []string
	SearchDir  string
}

// Result is the outcome of a run. It is returned alongside
// ClassificationFailedError so callers can still report what succeeded.
type Result struct {
	Summary models.RunSummary
	Records []models.ClassificationRecord // Every candidate, sorted by path
	Errors  []models.ClassificationRecord // Failed records only
	Archive *archive.Result               // Nil unless the archive was written
}

// Orchestrator runs Scanner, Classifier and Archiver in sequence.
type Orchestrator struct {
	Scanner    fileutil.Scanner
	Classifier classifier.Classifier
	Archiver   archive.Archiver
	Logger     Logger

	// ReadFile loads a text file's content before archiving; defaults to os.ReadFile
	ReadFile func(path string) ([]byte, error)
}

// New creates an orchestrator from its three stages. A nil logger discards messages.
func New(scanner fileutil.Scanner, c classifier.Classifier, a archive.Archiver, log Logger) *Orchestrator {
	if log == nil {
		log = nopLogger{}
	}
	return &Orchestrator{
		Scanner:    scanner,
		Classifier: c,
		Archiver:   a,
		Logger:     log,
		ReadFile:   os.ReadFile,
	}
}

// Run executes the pipeline for req.
//
// Fatal failures are returned as *pattern.PatternError, *fileutil.ScanError,
// *classifier.TaskPanicError or *archive.ArchiveError. Per-file
// classification failures stop the run before archiving with a
// *ClassificationFailedError; the returned Result is non-nil in that case.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	log := o.Logger
	if log == nil {
		log = nopLogger{}
	}

	matcher, err := pattern.Compile(req.Patterns)
	if err != nil {
		return nil, err
	}
	for _, p := range matcher.Patterns() {
		log.LogDebug(fmt.Sprintf("Pattern %q compiled to %s", p, pattern.Expression(p)))
	}

	log.LogInfo(fmt.Sprintf("Scanning %s", req.SearchDir))
	candidates, err := o.Scanner.Scan(ctx, req.SearchDir, matcher)
	if err != nil {
		return nil, err
	}
	candidates = excludeOutput(candidates, req.OutputPath)
	log.LogInfo(fmt.Sprintf("Found %d candidate file(s)", len(candidates)))

	records, err := o.Classifier.Classify(ctx, candidates)
	if err != nil {
		return nil, err
	}

	for _, r := range records {
		switch {
		case r.Failed():
			log.LogError(fmt.Sprintf("Error classifying %s: %s", r.Path, r.Err))
		case r.Binary():
			log.LogWarn(fmt.Sprintf("Skipping binary file %s (%d bytes)", r.Path, r.SizeOrZero()))
		default:
			log.LogInfo(fmt.Sprintf("Text file %s (%d bytes)", r.Path, r.SizeOrZero()))
		}
	}

	summary := models.Summarize(records)
	summary.SearchDir = req.SearchDir
	summary.Output = req.OutputPath
	summary.FileType = req.FileType

	if binaries := classifier.OnlyBinaries(records); len(binaries) > 0 {
		log.LogDebug(fmt.Sprintf("Excluded %d binary file(s): %s", len(binaries), strings.Join(classifier.Paths(binaries), ", ")))
	}

	result := &Result{Records: records}
	if failed := classifier.OnlyErrors(records); len(failed) > 0 {
		result.Errors = failed
	}

	if len(result.Errors) > 0 {
		summary.Status = models.StatusFailed
		summary.Duration = time.Since(start)
		result.Summary = summary
		return result, &ClassificationFailedError{Records: result.Errors}
	}

	files := o.loadTextFiles(records, &summary, log)

	archived, err := o.Archiver.Archive(ctx, req.OutputPath, files)
	if err != nil {
		summary.Status = models.StatusFailed
		summary.Duration = time.Since(start)
		result.Summary = summary
		return result, err
	}

	summary.Archived = len(archived.Archived)
	summary.SkippedUnreadable += len(archived.Skipped)
	summary.Bytes = archived.Bytes
	summary.Status = models.StatusSuccess
	summary.Duration = time.Since(start)

	result.Summary = summary
	result.Archive = archived
	return result, nil
}

// loadTextFiles reads every text record in order. A file that can no
// longer be read is skipped with a warning.
func (o *Orchestrator) loadTextFiles(records []models.ClassificationRecord, summary *models.RunSummary, log Logger) []models.TextFile {
	readFile := o.ReadFile
	if readFile == nil {
		readFile = os.ReadFile
	}

	text := classifier.OnlyText(records)
	files := make([]models.TextFile, 0, len(text))
	for _, r := range text {
		content, err := readFile(r.Path)
		if err != nil {
			log.LogWarn(fmt.Sprintf("Skipping %s: %v", r.Path, err))
			summary.SkippedUnreadable++
			continue
		}
		files = append(files, models.TextFile{Path: r.Path, Content: content})
	}
	return files
}

// excludeOutput drops the destination and its lock file from candidates so
// a re-run never archives its own previous output.
func excludeOutput(candidates []string, outputPath string) []string {
	if outputPath == "" {
		return candidates
	}
	out := filepath.Clean(outputPath)
	kept := candidates[:0:0]
	for _, c := range candidates {
		clean := filepath.Clean(c)
		if clean == out || clean == out+".lock" || strings.HasPrefix(filepath.Base(clean), "."+filepath.Base(out)+".tmp-") {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}
