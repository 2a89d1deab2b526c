// Package archive assembles the surviving text files of a run into a single
// document and writes it to the destination path.
//
// The default format is a multipart/mixed EML message. Markdown and HTML
// bundles are available for reading the archive outside a mail client.
package archive

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agext/levenshtein"
	"github.com/harrison/filefuser/internal/models"
)

// Supported archive types.
const (
	TypeEML      = "eml"
	TypeMarkdown = "md"
	TypeHTML     = "html"
)

// IntroText is the fixed introduction placed at the top of every archive.
const IntroText = "This is an archived collection of files created by filefuser."

// Logger is the subset of the logging interface used while archiving.
type Logger interface {
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
}

type nopLogger struct{}

func (nopLogger) LogDebug(string) {}
func (nopLogger) LogInfo(string) {}
func (nopLogger) LogWarn(string) {}

// Archiver writes one archive document from an ordered list of text files.
type Archiver interface {
	Archive(ctx context.Context, outputPath string, files []models.TextFile) (*Result, error)
}

// Result describes what was written.
type Result struct {
	Archived []string // Paths included, in document order
	Skipped  []string // Paths dropped because their content is not valid UTF-8
	Bytes    int      // Size of the written document
}

// ArchiveError reports a failure to create or write the destination.
type ArchiveError struct {
	Path string
	Op   string
	Err  error
}

// Error implements the error interface for ArchiveError.
func (e *ArchiveError) Error() string {
	return fmt.Sprintf("archive %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ArchiveError) Unwrap() error {
	return e.Err
}

// IsArchiveError checks if the error is or wraps an ArchiveError.
func IsArchiveError(err error) bool {
	var ae *ArchiveError
	return errors.As(err, &ae)
}

// UnknownTypeError is returned by New for an unsupported archive type.
type UnknownTypeError struct {
	Type       string
	Suggestion string // Closest supported type, empty when nothing is close
}

// Error implements the error interface for UnknownTypeError.
func (e *UnknownTypeError) Error() string {
	msg := fmt.Sprintf("unknown archive type %q (supported: %s)", e.Type, strings.Join(Types(), ", "))
	if e.Suggestion != "" {
		msg += fmt.Sprintf("; did you mean %q?", e.Suggestion)
	}
	return msg
}

var constructors = map[string]func(Logger) Archiver{
	TypeEML:      func(l Logger) Archiver { return NewEMLArchiver(l) },
	TypeMarkdown: func(l Logger) Archiver { return NewMarkdownArchiver(l) },
	TypeHTML:     func(l Logger) Archiver { return NewHTMLArchiver(l) },
}

// Types lists the supported archive types in sorted order.
func Types() []string {
	types := make([]string, 0, len(constructors))
	for t := range constructors {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// New returns the archiver registered for fileType. Matching is
// case-insensitive and ignores a leading dot, so ".EML" selects eml.
func New(fileType string, log Logger) (Archiver, error) {
	key := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(fileType)), ".")
	if ctor, ok := constructors[key]; ok {
		return ctor(log), nil
	}
	return nil, &UnknownTypeError{Type: fileType, Suggestion: suggest(key)}
}

// suggest returns the supported type nearest to t by edit distance, or ""
// if every type is more than two edits away.
func suggest(t string) string {
	if t == "" {
		return ""
	}
	best, bestDist := "", 3
	for _, candidate := range Types() {
		if d := levenshtein.Distance(t, candidate, nil); d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return best
}

// selectText splits files into those that are valid UTF-8 and those that
// must be skipped, logging a warning per skipped file.
func selectText(files []models.TextFile, log Logger) (kept []models.TextFile, result *Result) {
	result = &Result{Archived: []string{}, Skipped: []string{}}
	for _, f := range files {
		if !utf8.Valid(f.Content) {
			log.LogWarn(fmt.Sprintf("Skipping %s: content is not valid UTF-8", f.Path))
			result.Skipped = append(result.Skipped, f.Path)
			continue
		}
		log.LogDebug(fmt.Sprintf("Adding %s (%d bytes)", filepath.Base(f.Path), len(f.Content)))
		kept = append(kept, f)
		result.Archived = append(result.Archived, f.Path)
	}
	return kept, result
}

func orNop(log Logger) Logger {
	if log == nil {
		return nopLogger{}
	}
	return log
}
