package fileutil

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/harrison/filefuser/internal/pattern"
)

// Scanner enumerates candidate files below a root directory.
type Scanner interface {
	Scan(ctx context.Context, root string, matcher *pattern.MatcherSet) ([]string, error)
}

// ScanError reports a directory that could not be read. A scan that returns
// a ScanError returns no candidates at all.
type ScanError struct {
	Path string // Directory or entry that failed
	Err  error  // Underlying filesystem error
}

// Error implements the error interface for ScanError.
func (e *ScanError) Error() string {
	return fmt.Sprintf("failed to scan %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying filesystem error.
func (e *ScanError) Unwrap() error {
	return e.Err
}

// IsScanError checks if the error is or wraps a ScanError.
func IsScanError(err error) bool {
	if err == nil {
		return false
	}
	var se *ScanError
	return errors.As(err, &se)
}

// DirScanner walks a directory tree depth-first with filepath.WalkDir.
// The root itself is resolved through symbolic links; below the root,
// symbolic links are never followed and are not candidates.
type DirScanner struct {
	// ExcludeDirs lists directory base names that are skipped entirely (e.g. ".git")
	ExcludeDirs []string

	// walk traverses the tree; filepath.WalkDir unless replaced in tests
	walk func(root string, fn fs.WalkDirFunc) error
}

// NewDirScanner creates a DirScanner that skips the given directory names.
func NewDirScanner(excludeDirs ...string) *DirScanner {
	return &DirScanner{ExcludeDirs: excludeDirs, walk: filepath.WalkDir}
}

// Scan returns the canonical absolute paths of all regular files under root
// whose full path matches the matcher set, sorted alphabetically.
func (s *DirScanner) Scan(ctx context.Context, root string, matcher *pattern.MatcherSet) ([]string, error) {
	// Validate directory exists
	info, err := os.Stat(root)
	if err != nil {
		return nil, &ScanError{Path: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &ScanError{Path: root, Err: fmt.Errorf("not a directory")}
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, &ScanError{Path: root, Err: err}
	}
	// WalkDir does not follow a symlinked root
	absRoot, err = filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, &ScanError{Path: root, Err: err}
	}

	excludeMap := make(map[string]bool, len(s.ExcludeDirs))
	for _, dir := range s.ExcludeDirs {
		excludeMap[dir] = true
	}

	walk := s.walk
	if walk == nil {
		walk = filepath.WalkDir
	}

	files := make([]string, 0)

	err = walk(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return &ScanError{Path: path, Err: err}
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return &ScanError{Path: path, Err: ctxErr}
		}

		if d.IsDir() {
			if path != absRoot && excludeMap[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		// Symlinks, sockets, devices and pipes are not candidates
		if !d.Type().IsRegular() {
			return nil
		}

		if matcher.Matches(path) {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		var se *ScanError
		if errors.As(err, &se) {
			return nil, se
		}
		return nil, &ScanError{Path: absRoot, Err: err}
	}

	// Sort files for consistent output
	sort.Strings(files)

	return files, nil
}
