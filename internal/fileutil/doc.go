// Package fileutil discovers candidate files for an archive run.
//
// The scanner walks a directory tree rooted at an absolute, existing
// directory and keeps every regular file whose full path matches a compiled
// pattern.MatcherSet. Directories are never emitted and symbolic links are
// not followed.
//
// # Usage
//
//	matcher, err := pattern.Compile([]string{"*.go", "*.md"})
//	if err != nil {
//	    return err
//	}
//	files, err := fileutil.NewDirScanner(".git").Scan(ctx, "/path/to/repo", matcher)
//	if err != nil {
//	    return err // *ScanError, no partial result
//	}
//
// # Failure Policy
//
// A directory that cannot be listed aborts the whole scan with a *ScanError
// and no candidates are returned. A partial candidate set would silently
// produce an incomplete archive.
//
// # Output
//
// Paths are absolute and sorted alphabetically, so two scans of an
// unmodified tree return identical slices.
package fileutil
