package models

import "time"

// Run outcome constants
const (
	StatusSuccess = "SUCCESS" // Archive written, no per-file errors
	StatusFailed  = "FAILED"  // Run stopped by a fatal or per-file error
)

// RunSummary represents the aggregate counts of a single fuse run
type RunSummary struct {
	SearchDir         string        // Root directory that was scanned
	Output            string        // Destination archive path
	FileType          string        // Archive format identifier (eml, md, html)
	Candidates        int           // Files that matched the patterns
	Text              int           // Candidates classified as text
	Binary            int           // Candidates classified as binary (skipped)
	Errors            int           // Candidates that failed classification
	Archived          int           // Files written into the archive
	SkippedUnreadable int           // Text files dropped while archiving
	Bytes             int           // Size of the written archive
	Duration          time.Duration // Total run time
	Status            string        // SUCCESS or FAILED
}

// Summarize counts a set of classification records into a RunSummary.
func Summarize(records []ClassificationRecord) RunSummary {
	s := RunSummary{Candidates: len(records)}
	for _, r := range records {
		switch {
		case r.Failed():
			s.Errors++
		case r.Text():
			s.Text++
		case r.Binary():
			s.Binary++
		}
	}
	return s
}
