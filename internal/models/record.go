// Package models holds the data passed between the filefuser pipeline stages.
package models

import "sort"

// ClassificationRecord is the outcome of classifying one candidate file.
// Exactly one of a successful classification (IsText set) or Err holds.
// Size may be set even when a later read failed.
type ClassificationRecord struct {
	Path   string // Absolute path of the candidate
	Size   *int64 // File size in bytes, nil if metadata could not be read
	IsText *bool  // Text/binary verdict, nil only when Err is set
	Err    string // Per-file failure, empty on success
}

// Failed reports whether the record carries a per-file error.
func (r ClassificationRecord) Failed() bool {
	return r.Err != ""
}

// Text reports whether the record was successfully classified as text.
func (r ClassificationRecord) Text() bool {
	return r.Err == "" && r.IsText != nil && *r.IsText
}

// Binary reports whether the record was successfully classified as binary.
func (r ClassificationRecord) Binary() bool {
	return r.Err == "" && r.IsText != nil && !*r.IsText
}

// SizeOrZero returns the recorded size, or 0 when unknown.
func (r ClassificationRecord) SizeOrZero() int64 {
	if r.Size == nil {
		return 0
	}
	return *r.Size
}

// SortByPath orders records by path in place.
func SortByPath(records []ClassificationRecord) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].Path < records[j].Path
	})
}

// TextFile is a file selected for archiving together with its content.
type TextFile struct {
	Path    string
	Content []byte
}
