package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harrison/filefuser/internal/models"
)

// File kinds stored in run_files.kind
const (
	KindText   = "text"
	KindBinary = "binary"
	KindError  = "error"
)

var (
	// ErrRunNotFound is returned when no recorded run matches an ID.
	ErrRunNotFound = errors.New("run not found")
	// ErrAmbiguousRunID is returned when an ID prefix matches more than one run.
	ErrAmbiguousRunID = errors.New("run ID prefix is ambiguous")
)

// timeLayout is fixed-width so started_at sorts correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run is one recorded fuse run.
type Run struct {
	ID            string
	StartedAt     time.Time
	Patterns      []string
	Summary       models.RunSummary
	ErrorCategory string // Empty for successful runs
	ErrorMessage  string
}

// FileEntry is one classified candidate of a recorded run.
type FileEntry struct {
	Path  string
	Size  *int64
	Kind  string
	Error string
}

// NewRun builds a Run with a fresh ID. A nil err leaves the error fields empty.
func NewRun(startedAt time.Time, patterns []string, summary models.RunSummary, category string, err error) *Run {
	run := &Run{
		ID:            uuid.NewString(),
		StartedAt:     startedAt,
		Patterns:      patterns,
		Summary:       summary,
		ErrorCategory: category,
	}
	if err != nil {
		run.ErrorMessage = err.Error()
	}
	return run
}

// EntriesFromRecords converts classification records into ledger entries.
func EntriesFromRecords(records []models.ClassificationRecord) []FileEntry {
	entries := make([]FileEntry, 0, len(records))
	for _, r := range records {
		e := FileEntry{Path: r.Path, Size: r.Size, Error: r.Err}
		switch {
		case r.Failed():
			e.Kind = KindError
		case r.Text():
			e.Kind = KindText
		default:
			e.Kind = KindBinary
		}
		entries = append(entries, e)
	}
	return entries
}

// RecordRun stores a run and its file entries in one transaction.
func (s *Store) RecordRun(ctx context.Context, run *Run, files []FileEntry) error {
	if run == nil {
		return fmt.Errorf("record run: nil run")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	patterns := run.Patterns
	if patterns == nil {
		patterns = []string{}
	}
	patternsJSON, err := json.Marshal(patterns)
	if err != nil {
		return fmt.Errorf("marshal patterns: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	sum := run.Summary
	_, err = tx.ExecContext(ctx, `
INSERT INTO runs (
    id, started_at, search_dir, output_path, file_type, patterns,
    candidates, text_files, binary_files, error_files, archived,
    skipped_unreadable, bytes, duration_ms, status, error_category, error_message
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(timeLayout),
		sum.SearchDir,
		sum.Output,
		sum.FileType,
		string(patternsJSON),
		sum.Candidates,
		sum.Text,
		sum.Binary,
		sum.Errors,
		sum.Archived,
		sum.SkippedUnreadable,
		sum.Bytes,
		sum.Duration.Milliseconds(),
		sum.Status,
		nullString(run.ErrorCategory),
		nullString(run.ErrorMessage),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO run_files (run_id, path, size, kind, error_message) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare file insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range files {
		var size sql.NullInt64
		if f.Size != nil {
			size = sql.NullInt64{Int64: *f.Size, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, run.ID, f.Path, size, f.Kind, nullString(f.Error)); err != nil {
			return fmt.Errorf("insert file %s: %w", f.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

const runColumns = `
SELECT id, started_at, search_dir, output_path, file_type, patterns,
       candidates, text_files, binary_files, error_files, archived,
       skipped_unreadable, bytes, duration_ms, status, error_category, error_message
FROM runs`

// RecentRuns returns up to limit runs, newest first. A limit below 1 returns all runs.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]*Run, error) {
	query := runColumns + `
ORDER BY started_at DESC, rowid DESC`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun returns the run whose ID is id or starts with it. An empty id,
// or one that matches nothing, yields ErrRunNotFound.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	if id == "" {
		return nil, ErrRunNotFound
	}

	rows, err := s.db.QueryContext(ctx, runColumns+`
WHERE substr(id, 1, length(?)) = ?
ORDER BY id
LIMIT 2`, id, id)
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}
	defer rows.Close()

	var matches []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	case 1:
		return matches[0], nil
	}
	// An exact ID wins over longer IDs sharing it as a prefix
	if matches[0].ID == id {
		return matches[0], nil
	}
	return nil, fmt.Errorf("%w: %s", ErrAmbiguousRunID, id)
}

// RunFiles returns the file entries recorded for runID, ordered by path.
func (s *Store) RunFiles(ctx context.Context, runID string) ([]FileEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT path, size, kind, error_message
FROM run_files
WHERE run_id = ?
ORDER BY path`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run files: %w", err)
	}
	defer rows.Close()

	var files []FileEntry
	for rows.Next() {
		var (
			f      FileEntry
			size   sql.NullInt64
			errMsg sql.NullString
		)
		if err := rows.Scan(&f.Path, &size, &f.Kind, &errMsg); err != nil {
			return nil, fmt.Errorf("scan run file: %w", err)
		}
		if size.Valid {
			v := size.Int64
			f.Size = &v
		}
		f.Error = errMsg.String
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run files: %w", err)
	}
	return files, nil
}

func scanRun(rows *sql.Rows) (*Run, error) {
	var (
		run          Run
		startedAt    string
		patternsJSON string
		durationMs   int64
		category     sql.NullString
		message      sql.NullString
	)
	sum := &run.Summary
	err := rows.Scan(
		&run.ID, &startedAt, &sum.SearchDir, &sum.Output, &sum.FileType, &patternsJSON,
		&sum.Candidates, &sum.Text, &sum.Binary, &sum.Errors, &sum.Archived,
		&sum.SkippedUnreadable, &sum.Bytes, &durationMs, &sum.Status, &category, &message,
	)
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}

	run.StartedAt, err = time.Parse(timeLayout, startedAt)
	if err != nil {
		return nil, fmt.Errorf("parse started_at for run %s: %w", run.ID, err)
	}
	if err := json.Unmarshal([]byte(patternsJSON), &run.Patterns); err != nil {
		return nil, fmt.Errorf("unmarshal patterns for run %s: %w", run.ID, err)
	}
	sum.Duration = time.Duration(durationMs) * time.Millisecond
	run.ErrorCategory = category.String
	run.ErrorMessage = message.String
	return &run, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
