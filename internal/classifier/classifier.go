// Package classifier decides, for every candidate file, its size and whether
// it is text or binary.
//
// Each file is classified independently on a bounded pool of goroutines.
// A failure on one file is recorded in that file's record and never aborts
// the batch. Records are returned sorted by path regardless of the order in
// which the goroutines finished.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/harrison/filefuser/internal/models"
	"golang.org/x/sync/errgroup"
)

// Classifier produces one ClassificationRecord per candidate path.
type Classifier interface {
	Classify(ctx context.Context, candidates []string) ([]models.ClassificationRecord, error)
}

// TaskPanicError reports a classification goroutine that panicked. Unlike a
// per-file error it is fatal to the whole run.
type TaskPanicError struct {
	Path  string // Candidate being classified when the panic occurred
	Value any    // Recovered panic value
	Stack []byte // Stack trace captured at recovery
}

// Error implements the error interface for TaskPanicError.
func (e *TaskPanicError) Error() string {
	return fmt.Sprintf("classification of %s panicked: %v", e.Path, e.Value)
}

// IsTaskPanicError checks if the error is or wraps a TaskPanicError.
func IsTaskPanicError(err error) bool {
	if err == nil {
		return false
	}
	var pe *TaskPanicError
	return errors.As(err, &pe)
}

// ConcurrentClassifier classifies candidates on a bounded goroutine pool.
type ConcurrentClassifier struct {
	// MaxConcurrency caps the number of files open at once (<= 0 uses DefaultConcurrency)
	MaxConcurrency int

	// OnClassified, if set, is called once per finished record from the
	// worker goroutines. It must be safe for concurrent use.
	OnClassified func(models.ClassificationRecord)

	// classify is the per-file procedure, replaceable in tests
	classify func(path string) models.ClassificationRecord
}

// DefaultConcurrency returns the pool size used when none is configured.
func DefaultConcurrency() int {
	return runtime.NumCPU() * 4
}

// NewConcurrentClassifier creates a classifier with the given pool size.
func NewConcurrentClassifier(maxConcurrency int) *ConcurrentClassifier {
	return &ConcurrentClassifier{
		MaxConcurrency: maxConcurrency,
		classify:       ClassifyFile,
	}
}

// Classify returns exactly one record per candidate, sorted by path.
// The error is non-nil only for pipeline-level failures: a panicking
// goroutine (*TaskPanicError) or a cancelled context.
func (c *ConcurrentClassifier) Classify(ctx context.Context, candidates []string) ([]models.ClassificationRecord, error) {
	records := make([]models.ClassificationRecord, len(candidates))
	if len(candidates) == 0 {
		return records, nil
	}

	limit := c.MaxConcurrency
	if limit <= 0 {
		limit = DefaultConcurrency()
	}

	classify := c.classify
	if classify == nil {
		classify = ClassifyFile
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, path := range candidates {
		if gctx.Err() != nil {
			break
		}
		i, path := i, path
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = &TaskPanicError{Path: path, Value: r, Stack: debug.Stack()}
				}
			}()

			// Each goroutine owns exactly one slot
			records[i] = classify(path)
			if c.OnClassified != nil {
				c.OnClassified(records[i])
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("classification interrupted: %w", err)
	}

	models.SortByPath(records)
	return records, nil
}

// ClassifyFile runs the per-file procedure: size via metadata, then a
// bounded sample read, then the text heuristic. I/O failures are stored in
// the record's Err field.
func ClassifyFile(path string) models.ClassificationRecord {
	record := models.ClassificationRecord{Path: path}

	info, err := os.Stat(path)
	if err != nil {
		record.Err = fmt.Sprintf("failed to read metadata: %v", err)
		return record
	}
	size := info.Size()
	record.Size = &size

	sample, err := readSample(path, SampleSize)
	if err != nil {
		record.Err = fmt.Sprintf("failed to read sample: %v", err)
		return record
	}

	isText := IsText(sample)
	record.IsText = &isText
	return record
}

// readSample reads at most n leading bytes of the file.
func readSample(path string, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, n)
	read, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, err
	}
	return buf[:read], nil
}
