package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/harrison/filefuser/internal/archive"
	"github.com/harrison/filefuser/internal/classifier"
	"github.com/harrison/filefuser/internal/fileutil"
	"github.com/harrison/filefuser/internal/models"
	"github.com/harrison/filefuser/internal/pattern"
)

// ClassificationFailedError is returned when one or more candidates could
// not be classified. The run stops before archiving; every record has
// already been logged.
type ClassificationFailedError struct {
	Records []models.ClassificationRecord // Only the failed records
}

// Error implements the error interface for ClassificationFailedError.
func (e *ClassificationFailedError) Error() string {
	if len(e.Records) == 1 {
		return fmt.Sprintf("failed to classify %s: %s", e.Records[0].Path, e.Records[0].Err)
	}
	paths := make([]string, 0, 3)
	for i, r := range e.Records {
		if i == 3 {
			paths = append(paths, "...")
			break
		}
		paths = append(paths, r.Path)
	}
	return fmt.Sprintf("failed to classify %d files: %s", len(e.Records), strings.Join(paths, ", "))
}

// IsClassificationFailed checks if the error is or wraps a ClassificationFailedError.
func IsClassificationFailed(err error) bool {
	var ce *ClassificationFailedError
	return errors.As(err, &ce)
}

// Category returns a short label for a pipeline error, used in run history
// and exit reporting.
func Category(err error) string {
	var (
		pe  *pattern.PatternError
		ute *archive.UnknownTypeError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &pe):
		return "pattern"
	case errors.As(err, &ute):
		return "archive_type"
	case fileutil.IsScanError(err):
		return "scan"
	case classifier.IsTaskPanicError(err):
		return "panic"
	case IsClassificationFailed(err):
		return "classification"
	case archive.IsArchiveError(err):
		return "archive"
	default:
		return "other"
	}
}
