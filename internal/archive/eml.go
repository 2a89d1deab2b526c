package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/harrison/filefuser/internal/filelock"
	"github.com/harrison/filefuser/internal/models"
)

// Fixed EML header values.
const (
	headerFrom    = "filefuser <archiver@example.com>"
	headerTo      = "User <user@example.com>"
	headerSubject = "Archived Files"
	textPlainUTF8 = "text/plain; charset=UTF-8"
)

// EMLArchiver writes a multipart/mixed message with one attachment part per
// text file.
type EMLArchiver struct {
	// Now returns the Date header time; defaults to time.Now
	Now func() time.Time
	// Boundary returns the per-run boundary token; defaults to NewBoundary
	Boundary func() string

	log Logger
}

// NewEMLArchiver creates an EML archiver. A nil logger discards messages.
func NewEMLArchiver(log Logger) *EMLArchiver {
	return &EMLArchiver{
		Now:      time.Now,
		Boundary: NewBoundary,
		log:      orNop(log),
	}
}

// NewBoundary returns a fresh boundary token of the form boundary_<uuid>.
func NewBoundary() string {
	return "boundary_" + uuid.NewString()
}

// Build assembles the document for files without touching the filesystem.
// Files that are not valid UTF-8 are left out and reported in the result.
func (a *EMLArchiver) Build(files []models.TextFile) (*Document, *Result) {
	log := orNop(a.log)
	now, boundary := a.Now, a.Boundary
	if now == nil {
		now = time.Now
	}
	if boundary == nil {
		boundary = NewBoundary
	}

	kept, result := selectText(files, log)
	token := boundary()

	doc := &Document{
		Boundary: token,
		Headers: []Field{
			{Name: "Date", Value: now().UTC().Format(time.RFC1123Z)},
			{Name: "From", Value: headerFrom},
			{Name: "To", Value: headerTo},
			{Name: "Subject", Value: headerSubject},
			{Name: "MIME-Version", Value: "1.0"},
			{Name: "Content-Type", Value: fmt.Sprintf("multipart/mixed; boundary=%q", token)},
		},
		Parts: make([]Part, 0, len(kept)+1),
	}

	doc.Parts = append(doc.Parts, Part{
		Fields: []Field{
			{Name: "Content-Type", Value: textPlainUTF8},
			{Name: "Content-Transfer-Encoding", Value: "8bit"},
		},
		Body: []byte(IntroText),
	})

	for _, f := range kept {
		doc.Parts = append(doc.Parts, Part{
			Fields: []Field{
				{Name: "Content-Type", Value: textPlainUTF8},
				{Name: "Content-Transfer-Encoding", Value: "8bit"},
				{Name: "Content-Disposition", Value: "attachment; filename=" + quoteFilename(filepath.Base(f.Path))},
			},
			Body: f.Content,
		})
	}

	return doc, result
}

// Archive builds the document and writes it to outputPath.
func (a *EMLArchiver) Archive(ctx context.Context, outputPath string, files []models.TextFile) (*Result, error) {
	log := orNop(a.log)
	log.LogInfo(fmt.Sprintf("Creating EML archive at %s", outputPath))
	if len(files) == 0 {
		log.LogWarn("No files to archive, writing an archive with only the introduction")
	}

	doc, result := a.Build(files)
	data := doc.Render()

	if err := writeArchive(ctx, outputPath, data); err != nil {
		return nil, err
	}

	result.Bytes = len(data)
	log.LogInfo(fmt.Sprintf("Wrote %d file(s) to %s (%d bytes)", len(result.Archived), outputPath, result.Bytes))
	return result, nil
}

// writeArchive creates the destination directory and writes data under the
// destination's file lock.
func writeArchive(ctx context.Context, outputPath string, data []byte) error {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &ArchiveError{Path: dir, Op: "create directory", Err: err}
	}
	if err := filelock.LockAndWrite(ctx, outputPath, data); err != nil {
		return &ArchiveError{Path: outputPath, Op: "write", Err: err}
	}
	return nil
}
