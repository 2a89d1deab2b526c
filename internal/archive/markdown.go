package archive

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/harrison/filefuser/internal/models"
	"github.com/yuin/goldmark"
)

// MarkdownArchiver writes a Markdown bundle: a heading per file followed by
// its content in a fenced code block.
type MarkdownArchiver struct {
	// Now returns the generation timestamp; defaults to time.Now
	Now func() time.Time

	log Logger
}

// NewMarkdownArchiver creates a Markdown archiver. A nil logger discards messages.
func NewMarkdownArchiver(log Logger) *MarkdownArchiver {
	return &MarkdownArchiver{Now: time.Now, log: orNop(log)}
}

// Build renders the Markdown bundle for files.
func (a *MarkdownArchiver) Build(files []models.TextFile) ([]byte, *Result) {
	log := orNop(a.log)
	now := a.Now
	if now == nil {
		now = time.Now
	}

	kept, result := selectText(files, log)

	var buf bytes.Buffer
	buf.WriteString("# " + headerSubject + "\n\n")
	buf.WriteString(IntroText + "\n\n")
	fmt.Fprintf(&buf, "_Generated %s, %d file(s)._\n", now().UTC().Format(time.RFC1123Z), len(kept))

	for _, f := range kept {
		name := filepath.Base(f.Path)
		fence := codeFence(f.Content)

		fmt.Fprintf(&buf, "\n## %s\n\n", name)
		buf.WriteString(fence)
		buf.WriteString(strings.TrimPrefix(filepath.Ext(name), "."))
		buf.WriteString("\n")
		buf.Write(f.Content)
		if len(f.Content) > 0 && f.Content[len(f.Content)-1] != '\n' {
			buf.WriteString("\n")
		}
		buf.WriteString(fence + "\n")
	}

	return buf.Bytes(), result
}

// Archive builds the bundle and writes it to outputPath.
func (a *MarkdownArchiver) Archive(ctx context.Context, outputPath string, files []models.TextFile) (*Result, error) {
	log := orNop(a.log)
	log.LogInfo(fmt.Sprintf("Creating Markdown archive at %s", outputPath))

	data, result := a.Build(files)
	if err := writeArchive(ctx, outputPath, data); err != nil {
		return nil, err
	}
	result.Bytes = len(data)
	return result, nil
}

// codeFence returns a backtick fence longer than any backtick run in content.
func codeFence(content []byte) string {
	longest, run := 0, 0
	for _, b := range content {
		if b == '`' {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	n := 3
	if longest >= n {
		n = longest + 1
	}
	return strings.Repeat("`", n)
}

// HTMLArchiver writes the Markdown bundle converted to a standalone HTML page.
type HTMLArchiver struct {
	markdown *MarkdownArchiver
	renderer goldmark.Markdown
	log      Logger
}

// NewHTMLArchiver creates an HTML archiver. A nil logger discards messages.
func NewHTMLArchiver(log Logger) *HTMLArchiver {
	log = orNop(log)
	return &HTMLArchiver{
		markdown: NewMarkdownArchiver(log),
		renderer: goldmark.New(),
		log:      log,
	}
}

// Build renders the HTML page for files.
func (a *HTMLArchiver) Build(files []models.TextFile) ([]byte, *Result, error) {
	source, result := a.markdown.Build(files)

	var body bytes.Buffer
	if err := a.renderer.Convert(source, &body); err != nil {
		return nil, nil, fmt.Errorf("failed to render markdown: %w", err)
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	page.WriteString("<title>" + headerSubject + "</title>\n</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")

	return page.Bytes(), result, nil
}

// Archive builds the page and writes it to outputPath.
func (a *HTMLArchiver) Archive(ctx context.Context, outputPath string, files []models.TextFile) (*Result, error) {
	a.log.LogInfo(fmt.Sprintf("Creating HTML archive at %s", outputPath))

	data, result, err := a.Build(files)
	if err != nil {
		return nil, &ArchiveError{Path: outputPath, Op: "render", Err: err}
	}
	if err := writeArchive(ctx, outputPath, data); err != nil {
		return nil, err
	}
	result.Bytes = len(data)
	return result, nil
}
