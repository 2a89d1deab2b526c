package display

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/harrison/filefuser/internal/models"
)

// ProgressIndicator lists classified candidates one line at a time
type ProgressIndicator struct {
	writer  io.Writer
	total   int
	current int
	color   bool
}

// NewProgressIndicator creates a new progress indicator for total records
func NewProgressIndicator(w io.Writer, total int) *ProgressIndicator {
	return &ProgressIndicator{
		writer: w,
		total:  total,
		color:  useColor(w),
	}
}

// Start displays the header message
func (p *ProgressIndicator) Start(searchDir string) {
	fmt.Fprintf(p.writer, "Classifying %d candidate(s) in %s:\n", p.total, searchDir)
}

// Step displays one record: [N/Total] KIND size path
func (p *ProgressIndicator) Step(r models.ClassificationRecord) {
	p.current++

	size := "-"
	if r.Size != nil {
		size = FormatSize(*r.Size)
	}

	var kind string
	switch {
	case r.Failed():
		kind = paint(color.FgRed, p.color, "ERROR ")
	case r.Text():
		kind = paint(color.FgGreen, p.color, "TEXT  ")
	default:
		kind = paint(color.FgYellow, p.color, "BINARY")
	}

	fmt.Fprintf(p.writer, "  [%d/%d] %s %10s  %s", p.current, p.total, kind, size, r.Path)
	if r.Failed() {
		fmt.Fprintf(p.writer, " (%s)", r.Err)
	}
	fmt.Fprintln(p.writer)
}

// Complete displays the closing counts
func (p *ProgressIndicator) Complete(s models.RunSummary) {
	mark := paint(color.FgGreen, p.color, "✓")
	if s.Errors > 0 {
		mark = paint(color.FgRed, p.color, "✗")
	}
	fmt.Fprintf(p.writer, "%s %d text, %d binary, %d error(s)\n", mark, s.Text, s.Binary, s.Errors)
}
