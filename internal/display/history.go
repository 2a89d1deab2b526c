package display

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/harrison/filefuser/internal/history"
	"github.com/harrison/filefuser/internal/models"
)

// shortIDLen is how much of a run ID the table shows; history show accepts
// any unique prefix.
const shortIDLen = 8

// tableRow is one table line. attr colors the cell in the table's color
// column; zero leaves it plain.
type tableRow struct {
	cells []string
	attr  color.Attribute
}

// writeTable aligns rows under header and colors the cell in column col
// afterwards, so escape codes never count toward tabwriter cell widths.
func writeTable(out io.Writer, enabled bool, col int, header []string, rows []tableRow) {
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r.cells, "\t"))
	}
	tw.Flush()

	lines := strings.SplitAfter(buf.String(), "\n")
	if !enabled || len(lines) == 0 {
		io.WriteString(out, buf.String())
		return
	}

	// tabwriter measures cells in runes
	idx := strings.Index(lines[0], header[col])
	start := utf8.RuneCountInString(lines[0][:idx])
	for i, r := range rows {
		if r.attr == 0 || r.cells[col] == "" {
			continue
		}
		line := []rune(lines[i+1])
		end := start + utf8.RuneCountInString(r.cells[col])
		if end > len(line) {
			continue
		}
		lines[i+1] = string(line[:start]) + paint(r.attr, true, string(line[start:end])) + string(line[end:])
	}
	io.WriteString(out, strings.Join(lines, ""))
}

// PrintRuns writes recorded runs as an aligned table, newest first.
func PrintRuns(out io.Writer, runs []*history.Run) {
	printRuns(out, runs, useColor(out))
}

func printRuns(out io.Writer, runs []*history.Run, enabled bool) {
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded yet.")
		return
	}

	var rows []tableRow
	for _, run := range runs {
		s := run.Summary
		rows = append(rows, tableRow{
			cells: []string{
				shortID(run.ID),
				run.StartedAt.Local().Format("2006-01-02 15:04:05"),
				s.Status,
				s.FileType,
				fmt.Sprintf("%d/%d", s.Archived, s.Candidates),
				FormatSize(int64(s.Bytes)),
				s.Output,
			},
			attr: statusColor(s.Status),
		})
		if run.ErrorMessage != "" {
			rows = append(rows, tableRow{
				cells: []string{"", "", run.ErrorCategory, "", "", "", truncate(run.ErrorMessage, 80)},
				attr:  color.FgCyan,
			})
		}
	}
	writeTable(out, enabled, 2, []string{"ID", "STARTED", "STATUS", "TYPE", "FILES", "SIZE", "OUTPUT"}, rows)
}

// PrintRunDetail writes one run's summary followed by its classified files.
func PrintRunDetail(out io.Writer, run *history.Run, files []history.FileEntry) {
	printRunDetail(out, run, files, useColor(out))
}

func printRunDetail(out io.Writer, run *history.Run, files []history.FileEntry, enabled bool) {
	s := run.Summary
	patterns := strings.Join(run.Patterns, ", ")
	if patterns == "" {
		patterns = "(none)"
	}

	fmt.Fprintf(out, "Run:        %s\n", run.ID)
	fmt.Fprintf(out, "Started:    %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Status:     %s\n", paint(statusColor(s.Status), enabled, s.Status))
	fmt.Fprintf(out, "Search dir: %s\n", s.SearchDir)
	fmt.Fprintf(out, "Output:     %s (%s)\n", s.Output, s.FileType)
	fmt.Fprintf(out, "Patterns:   %s\n", patterns)
	fmt.Fprintf(out, "Files:      %d archived of %d candidate(s): %d text, %d binary, %d error(s), %d unreadable\n",
		s.Archived, s.Candidates, s.Text, s.Binary, s.Errors, s.SkippedUnreadable)
	fmt.Fprintf(out, "Size:       %s\n", FormatSize(int64(s.Bytes)))
	fmt.Fprintf(out, "Duration:   %s\n", s.Duration)
	if run.ErrorMessage != "" {
		fmt.Fprintf(out, "Error:      [%s] %s\n", paint(color.FgCyan, enabled, run.ErrorCategory), run.ErrorMessage)
	}

	fmt.Fprintln(out)
	if len(files) == 0 {
		fmt.Fprintln(out, "No files recorded for this run.")
		return
	}

	rows := make([]tableRow, 0, len(files))
	for _, f := range files {
		size := "-"
		if f.Size != nil {
			size = FormatSize(*f.Size)
		}
		path := f.Path
		if f.Error != "" {
			path += ": " + truncate(f.Error, 80)
		}
		rows = append(rows, tableRow{cells: []string{f.Kind, size, path}, attr: kindColor(f.Kind)})
	}
	writeTable(out, enabled, 0, []string{"KIND", "SIZE", "PATH"}, rows)
}

func statusColor(status string) color.Attribute {
	if status == models.StatusSuccess {
		return color.FgGreen
	}
	return color.FgRed
}

func kindColor(kind string) color.Attribute {
	switch kind {
	case history.KindText:
		return color.FgGreen
	case history.KindBinary:
		return color.FgYellow
	default:
		return color.FgRed
	}
}

func shortID(id string) string {
	r := []rune(id)
	if len(r) <= shortIDLen {
		return id
	}
	return string(r[:shortIDLen])
}

// truncate flattens s to one line of at most n runes.
func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
