package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/harrison/filefuser/internal/models"
)

// Warning represents a user-facing warning message
type Warning struct {
	Title      string   // Main warning title
	Message    string   // Detailed explanation (optional)
	Files      []string // Related files (optional)
	Suggestion string   // Action to take (optional)
}

// Display shows a formatted warning, in yellow on terminals
func (w Warning) Display(out io.Writer) {
	var b strings.Builder

	b.WriteString("Warning: ")
	b.WriteString(w.Title)
	b.WriteString("\n")

	if w.Message != "" {
		b.WriteString("    ")
		b.WriteString(w.Message)
		b.WriteString("\n")
	}

	if len(w.Files) > 0 {
		if len(w.Files) == 1 {
			b.WriteString("    Affected file:\n")
		} else {
			b.WriteString("    Affected files:\n")
		}
		for i, file := range w.Files {
			fmt.Fprintf(&b, "      %d. %s\n", i+1, file)
		}
	}

	if w.Suggestion != "" {
		b.WriteString("    Suggestion:\n    ")
		b.WriteString(w.Suggestion)
		b.WriteString("\n")
	}

	fmt.Fprint(out, paint(color.FgYellow, useColor(out), b.String()))
}

// WarnClassificationErrors builds a warning listing every failed record
// as "path: error".
func WarnClassificationErrors(records []models.ClassificationRecord) Warning {
	var files []string
	for _, r := range records {
		if r.Failed() {
			files = append(files, fmt.Sprintf("%s: %s", r.Path, r.Err))
		}
	}
	return Warning{
		Title:      fmt.Sprintf("%d file(s) could not be classified", len(files)),
		Message:    "No archive was written.",
		Files:      files,
		Suggestion: "Fix permissions or narrow the patterns, then re-run.",
	}
}

// WarnUnknownType builds a warning for an unsupported archive type.
// suggestion may be empty.
func WarnUnknownType(fileType, suggestion string, supported []string) Warning {
	w := Warning{
		Title:   fmt.Sprintf("Unknown archive type %q", fileType),
		Message: "Supported types: " + strings.Join(supported, ", "),
	}
	if suggestion != "" {
		w.Suggestion = fmt.Sprintf("Did you mean -t %s?", suggestion)
	}
	return w
}
