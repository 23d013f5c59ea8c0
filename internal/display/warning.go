package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Warning represents a user-facing warning message
type Warning struct {
	Title      string   // Main warning title
	Message    string   // Detailed explanation (optional)
	Files      []string // Related files (optional)
	Suggestion string   // Action to take (optional)
}

// Display writes the warning in yellow.
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
			b.WriteString(fmt.Sprintf("      %d. %s\n", i+1, file))
		}
	}

	if w.Suggestion != "" {
		b.WriteString("    Suggestion:\n")
		b.WriteString("    ")
		b.WriteString(w.Suggestion)
		b.WriteString("\n")
	}

	color.New(color.FgYellow).Fprint(out, b.String())
}

// MissingSourceWarning is shown when there is nothing to read.
func MissingSourceWarning(dir string) Warning {
	return Warning{
		Title:      fmt.Sprintf("No JSON files found in %s", dir),
		Message:    "The source directory is missing or empty.",
		Suggestion: "Run the extraction step first so the archive is unpacked into the source directory.",
	}
}

// SkippedFilesWarning lists files that contributed no records.
func SkippedFilesWarning(files []string) Warning {
	return Warning{
		Title: fmt.Sprintf("%d file(s) could not be read and were skipped", len(files)),
		Files: files,
	}
}
