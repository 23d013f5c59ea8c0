package display

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
)

// ProgressIndicator prints one "[N/Total] file" line per processed file.
type ProgressIndicator struct {
	writer     io.Writer
	totalFiles int
	current    int
}

// NewProgressIndicator creates a new progress indicator. A nil writer disables output.
func NewProgressIndicator(w io.Writer, total int) *ProgressIndicator {
	return &ProgressIndicator{
		writer:     w,
		totalFiles: total,
	}
}

// Start prints the header line.
func (p *ProgressIndicator) Start(label string) {
	if p == nil || p.writer == nil {
		return
	}
	fmt.Fprintf(p.writer, "%s (%d files):\n", label, p.totalFiles)
}

// Step advances the counter and prints the file's base name in cyan.
func (p *ProgressIndicator) Step(filename string) {
	if p == nil {
		return
	}
	p.current++
	if p.writer == nil {
		return
	}
	color.New(color.FgCyan).Fprintf(p.writer, "  [%d/%d] %s\n", p.current, p.totalFiles, filepath.Base(filename))
}

// Current returns how many steps have been taken.
func (p *ProgressIndicator) Current() int {
	if p == nil {
		return 0
	}
	return p.current
}

// Complete prints the closing summary in green.
func (p *ProgressIndicator) Complete(summary string) {
	if p == nil || p.writer == nil {
		return
	}
	color.New(color.FgGreen).Fprintf(p.writer, "✓ %s\n", summary)
}
