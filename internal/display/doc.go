// Package display renders operator-facing output for the trialsift commands:
// numbered step headings, warning blocks and file progress lines.
//
// Colours go through fatih/color, so they disappear automatically when the
// output is not a terminal or NO_COLOR is set.
package display
