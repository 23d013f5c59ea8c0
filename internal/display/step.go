package display

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// shades cycles through greens so consecutive steps are easy to tell apart.
var shades = []*color.Color{
	color.New(color.FgGreen),
	color.New(color.FgHiGreen),
	color.New(color.FgGreen, color.Bold),
	color.New(color.FgHiGreen, color.Bold),
}

// Step prints a numbered pipeline step heading.
func Step(w io.Writer, n int, message string) {
	if n < 0 {
		n = -n
	}
	shades[n%len(shades)].Fprintf(w, "Step %d: %s\n", n, message)
}

// KeyValue prints "key: value" with a green key and cyan value.
func KeyValue(w io.Writer, key string, value interface{}) {
	fmt.Fprintf(w, "%s: %s\n",
		color.New(color.FgGreen).Sprint(key),
		color.New(color.FgCyan).Sprint(value))
}

// Success prints a message in green.
func Success(w io.Writer, message string) {
	color.New(color.FgHiGreen).Fprintln(w, message)
}

// Failure prints a message in red.
func Failure(w io.Writer, message string) {
	color.New(color.FgHiRed).Fprintln(w, message)
}
