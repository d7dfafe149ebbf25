package console

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

const ansiReset = "\033[0m"

var ansiStyles = map[Severity]string{
	SeverityTitle:   "\033[95m\033[1m",
	SeverityHeading: "\033[95m",
	SeverityOK:      "\033[92m",
	SeverityWarning: "\033[93m",
	SeverityFail:    "\033[91m",
}

// Styler turns classified lines into text, with ANSI colors when enabled.
type Styler struct {
	Color bool
}

// NewStyler enables colors when w is a terminal.
func NewStyler(w io.Writer) Styler {
	f, ok := w.(*os.File)
	if !ok {
		return Styler{}
	}
	return Styler{Color: isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())}
}

// Format returns the display string for l.
func (s Styler) Format(l Line) string {
	if !s.Color {
		return l.Text
	}
	code, ok := ansiStyles[l.Severity]
	if !ok {
		return l.Text
	}
	return code + l.Text + ansiReset
}
