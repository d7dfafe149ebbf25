package utils

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// NewLogger builds the process logger. Logs go to w (stderr in practice) so
// they never interleave with console output on stdout.
func NewLogger(cfg LogConfig, w io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	out := w
	if strings.EqualFold(cfg.Format, "console") && isTerminal(w) {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Logger()
}

// ParseLevel maps a config level name onto zerolog. Empty or unknown names
// fall back to warn; "off" and "none" are accepted for disabled.
func ParseLevel(raw string) zerolog.Level {
	name := strings.ToLower(strings.TrimSpace(raw))
	switch name {
	case "":
		return zerolog.WarnLevel
	case "off", "none":
		return zerolog.Disabled
	}

	level, err := zerolog.ParseLevel(name)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.WarnLevel
	}
	return level
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
