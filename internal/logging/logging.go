// Package logging configures the process-wide slog logger and the console
// logger the page handlers report to.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format selects the handler used for log output.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat maps a flag value to a Format. Unknown values fall back to text.
func ParseFormat(s string) Format {
	if Format(strings.ToLower(strings.TrimSpace(s))) == FormatJSON {
		return FormatJSON
	}
	return FormatText
}

// Setup configures the global slog logger.
// If debug is true, sets level to Debug; otherwise Info.
// Output goes to the provided writer (defaults to os.Stderr if nil).
func Setup(debug bool, w io.Writer, format Format) {
	slog.SetDefault(New(debug, w, format))
}

// New builds a logger without installing it as the default.
func New(debug bool, w io.Writer, format Format) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch format {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Console returns the logger that stands in for the browser console.
// Request results and request failures are written here and nowhere else.
func Console() *slog.Logger {
	return slog.Default().With("component", "console")
}
