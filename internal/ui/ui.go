// Package ui writes colored status lines and the processing panel to stderr.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// ColorMode determines when to use colored output.
type ColorMode int

const (
	// ColorAuto automatically detects whether to use colors based on terminal capabilities.
	ColorAuto ColorMode = iota
	// ColorAlways forces colored output regardless of terminal capabilities.
	ColorAlways
	// ColorNever disables all colored output.
	ColorNever
)

// ParseColorMode maps "auto", "always" and "never" to a ColorMode.
func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	default:
		return ColorAuto, fmt.Errorf("invalid color mode %q (expected auto, always or never)", s)
	}
}

type contextKey string

const uiContextKey contextKey = "ui"

// UI provides methods for formatted terminal output with color support.
type UI struct {
	out   *termenv.Output
	w     io.Writer
	color ColorMode
}

// New creates a UI writing to stderr.
func New(mode ColorMode) *UI {
	return NewWithWriter(mode, os.Stderr)
}

// NewWithWriter creates a UI writing to w. NO_COLOR disables color, and in
// auto mode a writer that is not a terminal gets plain text.
func NewWithWriter(mode ColorMode, w io.Writer) *UI {
	if os.Getenv("NO_COLOR") != "" {
		mode = ColorNever
	}

	profile := termenv.Ascii
	switch mode {
	case ColorAlways:
		profile = termenv.ColorProfile()
		if profile == termenv.Ascii {
			profile = termenv.ANSI256
		}
	case ColorAuto:
		if IsTerminal(w) {
			profile = termenv.ColorProfile()
		}
	}

	return &UI{
		out:   termenv.NewOutput(w, termenv.WithProfile(profile)),
		w:     w,
		color: mode,
	}
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// WithUI returns a new context with the UI instance attached.
func WithUI(ctx context.Context, ui *UI) context.Context {
	return context.WithValue(ctx, uiContextKey, ui)
}

// FromContext retrieves the UI instance from the context.
// If no UI is found, it returns a default UI with ColorAuto mode.
func FromContext(ctx context.Context) *UI {
	if ui, ok := ctx.Value(uiContextKey).(*UI); ok {
		return ui
	}
	return New(ColorAuto)
}

// Success prints a success message in green.
func (u *UI) Success(format string, args ...any) {
	u.line("✓ ", termenv.ANSIGreen, format, args...)
}

// Warning prints a warning message in yellow.
func (u *UI) Warning(format string, args ...any) {
	u.line("⚠ ", termenv.ANSIYellow, format, args...)
}

// Error prints an error message in red.
func (u *UI) Error(format string, args ...any) {
	u.line("✗ ", termenv.ANSIRed, format, args...)
}

// Info prints an informational message in blue.
func (u *UI) Info(format string, args ...any) {
	u.line("ℹ ", termenv.ANSIBlue, format, args...)
}

func (u *UI) line(prefix string, color termenv.ANSIColor, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintln(u.out, u.out.String(prefix+msg).Foreground(color))
}

// Panel draws a bold boxed message, the terminal stand-in for a blocking dialog.
func (u *UI) Panel(title, body string) {
	width := len([]rune(body))
	if n := len([]rune(title)); n > width {
		width = n
	}
	border := "+" + strings.Repeat("-", width+2) + "+"
	pad := func(s string) string {
		return "| " + s + strings.Repeat(" ", width-len([]rune(s))) + " |"
	}

	lines := []string{border}
	if title != "" {
		lines = append(lines, pad(title), border)
	}
	lines = append(lines, pad(body), border)

	for _, l := range lines {
		_, _ = fmt.Fprintln(u.out, u.out.String(l).Bold())
	}
}

// Writer returns the underlying writer for the UI.
func (u *UI) Writer() io.Writer {
	return u.w
}
