package ui

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/muesli/termenv"
)

func TestNew_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	for _, mode := range []ColorMode{ColorAuto, ColorAlways, ColorNever} {
		u := NewWithWriter(mode, &bytes.Buffer{})
		if u.color != ColorNever {
			t.Errorf("mode %v with NO_COLOR: color = %v, want ColorNever", mode, u.color)
		}
		if u.out.Profile != termenv.Ascii {
			t.Errorf("mode %v with NO_COLOR: profile = %v, want Ascii", mode, u.out.Profile)
		}
	}
}

func TestNew_AutoOnBufferIsPlain(t *testing.T) {
	t.Setenv("NO_COLOR", "")

	u := NewWithWriter(ColorAuto, &bytes.Buffer{})
	if u.out.Profile != termenv.Ascii {
		t.Errorf("profile = %v, want Ascii for a non-terminal writer", u.out.Profile)
	}
}

func TestNew_AlwaysHasColor(t *testing.T) {
	t.Setenv("NO_COLOR", "")

	u := NewWithWriter(ColorAlways, &bytes.Buffer{})
	if u.out.Profile == termenv.Ascii {
		t.Error("ColorAlways should never use the Ascii profile")
	}
}

func TestParseColorMode(t *testing.T) {
	tests := []struct {
		in      string
		want    ColorMode
		wantErr bool
	}{
		{"", ColorAuto, false},
		{"auto", ColorAuto, false},
		{"Always", ColorAlways, false},
		{" never ", ColorNever, false},
		{"sometimes", ColorAuto, true},
	}
	for _, tt := range tests {
		got, err := ParseColorMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseColorMode(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColorMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestContextIntegration(t *testing.T) {
	u := New(ColorNever)
	ctx := WithUI(context.Background(), u)

	if FromContext(ctx) != u {
		t.Error("FromContext() did not return the same UI instance")
	}
	if FromContext(context.Background()) == nil {
		t.Error("FromContext() returned nil for context without UI")
	}
}

func TestOutputMethods(t *testing.T) {
	tests := []struct {
		name     string
		fn       func(*UI, string, ...any)
		input    string
		expected string
	}{
		{name: "Success", fn: (*UI).Success, input: "workbook created", expected: "✓ workbook created"},
		{name: "Warning", fn: (*UI).Warning, input: "nothing selected", expected: "⚠ nothing selected"},
		{name: "Error", fn: (*UI).Error, input: "request failed", expected: "✗ request failed"},
		{name: "Info", fn: (*UI).Info, input: "navigating", expected: "ℹ navigating"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			u := NewWithWriter(ColorNever, &buf)

			tt.fn(u, tt.input)

			output := strings.TrimSpace(buf.String())
			if !strings.Contains(output, tt.expected) {
				t.Errorf("%s output = %q, want to contain %q", tt.name, output, tt.expected)
			}
		})
	}
}

func TestOutputMethodsWithFormatting(t *testing.T) {
	var buf bytes.Buffer
	u := NewWithWriter(ColorNever, &buf)

	u.Success("selected %d of %d rows", 2, 4)

	if !strings.Contains(buf.String(), "✓ selected 2 of 4 rows") {
		t.Errorf("Success with formatting = %q", buf.String())
	}
}

func TestPanel(t *testing.T) {
	var buf bytes.Buffer
	u := NewWithWriter(ColorNever, &buf)

	u.Panel("Processing", "Creating Excel file. This might take a while...")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d:\n%s", len(lines), buf.String())
	}
	width := len(lines[0])
	for i, l := range lines {
		if len(l) != width {
			t.Errorf("line %d has width %d, want %d: %q", i, len(l), width, l)
		}
	}
	if !strings.Contains(lines[3], "Creating Excel file. This might take a while...") {
		t.Errorf("body line = %q", lines[3])
	}
}

func TestPanel_NoTitle(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter(ColorNever, &buf).Panel("", "hi")

	if got := strings.Count(buf.String(), "\n"); got != 3 {
		t.Errorf("expected 3 lines, got %d", got)
	}
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	u := NewWithWriter(ColorNever, &buf)
	if u.Writer() != &buf {
		t.Error("Writer() did not return the configured writer")
	}
}
