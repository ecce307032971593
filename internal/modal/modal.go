// Package modal is the blocking "processing" dialog shown while the server
// parses documents or builds a workbook. Once shown it stays up: the page
// navigation that follows is what takes it down.
package modal

import (
	"log/slog"
	"sync"

	"github.com/salmonumbrella/xmlsel/internal/ui"
)

const (
	// ParsingMessage is shown when a source file is submitted for parsing.
	ParsingMessage = "Parsing Xml documents. This might take a while..."
	// ExportMessage is shown when an export request is sent.
	ExportMessage = "Creating Excel file. This might take a while..."

	// BackdropStatic keeps the dialog open when the backdrop is clicked.
	BackdropStatic = "static"
)

// Notifier shows a processing message.
type Notifier interface {
	Show(message string)
}

// Modal is the dialog state. It cannot be dismissed with the keyboard or by
// clicking outside it.
type Modal struct {
	Visible  bool   `json:"visible"`
	Message  string `json:"message"`
	Keyboard bool   `json:"keyboard"`
	Backdrop string `json:"backdrop"`
}

// Terminal renders the dialog as a panel on the UI and remembers its state.
type Terminal struct {
	UI    *ui.UI
	Title string

	mu    sync.Mutex
	state Modal
	shown []string
}

// NewTerminal creates a terminal notifier drawing on u.
func NewTerminal(u *ui.UI) *Terminal {
	return &Terminal{UI: u, Title: "Processing"}
}

// Show implements Notifier. Showing again replaces the message.
func (t *Terminal) Show(message string) {
	t.mu.Lock()
	t.state = Modal{
		Visible:  true,
		Message:  message,
		Keyboard: false,
		Backdrop: BackdropStatic,
	}
	t.shown = append(t.shown, message)
	t.mu.Unlock()

	slog.Debug("modal shown", "message", message)
	if t.UI != nil {
		t.UI.Panel(t.Title, message)
	}
}

// State returns the current dialog state.
func (t *Terminal) State() Modal {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Shown returns every message shown so far.
func (t *Terminal) Shown() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.shown))
	copy(out, t.shown)
	return out
}

// ShowIfSourceFileProvided shows message only when the source file field is
// not empty, and reports whether it did.
func ShowIfSourceFileProvided(n Notifier, message, value string) bool {
	if value == "" {
		return false
	}
	n.Show(message)
	return true
}

// Discard is a Notifier that shows nothing.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Show(string) {}
