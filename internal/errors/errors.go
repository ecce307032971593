// Package errors holds the error types commands report to the user.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError is a config or flag value that failed a check.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s", e.Field, e.Message)
}

// UserError is a failure the user can fix. Suggestion names the fix.
type UserError struct {
	Message    string
	Suggestion string
	Err        error
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a UserError with a message and optional suggestion.
func NewUserError(message, suggestion string) *UserError {
	return &UserError{Message: message, Suggestion: suggestion}
}

// WrapUserError wraps err with a user-facing message and suggestion.
func WrapUserError(err error, message, suggestion string) *UserError {
	return &UserError{Message: message, Suggestion: suggestion, Err: err}
}

// PageError reports that the loaded page lacks an element a command needs:
// a table to click in, or a form field to fill.
type PageError struct {
	Path       string
	Element    string
	Suggestion string
	Err        error
}

func (e *PageError) Error() string {
	msg := fmt.Sprintf("%s not found", e.Element)
	if e.Path != "" {
		msg = fmt.Sprintf("%s not found on %s", e.Element, e.Path)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *PageError) Unwrap() error {
	return e.Err
}

func IsValidationError(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

func IsUserError(err error) bool {
	var e *UserError
	return errors.As(err, &e)
}

func IsPageError(err error) bool {
	var e *PageError
	return errors.As(err, &e)
}

// UserSuggestion returns the suggestion carried by a UserError or PageError.
func UserSuggestion(err error) string {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue.Suggestion
	}
	var pe *PageError
	if errors.As(err, &pe) {
		return pe.Suggestion
	}
	return ""
}

// TableNotFoundError reports a click on a table the page does not render.
// available lists the table ids that do exist.
func TableNotFoundError(path, id string, available []string, err error) error {
	suggestion := "Run 'xmlsel tables' to list the tables on the page"
	if len(available) > 0 {
		suggestion = "Tables on this page:\n" + bulletList(available)
	}
	return &PageError{Path: path, Element: fmt.Sprintf("table %q", id), Suggestion: suggestion, Err: err}
}

// FieldNotFoundError reports a missing form field. key is the config key
// that names the field.
func FieldNotFoundError(path, id, key string) error {
	return &PageError{
		Path:       path,
		Element:    "field #" + id,
		Suggestion: fmt.Sprintf("Set %s to the id of the field (xmlsel config set %s <id>)", key, key),
	}
}

func bulletList(items []string) string {
	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "  • %s\n", item)
	}
	return b.String()
}
