// Package validate checks user-supplied settings before they reach the
// network client or the config file.
package validate

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	clierrors "github.com/salmonumbrella/xmlsel/internal/errors"
)

func invalid(field, format string, args ...interface{}) error {
	return &clierrors.ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// NonEmpty validates that a required string field is not empty.
func NonEmpty(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return invalid(field, "cannot be empty")
	}
	return nil
}

// BaseURL validates a server root: http or https, a host, and nothing after
// the path.
func BaseURL(field, raw string) error {
	if err := NonEmpty(field, raw); err != nil {
		return err
	}

	u, err := url.Parse(raw)
	if err != nil {
		return invalid(field, "must be a valid URL, got error: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return invalid(field, "must use http or https, got %q", raw)
	}
	if u.Host == "" {
		return invalid(field, "must have a host, got %q", raw)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return invalid(field, "must not carry a query or fragment, got %q", raw)
	}
	return nil
}

// Path validates a server-relative path such as /xmlparser/main.
func Path(field, value string) error {
	if err := NonEmpty(field, value); err != nil {
		return err
	}
	if !strings.HasPrefix(value, "/") {
		return invalid(field, "must start with /, got %q", value)
	}
	if strings.ContainsAny(value, " \t\n?#") {
		return invalid(field, "must be a plain path, got %q", value)
	}
	return nil
}

// ElementID validates an HTML element id usable in a #id selector.
func ElementID(field, value string) error {
	if err := NonEmpty(field, value); err != nil {
		return err
	}
	if strings.ContainsAny(value, " \t\n#.[]:>+~,") {
		return invalid(field, "must be a bare element id, got %q", value)
	}
	return nil
}

// Duration parses a non-negative duration such as 500ms.
func Duration(field, value string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, invalid(field, "must be a duration such as 500ms, got %q", value)
	}
	if d < 0 {
		return 0, invalid(field, "must not be negative, got %q", value)
	}
	return d, nil
}
