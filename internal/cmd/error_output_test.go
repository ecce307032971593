package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/salmonumbrella/xmlsel/internal/ajax"
	clierrors "github.com/salmonumbrella/xmlsel/internal/errors"
	"github.com/salmonumbrella/xmlsel/internal/output"
)

func envelope(t *testing.T, err error) map[string]interface{} {
	t.Helper()
	payload, ok := buildErrorEnvelope(err)["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error map")
	}
	return payload
}

func TestBuildErrorEnvelope_UserError(t *testing.T) {
	payload := envelope(t, clierrors.NewUserError("invalid click", "Write clicks as table:row"))

	if payload["category"] != "user" {
		t.Errorf("category = %v, want user", payload["category"])
	}
	if payload["suggestion"] != "Write clicks as table:row" {
		t.Errorf("suggestion = %v", payload["suggestion"])
	}
	if payload["exit_code"] != ExitUser {
		t.Errorf("exit_code = %v", payload["exit_code"])
	}
}

func TestBuildErrorEnvelope_ValidationError(t *testing.T) {
	payload := envelope(t, &clierrors.ValidationError{Field: "row", Message: "negative"})

	if payload["category"] != "user" || payload["type"] != "validation" || payload["field"] != "row" {
		t.Errorf("payload = %v", payload)
	}
}

func TestBuildErrorEnvelope_RequestFailure(t *testing.T) {
	fail := &ajax.Failure{
		Kind:       ajax.KindStatus,
		Method:     "POST",
		URL:        "http://localhost:5000/xmlparser/createexcel",
		StatusCode: 500,
		Err:        errors.New("internal error"),
	}
	payload := envelope(t, fail)

	if payload["type"] != "request" || payload["kind"] != "status" {
		t.Errorf("payload = %v", payload)
	}
	if payload["status"] != 500 || payload["method"] != "POST" {
		t.Errorf("payload = %v", payload)
	}
	if payload["category"] != "system" {
		t.Errorf("category = %v", payload["category"])
	}
}

func TestBuildErrorEnvelope_PageError(t *testing.T) {
	err := clierrors.TableNotFoundError("/xmlparser/main", "nope", []string{"tbl_0"}, nil)
	payload := envelope(t, err)
	if payload["type"] != "page" || payload["element"] != `table "nope"` || payload["path"] != "/xmlparser/main" {
		t.Errorf("payload = %v", payload)
	}
	if payload["category"] != "user" || payload["exit_code"] != ExitNotFound {
		t.Errorf("payload = %v", payload)
	}
}

func TestSuggestionFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"user hint wins", clierrors.WrapUserError(&ajax.Failure{Kind: ajax.KindTransport}, "load", "custom"), "custom"},
		{"transport", &ajax.Failure{Kind: ajax.KindTransport}, "xmlsel serve"},
		{"not found", &ajax.Failure{Kind: ajax.KindStatus, StatusCode: 404}, "export_path"},
		{"decode", &ajax.Failure{Kind: ajax.KindDecode}, "--debug"},
		{"server error", &ajax.Failure{Kind: ajax.KindStatus, StatusCode: 500}, ""},
		{"plain", errors.New("boom"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := suggestionFor(tt.err)
			if tt.want == "" {
				if got != "" {
					t.Errorf("suggestionFor() = %q, want none", got)
				}
				return
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("suggestionFor() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrintCommandError_Formats(t *testing.T) {
	err := clierrors.NewUserError("invalid click", "Write clicks as table:row")

	tests := []struct {
		name        string
		errorFormat string
		format      output.Format
		want        string
	}{
		{"text", "text", output.FormatJSON, "invalid click\nHint: Write clicks as table:row\n"},
		{"auto json", "auto", output.FormatJSON, `"category":"user"`},
		{"auto yaml", "", output.FormatYAML, "category: user"},
		{"explicit yaml", "yaml", output.FormatText, "suggestion: Write clicks as table:row"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			ctx := withIO(context.Background(), &bytes.Buffer{}, &stderr)
			ctx = output.WithFormat(ctx, tt.format)
			ctx = WithErrorFormat(ctx, tt.errorFormat)

			printCommandError(ctx, err)
			if !strings.Contains(stderr.String(), tt.want) {
				t.Errorf("stderr = %q, want %q", stderr.String(), tt.want)
			}
		})
	}
}
