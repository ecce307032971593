package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/salmonumbrella/xmlsel/internal/ajax"
	clierrors "github.com/salmonumbrella/xmlsel/internal/errors"
	"github.com/salmonumbrella/xmlsel/internal/output"
)

func validateErrorFormat(format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "auto", "text", "json", "yaml":
		return nil
	default:
		return clierrors.NewUserError(
			fmt.Sprintf("invalid --error-format %q", format),
			"Use one of: auto, text, json, yaml",
		)
	}
}

func effectiveErrorFormat(ctx context.Context) string {
	format := strings.ToLower(strings.TrimSpace(ErrorFormatFromContext(ctx)))
	if format == "" || format == "auto" {
		switch output.FormatFromContext(ctx) {
		case output.FormatJSON:
			return "json"
		case output.FormatYAML:
			return "yaml"
		default:
			return "text"
		}
	}
	return format
}

func printCommandError(ctx context.Context, err error) {
	if err == nil {
		return
	}

	switch effectiveErrorFormat(ctx) {
	case "json":
		enc := json.NewEncoder(stderrFromContext(ctx))
		enc.SetEscapeHTML(false)
		_ = enc.Encode(buildErrorEnvelope(err))
		return
	case "yaml":
		enc := yaml.NewEncoder(stderrFromContext(ctx))
		enc.SetIndent(2)
		_ = enc.Encode(buildErrorEnvelope(err))
		_ = enc.Close()
		return
	}

	_, _ = fmt.Fprintln(stderrFromContext(ctx), err)
	if suggestion := suggestionFor(err); suggestion != "" {
		_, _ = fmt.Fprintf(stderrFromContext(ctx), "Hint: %s\n", suggestion)
	}
}

// suggestionFor returns the hint printed under an error. Request failures
// get a hint by kind when nothing more specific is attached.
func suggestionFor(err error) string {
	if s := clierrors.UserSuggestion(err); s != "" {
		return s
	}
	var fail *ajax.Failure
	if !errors.As(err, &fail) {
		return ""
	}
	switch {
	case fail.Kind == ajax.KindTransport:
		return "Is the server running? Start one with 'xmlsel serve' or pass --base-url"
	case fail.Kind == ajax.KindStatus && fail.StatusCode == http.StatusNotFound:
		return "Check export_path and redirect_path with 'xmlsel config show'"
	case fail.Kind == ajax.KindDecode:
		return "The server answered with something other than JSON; run with --debug to see the body"
	}
	return ""
}

func errorCategory(err error) string {
	if clierrors.IsUserError(err) || clierrors.IsValidationError(err) || clierrors.IsPageError(err) {
		return "user"
	}
	return "system"
}

func buildErrorEnvelope(err error) map[string]interface{} {
	errMap := map[string]interface{}{
		"message":   err.Error(),
		"category":  errorCategory(err),
		"exit_code": ExitCode(err),
	}
	if suggestion := suggestionFor(err); suggestion != "" {
		errMap["suggestion"] = suggestion
	}

	var (
		fail          *ajax.Failure
		pageErr       *clierrors.PageError
		validationErr *clierrors.ValidationError
	)
	switch {
	case errors.As(err, &fail):
		errMap["type"] = "request"
		errMap["kind"] = string(fail.Kind)
		errMap["method"] = fail.Method
		errMap["url"] = fail.URL
		if fail.StatusCode > 0 {
			errMap["status"] = fail.StatusCode
		}
	case errors.As(err, &pageErr):
		errMap["type"] = "page"
		errMap["element"] = pageErr.Element
		if pageErr.Path != "" {
			errMap["path"] = pageErr.Path
		}
	case errors.As(err, &validationErr):
		errMap["type"] = "validation"
		errMap["field"] = validationErr.Field
	}

	return map[string]interface{}{"error": errMap}
}
