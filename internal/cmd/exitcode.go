package cmd

import (
	"context"
	"errors"
	"net/http"

	"github.com/salmonumbrella/xmlsel/internal/ajax"
	clierrors "github.com/salmonumbrella/xmlsel/internal/errors"
)

const (
	ExitOK       = 0
	ExitSystem   = 1
	ExitUser     = 2
	ExitNotFound = 4
	ExitTemp     = 6
	ExitCanceled = 130
)

// ExitCode maps a command error to a stable process exit code for automation.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if errors.Is(err, context.Canceled) {
		return ExitCanceled
	}

	var fail *ajax.Failure
	if errors.As(err, &fail) {
		switch fail.Kind {
		case ajax.KindCanceled:
			return ExitCanceled
		case ajax.KindTransport:
			return ExitTemp
		case ajax.KindEncode:
			return ExitUser
		case ajax.KindStatus:
			if fail.StatusCode == http.StatusNotFound {
				return ExitNotFound
			}
			if fail.StatusCode >= 400 && fail.StatusCode < 500 {
				return ExitUser
			}
		}
		return ExitSystem
	}

	if clierrors.IsPageError(err) {
		return ExitNotFound
	}
	if clierrors.IsValidationError(err) || clierrors.IsUserError(err) {
		return ExitUser
	}
	return ExitSystem
}
