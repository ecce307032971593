package ajax

import (
	"context"
	"errors"
	"fmt"
)

// FailureKind classifies why a request did not produce a usable payload.
type FailureKind string

const (
	// KindEncode means the request body could not be serialized.
	KindEncode FailureKind = "encode"
	// KindTransport means no response was received.
	KindTransport FailureKind = "transport"
	// KindCanceled means the caller's context ended first.
	KindCanceled FailureKind = "canceled"
	// KindStatus means the server answered with a 4xx/5xx status.
	KindStatus FailureKind = "status"
	// KindDecode means the response body was not what the caller asked for.
	KindDecode FailureKind = "decode"
)

// Failure is the typed failure reason carried by a Result.
type Failure struct {
	Kind       FailureKind
	Method     string
	URL        string
	StatusCode int
	Err        error
}

func (f *Failure) Error() string {
	if f.StatusCode > 0 {
		return fmt.Sprintf("%s %s (%d): %s: %v", f.Method, f.URL, f.StatusCode, f.Kind, f.Err)
	}
	return fmt.Sprintf("%s %s: %s: %v", f.Method, f.URL, f.Kind, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

func newFailure(kind FailureKind, method, url string, status int, err error) *Failure {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		kind = KindCanceled
	}
	return &Failure{Kind: kind, Method: method, URL: url, StatusCode: status, Err: err}
}

// Result holds either a parsed payload or the reason there is none.
type Result[T any] struct {
	Value T
	Fail  *Failure
}

// OK reports whether the request succeeded.
func (r Result[T]) OK() bool {
	return r.Fail == nil
}

// Err returns the failure as an error, or nil on success.
func (r Result[T]) Err() error {
	if r.Fail == nil {
		return nil
	}
	return r.Fail
}

func ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

func failed[T any](f *Failure) Result[T] {
	return Result[T]{Fail: f}
}
