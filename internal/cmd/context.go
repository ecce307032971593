package cmd

import (
	"context"
	"io"

	"github.com/salmonumbrella/xmlsel/internal/config"
)

type (
	stdoutKey      struct{}
	stderrKey      struct{}
	errorFormatKey struct{}
	configKey      struct{}
	baseURLKey     struct{}
)

// withIO injects stdout and stderr writers into context.
func withIO(ctx context.Context, stdout, stderr io.Writer) context.Context {
	ctx = context.WithValue(ctx, stdoutKey{}, stdout)
	return context.WithValue(ctx, stderrKey{}, stderr)
}

// WithErrorFormat stores the error format in the context.
func WithErrorFormat(ctx context.Context, format string) context.Context {
	return context.WithValue(ctx, errorFormatKey{}, format)
}

// ErrorFormatFromContext retrieves the error format from context.
func ErrorFormatFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(errorFormatKey{}).(string); ok {
		return v
	}
	return ""
}

// WithConfig stores loaded CLI config in context for downstream helpers.
func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// ConfigFromContext retrieves CLI config from context. It never returns nil.
func ConfigFromContext(ctx context.Context) *config.Config {
	if v, ok := ctx.Value(configKey{}).(*config.Config); ok && v != nil {
		return v
	}
	return &config.Config{}
}

// WithBaseURL stores the resolved server root.
func WithBaseURL(ctx context.Context, baseURL string) context.Context {
	return context.WithValue(ctx, baseURLKey{}, baseURL)
}

// BaseURLFromContext returns the server root, falling back to the config.
func BaseURLFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(baseURLKey{}).(string); ok && v != "" {
		return v
	}
	return ConfigFromContext(ctx).GetBaseURL()
}
