package output

import "context"

type (
	formatKey      struct{}
	queryKey       struct{}
	fieldsKey      struct{}
	jsonPathKey    struct{}
	compactJSONKey struct{}
	quietKey       struct{}
)

// WithFormat returns a new context with the output format attached.
func WithFormat(ctx context.Context, format Format) context.Context {
	return context.WithValue(ctx, formatKey{}, format)
}

// FormatFromContext retrieves the output format from the context.
// If no format is set in the context, it returns FormatText as the default.
func FormatFromContext(ctx context.Context) Format {
	if v, ok := ctx.Value(formatKey{}).(Format); ok {
		return v
	}
	return FormatText
}

// WithQuery adds a jq query string to context.
func WithQuery(ctx context.Context, query string) context.Context {
	return context.WithValue(ctx, queryKey{}, query)
}

// QueryFromContext retrieves the jq query from context.
func QueryFromContext(ctx context.Context) string {
	if q, ok := ctx.Value(queryKey{}).(string); ok {
		return q
	}
	return ""
}

// WithFields sets the --fields projection in context.
func WithFields(ctx context.Context, fields string) context.Context {
	return context.WithValue(ctx, fieldsKey{}, fields)
}

// FieldsFromContext returns the --fields projection.
func FieldsFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(fieldsKey{}).(string); ok {
		return v
	}
	return ""
}

// WithJSONPath sets the --jsonpath expression in context.
func WithJSONPath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, jsonPathKey{}, path)
}

// JSONPathFromContext returns the --jsonpath expression.
func JSONPathFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(jsonPathKey{}).(string); ok {
		return v
	}
	return ""
}

// WithCompactJSON sets single-line JSON output in context.
func WithCompactJSON(ctx context.Context, compact bool) context.Context {
	return context.WithValue(ctx, compactJSONKey{}, compact)
}

// CompactJSONFromContext reports whether JSON output should be single-line.
func CompactJSONFromContext(ctx context.Context) bool {
	if v, ok := ctx.Value(compactJSONKey{}).(bool); ok {
		return v
	}
	return false
}

// WithQuiet sets the --quiet flag in context.
func WithQuiet(ctx context.Context, quiet bool) context.Context {
	return context.WithValue(ctx, quietKey{}, quiet)
}

// QuietFromContext reports whether non-essential output is suppressed.
func QuietFromContext(ctx context.Context) bool {
	if v, ok := ctx.Value(quietKey{}).(bool); ok {
		return v
	}
	return false
}
