package output

import (
	"fmt"
	"strings"

	"github.com/itchyny/gojq"
)

// runQuery normalizes data to map/slice form, runs a gojq query over it and
// returns every emitted value.
func runQuery(query string, data interface{}) ([]interface{}, error) {
	normalized, err := normalizeToInterface(data)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}

	parsed, err := gojq.Parse(query)
	if err != nil {
		return nil, formatInvalidQueryErr(err)
	}

	code, err := gojq.Compile(parsed)
	if err != nil {
		return nil, formatInvalidQueryErr(err)
	}

	var results []interface{}
	iter := code.Run(normalized)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if queryErr, isErr := v.(error); isErr {
			return nil, fmt.Errorf("query error: %w", queryErr)
		}
		results = append(results, v)
	}
	return results, nil
}

// ValidateQuery reports whether query parses and compiles.
func ValidateQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	parsed, err := gojq.Parse(query)
	if err != nil {
		return formatInvalidQueryErr(err)
	}
	if _, err := gojq.Compile(parsed); err != nil {
		return formatInvalidQueryErr(err)
	}
	return nil
}

func formatInvalidQueryErr(err error) error {
	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	if strings.Contains(msg, "unexpected eof") {
		return fmt.Errorf("invalid --query: %w\nHint: query looks incomplete; quote it fully", err)
	}
	return fmt.Errorf("invalid --query: %w", err)
}
