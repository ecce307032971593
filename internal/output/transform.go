package output

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"

	clierrors "github.com/salmonumbrella/xmlsel/internal/errors"
)

// field is one --fields entry: the output key and the path it reads.
type field struct {
	name string
	path fieldPath
}

// fieldPath is a parsed "a.b[0].*.c" path. A "*" step maps the rest of the
// path over every element of a list.
type fieldPath []step

type step struct {
	key     string
	index   int
	isIndex bool
	all     bool
}

const fieldsExample = "Example: --fields id,selected,first=attributes[0]"

// ValidateFields validates --fields syntax.
func ValidateFields(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	_, err := parseFields(raw)
	return err
}

func applyOutputTransforms(ctx context.Context, data interface{}) (interface{}, error) {
	var err error
	if raw := strings.TrimSpace(FieldsFromContext(ctx)); raw != "" {
		if data, err = projectFields(data, raw); err != nil {
			return nil, err
		}
	}
	if raw := strings.TrimSpace(JSONPathFromContext(ctx)); raw != "" {
		if data, err = applyJSONPath(data, raw); err != nil {
			return nil, err
		}
	}
	return data, nil
}

func projectFields(data interface{}, raw string) (interface{}, error) {
	fields, err := parseFields(raw)
	if err != nil {
		return nil, clierrors.WrapUserError(err, "invalid --fields value", fieldsExample)
	}
	normalized, err := normalizeToInterface(data)
	if err != nil {
		return nil, err
	}

	if list, ok := normalized.([]interface{}); ok {
		out := make([]interface{}, 0, len(list))
		for _, item := range list {
			out = append(out, project(item, fields))
		}
		return out, nil
	}
	return project(normalized, fields), nil
}

func project(item interface{}, fields []field) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		out[f.name] = f.path.lookup(item)
	}
	return out
}

func parseFields(raw string) ([]field, error) {
	var fields []field
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, path := part, part
		if k, v, ok := strings.Cut(part, "="); ok {
			name, path = strings.TrimSpace(k), strings.TrimSpace(v)
		}
		if name == "" || path == "" {
			return nil, fmt.Errorf("invalid field spec %q", part)
		}
		p, err := parseFieldPath(path)
		if err != nil {
			return nil, fmt.Errorf("invalid field path %q: %w", path, err)
		}
		fields = append(fields, field{name: name, path: p})
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("no fields provided")
	}
	return fields, nil
}

func parseFieldPath(s string) (fieldPath, error) {
	var p fieldPath
	for rest := s; rest != ""; {
		switch rest[0] {
		case '.':
			rest = rest[1:]
		case '[':
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return nil, fmt.Errorf("missing closing ]")
			}
			inner := strings.TrimSpace(rest[1:end])
			if inner == "*" {
				p = append(p, step{all: true})
			} else {
				idx, err := strconv.Atoi(inner)
				if err != nil {
					return nil, fmt.Errorf("invalid index %q", inner)
				}
				p = append(p, step{index: idx, isIndex: true})
			}
			rest = rest[end+1:]
		default:
			end := strings.IndexAny(rest, ".[")
			if end < 0 {
				end = len(rest)
			}
			p = append(p, keyStep(strings.TrimSpace(rest[:end])))
			rest = rest[end:]
		}
	}
	if len(p) == 0 {
		return nil, fmt.Errorf("empty path")
	}
	return p, nil
}

func keyStep(key string) step {
	if key == "*" {
		return step{all: true}
	}
	if idx, err := strconv.Atoi(key); err == nil {
		return step{index: idx, isIndex: true}
	}
	return step{key: key}
}

// lookup returns the value at p, or nil when any step is missing.
func (p fieldPath) lookup(v interface{}) interface{} {
	for i, s := range p {
		switch {
		case s.all:
			list, ok := v.([]interface{})
			if !ok {
				return nil
			}
			out := make([]interface{}, 0, len(list))
			for _, item := range list {
				out = append(out, p[i+1:].lookup(item))
			}
			return out
		case s.isIndex:
			list, ok := v.([]interface{})
			if !ok || s.index < 0 || s.index >= len(list) {
				return nil
			}
			v = list[s.index]
		default:
			m, ok := v.(map[string]interface{})
			if !ok {
				return nil
			}
			if v, ok = m[s.key]; !ok {
				return nil
			}
		}
	}
	return v
}

// normalizeToInterface converts typed results into the generic maps and
// slices the filters walk.
func normalizeToInterface(data interface{}) (interface{}, error) {
	switch data.(type) {
	case map[string]interface{}, []interface{}:
		return data, nil
	}
	buf, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode data: %w", err)
	}
	var out interface{}
	if err := json.Unmarshal(buf, &out); err != nil {
		return nil, fmt.Errorf("failed to decode data: %w", err)
	}
	return out, nil
}

const jsonPathExample = "Example: --jsonpath '$[0].attributes'"

func applyJSONPath(data interface{}, raw string) (interface{}, error) {
	expr := normalizeJSONPath(raw)
	if expr == "" {
		return nil, clierrors.NewUserError("invalid --jsonpath value", jsonPathExample)
	}
	normalized, err := normalizeToInterface(data)
	if err != nil {
		return nil, err
	}
	value, err := jsonpath.Get(expr, normalized)
	if err != nil {
		return nil, clierrors.WrapUserError(err, "invalid --jsonpath value", jsonPathExample)
	}
	return value, nil
}

func normalizeJSONPath(path string) string {
	trimmed := strings.TrimSpace(path)
	switch {
	case trimmed == "":
		return ""
	case strings.HasPrefix(trimmed, "$"), strings.HasPrefix(trimmed, "@"):
		return trimmed
	case strings.HasPrefix(trimmed, "."), strings.HasPrefix(trimmed, "["):
		return "$" + trimmed
	default:
		return "$." + trimmed
	}
}
