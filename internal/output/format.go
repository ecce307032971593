package output

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// Format represents the output format type.
type Format string

const (
	// FormatText is human-readable key-value format (default).
	FormatText Format = "text"
	// FormatJSON is pretty-printed JSON format.
	FormatJSON Format = "json"
	// FormatTable is tabular format for lists.
	FormatTable Format = "table"
	// FormatYAML is YAML format.
	FormatYAML Format = "yaml"
)

// ParseFormat converts a string to a Format type.
// Empty string defaults to FormatText.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatTable:
		return FormatTable, nil
	case FormatYAML:
		return FormatYAML, nil
	default:
		return "", errors.New("invalid --output format (expected text|json|table|yaml)")
	}
}

// Printer handles output formatting across different formats.
type Printer struct {
	w      io.Writer
	format Format
}

// NewPrinter creates a new Printer that writes to w in the given format.
func NewPrinter(w io.Writer, format Format) *Printer {
	return &Printer{
		w:      w,
		format: format,
	}
}

// Print outputs data in the configured format after applying --fields,
// --jsonpath and --query from ctx, in that order.
func (p *Printer) Print(ctx context.Context, data interface{}) error {
	if data == nil {
		return nil
	}

	data, err := applyOutputTransforms(ctx, data)
	if err != nil {
		return err
	}

	if query := QueryFromContext(ctx); query != "" {
		results, err := runQuery(query, data)
		if err != nil {
			return err
		}
		if p.format == FormatJSON {
			return p.printJSONStream(ctx, results)
		}
		switch len(results) {
		case 0:
			return nil
		case 1:
			data = results[0]
		default:
			data = results
		}
	}

	switch p.format {
	case FormatJSON:
		return p.printJSON(ctx, data)
	case FormatYAML:
		return p.printYAML(data)
	case FormatTable:
		return p.printTable(data)
	case FormatText:
		return p.printText(data)
	default:
		return fmt.Errorf("unsupported format: %s", p.format)
	}
}

func (p *Printer) encoder(ctx context.Context) *json.Encoder {
	enc := json.NewEncoder(p.w)
	enc.SetEscapeHTML(false)
	if !CompactJSONFromContext(ctx) {
		enc.SetIndent("", "  ")
	}
	return enc
}

func (p *Printer) printJSON(ctx context.Context, data interface{}) error {
	return p.encoder(ctx).Encode(data)
}

// printJSONStream writes one JSON document per query result.
func (p *Printer) printJSONStream(ctx context.Context, results []interface{}) error {
	enc := p.encoder(ctx)
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

// printYAML outputs data as YAML.
func (p *Printer) printYAML(data interface{}) error {
	enc := yaml.NewEncoder(p.w)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()
	return enc.Encode(data)
}

// printTable renders a Table, or a list of objects with one column per key.
func (p *Printer) printTable(data interface{}) error {
	if t, ok := asTable(data); ok {
		return p.writeTable(t)
	}
	normalized, err := normalizeToInterface(data)
	if err != nil {
		return err
	}
	if t, ok := tableFromList(normalized); ok {
		return p.writeTable(t)
	}
	return p.printText(data)
}

func (p *Printer) writeTable(t Table) error {
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	if len(t.Headers) > 0 {
		_, _ = fmt.Fprintln(tw, strings.Join(t.Headers, "\t"))
	}
	for _, row := range t.Rows {
		_, _ = fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// printText outputs data as human-readable text: tables for lists of
// objects, sorted key: value lines for objects, the value itself otherwise.
func (p *Printer) printText(data interface{}) error {
	if t, ok := asTable(data); ok {
		return p.writeTable(t)
	}
	if s, ok := data.(string); ok {
		_, err := fmt.Fprintln(p.w, s)
		return err
	}

	normalized, err := normalizeToInterface(data)
	if err != nil {
		return err
	}

	switch v := normalized.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
		for _, k := range keys {
			_, _ = fmt.Fprintf(tw, "%s:\t%s\n", k, formatScalar(v[k]))
		}
		return tw.Flush()
	case []interface{}:
		if t, ok := tableFromList(v); ok {
			return p.writeTable(t)
		}
		for _, item := range v {
			if _, err := fmt.Fprintln(p.w, formatScalar(item)); err != nil {
				return err
			}
		}
		return nil
	default:
		_, err := fmt.Fprintln(p.w, formatScalar(v))
		return err
	}
}

// Table is a pre-rendered table for --output table.
type Table struct {
	Headers []string   `json:"headers" yaml:"headers"`
	Rows    [][]string `json:"rows" yaml:"rows"`
}

func asTable(data interface{}) (Table, bool) {
	switch v := data.(type) {
	case Table:
		return v, true
	case *Table:
		if v != nil {
			return *v, true
		}
	}
	return Table{}, false
}

// tableFromList builds a table from a list whose items are all objects.
// Columns are the union of keys, sorted.
func tableFromList(data interface{}) (Table, bool) {
	list, ok := data.([]interface{})
	if !ok || len(list) == 0 {
		return Table{}, false
	}
	seen := map[string]bool{}
	var headers []string
	for _, item := range list {
		m, ok := item.(map[string]interface{})
		if !ok {
			return Table{}, false
		}
		for k := range m {
			if !seen[k] {
				seen[k] = true
				headers = append(headers, k)
			}
		}
	}
	sort.Strings(headers)

	t := Table{Headers: make([]string, len(headers))}
	for i, h := range headers {
		t.Headers[i] = strings.ToUpper(h)
	}
	for _, item := range list {
		m := item.(map[string]interface{})
		row := make([]string, len(headers))
		for i, h := range headers {
			row[i] = formatScalar(m[h])
		}
		t.Rows = append(t.Rows, row)
	}
	return t, true
}

// formatScalar renders a value on one line; containers become compact JSON.
func formatScalar(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool, float64, int, int64:
		return fmt.Sprintf("%v", x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprintf("%v", x)
		}
		return string(b)
	}
}
