package cmdutil

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

var stdin io.Reader = os.Stdin

// ReadInputSource reads input from a file path or stdin when path is "-".
func ReadInputSource(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("input file path is required")
	}
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file %q: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// ReadClicks reads a clicks file. Clicks are separated by whitespace and a
// "#" starts a comment that runs to the end of the line.
func ReadClicks(path string) ([]string, error) {
	content, err := ReadInputSource(path)
	if err != nil {
		return nil, err
	}
	return splitClicks(content), nil
}

func splitClicks(content string) []string {
	var out []string
	sc := bufio.NewScanner(strings.NewReader(content))
	for sc.Scan() {
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		out = append(out, strings.Fields(line)...)
	}
	return out
}

// ResolveClicks appends the clicks read from file, if any, to args.
func ResolveClicks(args []string, file string) ([]string, error) {
	if strings.TrimSpace(file) == "" {
		return args, nil
	}
	fromFile, err := ReadClicks(file)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(args)+len(fromFile))
	out = append(out, args...)
	return append(out, fromFile...), nil
}
