package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/salmonumbrella/xmlsel/internal/server"
)

var fixedNow = time.Date(2024, 3, 7, 9, 5, 1, 0, time.UTC)

// isolateHome points the config file at a fresh directory and clears the
// environment overrides.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XMLSEL_BASE_URL", "")
	t.Setenv("XMLSEL_OUTPUT", "")
	t.Setenv("NO_COLOR", "1")
	return home
}

// writeConfig writes config.yaml under the isolated home.
func writeConfig(t *testing.T, home, content string) {
	t.Helper()
	dir := filepath.Join(home, ".config", "xmlsel")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func newTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	dir := t.TempDir()
	srv, err := server.New(server.Config{
		ResultsDir: dir,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:        func() time.Time { return fixedNow },
	})
	if err != nil {
		t.Fatalf("server.New: %v", err)
	}
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts, dir
}

// runCLI executes the CLI with buffered stdout and stderr.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return runCLIContext(context.Background(), t, args...)
}

func runCLIContext(ctx context.Context, t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errBuf bytes.Buffer
	app := &App{Stdout: &out, Stderr: &errBuf, Version: "test", Commit: "abc", BuildTime: "now"}
	err := app.Execute(ctx, args)
	// Later tests must not log into this test's buffers.
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return out.String(), errBuf.String(), err
}

func decodeJSON[T any](t *testing.T, s string) T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("decode %q: %v", s, err)
	}
	return v
}
