package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	confluence2md "github.com/alnah/go-confluence2md"
	"github.com/alnah/go-confluence2md/internal/config"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Environment, fixtures, mock converter
// ---------------------------------------------------------------------------

const (
	// releaseMarkup converts to releaseMarkdown with default options.
	releaseMarkup   = `<h1>Release notes</h1><p>Shipped <ac:emoticon ac:name="thumbs-up"/></p>`
	releaseMarkdown = "# Release notes\n\nShipped (y)"
)

// releasePageJSON is a v1 REST page document wrapping releaseMarkup.
const releasePageJSON = `{
  "id": "12345",
  "title": "Release notes",
  "space": {"key": "ENG"},
  "version": {"number": 7},
  "body": {"storage": {"value": "<h1>Release notes</h1><p>Shipped <ac:emoticon ac:name=\"thumbs-up\"/></p>", "representation": "storage"}}
}`

// testEnv bundles an Environment with its captured output.
type testEnv struct {
	*Environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

// newTestEnv returns an Environment with buffered output, the given stdin
// and a clock that advances one millisecond per call.
func newTestEnv(stdin string) *testEnv {
	var (
		mu  sync.Mutex
		now = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	)
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}

	return &testEnv{
		Environment: &Environment{
			Now: func() time.Time {
				mu.Lock()
				defer mu.Unlock()
				now = now.Add(time.Millisecond)
				return now
			},
			Stdin:  strings.NewReader(stdin),
			Stdout: stdout,
			Stderr: stderr,
			Config: config.DefaultConfig(),
		},
		stdout: stdout,
		stderr: stderr,
	}
}

// writeFile creates path under dir with content and returns the full path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// readFile returns the content of path or fails the test.
func readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// mockConverter records inputs and returns a fixed result.
type mockConverter struct {
	mu     sync.Mutex
	inputs []confluence2md.Input
	result *confluence2md.ConvertResult
	err    error
}

func (m *mockConverter) Convert(_ context.Context, input confluence2md.Input) (*confluence2md.ConvertResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.inputs = append(m.inputs, input)
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &confluence2md.ConvertResult{Markdown: "converted " + input.Name}, nil
}

func (m *mockConverter) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inputs)
}

// testParams returns batch parameters with a discarding logger.
func testParams() *conversionParams {
	return &conversionParams{
		jsonPath:      config.DefaultJSONPath,
		maxIterations: confluence2md.DefaultMaxIterations,
		logger:        newLogger(&bytes.Buffer{}, config.LogConfig{}, commonFlags{}),
	}
}
