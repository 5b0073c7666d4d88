package pipeline

import (
	"strings"
	"testing"
)

func TestResidueCleaner_Clean(t *testing.T) {
	t.Parallel()

	c := NewResidueCleaner(0)
	run := strings.Repeat("A", 600)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "graph model removed",
			input:    `Before <mxGraphModel dx="1"><root><mxCell id="0"/></root></mxGraphModel> After`,
			expected: "Before  After",
		},
		{
			name:     "escaped graph model removed",
			input:    `Before &lt;mxGraphModel&gt;&lt;root/&gt;&lt;/mxGraphModel&gt; After`,
			expected: "Before  After",
		},
		{
			name:     "backslash escaped mxfile removed",
			input:    `Before \<mxfile host="x"\>data\</mxfile\> After`,
			expected: "Before  After",
		},
		{
			name:     "unterminated root left in place",
			input:    `Before <mxGraphModel><root>`,
			expected: `Before <mxGraphModel><root>`,
		},
		{
			name:     "long run removed",
			input:    "Data " + run + " end",
			expected: "Data  end",
		},
		{
			name:     "run at threshold kept",
			input:    strings.Repeat("B", 500),
			expected: strings.Repeat("B", 500),
		},
		{
			name:     "newlines preserved around run",
			input:    "| Header |\n| Data " + run + " |",
			expected: "| Header |\n| Data  |",
		},
		{
			name:     "bookkeeping attributes removed",
			input:    `<div ac:macro-id="uuid-123" data-layout="wide" class="k">x</div>`,
			expected: `<div class="k">x</div>`,
		},
		{
			name:     "schema version removed",
			input:    `<ac:structured-macro ac:name="code" ac:schema-version="1">`,
			expected: `<ac:structured-macro ac:name="code">`,
		},
		{
			name:     "bookkeeping lines removed",
			input:    "text\nmacro-id: 123\nschema-version = 1\nmore",
			expected: "text\nmore",
		},
		{
			name:     "plain text untouched",
			input:    "Nothing to see here.",
			expected: "Nothing to see here.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := c.Clean(tt.input); got != tt.expected {
				t.Errorf("Clean() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestResidueCleaner_Threshold(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		threshold int
		input     string
		expected  string
	}{
		{"custom threshold", 10, "short abcdefghijk", "short "},
		{"custom threshold keeps equal", 10, "short abcdefghij", "short abcdefghij"},
		{"multibyte counted in bytes", 500, strings.Repeat("é", 300) + " x", " x"},
		{"multibyte below threshold", 500, strings.Repeat("é", 200) + " x", strings.Repeat("é", 200) + " x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := NewResidueCleaner(tt.threshold).Clean(tt.input); got != tt.expected {
				t.Errorf("Clean() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestResidueCleaner_CleanMarkupKeepsLongRuns(t *testing.T) {
	t.Parallel()

	input := `<img src="data:image/png;base64,` + strings.Repeat("Q", 800) + `">`
	if got := NewResidueCleaner(0).CleanMarkup(input); got != input {
		t.Errorf("CleanMarkup() altered a long attribute value")
	}
}

func TestNewResidueCleaner_Default(t *testing.T) {
	t.Parallel()

	if got := NewResidueCleaner(-1).Threshold(); got != DefaultResidueThreshold {
		t.Errorf("Threshold() = %d, want %d", got, DefaultResidueThreshold)
	}
}
