package pipeline

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultResidueThreshold is the longest non-whitespace run kept by Clean.
const DefaultResidueThreshold = 500

// Precompiled residue patterns.
var (
	// Diagram XML, raw or escaped as text. Unterminated roots stay.
	mxFilePattern  = regexp.MustCompile(`(?s)(?:\\?<|&lt;)mxfile\b.*?(?:\\?<|&lt;)/mxfile\\?(?:>|&gt;)`)
	mxGraphPattern = regexp.MustCompile(`(?s)(?:\\?<|&lt;)mxGraphModel\b.*?(?:\\?<|&lt;)/mxGraphModel\\?(?:>|&gt;)`)

	// Storage bookkeeping attributes.
	bookkeepingAttr = regexp.MustCompile(`\s*(?:ac:(?:macro-id|schema-version|local-id)|data-(?:macro-id|macro-name|layout|local-id)|local-id|macro-id|schema-version)="[^"]*"`)

	// Bookkeeping identifiers leaked as "key: value" lines.
	bookkeepingLine = regexp.MustCompile(`(?m)^[ \t]*(?:macro-id|schema-version|local-id)[ \t]*[:=][^\n]*\n?`)
)

// ResidueCleaner removes machine-generated leftovers: embedded diagram XML,
// long unbroken runs (base64 and similar) and bookkeeping identifiers.
type ResidueCleaner struct {
	threshold int
}

// NewResidueCleaner returns a cleaner dropping non-whitespace runs longer
// than threshold bytes. A threshold <= 0 selects DefaultResidueThreshold.
func NewResidueCleaner(threshold int) *ResidueCleaner {
	if threshold <= 0 {
		threshold = DefaultResidueThreshold
	}
	return &ResidueCleaner{threshold: threshold}
}

// Threshold returns the run length above which text is dropped.
func (c *ResidueCleaner) Threshold() int {
	return c.threshold
}

// CleanMarkup removes diagram XML and bookkeeping attributes. It leaves long
// runs alone so tags with large attribute values keep their shape.
func (c *ResidueCleaner) CleanMarkup(s string) string {
	if strings.Contains(s, "mxfile") {
		s = mxFilePattern.ReplaceAllString(s, "")
	}
	if strings.Contains(s, "mxGraphModel") {
		s = mxGraphPattern.ReplaceAllString(s, "")
	}
	if strings.Contains(s, "id=") || strings.Contains(s, "schema-version") ||
		strings.Contains(s, "data-layout") || strings.Contains(s, "data-macro-name") {
		s = bookkeepingAttr.ReplaceAllString(s, "")
	}
	if strings.Contains(s, "macro-id") || strings.Contains(s, "schema-version") || strings.Contains(s, "local-id") {
		s = bookkeepingLine.ReplaceAllString(s, "")
	}
	return s
}

// Clean applies CleanMarkup and then drops long non-whitespace runs.
func (c *ResidueCleaner) Clean(s string) string {
	return c.dropLongRuns(c.CleanMarkup(s))
}

// dropLongRuns removes every non-whitespace run longer than the threshold,
// keeping the surrounding whitespace.
func (c *ResidueCleaner) dropLongRuns(s string) string {
	if len(s) <= c.threshold {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	runStart := -1
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if unicode.IsSpace(r) {
			if runStart >= 0 {
				c.writeRun(&b, s[runStart:i])
				runStart = -1
			}
			b.WriteString(s[i : i+size])
		} else if runStart < 0 {
			runStart = i
		}
		i += size
	}
	if runStart >= 0 {
		c.writeRun(&b, s[runStart:])
	}
	return b.String()
}

func (c *ResidueCleaner) writeRun(b *strings.Builder, run string) {
	if len(run) <= c.threshold {
		b.WriteString(run)
	}
}
