package confluence2md

import (
	"context"

	"github.com/alnah/go-confluence2md/internal/pipeline"
)

// Input contains the data for a single conversion.
type Input struct {
	Markup string // Storage-format markup (required, may be empty)
	Name   string // Optional source name, used only in log records
}

// ConvertResult contains the output of a successful conversion.
type ConvertResult struct {
	Markdown string
	Stats    Stats
}

// Stats describes what one conversion did.
type Stats struct {
	// Passes holds one entry per normalizer scan, in execution order.
	Passes []PassStats
	// Fragments counts the Markdown fragments protected from the HTML converter.
	Fragments int
	// Fallback is true when the HTML converter failed and the
	// pre-conversion text was kept.
	Fallback bool
}

// Replaced returns the total number of elements rewritten across all passes.
func (s Stats) Replaced() int {
	n := 0
	for _, p := range s.Passes {
		n += p.Replaced
	}
	return n
}

// Capped reports whether any pass stopped at its iteration cap.
func (s Stats) Capped() bool {
	for _, p := range s.Passes {
		if p.Capped {
			return true
		}
	}
	return false
}

// PassStats records what one normalizer pass did.
type PassStats struct {
	Pass     string // Element name handled by the pass, e.g. "ac:link"
	Replaced int    // Elements rewritten or removed
	Capped   bool   // Stopped after MaxIterations replacements
	Aborted  bool   // Stopped at an opening tag without '>'
}

func passStats(in []pipeline.PassStats) []PassStats {
	out := make([]PassStats, len(in))
	for i, p := range in {
		out[i] = PassStats{
			Pass:     p.Pass,
			Replaced: p.Replaced,
			Capped:   p.Capped,
			Aborted:  p.Aborted,
		}
	}
	return out
}

// HTMLConverter turns HTML into Markdown.
// The default implementation wraps html-to-markdown v2.
type HTMLConverter interface {
	ToMarkdown(ctx context.Context, html string) (string, error)
}
