package confluence2md

import (
	"log/slog"

	"github.com/alnah/go-confluence2md/internal/pipeline"
)

// Defaults applied by NewConverter when no option overrides them.
const (
	DefaultMaxIterations    = pipeline.DefaultMaxIterations
	DefaultResidueThreshold = pipeline.DefaultResidueThreshold
)

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds the options applied by NewConverter.
type converterConfig struct {
	maxIterations    int
	residueThreshold int
	skipTags         []string
	emoticons        map[string]string
}

// WithLogger sets the logger used for debug records.
// A nil logger keeps the default, which discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Converter) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMaxIterations caps the number of rewrites each normalizer pass may
// perform. NewConverter rejects values below 1.
func WithMaxIterations(n int) Option {
	return func(c *Converter) {
		c.cfg.maxIterations = n
	}
}

// WithResidueThreshold sets the byte length above which a run of
// non-whitespace characters is treated as encoded residue and removed.
// NewConverter rejects values below 1.
func WithResidueThreshold(n int) Option {
	return func(c *Converter) {
		c.cfg.residueThreshold = n
	}
}

// WithSkipTags replaces the HTML tags whose content the default HTML
// converter drops (script, style, meta and noscript). Calling it without
// arguments keeps every tag.
// It has no effect when WithHTMLConverter is also used.
func WithSkipTags(tags ...string) Option {
	return func(c *Converter) {
		c.cfg.skipTags = append(make([]string, 0, len(tags)), tags...)
	}
}

// WithEmoticons adds to or overrides the built-in emoticon table.
// Keys are ac:name values, values are the text written in their place.
func WithEmoticons(table map[string]string) Option {
	return func(c *Converter) {
		if c.cfg.emoticons == nil {
			c.cfg.emoticons = make(map[string]string, len(table))
		}
		for name, text := range table {
			c.cfg.emoticons[name] = text
		}
	}
}

// WithHTMLConverter replaces the HTML to Markdown stage.
// NewConverter rejects a nil converter.
func WithHTMLConverter(conv HTMLConverter) Option {
	return func(c *Converter) {
		c.htmlConverter = conv
		c.customConverter = true
	}
}
