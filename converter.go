package confluence2md

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alnah/go-confluence2md/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ HTMLConverter          = (*pipeline.HTMLToMarkdown)(nil)
	_ pipeline.HTMLConverter = HTMLConverter(nil)
)

// Converter runs the storage-format to Markdown pipeline.
// It holds only immutable configuration and is safe for concurrent use.
type Converter struct {
	cfg             converterConfig
	logger          *slog.Logger
	normalizer      *pipeline.Normalizer
	residue         *pipeline.ResidueCleaner
	htmlConverter   HTMLConverter
	customConverter bool
}

// NewConverter creates a Converter with default configuration.
// Use options to customize behavior (e.g., WithMaxIterations, WithLogger).
// Returns an error if an option value is invalid.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg: converterConfig{
			maxIterations:    DefaultMaxIterations,
			residueThreshold: DefaultResidueThreshold,
			skipTags:         pipeline.DefaultSkipTags,
		},
		logger: slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.cfg.maxIterations < 1 {
		return nil, fmt.Errorf("%w: %d (must be at least 1)", ErrInvalidMaxIterations, c.cfg.maxIterations)
	}
	if c.cfg.residueThreshold < 1 {
		return nil, fmt.Errorf("%w: %d (must be at least 1)", ErrInvalidResidueThreshold, c.cfg.residueThreshold)
	}
	if c.customConverter && c.htmlConverter == nil {
		return nil, ErrNilHTMLConverter
	}

	c.residue = pipeline.NewResidueCleaner(c.cfg.residueThreshold)
	c.normalizer = pipeline.NewNormalizer(pipeline.NormalizerConfig{
		MaxIterations: c.cfg.maxIterations,
		Emoticons:     c.cfg.emoticons,
		Residue:       c.residue,
	})
	if c.htmlConverter == nil {
		c.htmlConverter = pipeline.NewHTMLToMarkdown(c.cfg.skipTags)
	}

	return c, nil
}

// Convert runs the full pipeline over input.Markup.
// The context is used for cancellation; a cancelled context is the only
// non-internal error. Recovers from internal panics and reports them as
// ErrInternal.
func (c *Converter) Convert(ctx context.Context, input Input) (result *ConvertResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: %v", ErrInternal, r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	markup := pipeline.StripSentinels(input.Markup)
	frags := &pipeline.Fragments{}

	// Custom elements become Markdown fragments or plain markup.
	normalized, passes := c.normalizer.Normalize(markup, frags)
	c.logPasses(ctx, input.Name, passes)
	normalized = c.residue.CleanMarkup(normalized)
	normalized = pipeline.ProtectImages(normalized, frags)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stats := Stats{Passes: passStats(passes), Fragments: frags.Len()}

	md, convErr := c.htmlConverter.ToMarkdown(ctx, normalized)
	if convErr != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c.logger.DebugContext(ctx, "HTML conversion failed, keeping normalized markup",
			slog.String("name", input.Name),
			slog.Any("error", convErr))
		md = normalized
		stats.Fallback = true
	}

	md = pipeline.Unescape(md)
	md = frags.Restore(md)
	md = c.residue.Clean(md)
	md = pipeline.StripNamespaceTags(md)
	md = pipeline.NormalizeWhitespace(md)

	c.logger.DebugContext(ctx, "converted storage markup",
		slog.String("name", input.Name),
		slog.Int("input_bytes", len(input.Markup)),
		slog.Int("output_bytes", len(md)),
		slog.Int("replaced", stats.Replaced()),
		slog.Int("fragments", stats.Fragments))

	return &ConvertResult{Markdown: md, Stats: stats}, nil
}

// logPasses records passes that stopped early.
func (c *Converter) logPasses(ctx context.Context, name string, passes []pipeline.PassStats) {
	for _, p := range passes {
		switch {
		case p.Capped:
			c.logger.DebugContext(ctx, "pass stopped at iteration cap",
				slog.String("name", name),
				slog.String("pass", p.Pass),
				slog.Int("max_iterations", c.cfg.maxIterations))
		case p.Aborted:
			c.logger.DebugContext(ctx, "pass aborted at unterminated opening tag",
				slog.String("name", name),
				slog.String("pass", p.Pass),
				slog.Int("replaced", p.Replaced))
		}
	}
}

// ConvertString converts markup and never fails: on an internal error the
// input is returned unchanged.
func (c *Converter) ConvertString(markup string) string {
	result, err := c.Convert(context.Background(), Input{Markup: markup})
	if err != nil {
		return markup
	}
	return result.Markdown
}

// ToMarkdown converts storage-format markup to Markdown with default
// options. It is total: on an internal error the input is returned unchanged.
func ToMarkdown(markup string) string {
	conv, err := NewConverter()
	if err != nil {
		return markup
	}
	return conv.ConvertString(markup)
}
