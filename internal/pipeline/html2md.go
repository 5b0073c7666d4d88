package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/strikethrough"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

// ErrMarkdownConversion indicates the HTML to Markdown conversion failed.
var ErrMarkdownConversion = errors.New("markdown conversion failed")

// DefaultSkipTags are dropped together with their content.
var DefaultSkipTags = []string{"script", "style", "meta", "noscript"}

// HTMLConverter abstracts HTML to Markdown conversion.
type HTMLConverter interface {
	ToMarkdown(ctx context.Context, html string) (string, error)
}

// Compile-time interface check.
var _ HTMLConverter = (*HTMLToMarkdown)(nil)

// HTMLToMarkdown converts HTML to CommonMark with GFM tables and
// strikethrough using html-to-markdown.
type HTMLToMarkdown struct {
	conv *converter.Converter
}

// NewHTMLToMarkdown creates a converter that removes skipTags with their
// content. Nil skipTags selects DefaultSkipTags.
func NewHTMLToMarkdown(skipTags []string) *HTMLToMarkdown {
	if skipTags == nil {
		skipTags = DefaultSkipTags
	}
	conv := converter.NewConverter(
		converter.WithEscapeMode(converter.EscapeModeSmart),
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
			strikethrough.NewStrikethroughPlugin(),
		),
	)
	for _, tag := range skipTags {
		conv.Register.TagType(tag, converter.TagTypeRemove, converter.PriorityStandard)
	}
	return &HTMLToMarkdown{conv: conv}
}

// ToMarkdown converts html to Markdown. The library has no context support,
// so conversion runs in a goroutine and cancellation abandons it.
func (c *HTMLToMarkdown) ToMarkdown(ctx context.Context, html string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		md  string
		err error
	}

	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("%w: panic: %v", ErrMarkdownConversion, r)}
			}
		}()
		md, err := c.conv.ConvertString(html)
		if err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrMarkdownConversion, err)}
			return
		}
		done <- result{md: md}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.md, r.err
	}
}
