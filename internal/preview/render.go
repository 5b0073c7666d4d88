package preview

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// ErrRender indicates the Markdown preview could not be rendered.
var ErrRender = errors.New("preview rendering failed")

// DefaultStyle is the chroma style used for code blocks.
const DefaultStyle = "github"

// pageTemplate wraps goldmark's fragment output in a complete HTML5 document.
const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
%s
</body>
</html>`

var crlfOrCR = regexp.MustCompile(`\r\n?`)

// Renderer turns converted Markdown into a standalone HTML page.
type Renderer struct {
	md  goldmark.Markdown
	css string
}

// NewRenderer creates a Renderer with GFM, footnotes and chroma highlighting
// in the named style. Unknown styles fall back to chroma's default.
func NewRenderer(style string) *Renderer {
	if style == "" {
		style = DefaultStyle
	}
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithXHTML(),
			// Raw HTML from the source document stays escaped.
		),
	)

	var css bytes.Buffer
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&css, styles.Get(style)); err != nil {
		css.Reset()
	}
	return &Renderer{md: md, css: css.String()}
}

// CSS returns the highlighting stylesheet embedded in rendered pages.
func (r *Renderer) CSS() string {
	return r.css
}

// Render converts Markdown to an HTML5 page titled title. Goldmark has no
// context support, so conversion runs in a goroutine and cancellation
// abandons it.
func (r *Renderer) Render(ctx context.Context, title, markdown string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := r.md.Convert([]byte(crlfOrCR.ReplaceAllString(markdown, "\n")), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrRender, err)}
			return
		}
		page := fmt.Sprintf(pageTemplate, html.EscapeString(title), buf.String())
		done <- result{html: InjectCSS(page, r.css)}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		return res.html, res.err
	}
}

// InjectCSS inserts css as a <style> block before </head>, after <body>, or
// at the start of the document, whichever is found first.
func InjectCSS(page, css string) string {
	if css == "" {
		return page
	}

	block := "<style>" + sanitizeCSS(css) + "</style>"
	lower := strings.ToLower(page)

	if idx := strings.Index(lower, "</head>"); idx != -1 {
		return page[:idx] + block + page[idx:]
	}
	if idx := strings.Index(lower, "<body"); idx != -1 {
		if end := strings.Index(page[idx:], ">"); end != -1 {
			pos := idx + end + 1
			return page[:pos] + block + page[pos:]
		}
	}
	return block + page
}

// sanitizeCSS keeps css from closing its <style> element.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
