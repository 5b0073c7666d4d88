// Package confluence2md converts Confluence storage-format markup to Markdown.
//
// Storage format is XHTML extended with namespaced elements (ac:, ri:) for
// macros, images, links, mentions, task lists and ADF extension blocks.
// Conversion is lexical and total: malformed markup is handled best effort
// and never makes a call fail.
//
// # Quick Start
//
// For one-off conversions use ToMarkdown:
//
//	md := confluence2md.ToMarkdown(`<p>Hello <ac:emoticon ac:name="smile"/></p>`)
//	// md == "Hello :)"
//
// To reuse configuration, create a Converter once and share it:
//
//	conv, err := confluence2md.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := conv.Convert(ctx, confluence2md.Input{
//	    Markup: page.Body.Storage.Value,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Markdown)
//
// A Converter holds no mutable state and is safe for concurrent use.
//
// # Conversion Pipeline
//
// Each call runs these stages once, in order:
//
//  1. Custom element normalization: emoticons, images, links, structured
//     macros, task lists, ADF extensions, then residual ac:/ri: tags
//  2. Residue cleaning of the markup (diagram XML, bookkeeping attributes)
//  3. HTML to Markdown conversion via html-to-markdown (CommonMark, GFM
//     tables, strikethrough)
//  4. Residue cleaning of the Markdown (long encoded runs)
//  5. Unescaping of Markdown punctuation outside code fences and
//     whitespace normalization
//
// Markdown rendered in stage 1 bypasses stage 3 untouched. Any ac: or ri:
// tag text still present at the end is stripped.
//
// Every normalizer pass stops after a fixed number of rewrites (1000 by
// default) and leaves the rest of the text as is. ConvertResult.Stats reports
// which passes stopped early.
//
// # Configuration
//
// Use functional options to customize the converter:
//
//	conv, err := confluence2md.NewConverter(
//	    confluence2md.WithMaxIterations(5000),
//	    confluence2md.WithResidueThreshold(1024),
//	    confluence2md.WithEmoticons(map[string]string{"rocket": ":rocket:"}),
//	    confluence2md.WithLogger(slog.Default()),
//	)
//
// # Errors
//
// Convert returns an error only when the context is done or an internal
// panic was recovered (ErrInternal). ConvertString and ToMarkdown return the
// input unchanged in that case.
package confluence2md
