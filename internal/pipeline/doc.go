// Package pipeline implements the stages of the storage-format to Markdown
// conversion:
//   - Normalizer: seven lexical passes rewriting ac:/ri: elements
//     (emoticons, images, links, structured macros, task lists, ADF
//     extensions, residual tags)
//   - FormatMacro: per-macro rendering, dispatched on MacroKind
//   - HTMLToMarkdown: generic HTML conversion via html-to-markdown
//   - ResidueCleaner: removal of diagram XML, base64-like runs and
//     bookkeeping identifiers
//   - Unescape and NormalizeWhitespace: final text tidying
//
// Scanning works on byte offsets with a forward-only cursor. Every pass stops
// after a fixed number of rewrites and leaves the rest of the text untouched.
//
// Markdown produced before the HTML converter runs is kept in a Fragments
// table and replaced by Private Use Area tokens, so the converter can neither
// escape nor reflow it. The root confluence2md package wires the stages
// together.
package pipeline
