// Package preview renders converted Markdown as a standalone HTML page.
//
// Rendering uses goldmark with GFM and footnotes; fenced code blocks are
// highlighted by chroma with CSS classes, and the matching stylesheet is
// injected into the page head. Links to page attachments can be pointed at
// a local directory of downloaded files.
package preview
