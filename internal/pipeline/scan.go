package pipeline

import (
	"strings"

	"golang.org/x/net/html"
)

// DefaultMaxIterations bounds the replacements a single pass may perform.
const DefaultMaxIterations = 1000

// span is a half-open byte range [start, end) of one element in the working text.
type span struct {
	start, end int
}

// scanStatus reports the outcome of looking for the next element.
type scanStatus int

const (
	scanNone   scanStatus = iota // no further element
	scanFound                    // element located (possibly unterminated)
	scanBroken                   // opening tag never closes with '>'
)

// element is one located custom element.
type element struct {
	span
	openEnd      int  // index just past the opening tag
	selfClosing  bool // <name ... />
	unterminated bool // paired element whose closer is missing
}

// block returns the source text of the element.
func (e element) block(s string) string {
	return s[e.start:e.end]
}

// isNameEnd reports whether c may follow a tag name.
func isNameEnd(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '/', '>':
		return true
	}
	return false
}

// findTag returns the index of the next opening tag <name at or after from,
// or -1. "<ac:link" does not match "<ac:link-body".
func findTag(s string, from int, name string) int {
	open := "<" + name
	for from <= len(s) {
		idx := strings.Index(s[from:], open)
		if idx < 0 {
			return -1
		}
		idx += from
		after := idx + len(open)
		if after == len(s) || isNameEnd(s[after]) {
			return idx
		}
		from = idx + 1
	}
	return -1
}

// tagEnd returns the index just past the '>' that closes the tag starting at
// i, skipping quoted attribute values. Returns -1 if the tag never closes.
func tagEnd(s string, i int) int {
	var quote byte
	for j := i + 1; j < len(s); j++ {
		c := s[j]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '>':
			return j + 1
		}
	}
	return -1
}

// isSelfClosingTag reports whether the tag ending at end is written <x ... />.
func isSelfClosingTag(s string, end int) bool {
	return end >= 2 && s[end-2] == '/'
}

// matchClose returns the index just past the closer of the element named
// name whose opening tag ends at from. Nested elements of the same name are
// balanced. Returns -1 if the closer is missing.
func matchClose(s string, from int, name string) int {
	closeTag := "</" + name + ">"
	depth := 1
	i := from
	nextOpen := findTag(s, i, name)
	for i < len(s) {
		nextClose := strings.Index(s[i:], closeTag)
		if nextClose < 0 {
			return -1
		}
		nextClose += i
		if nextOpen >= 0 && nextOpen < i {
			nextOpen = findTag(s, i, name)
		}
		if nextOpen >= 0 && nextOpen < nextClose {
			end := tagEnd(s, nextOpen)
			if end < 0 {
				return -1
			}
			if !isSelfClosingTag(s, end) {
				depth++
			}
			i = end
			continue
		}
		i = nextClose + len(closeTag)
		depth--
		if depth == 0 {
			return i
		}
	}
	return -1
}

// nextElement locates the next element named name at or after from.
func nextElement(s string, from int, name string) (element, scanStatus) {
	start := findTag(s, from, name)
	if start < 0 {
		return element{}, scanNone
	}
	openEnd := tagEnd(s, start)
	if openEnd < 0 {
		return element{span: span{start: start, end: len(s)}}, scanBroken
	}
	el := element{span: span{start: start, end: openEnd}, openEnd: openEnd}
	if isSelfClosingTag(s, openEnd) {
		el.selfClosing = true
		return el, scanFound
	}
	end := matchClose(s, openEnd, name)
	if end < 0 {
		el.unterminated = true
		return el, scanFound
	}
	el.end = end
	return el, scanFound
}

// PassStats records what one normalizer pass did.
type PassStats struct {
	Pass     string
	Replaced int
	Capped   bool
	Aborted  bool
}

// replaceElements rewrites every element named name with render's output in
// a single forward scan. An unterminated element loses its opening tag only;
// an opening tag without '>' stops the pass and leaves the rest untouched.
// At most limit elements are rewritten.
func replaceElements(s, name string, limit int, render func(block string) string) (string, PassStats) {
	st := PassStats{Pass: name}
	if !strings.Contains(s, "<"+name) {
		return s, st
	}

	var b strings.Builder
	b.Grow(len(s))
	pos := 0
	for {
		if st.Replaced >= limit {
			st.Capped = true
			break
		}
		el, status := nextElement(s, pos, name)
		if status == scanNone {
			break
		}
		if status == scanBroken {
			st.Aborted = true
			break
		}
		b.WriteString(s[pos:el.start])
		if !el.unterminated {
			b.WriteString(render(el.block(s)))
		}
		pos = el.end
		st.Replaced++
	}
	b.WriteString(s[pos:])
	return b.String(), st
}

// attr returns the entity-decoded value of the first name="..." attribute in
// block. The attribute name must be preceded by whitespace.
func attr(block, name string) (string, bool) {
	key := name + `="`
	from := 0
	for from < len(block) {
		idx := strings.Index(block[from:], key)
		if idx < 0 {
			return "", false
		}
		idx += from
		if idx > 0 && !isSpace(block[idx-1]) {
			from = idx + 1
			continue
		}
		rest := block[idx+len(key):]
		end := strings.IndexByte(rest, '"')
		if end < 0 {
			return "", false
		}
		return html.UnescapeString(rest[:end]), true
	}
	return "", false
}

// nonEmptyAttr is attr that treats an empty value as absent.
func nonEmptyAttr(block, name string) (string, bool) {
	v, ok := attr(block, name)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

// inner returns the content between the first <name> element's tags in block,
// balancing nested elements of the same name.
func inner(block, name string) (string, bool) {
	start := findTag(block, 0, name)
	if start < 0 {
		return "", false
	}
	openEnd := tagEnd(block, start)
	if openEnd < 0 || isSelfClosingTag(block, openEnd) {
		return "", false
	}
	end := matchClose(block, openEnd, name)
	if end < 0 {
		return "", false
	}
	return block[openEnd : end-len("</"+name+">")], true
}

// unwrapCDATA removes CDATA markers. Removing openers first restores the
// "]]]]><![CDATA[>" split form to "]]>".
func unwrapCDATA(s string) string {
	s = strings.ReplaceAll(s, "<![CDATA[", "")
	return strings.ReplaceAll(s, "]]>", "")
}

// stripTags drops everything between '<' and '>' and keeps the rest.
func stripTags(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	inTag := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '<':
			inTag = true
		case c == '>' && inTag:
			inTag = false
		case !inTag:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// textContent returns the decoded text of a markup fragment. CDATA sections
// are copied literally.
func textContent(s string) string {
	return decodeText(s, decodeMarkup)
}

// blockBreaks maps block boundaries to line breaks for blockText.
var blockBreaks = strings.NewReplacer(
	"</p>", "\n",
	"</P>", "\n",
	"</li>", "\n",
	"</LI>", "\n",
	"</div>", "\n",
	"</tr>", "\n",
	"<br>", "\n",
	"<br/>", "\n",
	"<br />", "\n",
	"<BR>", "\n",
)

// blockText is textContent with block boundaries kept as line breaks.
// Runs of blank lines collapse to one line break.
func blockText(s string) string {
	text := decodeText(s, func(m string) string {
		return decodeMarkup(blockBreaks.Replace(m))
	})
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		isBlank := strings.TrimSpace(line) == ""
		if isBlank && blank {
			continue
		}
		blank = isBlank
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func decodeMarkup(s string) string {
	return html.UnescapeString(stripTags(s))
}

// decodeText applies decode to the markup around CDATA sections and copies
// the sections literally.
func decodeText(s string, decode func(string) string) string {
	const cdataOpen, cdataClose = "<![CDATA[", "]]>"
	if !strings.Contains(s, cdataOpen) {
		return decode(s)
	}
	var b strings.Builder
	for {
		i := strings.Index(s, cdataOpen)
		if i < 0 {
			b.WriteString(decode(s))
			return b.String()
		}
		b.WriteString(decode(s[:i]))
		s = s[i+len(cdataOpen):]
		j := strings.Index(s, cdataClose)
		if j < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:j])
		s = s[j+len(cdataClose):]
	}
}

// hasMarkup reports whether s still carries tags for the HTML converter.
func hasMarkup(s string) bool {
	return strings.ContainsRune(s, '<')
}
