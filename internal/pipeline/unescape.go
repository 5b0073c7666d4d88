package pipeline

import "strings"

// unescapable are the characters the HTML converter escapes defensively and
// Unescape turns back into literals.
const unescapable = "[]*_`#>-"

// Unescape reverses backslash escapes of [ ] * _ ` # > - outside fenced code
// blocks. A "\\" pair is kept as is. Applying it twice changes nothing.
func Unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	lines := strings.Split(s, "\n")
	var open fenceMarker
	for i, line := range lines {
		if open.char != 0 {
			if open.closedBy(line) {
				open = fenceMarker{}
			}
			continue
		}
		line = unescapeLine(line)
		lines[i] = line
		open = openingFence(line)
	}
	return strings.Join(lines, "\n")
}

// unescapeLine scans left to right once.
func unescapeLine(line string) string {
	if !strings.ContainsRune(line, '\\') {
		return line
	}
	var b strings.Builder
	b.Grow(len(line))
	for i := 0; i < len(line); i++ {
		c := line[i]
		if c != '\\' || i+1 == len(line) {
			b.WriteByte(c)
			continue
		}
		next := line[i+1]
		switch {
		case next == '\\':
			b.WriteString(`\\`)
			i++
		case strings.IndexByte(unescapable, next) >= 0:
			b.WriteByte(next)
			i++
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// fenceMarker describes an open fenced code block.
type fenceMarker struct {
	char byte
	size int
}

// openingFence returns the fence opened by line, or the zero value.
func openingFence(line string) fenceMarker {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 || trimmed == "" {
		return fenceMarker{}
	}
	c := trimmed[0]
	if c != '`' && c != '~' {
		return fenceMarker{}
	}
	n := 0
	for n < len(trimmed) && trimmed[n] == c {
		n++
	}
	if n < 3 {
		return fenceMarker{}
	}
	if c == '`' && strings.ContainsRune(trimmed[n:], '`') {
		return fenceMarker{}
	}
	return fenceMarker{char: c, size: n}
}

func (f fenceMarker) closedBy(line string) bool {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 {
		return false
	}
	n := 0
	for n < len(trimmed) && trimmed[n] == f.char {
		n++
	}
	return n >= f.size && strings.TrimSpace(trimmed[n:]) == ""
}

// NormalizeWhitespace blanks whitespace-only lines, collapses runs of blank
// lines into one and trims blank lines at both ends. Line endings become \n.
func NormalizeWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			blank = len(out) > 0
			continue
		}
		if blank {
			out = append(out, "")
			blank = false
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
