package pipeline

import "strings"

// bookkeepingContainers are removed together with their content.
var bookkeepingContainers = []string{
	"ac:parameter",
	"ac:adf-parameter",
	"ac:adf-parameter-value",
	"ac:placeholder",
}

// removeResidual drops bookkeeping containers, then strips every remaining
// ac:/ri: tag while keeping the text between them.
func removeResidual(s string, limit int) (string, []PassStats) {
	stats := make([]PassStats, 0, len(bookkeepingContainers)+1)
	for _, name := range bookkeepingContainers {
		var st PassStats
		s, st = replaceElements(s, name, limit, func(string) string { return "" })
		stats = append(stats, st)
	}
	s, st := stripNamespaceTags(s, limit)
	return s, append(stats, st)
}

// isNamespaceTag reports whether s[i:] starts an ac: or ri: tag.
func isNamespaceTag(s string, i int) bool {
	rest := s[i+1:]
	if strings.HasPrefix(rest, "/") {
		rest = rest[1:]
	}
	return strings.HasPrefix(rest, "ac:") || strings.HasPrefix(rest, "ri:")
}

// stripNamespaceTags removes at most limit ac:/ri: tags in one forward scan.
// A tag without '>' stops the scan.
func stripNamespaceTags(s string, limit int) (string, PassStats) {
	st := PassStats{Pass: "namespace-tags"}
	if !strings.Contains(s, "<ac:") && !strings.Contains(s, "<ri:") &&
		!strings.Contains(s, "</ac:") && !strings.Contains(s, "</ri:") {
		return s, st
	}

	var b strings.Builder
	b.Grow(len(s))
	pos := 0
	for i := 0; i < len(s); {
		lt := strings.IndexByte(s[i:], '<')
		if lt < 0 {
			break
		}
		lt += i
		if !isNamespaceTag(s, lt) {
			i = lt + 1
			continue
		}
		if st.Replaced >= limit {
			st.Capped = true
			break
		}
		end := tagEnd(s, lt)
		if end < 0 {
			st.Aborted = true
			break
		}
		b.WriteString(s[pos:lt])
		pos, i = end, end
		st.Replaced++
	}
	b.WriteString(s[pos:])
	return b.String(), st
}

// StripNamespaceTags removes any ac:/ri: tag text left in s. A tag that
// never closes loses its '<'. The result never contains "<ac:", "<ri:",
// "</ac:" or "</ri:".
func StripNamespaceTags(s string) string {
	for {
		next := stripNamespaceOnce(s)
		if next == s {
			return s
		}
		s = next
	}
}

func stripNamespaceOnce(s string) string {
	var b strings.Builder
	pos := 0
	for i := 0; i < len(s); {
		lt := strings.IndexByte(s[i:], '<')
		if lt < 0 {
			break
		}
		lt += i
		if !isNamespaceTag(s, lt) {
			i = lt + 1
			continue
		}
		if b.Cap() == 0 {
			b.Grow(len(s))
		}
		b.WriteString(s[pos:lt])
		end := tagEnd(s, lt)
		if end < 0 {
			end = lt + 1
		}
		pos, i = end, end
	}
	if pos == 0 {
		return s
	}
	b.WriteString(s[pos:])
	return b.String()
}
