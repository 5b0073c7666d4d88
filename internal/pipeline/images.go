package pipeline

import (
	"strings"

	"golang.org/x/net/html"
)

// renderImage returns the Markdown for one <ac:image> element.
// Priority: attachment filename, then external URL, then alt text.
func renderImage(block string) rendering {
	if name, ok := nonEmptyAttr(block, "ri:filename"); ok {
		return inline("[Image: " + name + "]")
	}
	if url, ok := nonEmptyAttr(block, "ri:value"); ok {
		return inline("![Image](" + url + ")")
	}
	if alt, ok := nonEmptyAttr(block, "ac:alt"); ok {
		return inline("[Image: " + alt + "]")
	}
	return inline("[Image]")
}

// ProtectImages replaces <img> tags that carry alt text but no source with a
// fragment token rendering as [Image: <alt>]. Such tags would otherwise be
// dropped by the HTML converter. Every other byte is copied through.
func ProtectImages(s string, frags *Fragments) string {
	if frags == nil || !strings.Contains(strings.ToLower(s), "<img") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			b.Write(z.Raw())
			return b.String()
		}
		// TagName lowercases the raw buffer in place; keep the original bytes.
		raw := string(z.Raw())
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			b.WriteString(raw)
			continue
		}
		name, hasAttr := z.TagName()
		if string(name) != "img" || !hasAttr {
			b.WriteString(raw)
			continue
		}
		var alt, src string
		for more := true; more; {
			var key, val []byte
			key, val, more = z.TagAttr()
			switch string(key) {
			case "alt":
				alt = strings.TrimSpace(string(val))
			case "src":
				src = strings.TrimSpace(string(val))
			}
		}
		if alt == "" || src != "" {
			b.WriteString(raw)
			continue
		}
		b.WriteString(frags.Protect("[Image: " + alt + "]"))
	}
}
