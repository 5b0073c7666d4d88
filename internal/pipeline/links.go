package pipeline

import "strings"

// linkTarget resolves the destination of an <ac:link> block.
// Priority: page, user, attachment, url, anchor.
func linkTarget(block string) string {
	if i := findTag(block, 0, "ri:page"); i >= 0 {
		page := openTag(block, i)
		title, _ := attr(page, "ri:content-title")
		if space, ok := nonEmptyAttr(page, "ri:space-key"); ok {
			return "page:" + space + "/" + title
		}
		return "page:" + title
	}
	if i := findTag(block, 0, "ri:user"); i >= 0 {
		user := openTag(block, i)
		if id, ok := nonEmptyAttr(user, "ri:account-id"); ok {
			return "@" + id
		}
		if key, ok := nonEmptyAttr(user, "ri:userkey"); ok {
			return "@" + key
		}
		return "@"
	}
	if i := findTag(block, 0, "ri:attachment"); i >= 0 {
		name, _ := attr(openTag(block, i), "ri:filename")
		return "attachment:" + name
	}
	if i := findTag(block, 0, "ri:url"); i >= 0 {
		url, _ := attr(openTag(block, i), "ri:value")
		return url
	}
	if anchor, ok := nonEmptyAttr(openTag(block, 0), "ac:anchor"); ok {
		return "#" + anchor
	}
	return ""
}

// linkText resolves the display text of an <ac:link> block.
// Priority: rich link body, plain link body, referenced page title.
func linkText(block string) string {
	if body, ok := inner(block, "ac:link-body"); ok {
		if text := strings.TrimSpace(textContent(body)); text != "" {
			return text
		}
	}
	if body, ok := inner(block, "ac:plain-text-link-body"); ok {
		if text := strings.TrimSpace(unwrapCDATA(body)); text != "" {
			return text
		}
	}
	if title, ok := nonEmptyAttr(block, "ri:content-title"); ok {
		return title
	}
	return ""
}

// renderLink returns the Markdown for one <ac:link> element.
func renderLink(block string) rendering {
	target := linkTarget(block)
	text := linkText(block)
	switch {
	case text != "" && target != "":
		return inline("[" + text + "](" + target + ")")
	case text != "":
		return inline(text)
	case target != "":
		return inline("[" + target + "](" + target + ")")
	}
	return rendering{}
}

// openTag returns the opening tag starting at i, or the rest of s when it
// never closes.
func openTag(s string, i int) string {
	end := tagEnd(s, i)
	if end < 0 {
		return s[i:]
	}
	return s[i:end]
}
