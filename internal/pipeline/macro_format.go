package pipeline

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FormatMacro renders one <ac:structured-macro> block with default settings.
// Bodies that still carry markup after resolution are returned as markup.
func FormatMacro(block string) string {
	return NewNormalizer(NormalizerConfig{}).renderMacro(block, nil).emit(nil)
}

// renderMacro parses block, resolves its body and dispatches on the kind.
func (n *Normalizer) renderMacro(block string, frags *Fragments) rendering {
	m := ParseMacro(block)
	body := strings.TrimSpace(n.resolveBody(m, frags))

	switch m.Kind {
	case MacroCode:
		return formatCode(m.Params, bodyText(m, body))
	case MacroPanel:
		return formatPanel(strings.ToUpper(m.Name), m.Params, body)
	case MacroTOC:
		return rendering{}
	case MacroExpand:
		return formatExpand(m.Params, body)
	case MacroAnchor:
		return formatAnchor(m.Params)
	case MacroJira:
		return formatJira(m.Params)
	case MacroStatus:
		return formatStatus(m.Params)
	case MacroDrawio:
		return blockMD(diagram("Draw.io", m.Params, "diagramName", "diagramDisplayName"))
	case MacroGliffy:
		return blockMD(diagram("Gliffy", m.Params, "name", "displayName"))
	case MacroLucidchart:
		if id, ok := m.Params.First("documentId"); ok {
			return blockMD("[Lucidchart](https://lucid.app/documents/view/" + id + ")")
		}
		return blockMD("[Lucidchart]")
	case MacroMiro:
		if id, ok := m.Params.First("boardId"); ok {
			return blockMD("[Miro](https://miro.com/app/board/" + id + ")")
		}
		return blockMD("[Miro Board]")
	case MacroPlantUML:
		text := bodyText(m, body)
		if text == "" {
			return blockMD("[PlantUML Diagram]")
		}
		return blockMD(fence(text, "plantuml"))
	case MacroChildren:
		depth, ok := m.Params.First("depth")
		if !ok {
			depth = "1"
		}
		return blockMD("[Child Pages (depth: " + depth + ")]")
	case MacroPageTree:
		return blockMD("[Page Tree]")
	case MacroRecentlyUpdated:
		return blockMD("[Recently Updated]")
	case MacroEmbed:
		if url, ok := m.Params.First("url", "src", "name"); ok {
			return blockMD("[Embed: " + url + "]")
		}
		return blockMD("[Embedded Content]")
	case MacroUnknown:
		return formatUnknown(m.Name, m.Params, body)
	}
	return formatUnknown(m.Name, m.Params, body)
}

// resolveBody runs the body-level passes over a rich body. Long runs are
// only dropped from bodies without markup; markup bodies get that treatment
// after HTML conversion. Plain bodies are only cleaned of residue.
func (n *Normalizer) resolveBody(m Macro, frags *Fragments) string {
	switch m.bodyKind {
	case bodyRich:
		body := m.body
		body, _ = replaceElements(body, "ac:plain-text-body", n.maxIterations, nestedPlainBody)
		body, _ = replaceElements(body, "ac:task-list", n.maxIterations, n.taskList(frags))
		body, _ = replaceElements(body, "ac:adf-extension", n.maxIterations, n.extension(frags))
		body, _ = removeResidual(body, n.maxIterations)
		body = n.residue.CleanMarkup(body)
		if hasMarkup(body) {
			return body
		}
		return n.residue.Clean(body)
	case bodyPlain:
		return n.residue.Clean(m.body)
	}
	return ""
}

// nestedPlainBody turns the CDATA body of a macro nested in a rich body into
// an escaped preformatted block, so the HTML converter keeps its text.
func nestedPlainBody(block string) string {
	content, _ := inner(block, "ac:plain-text-body")
	text := strings.Trim(textContent(content), "\n")
	if strings.TrimSpace(text) == "" {
		return ""
	}
	return "<pre><code>" + html.EscapeString(text) + "</code></pre>"
}

// bodyText returns the literal text of a resolved body. Paragraphs, list
// items and line breaks of a rich body become line breaks.
func bodyText(m Macro, body string) string {
	if m.bodyKind == bodyRich {
		return strings.TrimSpace(blockText(body))
	}
	return body
}

// fence wraps code in a backtick fence longer than any run inside it.
func fence(code, lang string) string {
	marker := "```"
	for strings.Contains(code, marker) {
		marker += "`"
	}
	return marker + lang + "\n" + code + "\n" + marker
}

func formatCode(p Params, code string) rendering {
	lang, _ := p.First("language")
	out := fence(code, lang)
	if title, ok := p.First("title"); ok {
		out = "**" + title + "**\n" + out
	}
	return blockMD(out)
}

// withBody pairs a Markdown lead with a body. Markup bodies go on to the
// HTML converter; plain bodies are decoded and appended after sep.
func withBody(lead, sep, body string) rendering {
	if hasMarkup(body) {
		return rendering{lead: strings.TrimRight(lead, " "), body: body, block: true}
	}
	text := html.UnescapeString(body)
	if text == "" {
		return blockMD(strings.TrimRight(lead, " "))
	}
	return blockMD(lead + sep + text)
}

func formatPanel(label string, p Params, body string) rendering {
	lead := "> **" + label + "**:"
	if title, ok := p.First("title"); ok {
		lead = "> **" + label + " - " + title + "**:"
	}
	return withBody(lead, " ", body)
}

func formatExpand(p Params, body string) rendering {
	title, ok := p.First("title")
	if !ok {
		title = "Details"
	}
	return withBody("**"+title+"**", "\n\n", body)
}

func formatAnchor(p Params) rendering {
	name, ok := p.First("", "name")
	if !ok {
		return rendering{}
	}
	return inline(`<a id="` + html.EscapeString(name) + `"></a>`)
}

func formatJira(p Params) rendering {
	key, ok := p.First("key")
	if !ok {
		key = "JIRA"
	}
	if server, ok := p.First("server", "serverId"); ok {
		return inline("[" + key + "](" + server + ")")
	}
	return inline("[JIRA: " + key + "]")
}

var statusIndicators = map[string]string{
	"green":  "[OK]",
	"yellow": "[WARN]",
	"red":    "[ERR]",
	"blue":   "[INFO]",
}

func formatStatus(p Params) rendering {
	title, ok := p.First("title")
	if !ok {
		title = "STATUS"
	}
	colour, _ := p.First("colour", "color")
	indicator, ok := statusIndicators[strings.ToLower(colour)]
	if !ok {
		indicator = "[STATUS]"
	}
	return inline(indicator + " " + cases.Upper(language.Und).String(title))
}

func diagram(tool string, p Params, keys ...string) string {
	name, ok := p.First(keys...)
	if !ok {
		name = "diagram"
	}
	return "[" + tool + ": " + name + "]"
}

// unknownParamKeys are echoed in the fallback label, in this order.
var unknownParamKeys = []string{"title", "name", "key", "url"}

func formatUnknown(name string, p Params, body string) rendering {
	if len(strings.TrimSpace(body)) > 3 {
		if hasMarkup(body) {
			return rendering{body: body}
		}
		return blockMD(html.UnescapeString(body))
	}

	var pairs []string
	for _, key := range unknownParamKeys {
		if v, ok := p.First(key); ok {
			pairs = append(pairs, key+"="+v)
		}
	}
	if len(pairs) == 0 {
		return blockMD("[Macro: " + name + "]")
	}
	return blockMD("[Macro: " + name + " (" + strings.Join(pairs, ", ") + ")]")
}
