package pipeline

import (
	"strings"

	"golang.org/x/net/html"
)

// MacroKind classifies a structured macro by name.
type MacroKind int

const (
	MacroUnknown MacroKind = iota
	MacroCode
	MacroPanel
	MacroTOC
	MacroExpand
	MacroAnchor
	MacroJira
	MacroStatus
	MacroDrawio
	MacroGliffy
	MacroLucidchart
	MacroMiro
	MacroPlantUML
	MacroChildren
	MacroPageTree
	MacroRecentlyUpdated
	MacroEmbed
)

// macroKinds maps every recognized macro name to its kind.
var macroKinds = map[string]MacroKind{
	"code":             MacroCode,
	"noformat":         MacroCode,
	"info":             MacroPanel,
	"note":             MacroPanel,
	"warning":          MacroPanel,
	"tip":              MacroPanel,
	"error":            MacroPanel,
	"toc":              MacroTOC,
	"expand":           MacroExpand,
	"anchor":           MacroAnchor,
	"jira":             MacroJira,
	"status":           MacroStatus,
	"drawio":           MacroDrawio,
	"gliffy":           MacroGliffy,
	"lucidchart":       MacroLucidchart,
	"miro":             MacroMiro,
	"plantuml":         MacroPlantUML,
	"children":         MacroChildren,
	"pagetree":         MacroPageTree,
	"recently-updated": MacroRecentlyUpdated,
	"widget":           MacroEmbed,
	"iframe":           MacroEmbed,
	"html":             MacroEmbed,
}

var macroKindNames = [...]string{
	MacroUnknown:         "unknown",
	MacroCode:            "code",
	MacroPanel:           "panel",
	MacroTOC:             "toc",
	MacroExpand:          "expand",
	MacroAnchor:          "anchor",
	MacroJira:            "jira",
	MacroStatus:          "status",
	MacroDrawio:          "drawio",
	MacroGliffy:          "gliffy",
	MacroLucidchart:      "lucidchart",
	MacroMiro:            "miro",
	MacroPlantUML:        "plantuml",
	MacroChildren:        "children",
	MacroPageTree:        "pagetree",
	MacroRecentlyUpdated: "recently-updated",
	MacroEmbed:           "embed",
}

// KindOf returns the kind for a macro name. Matching is case-sensitive.
func KindOf(name string) MacroKind {
	return macroKinds[name]
}

func (k MacroKind) String() string {
	if k < 0 || int(k) >= len(macroKindNames) {
		return "unknown"
	}
	return macroKindNames[k]
}

// Param is one macro parameter. An empty Key is the unnamed parameter.
type Param struct {
	Key   string
	Value string
}

// Params holds macro parameters in first-seen order.
// Setting an existing key replaces its value, so the last occurrence wins.
type Params []Param

// Get returns the value for key.
func (p Params) Get(key string) (string, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// First returns the first non-empty value among keys.
func (p Params) First(keys ...string) (string, bool) {
	for _, key := range keys {
		if v, ok := p.Get(key); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

func (p *Params) set(key, value string) {
	for i := range *p {
		if (*p)[i].Key == key {
			(*p)[i].Value = value
			return
		}
	}
	*p = append(*p, Param{Key: key, Value: value})
}

// bodyKind records which body element a macro carried.
type bodyKind int

const (
	bodyNone bodyKind = iota
	bodyRich
	bodyPlain
)

// Macro is the parsed form of one structured macro.
type Macro struct {
	Name   string
	Kind   MacroKind
	Params Params

	body     string
	bodyKind bodyKind
}

const (
	richBodyTag  = "ac:rich-text-body"
	plainBodyTag = "ac:plain-text-body"
)

// ParseMacro extracts the name, parameters and raw body of a
// <ac:structured-macro> block. Only parameters ahead of the body belong to
// the macro; those inside the body belong to nested macros.
func ParseMacro(block string) Macro {
	open := openTag(block, 0)
	name, _ := attr(open, "ac:name")
	m := Macro{Name: name, Kind: KindOf(name)}
	if isSelfClosingTag(open, len(open)) {
		return m
	}

	content := block[len(open):]
	header := content
	rich := findTag(content, 0, richBodyTag)
	plain := findTag(content, 0, plainBodyTag)
	switch {
	case rich >= 0 && (plain < 0 || rich < plain):
		header = content[:rich]
		if body, ok := inner(content[rich:], richBodyTag); ok {
			m.body, m.bodyKind = body, bodyRich
		}
	case plain >= 0:
		header = content[:plain]
		if body, ok := inner(content[plain:], plainBodyTag); ok {
			m.body, m.bodyKind = plainText(body), bodyPlain
		}
	}
	m.Params = parseParams(header)
	return m
}

// parseParams reads every paired <ac:parameter> in header.
func parseParams(header string) Params {
	var params Params
	pos := 0
	for {
		el, status := nextElement(header, pos, "ac:parameter")
		if status != scanFound {
			return params
		}
		pos = el.end
		if el.selfClosing || el.unterminated {
			continue
		}
		key, _ := attr(header[el.start:el.openEnd], "ac:name")
		raw := header[el.openEnd : el.end-len("</ac:parameter>")]
		params.set(key, strings.TrimSpace(textContent(raw)))
	}
}

// plainText returns the literal text of a plain-text body.
func plainText(body string) string {
	if strings.Contains(body, "<![CDATA[") {
		return unwrapCDATA(body)
	}
	return html.UnescapeString(body)
}
