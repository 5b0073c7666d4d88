package pipeline

import "strings"

// panelLabels maps ADF panel types to their callout label.
var panelLabels = map[string]string{
	"note":    "NOTE",
	"info":    "INFO",
	"warning": "WARNING",
	"error":   "ERROR",
	"success": "SUCCESS",
}

// renderExtension returns the Markdown for one <ac:adf-extension> element.
func renderExtension(block string) rendering {
	if isDiagramExtension(block) {
		return blockMD(diagramLabel(block))
	}

	if content, ok := inner(block, "ac:adf-content"); ok {
		if text := strings.TrimSpace(textContent(content)); text != "" {
			panelType, _ := adfAttribute(block, "panel-type")
			if label, ok := panelLabels[strings.TrimSpace(panelType)]; ok {
				return blockMD("> **" + label + "**: " + text)
			}
			return blockMD(text)
		}
	}
	if fallback, ok := inner(block, "ac:adf-fallback"); ok {
		if text := strings.TrimSpace(textContent(fallback)); text != "" {
			return blockMD(text)
		}
	}
	return rendering{}
}

func isDiagramExtension(block string) bool {
	return strings.Contains(block, `type="extension"`) || strings.Contains(block, "extension-type")
}

func diagramLabel(block string) string {
	for _, key := range []string{"diagram-display-name", "diagramDisplayName", "diagram-name"} {
		if name, ok := adfParamValue(block, key); ok {
			return "[" + diagramTool(block) + ": " + name + "]"
		}
	}
	if title, ok := adfAttribute(block, "extension-title"); ok && strings.TrimSpace(title) != "" {
		return "[" + strings.TrimSpace(title) + "]"
	}
	return "[Embedded Diagram]"
}

// diagramTool names the diagramming app from the extension key.
func diagramTool(block string) string {
	key, ok := adfAttribute(block, "extension-key")
	if !ok {
		key, _ = attr(block, "extension-key")
	}
	key = strings.ToLower(key)
	switch {
	case strings.Contains(key, "gliffy"):
		return "Gliffy"
	case strings.Contains(key, "lucid"):
		return "Lucidchart"
	}
	return "Draw.io"
}

// adfParamValue reads the nested value of an ADF parameter:
// <ac:adf-parameter key="K"><ac:adf-parameter key="value">V</ac:adf-parameter>.
func adfParamValue(block, key string) (string, bool) {
	keyPos := strings.Index(block, `key="`+key+`"`)
	if keyPos < 0 {
		return "", false
	}
	rest := block[keyPos:]
	valuePos := strings.Index(rest, `key="value"`)
	if valuePos < 0 {
		return "", false
	}
	rest = rest[valuePos:]
	gt := strings.IndexByte(rest, '>')
	if gt < 0 {
		return "", false
	}
	rest = rest[gt+1:]
	end := strings.Index(rest, "</ac:adf-parameter>")
	if end < 0 {
		return "", false
	}
	value := strings.TrimSpace(textContent(rest[:end]))
	if value == "" {
		return "", false
	}
	return value, true
}

// adfAttribute reads <ac:adf-attribute key="K">V</ac:adf-attribute>.
func adfAttribute(block, key string) (string, bool) {
	keyPos := strings.Index(block, `key="`+key+`"`)
	if keyPos < 0 {
		return "", false
	}
	rest := block[keyPos:]
	gt := strings.IndexByte(rest, '>')
	if gt < 0 {
		return "", false
	}
	rest = rest[gt+1:]
	end := strings.Index(rest, "</ac:adf-attribute>")
	if end < 0 {
		return "", false
	}
	return textContent(rest[:end]), true
}
