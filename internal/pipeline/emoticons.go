package pipeline

// defaultEmoticons maps emoticon names to their text rendering.
var defaultEmoticons = map[string]string{
	"smile":       ":)",
	"smiley":      ":)",
	"sad":         ":(",
	"wink":        ";)",
	"laugh":       ":D",
	"thumbs-up":   "(y)",
	"thumbs-down": "(n)",
	"tick":        "[x]",
	"check":       "[x]",
	"cross":       "[!]",
	"error":       "[!]",
	"warning":     "[!]",
	"information": "(i)",
	"info":        "(i)",
	"question":    "(?)",
	"light-on":    "(!)",
	"idea":        "(!)",
	"star":        "(*)",
	"heart":       "<3",
}

// DefaultEmoticons returns a copy of the built-in emoticon table.
func DefaultEmoticons() map[string]string {
	out := make(map[string]string, len(defaultEmoticons))
	for k, v := range defaultEmoticons {
		out[k] = v
	}
	return out
}

// mergeEmoticons overlays extra on the built-in table.
func mergeEmoticons(extra map[string]string) map[string]string {
	out := DefaultEmoticons()
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// renderEmoticon returns the text for one <ac:emoticon> element. Unknown
// names render verbatim; a missing name renders as nothing.
func renderEmoticon(table map[string]string, block string) rendering {
	name, ok := attr(block, "ac:name")
	if !ok || name == "" {
		return rendering{}
	}
	if text, ok := table[name]; ok {
		return inline(text)
	}
	return inline(name)
}
