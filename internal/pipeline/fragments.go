package pipeline

import (
	"strconv"
	"strings"
)

// Fragment tokens use Private Use Area characters so they pass through the
// HTML converter as plain text, untouched by escaping or whitespace collapse.
const (
	fragmentStart = "\uE010" // U+E010
	fragmentEnd   = "\uE011" // U+E011
)

var fragmentSentinels = strings.NewReplacer(fragmentStart, "", fragmentEnd, "")

// StripSentinels removes fragment delimiters from untrusted input so that
// Restore only ever substitutes tokens minted during the current call.
func StripSentinels(s string) string {
	if !strings.Contains(s, fragmentStart) && !strings.Contains(s, fragmentEnd) {
		return s
	}
	return fragmentSentinels.Replace(s)
}

// Fragments holds Markdown produced before the HTML converter runs. Each
// stored string is replaced by an opaque token and restored afterwards.
// A Fragments value belongs to one conversion call.
type Fragments struct {
	items []string
}

// Protect stores md and returns the token standing in for it.
func (f *Fragments) Protect(md string) string {
	f.items = append(f.items, md)
	return fragmentStart + strconv.Itoa(len(f.items)-1) + fragmentEnd
}

// Len returns the number of stored fragments.
func (f *Fragments) Len() int {
	return len(f.items)
}

// Restore replaces every token in s with its fragment. Fragments may embed
// tokens minted before them; those are expanded too.
func (f *Fragments) Restore(s string) string {
	if f == nil || len(f.items) == 0 || !strings.Contains(s, fragmentStart) {
		return s
	}
	resolved := make([]string, len(f.items))
	for i, item := range f.items {
		resolved[i] = expandTokens(item, resolved[:i])
	}
	return expandTokens(s, resolved)
}

// expandTokens substitutes tokens whose index is within known. Unknown or
// malformed tokens are dropped.
func expandTokens(s string, known []string) string {
	if !strings.Contains(s, fragmentStart) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for {
		i := strings.Index(s, fragmentStart)
		if i < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:i])
		s = s[i+len(fragmentStart):]
		j := strings.Index(s, fragmentEnd)
		if j < 0 {
			b.WriteString(s)
			return b.String()
		}
		if n, err := strconv.Atoi(s[:j]); err == nil && n >= 0 && n < len(known) {
			b.WriteString(known[n])
		}
		s = s[j+len(fragmentEnd):]
	}
}

// rendering is the output of one normalizer rewrite. lead is finished
// Markdown; body is markup still to be handled by the HTML converter.
type rendering struct {
	lead  string
	body  string
	block bool
}

// emit turns r into text for the working document. Without a fragment table
// the Markdown is inlined as is.
func (r rendering) emit(frags *Fragments) string {
	if frags == nil {
		if r.body == "" {
			return r.lead
		}
		if r.lead == "" {
			return r.body
		}
		return r.lead + "\n\n" + r.body
	}
	if r.lead == "" {
		return r.body
	}
	out := frags.Protect(r.lead)
	if r.block {
		out = "<p>" + out + "</p>"
	}
	return out + r.body
}

func inline(md string) rendering {
	return rendering{lead: md}
}

func blockMD(md string) rendering {
	return rendering{lead: md, block: true}
}
