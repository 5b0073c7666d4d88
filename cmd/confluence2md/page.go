package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/alnah/go-confluence2md/internal/hints"
	"github.com/alnah/go-confluence2md/internal/yamlutil"
)

// Sentinel errors for page documents.
var (
	ErrJSONBody          = errors.New("page JSON has no storage body")
	ErrEmbedRequiresJSON = errors.New("--embed requires page JSON input")
)

// Paths written by --embed inside the page JSON.
const (
	embedValuePath          = "body.markdown.value"
	embedRepresentationPath = "body.markdown.representation"
)

// pageMeta is the front matter written by --front-matter.
type pageMeta struct {
	Title   string `yaml:"title,omitempty"`
	ID      string `yaml:"id,omitempty"`
	Space   string `yaml:"space,omitempty"`
	Version int64  `yaml:"version,omitempty"`
}

// document is one unit of CLI work: the markup to convert and the page
// JSON it came from, if any.
type document struct {
	name   string
	markup string
	page   []byte // Raw page JSON; nil for bare storage markup
	meta   pageMeta
}

// parseDocument reads data as bare storage markup or, when asJSON is set,
// as a REST page document whose storage body lives at jsonPath.
func parseDocument(name string, data []byte, asJSON bool, jsonPath string) (*document, error) {
	doc := &document{name: name}

	if !asJSON {
		doc.markup = string(data)
		doc.meta.Title = titleFromName(name)
		return doc, nil
	}

	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: %s is not valid JSON", ErrJSONBody, name)
	}

	body := gjson.GetBytes(data, jsonPath)
	if body.Type != gjson.String {
		return nil, fmt.Errorf("%w: no string at %q in %s%s", ErrJSONBody, jsonPath, name, hints.ForJSONBody(jsonPath))
	}

	doc.markup = body.String()
	doc.page = data
	doc.meta = pageMetaFromJSON(data)
	if doc.meta.Title == "" {
		doc.meta.Title = titleFromName(name)
	}
	return doc, nil
}

// pageMetaFromJSON collects front matter fields from a page document.
// The space key comes from space.key (v1 API) or spaceId (v2 API).
func pageMetaFromJSON(data []byte) pageMeta {
	fields := gjson.GetManyBytes(data, "title", "id", "space.key", "spaceId", "version.number")

	meta := pageMeta{
		Title:   fields[0].String(),
		ID:      fields[1].String(),
		Space:   fields[2].String(),
		Version: fields[4].Int(),
	}
	if meta.Space == "" {
		meta.Space = fields[3].String()
	}
	return meta
}

// titleFromName derives a title from a file name. Stdin has none.
func titleFromName(name string) string {
	if name == "" || name == stdinName {
		return ""
	}
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// withFrontMatter prefixes markdown with YAML front matter for meta.
func withFrontMatter(meta pageMeta, markdown string) (string, error) {
	fm, err := yamlutil.FrontMatter(meta)
	if err != nil {
		return "", fmt.Errorf("building front matter: %w", err)
	}
	if markdown == "" {
		return string(fm), nil
	}
	return string(fm) + "\n" + markdown, nil
}

// embedMarkdown returns page with the converted Markdown stored next to the
// storage body. Other fields are kept byte for byte.
func embedMarkdown(page []byte, markdown string) ([]byte, error) {
	out, err := sjson.SetBytes(page, embedValuePath, markdown)
	if err != nil {
		return nil, fmt.Errorf("embedding markdown: %w", err)
	}
	out, err = sjson.SetBytes(out, embedRepresentationPath, "markdown")
	if err != nil {
		return nil, fmt.Errorf("embedding markdown: %w", err)
	}
	return out, nil
}
