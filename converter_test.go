package confluence2md

// Notes:
// - Tests Converter.Convert end to end with the real html-to-markdown stage
// - mockHTMLConverter replaces that stage to test fallback, panics and
//   cancellation without depending on converter internals
// - Property tests cover behavior that must hold for any input

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/alnah/go-confluence2md/internal/pipeline"
)

// ---------------------------------------------------------------------------
// Mock Implementations
// ---------------------------------------------------------------------------

type mockHTMLConverter struct {
	mu     sync.Mutex
	input  string
	output string
	err    error
	panic  any
}

func (m *mockHTMLConverter) ToMarkdown(ctx context.Context, html string) (string, error) {
	m.mu.Lock()
	m.input = html
	m.mu.Unlock()
	if m.panic != nil {
		panic(m.panic)
	}
	if m.err != nil {
		return "", m.err
	}
	return m.output, nil
}

func mustConverter(t *testing.T, opts ...Option) *Converter {
	t.Helper()
	conv, err := NewConverter(opts...)
	if err != nil {
		t.Fatalf("NewConverter() error = %v", err)
	}
	return conv
}

// ---------------------------------------------------------------------------
// TestNewConverter - Option validation
// ---------------------------------------------------------------------------

func TestNewConverter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    []Option
		wantErr error
	}{
		{"defaults", nil, nil},
		{"custom iterations", []Option{WithMaxIterations(10)}, nil},
		{"zero iterations", []Option{WithMaxIterations(0)}, ErrInvalidMaxIterations},
		{"negative iterations", []Option{WithMaxIterations(-1)}, ErrInvalidMaxIterations},
		{"custom threshold", []Option{WithResidueThreshold(64)}, nil},
		{"zero threshold", []Option{WithResidueThreshold(0)}, ErrInvalidResidueThreshold},
		{"nil html converter", []Option{WithHTMLConverter(nil)}, ErrNilHTMLConverter},
		{"nil logger ignored", []Option{WithLogger(nil)}, nil},
		{"skip tags", []Option{WithSkipTags("aside")}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			conv, err := NewConverter(tt.opts...)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewConverter() error = %v, want %v", err, tt.wantErr)
				}
				if conv != nil {
					t.Error("NewConverter() returned a converter along with an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewConverter() unexpected error = %v", err)
			}
			if conv.logger == nil || conv.normalizer == nil || conv.htmlConverter == nil {
				t.Errorf("NewConverter() left a stage unset: %+v", conv)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestConvert - Document conversions
// ---------------------------------------------------------------------------

func TestConvert(t *testing.T) {
	t.Parallel()

	conv := mustConverter(t)
	residue := strings.Repeat("A", 600)

	tests := []struct {
		name         string
		markup       string
		want         string
		wantContains []string
		wantExcludes []string
	}{
		{
			name:         "basic html",
			markup:       "<p>Hello <strong>world</strong></p>",
			wantContains: []string{"**world**"},
		},
		{
			name:         "headings",
			markup:       "<h1>Title</h1><h2>Subtitle</h2>",
			wantContains: []string{"# Title", "## Subtitle"},
		},
		{
			name:         "lists",
			markup:       "<ul><li>Item 1</li><li>Item 2</li></ul>",
			wantContains: []string{"Item 1", "Item 2"},
		},
		{
			name:         "html link",
			markup:       `<a href="https://example.com">Example</a>`,
			wantContains: []string{"[Example](https://example.com)"},
		},
		{
			name: "code macro",
			markup: `<ac:structured-macro ac:name="code" ac:macro-id="123">
				<ac:parameter ac:name="language">rust</ac:parameter>
				<ac:plain-text-body><![CDATA[let x = 1;]]></ac:plain-text-body>
			</ac:structured-macro>`,
			want: "```rust\nlet x = 1;\n```",
		},
		{
			name: "code keeps markdown punctuation",
			markup: `<ac:structured-macro ac:name="code">
				<ac:plain-text-body><![CDATA[a [b] *c* _d_ <e>]]></ac:plain-text-body>
			</ac:structured-macro>`,
			want: "```\na [b] *c* _d_ <e>\n```",
		},
		{
			name: "info panel",
			markup: `<ac:structured-macro ac:name="info">
				<ac:rich-text-body><p>Important note</p></ac:rich-text-body>
			</ac:structured-macro>`,
			wantContains: []string{"> **INFO**:", "Important note"},
		},
		{
			name: "info panel with plain body",
			markup: `<ac:structured-macro ac:name="info">
				<ac:parameter ac:name="title">Heads up</ac:parameter>
				<ac:rich-text-body>Read this</ac:rich-text-body>
			</ac:structured-macro>`,
			want: "> **INFO - Heads up**: Read this",
		},
		{
			name:   "attachment image",
			markup: `<ac:image><ri:attachment ri:filename="diagram.png"/></ac:image>`,
			want:   "[Image: diagram.png]",
		},
		{
			name:   "url image",
			markup: `<p><ac:image><ri:url ri:value="https://x.test/a.png"/></ac:image></p>`,
			want:   "![Image](https://x.test/a.png)",
		},
		{
			name:   "html image without source",
			markup: `<p>See <img alt="Logo"> here</p>`,
			want:   "See [Image: Logo] here",
		},
		{
			name: "drawio",
			markup: `<ac:structured-macro ac:name="drawio" ac:macro-id="uuid">
				<ac:parameter ac:name="diagramName">architecture</ac:parameter>
				<ac:parameter ac:name="contentId">123</ac:parameter>
				<ac:parameter ac:name="pageId">456</ac:parameter>
			</ac:structured-macro>`,
			want: "[Draw.io: architecture]",
		},
		{
			name: "task list",
			markup: `<ac:task-list>
				<ac:task><ac:task-status>incomplete</ac:task-status><ac:task-body>Todo</ac:task-body></ac:task>
				<ac:task><ac:task-status>complete</ac:task-status><ac:task-body>Done</ac:task-body></ac:task>
			</ac:task-list>`,
			want: "- [ ] Todo\n- [x] Done",
		},
		{
			name:         "adf panel",
			markup:       `<ac:adf-extension><ac:adf-node type="panel"><ac:adf-attribute key="panel-type">note</ac:adf-attribute><ac:adf-content><p>Content</p></ac:adf-content></ac:adf-node></ac:adf-extension>`,
			wantContains: []string{"> **NOTE**", "Content"},
		},
		{
			name:   "user mention",
			markup: `Contact <ac:link><ri:user ri:account-id="user123"/></ac:link> for help.`,
			want:   "Contact @user123 for help.",
		},
		{
			name:   "self-closing toc",
			markup: `<ac:structured-macro ac:name="toc" /><p>Content after TOC</p>`,
			want:   "Content after TOC",
		},
		{
			name: "status",
			markup: `<ac:structured-macro ac:name="status">
				<ac:parameter ac:name="title">Done</ac:parameter>
				<ac:parameter ac:name="colour">Green</ac:parameter>
			</ac:structured-macro>`,
			want: "[OK] DONE",
		},
		{
			name: "expand",
			markup: `<ac:structured-macro ac:name="expand">
				<ac:parameter ac:name="title">Show more</ac:parameter>
				<ac:rich-text-body><p>Hidden content</p></ac:rich-text-body>
			</ac:structured-macro>`,
			want: "**Show more**\n\nHidden content",
		},
		{
			name:   "emoticon",
			markup: `<ac:emoticon ac:name="smile" /> Hello!`,
			want:   ":) Hello!",
		},
		{
			name:   "link with page and body",
			markup: `<ac:link><ri:page ri:space-key="PROJ" ri:content-title="My Page"/><ac:link-body><strong>Click here</strong></ac:link-body></ac:link>`,
			want:   "[Click here](page:PROJ/My Page)",
		},
		{
			name:         "table",
			markup:       `<table><tr><th>A</th><th>B</th></tr><tr><td>1</td><td>2</td></tr></table>`,
			wantContains: []string{"|", "A", "B"},
		},
		{
			name: "metadata removed",
			markup: `<ac:structured-macro ac:name="code" ac:macro-id="uuid-123" ac:schema-version="1">
				<ac:plain-text-body>code</ac:plain-text-body>
			</ac:structured-macro>`,
			wantExcludes: []string{"uuid-123", "schema-version"},
		},
		{
			name:         "long residue removed",
			markup:       `<table><tr><td>Header</td></tr><tr><td>Data ` + residue + `</td></tr></table>`,
			wantContains: []string{"Header", "Data"},
			wantExcludes: []string{residue},
		},
		{
			name:         "diagram xml removed",
			markup:       `<p>Before</p><mxGraphModel><root><mxCell id="0"/></root></mxGraphModel><p>After</p>`,
			wantContains: []string{"Before", "After"},
			wantExcludes: []string{"mxGraphModel", "mxCell"},
		},
		{
			name:   "unknown macro with body",
			markup: `<ac:structured-macro ac:name="custom"><ac:rich-text-body><p>Some long text</p></ac:rich-text-body></ac:structured-macro>`,
			want:   "Some long text",
		},
		{
			name:   "unknown macro without body",
			markup: `<ac:structured-macro ac:name="custom"><ac:parameter ac:name="title">T</ac:parameter></ac:structured-macro>`,
			want:   "[Macro: custom (title=T)]",
		},
		{
			name:   "residual tags keep text",
			markup: `<p><ac:inline-comment-marker ac:ref="x">marked</ac:inline-comment-marker> text</p>`,
			want:   "marked text",
		},
		{
			name: "code macro nested in panel",
			markup: `<ac:structured-macro ac:name="info"><ac:rich-text-body><p>Run:</p>
				<ac:structured-macro ac:name="code"><ac:parameter ac:name="language">bash</ac:parameter>
				<ac:plain-text-body><![CDATA[make build]]></ac:plain-text-body></ac:structured-macro>
			</ac:rich-text-body></ac:structured-macro>`,
			wantContains: []string{"> **INFO**:", "Run:", "make build"},
		},
		{
			name: "code macro nested in expand",
			markup: `<ac:structured-macro ac:name="expand"><ac:parameter ac:name="title">Show</ac:parameter>
				<ac:rich-text-body><ac:structured-macro ac:name="code">
				<ac:plain-text-body><![CDATA[make build]]></ac:plain-text-body></ac:structured-macro>
			</ac:rich-text-body></ac:structured-macro>`,
			wantContains: []string{"**Show**", "make build"},
		},
		{
			name:         "long image filename removed",
			markup:       `<p>before <ac:image><ri:attachment ri:filename="` + residue + `.png"/></ac:image> after</p>`,
			wantContains: []string{"before", "after"},
			wantExcludes: []string{residue},
		},
		{
			name:         "long link target removed",
			markup:       `<p>see <ac:link><ri:url ri:value="https://x.test/` + residue + `"/><ac:plain-text-link-body><![CDATA[docs]]></ac:plain-text-link-body></ac:link> end</p>`,
			wantContains: []string{"see", "end"},
			wantExcludes: []string{residue},
		},
		{
			name:   "empty input",
			markup: "",
			want:   "",
		},
		{
			name:   "whitespace input",
			markup: "  \n\t ",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := conv.Convert(context.Background(), Input{Markup: tt.markup})
			if err != nil {
				t.Fatalf("Convert() error = %v", err)
			}
			got := result.Markdown
			if tt.want != "" || (tt.wantContains == nil && tt.wantExcludes == nil) {
				if got != tt.want {
					t.Errorf("Convert() = %q, want %q", got, tt.want)
				}
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("Convert() = %q, want to contain %q", got, want)
				}
			}
			for _, exclude := range tt.wantExcludes {
				if strings.Contains(got, exclude) {
					t.Errorf("Convert() = %q, should not contain %q", got, exclude)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestConvert_Stats - Pass reporting
// ---------------------------------------------------------------------------

func TestConvert_Stats(t *testing.T) {
	t.Parallel()

	conv := mustConverter(t)
	result, err := conv.Convert(context.Background(), Input{
		Markup: `<p><ac:emoticon ac:name="smile"/> <ac:link><ri:url ri:value="https://x.test"/></ac:link></p>`,
	})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	if got := result.Stats.Replaced(); got != 2 {
		t.Errorf("Stats.Replaced() = %d, want 2", got)
	}
	if result.Stats.Fragments != 2 {
		t.Errorf("Stats.Fragments = %d, want 2", result.Stats.Fragments)
	}
	if result.Stats.Capped() || result.Stats.Fallback {
		t.Errorf("Stats = %+v, want no cap and no fallback", result.Stats)
	}
	if len(result.Stats.Passes) == 0 || result.Stats.Passes[0].Pass != "ac:emoticon" {
		t.Errorf("Stats.Passes = %+v, want emoticon pass first", result.Stats.Passes)
	}
}

func TestConvert_IterationCap(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	conv := mustConverter(t, WithMaxIterations(2), WithLogger(logger))

	smile := `<ac:emoticon ac:name="smile"/>`
	result, err := conv.Convert(context.Background(), Input{
		Markup: "<p>" + smile + " " + smile + " " + smile + "</p>",
		Name:   "capped.xhtml",
	})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	if got := strings.Count(result.Markdown, ":)"); got != 2 {
		t.Errorf("Convert() = %q, want exactly 2 rendered emoticons", result.Markdown)
	}
	if strings.Contains(result.Markdown, "<ac:") {
		t.Errorf("Convert() = %q, custom tag leaked", result.Markdown)
	}
	if !result.Stats.Capped() {
		t.Error("Stats.Capped() = false, want true")
	}
	for _, want := range []string{"pass stopped at iteration cap", "pass=ac:emoticon", "name=capped.xhtml"} {
		if !strings.Contains(logs.String(), want) {
			t.Errorf("log output missing %q:\n%s", want, logs.String())
		}
	}
}

func TestConvert_CustomEmoticons(t *testing.T) {
	t.Parallel()

	conv := mustConverter(t, WithEmoticons(map[string]string{"rocket": ":rocket:", "smile": ":-)"}))
	got := conv.ConvertString(`<p><ac:emoticon ac:name="rocket"/> <ac:emoticon ac:name="smile"/> <ac:emoticon ac:name="sad"/></p>`)
	if got != ":rocket: :-) :(" {
		t.Errorf("ConvertString() = %q, want %q", got, ":rocket: :-) :(")
	}
}

func TestConvert_SkipTags(t *testing.T) {
	t.Parallel()

	conv := mustConverter(t, WithSkipTags("aside"))
	got := conv.ConvertString("<p>main</p><aside>sidebar</aside>")
	if got != "main" {
		t.Errorf("ConvertString() = %q, want %q", got, "main")
	}
}

func TestConvert_ResidueThreshold(t *testing.T) {
	t.Parallel()

	conv := mustConverter(t, WithResidueThreshold(8))
	got := conv.ConvertString("<p>keep abcdefghijkl</p>")
	if got != "keep " {
		t.Errorf("ConvertString() = %q, want %q", got, "keep ")
	}
}

// ---------------------------------------------------------------------------
// TestConvert_HTMLConverter - Stage replacement and failures
// ---------------------------------------------------------------------------

func TestConvert_HTMLConverterInput(t *testing.T) {
	t.Parallel()

	mock := &mockHTMLConverter{output: "converted"}
	conv := mustConverter(t, WithHTMLConverter(mock))

	got := conv.ConvertString(`<p ac:macro-id="1">x<ac:emoticon ac:name="smile"/></p>`)
	if got != "converted" {
		t.Errorf("ConvertString() = %q, want %q", got, "converted")
	}
	if strings.Contains(mock.input, "<ac:") || strings.Contains(mock.input, "macro-id") {
		t.Errorf("HTML converter received %q, want normalized markup", mock.input)
	}
}

func TestConvert_Fallback(t *testing.T) {
	t.Parallel()

	conv := mustConverter(t, WithHTMLConverter(&mockHTMLConverter{err: errors.New("boom")}))

	result, err := conv.Convert(context.Background(), Input{
		Markup: `<p>Hi <ac:emoticon ac:name="smile"/></p>`,
	})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if result.Markdown != "<p>Hi :)</p>" {
		t.Errorf("Convert() = %q, want %q", result.Markdown, "<p>Hi :)</p>")
	}
	if !result.Stats.Fallback {
		t.Error("Stats.Fallback = false, want true")
	}
}

func TestConvert_Panic(t *testing.T) {
	t.Parallel()

	conv := mustConverter(t, WithHTMLConverter(&mockHTMLConverter{panic: "kaboom"}))
	input := `<p>Hi <ac:emoticon ac:name="smile"/></p>`

	_, err := conv.Convert(context.Background(), Input{Markup: input})
	if !errors.Is(err, ErrInternal) {
		t.Fatalf("Convert() error = %v, want ErrInternal", err)
	}
	if !strings.Contains(err.Error(), "kaboom") {
		t.Errorf("Convert() error = %q, want panic value in message", err)
	}

	if got := conv.ConvertString(input); got != input {
		t.Errorf("ConvertString() = %q, want input unchanged", got)
	}
}

func TestConvert_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := mustConverter(t).Convert(ctx, Input{Markup: "<p>x</p>"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Convert() error = %v, want context.Canceled", err)
	}
}

func TestConvert_Concurrent(t *testing.T) {
	t.Parallel()

	conv := mustConverter(t)
	markup := `<h1>T</h1><ac:structured-macro ac:name="status"><ac:parameter ac:name="title">Go</ac:parameter></ac:structured-macro><p><ac:emoticon ac:name="heart"/></p>`
	want := conv.ConvertString(markup)

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := conv.ConvertString(markup); got != want {
				errs <- got
			}
		}()
	}
	wg.Wait()
	close(errs)

	for got := range errs {
		t.Errorf("concurrent ConvertString() = %q, want %q", got, want)
	}
}

// ---------------------------------------------------------------------------
// Properties
// ---------------------------------------------------------------------------

func TestToMarkdown_Properties(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		markup string
		want   string
	}{
		{"smile", `<ac:emoticon ac:name="smile" />`, ":)"},
		{"status", `<ac:structured-macro ac:name="status"><ac:parameter ac:name="title">Done</ac:parameter><ac:parameter ac:name="colour">Green</ac:parameter></ac:structured-macro>`, "[OK] DONE"},
		{"tasks in order", `<ac:task-list><ac:task><ac:task-status>incomplete</ac:task-status><ac:task-body>first</ac:task-body></ac:task><ac:task><ac:task-status>complete</ac:task-status><ac:task-body>second</ac:task-body></ac:task></ac:task-list>`, "- [ ] first\n- [x] second"},
		{"long run", "Before " + strings.Repeat("x", 600) + " after", "Before  after"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ToMarkdown(tt.markup); got != tt.want {
				t.Errorf("ToMarkdown(%q) = %q, want %q", tt.markup, got, tt.want)
			}
		})
	}
}

func TestConvert_PlainHTMLMatchesConverter(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"<p>Hello <em>there</em> [not a link]</p>",
		"<h2>Section</h2><ol><li>one</li><li>two</li></ol>",
		"<table><tr><th>K</th><th>V</th></tr><tr><td>a*b</td><td>c_d</td></tr></table>",
		"<pre><code>x := `y` \\[z\\]</code></pre>",
		"<blockquote><p>quoted # text</p></blockquote>",
	}

	conv := mustConverter(t)
	html := pipeline.NewHTMLToMarkdown(nil)

	for _, input := range inputs {
		md, err := html.ToMarkdown(context.Background(), input)
		if err != nil {
			t.Fatalf("ToMarkdown(%q) error = %v", input, err)
		}
		want := pipeline.NormalizeWhitespace(pipeline.Unescape(md))
		if got := conv.ConvertString(input); got != want {
			t.Errorf("ConvertString(%q) = %q, want converter output %q", input, got, want)
		}
	}
}

func TestConvert_NoCustomTagsInOutput(t *testing.T) {
	t.Parallel()

	inputs := []string{
		`<ac:structured-macro ac:name="info"><ac:rich-text-body><ac:structured-macro ac:name="code"><ac:plain-text-body>x</ac:plain-text-body></ac:structured-macro></ac:rich-text-body></ac:structured-macro>`,
		`<ac:link><ri:page ri:content-title="P"`,
		`<ac:emoticon ac:name="smile"`,
		`&lt;ac:structured-macro&gt;escaped&lt;/ac:structured-macro&gt;`,
		`<<ac:x>ac:y>t</ac:y>`,
		`<ri:attachment ri:filename="a"/><ac:unknown>kept</ac:unknown>`,
		strings.Repeat(`<ac:structured-macro ac:name="expand"><ac:rich-text-body>`, 50),
		strings.Repeat(`<ac:task-list><ac:task>`, 40) + strings.Repeat(`</ac:task></ac:task-list>`, 3),
	}

	conv := mustConverter(t, WithMaxIterations(5))
	for _, input := range inputs {
		got := conv.ConvertString(input)
		for _, marker := range []string{"<ac:", "<ri:"} {
			if strings.Contains(got, marker) {
				t.Errorf("ConvertString(%q) = %q contains %q", input, got, marker)
			}
		}
	}
}

func TestConvert_StripsSentinels(t *testing.T) {
	t.Parallel()

	got := ToMarkdown("<p>a\uE0100\uE011b</p>")
	if got != "a0b" {
		t.Errorf("ToMarkdown() = %q, want %q", got, "a0b")
	}
}
