package renderer

import (
	"strings"
	"testing"

	"github.com/dshills/keymark/internal/i18n"
	"github.com/dshills/keymark/internal/theme"
)

const sample = "[TOC]\n\n# Title\n\nSome ~~old~~ text.\n\n- [ ] todo\n- [x] done\n\n![logo](logo.png)\n\n```go\nfunc main() {}\n```\n"

func TestRender_Idempotent(t *testing.T) {
	p := New()
	th := theme.New(theme.Light)

	a := p.Render(sample, th, i18n.English)
	b := p.Render(sample, th, i18n.English)
	if a != b {
		t.Error("expected byte-identical output for identical input")
	}
	if a.HTML != a.Head+a.Body {
		t.Error("expected HTML to be Head followed by Body")
	}
}

func TestRender_ThemeToggleChangesOnlyHead(t *testing.T) {
	p := New()
	light := theme.New(theme.Light)

	a := p.Render(sample, light, i18n.English)
	b := p.Render(sample, light.Toggle(), i18n.English)

	if a.Body != b.Body {
		t.Error("expected body to be independent of the theme")
	}
	if a.Head == b.Head {
		t.Error("expected head to change with the theme")
	}
	if !strings.Contains(b.Head, "#f0f0f0") {
		t.Error("expected dark tokens in dark head")
	}
}

func TestRender_Features(t *testing.T) {
	p := New()
	th := theme.New(theme.Light)

	tests := []struct {
		name  string
		input string
		want  []string
		not   []string
	}{
		{
			name:  "strikethrough",
			input: "~~old~~ new",
			want:  []string{"<del>old</del> new"},
		},
		{
			name:  "checklist",
			input: "- [ ] todo\n- [x] done\n- [X] also\n",
			want:  []string{"<li>☐ todo</li>", "<li>✅ done</li>", "<li>✅ also</li>"},
		},
		{
			name:  "image",
			input: "![logo](logo.png)",
			want:  []string{`style="max-width:200px; height:auto;"`},
		},
		{
			name:  "table",
			input: "| a | b |\n|---|---|\n| 1 | 2 |\n",
			want:  []string{"<table>", "<th>a</th>", "<td>2</td>"},
		},
		{
			name:  "footnote",
			input: "Text[^1]\n\n[^1]: A note.\n",
			want:  []string{`class="footnotes"`, "A note."},
		},
		{
			name:  "definition list",
			input: "Term\n: Definition\n",
			want:  []string{"<dl>", "<dt>Term</dt>", "<dd>Definition</dd>"},
		},
		{
			name:  "raw html",
			input: "Press <kbd>Ctrl</kbd>",
			want:  []string{"<kbd>Ctrl</kbd>"},
		},
		{
			name:  "heading id",
			input: "# Hello World\n",
			want:  []string{`<h1 id="hello-world">Hello World</h1>`},
		},
		{
			name:  "highlighted code",
			input: "```go\nfunc main() {}\n```\n",
			want:  []string{`class="chroma"`},
			not:   []string{"style=\"color"},
		},
		{
			name:  "toc",
			input: "[TOC]\n\n# Intro\n\n## Details\n",
			want:  []string{`<div class="toc">`, `href="#details"`},
			not:   []string{"[TOC]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := p.Render(tt.input, th, i18n.English).Body
			for _, w := range tt.want {
				if !strings.Contains(body, w) {
					t.Errorf("body missing %q:\n%s", w, body)
				}
			}
			for _, n := range tt.not {
				if strings.Contains(body, n) {
					t.Errorf("body unexpectedly contains %q:\n%s", n, body)
				}
			}
		})
	}
}

func TestRender_Direction(t *testing.T) {
	p := New()
	th := theme.New(theme.Light)

	ar := p.Render("مرحبا", th, i18n.Arabic)
	if !strings.HasPrefix(ar.Body, `<div class="markdown-body" lang="ar" dir="rtl">`) {
		t.Errorf("unexpected wrapper for Arabic: %q", ar.Body)
	}

	en := p.Render("hello", th, i18n.English)
	if !strings.HasPrefix(en.Body, `<div class="markdown-body" lang="en" dir="ltr">`) {
		t.Errorf("unexpected wrapper for English: %q", en.Body)
	}
}

func TestRender_Counts(t *testing.T) {
	out := New().Render("héllo  wörld\nfoo", theme.New(theme.Light), i18n.English)
	if out.Words != 3 {
		t.Errorf("Words = %d, want 3", out.Words)
	}
	if out.Chars != 16 {
		t.Errorf("Chars = %d, want 16", out.Chars)
	}

	empty := New().Render("", theme.New(theme.Light), i18n.English)
	if empty.Words != 0 || empty.Chars != 0 {
		t.Errorf("expected zero counts for empty text, got %d/%d", empty.Words, empty.Chars)
	}
}

func TestOptions(t *testing.T) {
	th := theme.New(theme.Light)

	p := New(WithImageMaxWidth(50), WithMath(false), WithHighlighting(false))
	out := p.Render("![x](x.png)\n\n```go\nx := 1\n```\n", th, i18n.English)

	if !strings.Contains(out.Body, "max-width:50px") {
		t.Error("expected configured image width")
	}
	if strings.Contains(out.Head, "MathJax") {
		t.Error("expected no math script when math is disabled")
	}
	if !strings.Contains(out.Body, `<code class="language-go">`) {
		t.Errorf("expected plain code block without highlighting:\n%s", out.Body)
	}

	if !strings.Contains(New().Render("x", th, i18n.English).Head, "MathJax") {
		t.Error("expected math script by default")
	}
	if New(WithImageMaxWidth(-1)).ImageMaxWidth() != DefaultImageMaxWidth {
		t.Error("expected non-positive width to be ignored")
	}
}

func TestRewrite(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"strike", "<p>~~a~~ and ~~b~~</p>", "<p><del>a</del> and <del>b</del></p>"},
		{"unchecked", "<li>[ ] task</li>", "<li>☐ task</li>"},
		{"checked", "<li>[x] task</li>", "<li>✅ task</li>"},
		{"checked upper", "<li>[X] task</li>", "<li>✅ task</li>"},
		{"paragraph item", "<li>\n<p>[ ] task</p>", "<li>\n<p>☐ task</p>"},
		{"image", `<img src="a.png" alt="a">`, `<img src="a.png" alt="a" style="max-width:200px; height:auto;">`},
		{"self closing image", `<img src="a/b.png" />`, `<img src="a/b.png" style="max-width:200px; height:auto;" />`},
		{"untouched", "<p>plain</p>", "<p>plain</p>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rewrite(tt.input, 200); got != tt.want {
				t.Errorf("rewrite(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestBuildTOC(t *testing.T) {
	got := buildTOC([]heading{
		{level: 1, id: "intro", title: "Intro"},
		{level: 2, id: "details", title: "Details"},
		{level: 1, id: "end", title: "End"},
	})
	want := "<div class=\"toc\">\n<ul>\n" +
		"<li><a href=\"#intro\">Intro</a>\n<ul>\n" +
		"<li><a href=\"#details\">Details</a></li>\n</ul>\n</li>\n" +
		"<li><a href=\"#end\">End</a></li>\n" +
		"</ul>\n</div>"
	if got != want {
		t.Errorf("buildTOC() =\n%s\nwant\n%s", got, want)
	}

	if buildTOC(nil) != `<div class="toc"></div>` {
		t.Error("expected empty toc container for no headings")
	}
}

func TestFallbackBody(t *testing.T) {
	if got := fallbackBody("<b>&"); got != "<pre>&lt;b&gt;&amp;</pre>\n" {
		t.Errorf("fallbackBody() = %q", got)
	}
}
