package renderer

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"pkt.systems/pslog"

	"github.com/dshills/keymark/internal/i18n"
	"github.com/dshills/keymark/internal/theme"
)

const mathScript = `<script id="MathJax-script" async src="https://cdn.jsdelivr.net/npm/mathjax@3/es5/tex-mml-chtml.js"></script>` + "\n"

// Output is the result of rendering one document.
type Output struct {
	// Head holds the theme style block and optional script tags.
	Head string
	// Body holds the structural markup. It does not depend on the theme.
	Body string
	// HTML is Head followed by Body.
	HTML string
	// Words is the number of whitespace-delimited tokens in the raw text.
	Words int
	// Chars is the number of runes in the raw text.
	Chars int
}

// Pipeline renders markdown. A Pipeline is safe for concurrent use.
type Pipeline struct {
	md            goldmark.Markdown
	imageMaxWidth int
	highlight     bool
	math          bool
	logger        pslog.Logger
}

// New creates a pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		imageMaxWidth: DefaultImageMaxWidth,
		highlight:     true,
		math:          true,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = pslog.Ctx(context.Background())
	}

	exts := []goldmark.Extender{
		extension.Table,
		extension.Footnote,
		extension.DefinitionList,
	}
	if p.highlight {
		exts = append(exts, highlighting.NewHighlighting(
			highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
		))
	}

	p.md = goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithAttribute(),
		),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)
	return p
}

// ImageMaxWidth returns the configured image width in pixels.
func (p *Pipeline) ImageMaxWidth() int {
	return p.imageMaxWidth
}

// Render converts raw markdown into a complete themed document.
// Render never fails; unconvertible input degrades to an escaped <pre> block.
func (p *Pipeline) Render(raw string, th theme.Context, loc i18n.Locale) Output {
	body := p.Convert(raw)

	dir := "ltr"
	if i18n.IsRTL(loc) {
		dir = "rtl"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<div class=\"markdown-body\" lang=\"%s\" dir=\"%s\">\n", html.EscapeString(loc.String()), dir)
	b.WriteString(body)
	b.WriteString("</div>\n")

	out := Output{
		Head: p.head(th),
		Body: b.String(),
	}
	out.HTML = out.Head + out.Body
	out.Words, out.Chars = Counts(raw)
	return out
}

// Convert returns the rewritten structural markup for raw without the
// wrapper element.
func (p *Pipeline) Convert(raw string) (body string) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("markdown conversion panicked", "panic", fmt.Sprint(r))
			body = fallbackBody(raw)
		}
	}()

	converted, err := p.convert(raw)
	if err != nil {
		p.logger.Warn("markdown conversion failed", "err", err)
		return fallbackBody(raw)
	}
	return rewrite(converted, p.imageMaxWidth)
}

func (p *Pipeline) convert(raw string) (string, error) {
	src := []byte(raw)
	doc := p.md.Parser().Parse(text.NewReader(src))

	var buf bytes.Buffer
	if err := p.md.Renderer().Render(&buf, src, doc); err != nil {
		return "", err
	}

	out := buf.String()
	if strings.Contains(out, tocMarker) {
		out = strings.ReplaceAll(out, tocMarker, buildTOC(collectHeadings(doc, src)))
	}
	return out, nil
}

func (p *Pipeline) head(th theme.Context) string {
	if !p.math {
		return th.StyleBlock()
	}
	return th.StyleBlock() + mathScript
}

func fallbackBody(raw string) string {
	return "<pre>" + html.EscapeString(raw) + "</pre>\n"
}

// Counts returns the word and character counts for raw text.
func Counts(raw string) (words, chars int) {
	return len(strings.Fields(raw)), utf8.RuneCountInString(raw)
}
