package renderer

import (
	"html"
	"strings"

	"github.com/yuin/goldmark/ast"
)

const tocMarker = "<p>[TOC]</p>"

type heading struct {
	level int
	id    string
	title string
}

// collectHeadings walks the document and returns every heading in order.
func collectHeadings(doc ast.Node, src []byte) []heading {
	var out []heading
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}

		var id string
		if v, ok := h.AttributeString("id"); ok {
			switch v := v.(type) {
			case []byte:
				id = string(v)
			case string:
				id = v
			}
		}
		out = append(out, heading{level: h.Level, id: id, title: plainText(h, src)})
		return ast.WalkSkipChildren, nil
	})
	return out
}

func plainText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// buildTOC renders headings as nested unordered lists. A heading never
// nests more than one level below its predecessor.
func buildTOC(headings []heading) string {
	if len(headings) == 0 {
		return `<div class="toc"></div>`
	}

	base := headings[0].level
	for _, h := range headings {
		if h.level < base {
			base = h.level
		}
	}

	var b strings.Builder
	b.WriteString("<div class=\"toc\">\n<ul>\n")
	depth := 1
	for i, h := range headings {
		level := h.level - base + 1
		if level > depth+1 {
			level = depth + 1
		}
		if i == 0 {
			level = 1
		}

		if i > 0 {
			switch {
			case level > depth:
				b.WriteString("\n<ul>\n")
				depth++
			default:
				b.WriteString("</li>\n")
				for depth > level {
					b.WriteString("</ul>\n</li>\n")
					depth--
				}
			}
		}

		b.WriteString(`<li><a href="#`)
		b.WriteString(html.EscapeString(h.id))
		b.WriteString(`">`)
		b.WriteString(html.EscapeString(h.title))
		b.WriteString("</a>")
	}

	b.WriteString("</li>\n")
	for depth > 1 {
		b.WriteString("</ul>\n</li>\n")
		depth--
	}
	b.WriteString("</ul>\n</div>")
	return b.String()
}
