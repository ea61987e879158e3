package theme

import (
	"bytes"
	"fmt"
	"sync"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
)

const styleTemplate = `body {
	font-family: Arial, sans-serif;
	color: %[1]s;
}
a {
	color: %[2]s;
}
table {
	border-collapse: collapse;
	width: 100%%;
	margin-top: 10px;
	margin-bottom: 10px;
}
th, td {
	border: 1px solid %[3]s;
	padding: 8px;
	text-align: left;
}
th {
	background-color: %[4]s;
	font-weight: bold;
}
pre {
	background-color: %[5]s;
	padding: 10px;
	border-radius: 5px;
	overflow-x: auto;
}
code {
	font-family: 'Courier New', Courier, monospace;
}
kbd {
	font-family: monospace;
	padding: 2px 4px;
	border: 1px solid %[7]s;
	border-radius: 3px;
	background-color: %[6]s;
	font-size: 0.9em;
	color: %[1]s;
	white-space: nowrap;
}
.footnote-ref a, a.footnote-ref {
	color: %[8]s;
	font-size: 0.8em;
	text-decoration: none;
}
.footnote-backref, a.footnote-backref {
	color: %[8]s;
	font-size: 0.8em;
	text-decoration: none;
}
.footnotes {
	border-top: 1px solid %[9]s;
}
.footnotes hr {
	border: 0;
	height: 1px;
	background-color: %[10]s;
	margin-top: 20px;
	margin-bottom: 20px;
}
del {
	text-decoration: line-through;
	color: inherit;
}
`

var (
	blockMu    sync.Mutex
	blockCache = map[Mode]string{}
)

// StyleBlock returns the complete <style> element for the context. The result
// is deterministic for a given mode and is computed once per mode.
func (c Context) StyleBlock() string {
	blockMu.Lock()
	defer blockMu.Unlock()

	if s, ok := blockCache[c.mode]; ok {
		return s
	}
	s := buildStyleBlock(c)
	blockCache[c.mode] = s
	return s
}

func buildStyleBlock(c Context) string {
	t := c.Tokens()

	var buf bytes.Buffer
	buf.WriteString("<style>\n")
	fmt.Fprintf(&buf, styleTemplate,
		t.Text, t.Link, t.Border, t.HeaderBG, t.CodeBG,
		t.KbdBG, t.KbdBorder, t.FootnoteLink, t.FootnoteBorder, t.FootnoteHR)
	buf.WriteString(highlightCSS(c.HighlightStyle()))
	buf.WriteString("</style>\n")
	return buf.String()
}

// highlightCSS renders the class-based chroma stylesheet for a style name.
// Unknown names fall back to chroma's default style.
func highlightCSS(name string) string {
	var buf bytes.Buffer
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&buf, styles.Get(name)); err != nil {
		return ""
	}
	return buf.String()
}
