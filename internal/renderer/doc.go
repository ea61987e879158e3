// Package renderer converts markdown text into a themed HTML document.
//
// The pipeline runs in three stages:
//
//	raw markdown ──► goldmark (tables, footnotes, definition lists,
//	                  attribute lists, heading ids, chroma highlighting)
//	             ──► [TOC] expansion from the heading tree
//	             ──► fixed rewrites: strikethrough, checklist, image sizing
//
// The structural markup (Output.Body) does not depend on the theme; code
// highlighting uses CSS classes and the per-theme stylesheet lives in
// Output.Head. Toggling the theme therefore changes only the head.
//
// Usage:
//
//	p := renderer.New(renderer.WithImageMaxWidth(320))
//	out := p.Render(text, theme.New(theme.Dark), i18n.English)
//	fmt.Println(out.HTML, out.Words, out.Chars)
package renderer
