package renderer

import (
	"fmt"
	"regexp"
)

var (
	strikePattern    = regexp.MustCompile(`~~(.*?)~~`)
	uncheckedPattern = regexp.MustCompile(`<li>(\s*<p>)?\s*\[\s*\]\s*`)
	checkedPattern   = regexp.MustCompile(`(?i)<li>(\s*<p>)?\s*\[\s*x\s*\]\s*`)
	imagePattern     = regexp.MustCompile(`<img([^>]*?)(\s*/?)>`)
)

// rewrite applies the post-conversion rewrites. The order is fixed:
// strikethrough, checklist markers, image sizing.
func rewrite(body string, imageMaxWidth int) string {
	body = strikePattern.ReplaceAllString(body, "<del>$1</del>")

	body = uncheckedPattern.ReplaceAllString(body, "<li>${1}☐ ")
	body = checkedPattern.ReplaceAllString(body, "<li>${1}✅ ")

	style := fmt.Sprintf(`<img${1} style="max-width:%dpx; height:auto;"${2}>`, imageMaxWidth)
	body = imagePattern.ReplaceAllString(body, style)

	return body
}
