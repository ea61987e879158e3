// Package format produces markdown snippets and applies formatting actions
// to a text buffer.
package format

import (
	"strings"

	"github.com/dshills/keymark/internal/i18n"
)

// Table dimension limits and defaults.
const (
	MinDimension = 1
	MaxDimension = 99
	DefaultRows  = 3
	DefaultCols  = 2
)

const separatorCell = "----------"

// Translator formats localized messages.
type Translator interface {
	T(loc i18n.Locale, key string, args ...any) string
}

// Table returns a markdown table template with a header row of cols labels,
// a separator row and rows rows of cell labels. Labels are localized through
// the "table_header" and "table_cell" keys. Non-positive dimensions yield "".
func Table(rows, cols int, loc i18n.Locale, tr Translator) string {
	if rows <= 0 || cols <= 0 {
		return ""
	}

	var b strings.Builder
	cells := make([]string, cols)

	for c := range cols {
		cells[c] = tr.T(loc, "table_header", c+1)
	}
	writeRow(&b, cells)

	for c := range cols {
		cells[c] = separatorCell
	}
	writeRow(&b, cells)

	for r := range rows {
		for c := range cols {
			cells[c] = tr.T(loc, "table_cell", r+1, c+1)
		}
		writeRow(&b, cells)
	}
	return b.String()
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteString("| ")
	b.WriteString(strings.Join(cells, " | "))
	b.WriteString(" |\n")
}

// ClampDimension limits a requested table dimension to [MinDimension, MaxDimension].
func ClampDimension(n int) int {
	if n < MinDimension {
		return MinDimension
	}
	if n > MaxDimension {
		return MaxDimension
	}
	return n
}
