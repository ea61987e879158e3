// Package theme defines the light and dark color themes used by the
// markdown renderer.
//
// A Context is an immutable value. Toggling produces a new Context; the
// caller is responsible for re-rendering whatever depends on it.
package theme

import (
	"fmt"
	"strings"
)

// Mode selects one of the two closed token sets.
type Mode uint8

const (
	// Light is the default mode.
	Light Mode = iota
	// Dark is the dark mode.
	Dark
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Light:
		return "light"
	case Dark:
		return "dark"
	default:
		return "unknown"
	}
}

// ParseMode parses a mode name (case-insensitive).
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "light":
		return Light, nil
	case "dark":
		return Dark, nil
	default:
		return Light, fmt.Errorf("unknown theme %q", s)
	}
}

// Tokens holds the color values a theme contributes to rendered output.
type Tokens struct {
	Text           string
	Link           string
	Border         string
	HeaderBG       string
	CodeBG         string
	KbdBG          string
	KbdBorder      string
	FootnoteLink   string
	FootnoteBorder string
	FootnoteHR     string
}

var lightTokens = Tokens{
	Text:           "#000000",
	Link:           "#0000ee",
	Border:         "#ddd",
	HeaderBG:       "#f2f2f2",
	CodeBG:         "#eaeaea",
	KbdBG:          "#f8f8f8",
	KbdBorder:      "#ccc",
	FootnoteLink:   "#0000ee",
	FootnoteBorder: "#ccc",
	FootnoteHR:     "#ccc",
}

var darkTokens = Tokens{
	Text:           "#f0f0f0",
	Link:           "#99c1ff",
	Border:         "#555",
	HeaderBG:       "#444",
	CodeBG:         "#3a3a3a",
	KbdBG:          "#2b2b2b",
	KbdBorder:      "#4b4b4b",
	FootnoteLink:   "#99c1ff",
	FootnoteBorder: "#444",
	FootnoteHR:     "#666",
}

// Context is the theme value threaded into rendering.
type Context struct {
	mode Mode
}

// New returns the context for mode.
func New(mode Mode) Context {
	if mode != Dark {
		mode = Light
	}
	return Context{mode: mode}
}

// Mode returns the context mode.
func (c Context) Mode() Mode {
	return c.mode
}

// IsDark returns true for the dark theme.
func (c Context) IsDark() bool {
	return c.mode == Dark
}

// Toggle returns the opposite theme.
func (c Context) Toggle() Context {
	if c.mode == Dark {
		return New(Light)
	}
	return New(Dark)
}

// Tokens returns the color tokens for the context mode.
func (c Context) Tokens() Tokens {
	if c.mode == Dark {
		return darkTokens
	}
	return lightTokens
}

// HighlightStyle returns the chroma style name used for code blocks.
func (c Context) HighlightStyle() string {
	if c.mode == Dark {
		return "monokai"
	}
	return "github"
}

// String returns the mode name.
func (c Context) String() string {
	return c.mode.String()
}
