// Package i18n routes every user-facing string through a locale-aware
// message catalog.
//
// Messages live in embedded TOML files, one per language (locales/<tag>.toml),
// mapping a locale-neutral key to a format string. The core stores only keys
// and arguments; formatting happens at the edge via Catalog.T.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Locale identifies a language.
type Locale = language.Tag

// Supported locales shipped with the editor.
var (
	English = language.English
	Arabic  = language.Arabic
	Chinese = language.Chinese
	Spanish = language.Spanish
)

//go:embed locales/*.toml
var embedded embed.FS

// Catalog formats localized messages.
type Catalog struct {
	builder   *catalog.Builder
	messages  map[language.Tag]map[string]string
	supported []language.Tag
	matcher   language.Matcher
	fallback  language.Tag

	mu       sync.Mutex
	printers map[language.Tag]*message.Printer
}

// Load returns the catalog built from the embedded locale files.
func Load() (*Catalog, error) {
	return LoadFS(embedded, "locales")
}

// MustLoad is like Load but panics on error. The embedded files are part of
// the binary, so failure here is a build defect.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}

// LoadFS builds a catalog from every *.toml file in dir. The file name
// (without extension) is the BCP 47 tag. English must be present.
func LoadFS(fsys fs.FS, dir string) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading locales: %w", err)
	}

	c := &Catalog{
		builder:  catalog.NewBuilder(catalog.Fallback(English)),
		messages: make(map[language.Tag]map[string]string),
		fallback: English,
		printers: make(map[language.Tag]*message.Printer),
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || path.Ext(name) != ".toml" {
			continue
		}

		tag, err := language.Parse(strings.TrimSuffix(name, ".toml"))
		if err != nil {
			return nil, fmt.Errorf("locale file %s: %w", name, err)
		}

		data, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}

		var msgs map[string]string
		if err := toml.Unmarshal(data, &msgs); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}

		for key, msg := range msgs {
			if err := c.builder.SetString(tag, key, msg); err != nil {
				return nil, fmt.Errorf("%s: key %q: %w", name, key, err)
			}
		}
		c.messages[tag] = msgs
		c.supported = append(c.supported, tag)
	}

	if _, ok := c.messages[English]; !ok {
		return nil, fmt.Errorf("locales: missing %s messages", English)
	}

	// English first so the matcher falls back to it.
	sort.SliceStable(c.supported, func(i, j int) bool {
		if c.supported[i] == English {
			return true
		}
		if c.supported[j] == English {
			return false
		}
		return c.supported[i].String() < c.supported[j].String()
	})
	c.matcher = language.NewMatcher(c.supported)

	return c, nil
}

// T formats the message for key in loc. Keys missing in loc fall back to
// English; keys missing everywhere are returned as-is.
func (c *Catalog) T(loc Locale, key string, args ...any) string {
	tag := c.resolve(loc)
	if _, ok := c.messages[tag][key]; !ok {
		tag = c.fallback
		if _, ok := c.messages[tag][key]; !ok {
			return key
		}
	}
	return c.printer(tag).Sprintf(key, args...)
}

// Has reports whether loc (or the fallback) defines key.
func (c *Catalog) Has(loc Locale, key string) bool {
	if _, ok := c.messages[c.resolve(loc)][key]; ok {
		return true
	}
	_, ok := c.messages[c.fallback][key]
	return ok
}

// Match maps a user supplied language string (e.g. "ar", "es-MX") to the
// closest supported locale. Unknown input yields English.
func (c *Catalog) Match(s string) Locale {
	tag, err := language.Parse(s)
	if err != nil {
		return c.fallback
	}
	return c.resolve(tag)
}

// Supported returns the supported locales, English first.
func (c *Catalog) Supported() []Locale {
	out := make([]Locale, len(c.supported))
	copy(out, c.supported)
	return out
}

// IsSupported reports whether s parses to a locale with its own messages.
func (c *Catalog) IsSupported(s string) bool {
	tag, err := language.Parse(s)
	if err != nil {
		return false
	}
	_, _, conf := c.matcher.Match(tag)
	return conf != language.No
}

func (c *Catalog) resolve(loc Locale) language.Tag {
	if _, ok := c.messages[loc]; ok {
		return loc
	}
	_, idx, conf := c.matcher.Match(loc)
	if conf == language.No {
		return c.fallback
	}
	return c.supported[idx]
}

func (c *Catalog) printer(tag language.Tag) *message.Printer {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.printers[tag]
	if !ok {
		p = message.NewPrinter(tag, message.Catalog(c.builder))
		c.printers[tag] = p
	}
	return p
}

// IsRTL reports whether loc is written right to left.
func IsRTL(loc Locale) bool {
	base, _ := loc.Base()
	switch base.String() {
	case "ar", "fa", "he", "ur":
		return true
	}
	return false
}
