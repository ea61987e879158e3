package app

import (
	"fmt"

	"github.com/dshills/keymark/internal/event"
	"github.com/dshills/keymark/internal/session"
	"github.com/dshills/keymark/internal/theme"
)

// ToggleTheme switches between light and dark and re-renders every document.
func (a *Application) ToggleTheme() theme.Context {
	a.theme = a.theme.Toggle()
	a.refreshAll()

	key := "theme_light"
	if a.theme.IsDark() {
		key = "theme_dark"
	}
	a.logger.Info("theme changed", "theme", a.theme.String())
	a.notifier.Notify(a.T(key))
	a.publish(event.TopicThemeChanged, event.ThemePayload{Theme: a.theme.String()})
	return a.theme
}

// SetLocale switches the interface language and re-renders every document.
func (a *Application) SetLocale(name string) error {
	if !a.catalog.IsSupported(name) {
		return fmt.Errorf("%w: %q", ErrUnsupportedLocale, name)
	}
	a.locale = a.catalog.Match(name)
	a.refreshAll()

	a.logger.Info("locale changed", "locale", a.locale.String())
	a.notifier.Notify(a.T("language_changed"))
	a.publish(event.TopicLocaleChanged, event.LocalePayload{Locale: a.locale.String()})
	return nil
}

// Counts returns the word and character counts of the active document.
func (a *Application) Counts() (words, chars int) {
	doc := a.registry.Active()
	if doc == nil {
		return 0, 0
	}
	out := doc.Rendered(a.pipeline, a.theme, a.locale)
	return out.Words, out.Chars
}

// StatusFor returns the localized chrome text for doc.
func (a *Application) StatusFor(doc *session.Document) Status {
	out := doc.Rendered(a.pipeline, a.theme, a.locale)
	return Status{
		WindowTitle: a.windowTitle(doc),
		TabTitle:    doc.Title(a.T("untitled_file")),
		Words:       a.T("word_count", out.Words),
		Chars:       a.T("char_count", out.Chars),
	}
}

// WindowTitle returns the application title, followed by the active file
// name when the document has one.
func (a *Application) WindowTitle() string {
	return a.windowTitle(a.registry.Active())
}

func (a *Application) windowTitle(doc *session.Document) string {
	base := a.T("app_title")
	if doc == nil || doc.Path() == "" {
		return base
	}
	return base + " - " + doc.Name("")
}

// TabTitles returns the tab titles in display order.
func (a *Application) TabTitles() []string {
	untitled := a.T("untitled_file")
	docs := a.registry.All()
	titles := make([]string, len(docs))
	for i, doc := range docs {
		titles[i] = doc.Title(untitled)
	}
	return titles
}

// Help returns the localized help title and text.
func (a *Application) Help() (title, text string) {
	return a.T("help"), a.T("help_text")
}
