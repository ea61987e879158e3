package app

import (
	"context"
	"fmt"

	"pkt.systems/pslog"

	"github.com/dshills/keymark/internal/config"
	"github.com/dshills/keymark/internal/engine"
	"github.com/dshills/keymark/internal/event"
	"github.com/dshills/keymark/internal/format"
	"github.com/dshills/keymark/internal/i18n"
	"github.com/dshills/keymark/internal/renderer"
	"github.com/dshills/keymark/internal/search"
	"github.com/dshills/keymark/internal/session"
	"github.com/dshills/keymark/internal/theme"
	"github.com/dshills/keymark/internal/vfs"
)

const eventSource = "app"

// Application is the central coordinator of the editor core.
type Application struct {
	store    vfs.Store
	registry *session.Registry
	search   *search.Engine
	pipeline *renderer.Pipeline
	catalog  *i18n.Catalog
	bus      *event.Bus

	theme  theme.Context
	locale i18n.Locale

	tableRows int
	tableCols int

	view     ViewSink
	notifier Notifier
	prompter Prompter
	logger   pslog.Logger

	engineOpts   []engine.Option
	pipelineOpts []renderer.Option
	localeName   string

	subs map[session.ID]func()
}

// Option configures an Application.
type Option func(*Application)

// WithViewSink sets where rendered documents are pushed.
func WithViewSink(v ViewSink) Option {
	return func(a *Application) { a.view = v }
}

// WithNotifier sets the notice and alert surface.
func WithNotifier(n Notifier) Option {
	return func(a *Application) { a.notifier = n }
}

// WithPrompter sets the unsaved-changes and save path prompter.
func WithPrompter(p Prompter) Option {
	return func(a *Application) { a.prompter = p }
}

// WithLogger sets the root logger.
func WithLogger(logger pslog.Logger) Option {
	return func(a *Application) { a.logger = logger }
}

// WithCatalog sets the message catalog.
func WithCatalog(c *i18n.Catalog) Option {
	return func(a *Application) { a.catalog = c }
}

// WithBus sets the event bus lifecycle events are published on.
func WithBus(b *event.Bus) Option {
	return func(a *Application) { a.bus = b }
}

// WithTheme sets the initial theme.
func WithTheme(m theme.Mode) Option {
	return func(a *Application) { a.theme = theme.New(m) }
}

// WithLocale sets the initial interface language.
func WithLocale(name string) Option {
	return func(a *Application) { a.localeName = name }
}

// WithTableDefaults sets the default table dimensions.
func WithTableDefaults(rows, cols int) Option {
	return func(a *Application) {
		a.tableRows = format.ClampDimension(rows)
		a.tableCols = format.ClampDimension(cols)
	}
}

// WithRendererOptions configures the render pipeline.
func WithRendererOptions(opts ...renderer.Option) Option {
	return func(a *Application) { a.pipelineOpts = append(a.pipelineOpts, opts...) }
}

// WithEngineOptions configures every document buffer.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(a *Application) { a.engineOpts = append(a.engineOpts, opts...) }
}

// FromConfig applies the editor, render and table sections of cfg.
func FromConfig(cfg *config.Config) Option {
	return func(a *Application) {
		WithTheme(cfg.ThemeMode())(a)
		WithLocale(cfg.Editor.Locale)(a)
		WithTableDefaults(cfg.Table.Rows, cfg.Table.Cols)(a)
		WithRendererOptions(cfg.RendererOptions()...)(a)
		if cfg.Editor.MaxUndo > 0 {
			WithEngineOptions(engine.WithMaxUndoEntries(cfg.Editor.MaxUndo))(a)
		}
	}
}

// New creates an application over store with one untitled document.
func New(store vfs.Store, opts ...Option) (*Application, error) {
	a := &Application{
		store:     store,
		theme:     theme.New(theme.Light),
		tableRows: format.DefaultRows,
		tableCols: format.DefaultCols,
		subs:      make(map[session.ID]func()),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.logger == nil {
		a.logger = pslog.Ctx(context.Background())
	}
	if a.view == nil {
		a.view = nopView{}
	}
	if a.notifier == nil {
		a.notifier = nopNotifier{}
	}
	if a.prompter == nil {
		a.prompter = cancelPrompter{}
	}
	if a.catalog == nil {
		c, err := i18n.Load()
		if err != nil {
			return nil, fmt.Errorf("loading messages: %w", err)
		}
		a.catalog = c
	}
	if a.bus == nil {
		a.bus = event.NewBus(event.WithLogger(WithComponent(a.logger, "events")))
	}

	a.locale = i18n.English
	if a.localeName != "" {
		a.locale = a.catalog.Match(a.localeName)
	}

	pipelineOpts := append([]renderer.Option{renderer.WithLogger(WithComponent(a.logger, "renderer"))}, a.pipelineOpts...)
	a.pipeline = renderer.New(pipelineOpts...)

	a.registry = session.NewRegistry(store,
		session.WithLogger(WithComponent(a.logger, "registry")),
		session.WithEngineOptions(a.engineOpts...),
	)
	a.search = search.New(a.registry, search.WithLogger(WithComponent(a.logger, "search")))

	for _, doc := range a.registry.All() {
		a.track(doc)
	}
	a.registry.OnChange(a.onRegistryChange)

	a.refresh(a.registry.Active())
	return a, nil
}

// Registry returns the session registry.
func (a *Application) Registry() *session.Registry { return a.registry }

// Search returns the search engine.
func (a *Application) Search() *search.Engine { return a.search }

// Bus returns the event bus.
func (a *Application) Bus() *event.Bus { return a.bus }

// Catalog returns the message catalog.
func (a *Application) Catalog() *i18n.Catalog { return a.catalog }

// Pipeline returns the render pipeline.
func (a *Application) Pipeline() *renderer.Pipeline { return a.pipeline }

// Theme returns the current theme.
func (a *Application) Theme() theme.Context { return a.theme }

// Locale returns the current interface language.
func (a *Application) Locale() i18n.Locale { return a.locale }

// Active returns the active document.
func (a *Application) Active() *session.Document { return a.registry.Active() }

// TableDefaults returns the default table dimensions.
func (a *Application) TableDefaults() (rows, cols int) { return a.tableRows, a.tableCols }

// T formats a message in the current locale.
func (a *Application) T(key string, args ...any) string {
	return a.catalog.T(a.locale, key, args...)
}

func (a *Application) onRegistryChange(ev session.Event) {
	switch ev.Kind {
	case session.EventCreated:
		a.track(a.registry.Get(ev.ID))
		a.publish(event.TopicSessionCreated, event.SessionPayload{ID: string(ev.ID)})
	case session.EventOpened:
		doc := a.registry.Get(ev.ID)
		a.track(doc)
		if ev.ID == a.registry.ActiveID() {
			a.pushStatus(doc)
		}
		a.publish(event.TopicSessionOpened, event.SessionPayload{ID: string(ev.ID), Path: doc.Path()})
	case session.EventActivated:
		a.search.Reset()
		a.refresh(a.registry.Get(ev.ID))
		a.publish(event.TopicSessionActivated, event.SessionPayload{ID: string(ev.ID)})
	case session.EventClosed:
		if release, ok := a.subs[ev.ID]; ok {
			release()
			delete(a.subs, ev.ID)
		}
		a.publish(event.TopicSessionClosed, event.SessionPayload{ID: string(ev.ID)})
	}
}

// track re-renders doc whenever its content changes.
func (a *Application) track(doc *session.Document) {
	if doc == nil {
		return
	}
	if _, ok := a.subs[doc.ID()]; ok {
		return
	}
	a.subs[doc.ID()] = doc.OnContentChange(func(d *session.Document, _ engine.Change) {
		a.refresh(d)
	})
}

// refresh renders doc into the view and, for the active document, pushes
// the status line.
func (a *Application) refresh(doc *session.Document) {
	if doc == nil || doc.IsClosed() {
		return
	}
	out := doc.Rendered(a.pipeline, a.theme, a.locale)
	a.view.RenderInto(doc, out)
	a.publish(event.TopicDocumentRendered, event.RenderPayload{ID: string(doc.ID()), Words: out.Words, Chars: out.Chars})

	if doc.ID() == a.registry.ActiveID() {
		a.pushStatus(doc)
	}
}

// refreshAll re-renders every document, active one last.
func (a *Application) refreshAll() {
	active := a.registry.ActiveID()
	for _, doc := range a.registry.All() {
		if doc.ID() != active {
			a.refresh(doc)
		}
	}
	a.refresh(a.registry.Active())
}

func (a *Application) pushStatus(doc *session.Document) {
	sink, ok := a.view.(StatusSink)
	if !ok {
		return
	}
	sink.SetStatus(doc, a.StatusFor(doc))
}

func (a *Application) publish(topic event.Topic, payload any) {
	if err := a.bus.Publish(context.Background(), event.New(topic, payload, eventSource)); err != nil {
		a.logger.Warn("publish failed", "topic", topic.String(), "err", err)
	}
}

// requireActive returns the active document or alerts the user.
func (a *Application) requireActive() (*session.Document, error) {
	doc := a.registry.Active()
	if doc == nil {
		a.notifier.Alert(a.T("error"), a.T("no_editor_open"))
		return nil, ErrNoActiveSession
	}
	return doc, nil
}
