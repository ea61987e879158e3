package session

import (
	"context"
	"path/filepath"

	"pkt.systems/pslog"

	"github.com/dshills/keymark/internal/engine"
	"github.com/dshills/keymark/internal/vfs"
)

// EventKind classifies registry changes.
type EventKind uint8

const (
	// EventCreated fires when an untitled session is added.
	EventCreated EventKind = iota
	// EventOpened fires when a file is opened into a session.
	EventOpened
	// EventActivated fires when the active session changes.
	EventActivated
	// EventClosed fires after a session is removed.
	EventClosed
	// EventMoved fires when a session changes position.
	EventMoved
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventCreated:
		return "created"
	case EventOpened:
		return "opened"
	case EventActivated:
		return "activated"
	case EventClosed:
		return "closed"
	case EventMoved:
		return "moved"
	default:
		return "unknown"
	}
}

// Event describes a registry change.
type Event struct {
	Kind EventKind
	ID   ID
}

// EventFunc observes registry changes.
type EventFunc func(Event)

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(logger pslog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithEngineOptions sets options applied to every new document buffer.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(r *Registry) {
		r.engineOpts = append(r.engineOpts, opts...)
	}
}

type registryListener struct {
	id int
	fn EventFunc
}

// Registry owns the ordered set of open sessions and tracks the active one.
// After construction it is never empty.
//
// Registry is not safe for concurrent use.
type Registry struct {
	store      vfs.Store
	sessions   []*Document
	active     ID
	logger     pslog.Logger
	engineOpts []engine.Option

	listeners []registryListener
	nextID    int
}

// NewRegistry creates a registry holding one untitled session.
func NewRegistry(store vfs.Store, opts ...Option) *Registry {
	r := &Registry{store: store}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = pslog.Ctx(context.Background())
	}
	r.NewSession()
	return r
}

// Store returns the persistence store used by the registry.
func (r *Registry) Store() vfs.Store {
	return r.store
}

// NewSession appends an untitled session and activates it.
func (r *Registry) NewSession() ID {
	doc := NewDocument("", "", r.engineOpts...)
	r.sessions = append(r.sessions, doc)
	r.logger.Debug("session created", "session", doc.ID())
	r.notify(Event{Kind: EventCreated, ID: doc.ID()})
	r.setActive(doc.ID())
	return doc.ID()
}

// OpenSession makes text, read from path, available as a session. A path
// that is already open is activated instead. When the only session is a
// pristine untitled one, it is reused for the file.
func (r *Registry) OpenSession(path, text string) ID {
	path = filepath.Clean(path)

	if doc := r.FindByPath(path); doc != nil {
		r.setActive(doc.ID())
		return doc.ID()
	}

	if len(r.sessions) == 1 && r.sessions[0].IsPristine() {
		doc := r.sessions[0]
		if err := doc.adopt(path, text); err == nil {
			r.logger.Debug("session reused", "session", doc.ID(), "path", path)
			r.notify(Event{Kind: EventOpened, ID: doc.ID()})
			r.setActive(doc.ID())
			return doc.ID()
		}
	}

	doc := NewDocument(text, path, r.engineOpts...)
	r.sessions = append(r.sessions, doc)
	r.logger.Debug("session opened", "session", doc.ID(), "path", path)
	r.notify(Event{Kind: EventOpened, ID: doc.ID()})
	r.setActive(doc.ID())
	return doc.ID()
}

// OpenFile reads path from the store and opens it. A path that is already
// open is activated without reading.
func (r *Registry) OpenFile(path string) (ID, error) {
	path = filepath.Clean(path)
	if doc := r.FindByPath(path); doc != nil {
		r.setActive(doc.ID())
		return doc.ID(), nil
	}

	text, err := r.store.ReadFile(path)
	if err != nil {
		return "", &IOError{Op: "open", Path: path, Err: err}
	}
	return r.OpenSession(path, text), nil
}

// CloseSession runs the close protocol for id. When the session closes it is
// removed; if it was active, the session now at its index (or the one
// before it) becomes active. Closing the last session opens a new untitled
// one.
func (r *Registry) CloseSession(id ID, resolver Resolver) (bool, error) {
	idx := r.indexOf(id)
	if idx < 0 {
		return false, ErrNotFound
	}
	doc := r.sessions[idx]

	closed, err := doc.Close(r.guard(doc), resolver)
	if err != nil || !closed {
		return false, err
	}

	r.sessions = append(r.sessions[:idx], r.sessions[idx+1:]...)
	r.logger.Debug("session closed", "session", id)
	r.notify(Event{Kind: EventClosed, ID: id})

	if len(r.sessions) == 0 {
		r.active = ""
		r.NewSession()
		return true, nil
	}

	if r.active == id {
		if idx >= len(r.sessions) {
			idx = len(r.sessions) - 1
		}
		r.setActive(r.sessions[idx].ID())
	}
	return true, nil
}

// Save writes doc to path, or to its own path when path is empty. A path
// held by another session is refused with ErrPathInUse so no two sessions
// share a file.
func (r *Registry) Save(doc *Document, path string) error {
	return doc.Save(r.guard(doc), path)
}

// guard returns the registry store with writes restricted to paths no other
// session holds.
func (r *Registry) guard(doc *Document) vfs.Store {
	return pathGuard{Store: r.store, registry: r, doc: doc}
}

type pathGuard struct {
	vfs.Store
	registry *Registry
	doc      *Document
}

func (g pathGuard) WriteFile(path, text string) error {
	if other := g.registry.FindByPath(path); other != nil && other != g.doc {
		return ErrPathInUse
	}
	return g.Store.WriteFile(path, text)
}

// SetActive activates id. Unknown ids are ignored.
func (r *Registry) SetActive(id ID) {
	if r.indexOf(id) < 0 {
		return
	}
	r.setActive(id)
}

func (r *Registry) setActive(id ID) {
	if r.active == id {
		return
	}
	r.active = id
	r.notify(Event{Kind: EventActivated, ID: id})
}

// Active returns the active document.
func (r *Registry) Active() *Document {
	return r.Get(r.active)
}

// ActiveID returns the id of the active document.
func (r *Registry) ActiveID() ID {
	return r.active
}

// Get returns the document for id, or nil.
func (r *Registry) Get(id ID) *Document {
	if idx := r.indexOf(id); idx >= 0 {
		return r.sessions[idx]
	}
	return nil
}

// FindByPath returns the document open at path, or nil.
func (r *Registry) FindByPath(path string) *Document {
	if path == "" {
		return nil
	}
	path = filepath.Clean(path)
	for _, doc := range r.sessions {
		if doc.Path() == path {
			return doc
		}
	}
	return nil
}

// All returns the documents in display order.
func (r *Registry) All() []*Document {
	out := make([]*Document, len(r.sessions))
	copy(out, r.sessions)
	return out
}

// Count returns the number of sessions.
func (r *Registry) Count() int {
	return len(r.sessions)
}

// Index returns the display position of id, or -1.
func (r *Registry) Index(id ID) int {
	return r.indexOf(id)
}

// Dirty returns the documents with unsaved changes in display order.
func (r *Registry) Dirty() []*Document {
	var dirty []*Document
	for _, doc := range r.sessions {
		if doc.IsDirty() {
			dirty = append(dirty, doc)
		}
	}
	return dirty
}

// HasDirty returns true if any document has unsaved changes.
func (r *Registry) HasDirty() bool {
	for _, doc := range r.sessions {
		if doc.IsDirty() {
			return true
		}
	}
	return false
}

// Next activates and returns the document after the active one, wrapping.
func (r *Registry) Next() *Document {
	return r.step(1)
}

// Previous activates and returns the document before the active one, wrapping.
func (r *Registry) Previous() *Document {
	return r.step(-1)
}

func (r *Registry) step(delta int) *Document {
	n := len(r.sessions)
	if n == 0 {
		return nil
	}
	idx := r.indexOf(r.active)
	if idx < 0 {
		return r.Active()
	}
	idx = (idx + delta + n) % n
	r.setActive(r.sessions[idx].ID())
	return r.sessions[idx]
}

// Move places id at index, clamped to the valid range.
func (r *Registry) Move(id ID, index int) error {
	from := r.indexOf(id)
	if from < 0 {
		return ErrNotFound
	}
	if index < 0 {
		index = 0
	}
	if index >= len(r.sessions) {
		index = len(r.sessions) - 1
	}
	if index == from {
		return nil
	}

	doc := r.sessions[from]
	r.sessions = append(r.sessions[:from], r.sessions[from+1:]...)
	r.sessions = append(r.sessions[:index], append([]*Document{doc}, r.sessions[index:]...)...)
	r.notify(Event{Kind: EventMoved, ID: id})
	return nil
}

// OnChange registers fn for registry events. The returned function removes
// the registration.
func (r *Registry) OnChange(fn EventFunc) func() {
	r.nextID++
	id := r.nextID
	r.listeners = append(r.listeners, registryListener{id: id, fn: fn})

	return func() {
		for i, l := range r.listeners {
			if l.id == id {
				r.listeners = append(r.listeners[:i], r.listeners[i+1:]...)
				return
			}
		}
	}
}

func (r *Registry) notify(ev Event) {
	listeners := make([]registryListener, len(r.listeners))
	copy(listeners, r.listeners)
	for _, l := range listeners {
		l.fn(ev)
	}
}

func (r *Registry) indexOf(id ID) int {
	if id == "" {
		return -1
	}
	for i, doc := range r.sessions {
		if doc.ID() == id {
			return i
		}
	}
	return -1
}
