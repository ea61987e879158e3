package session

import (
	"path/filepath"

	"github.com/google/uuid"

	"github.com/dshills/keymark/internal/engine"
	"github.com/dshills/keymark/internal/i18n"
	"github.com/dshills/keymark/internal/renderer"
	"github.com/dshills/keymark/internal/theme"
	"github.com/dshills/keymark/internal/vfs"
)

// ID identifies a session. It is assigned at creation and never reused.
type ID string

// State is the lifecycle state of a document.
type State uint8

const (
	// Untitled is a new document that was never saved or loaded.
	Untitled State = iota
	// Editing means the document has user edits since the last save or load.
	Editing
	// Clean means the content matches the last save or load.
	Clean
	// Closing is terminal; the buffer has been released.
	Closing
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Untitled:
		return "untitled"
	case Editing:
		return "editing"
	case Clean:
		return "clean"
	case Closing:
		return "closing"
	default:
		return "unknown"
	}
}

// Decision is the answer to the unsaved-changes prompt.
type Decision uint8

// Close decisions.
const (
	DecisionSave Decision = iota
	DecisionDiscard
	DecisionCancel
)

// String returns the decision name.
func (d Decision) String() string {
	switch d {
	case DecisionSave:
		return "save"
	case DecisionDiscard:
		return "discard"
	case DecisionCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// Resolver decides what happens to unsaved changes when a document closes.
type Resolver interface {
	// ConfirmClose is asked once for a dirty document.
	ConfirmClose(doc *Document) Decision

	// SavePath is asked when a document being saved has no path.
	// Returning false cancels the save.
	SavePath(doc *Document) (string, bool)
}

// ContentFunc observes buffer changes of a document.
type ContentFunc func(doc *Document, change engine.Change)

type cacheKey struct {
	mode   theme.Mode
	locale string
}

type observer struct {
	id int
	fn ContentFunc
}

// Document pairs an editable buffer with its rendered view.
//
// Document is not safe for concurrent use.
type Document struct {
	id      ID
	buf     *engine.Engine
	path    string
	dirty   bool
	state   State
	version uint64

	cache    renderer.Output
	cacheKey cacheKey
	cached   bool

	release   func()
	observers []observer
	nextObs   int
}

// NewDocument creates a document holding text. An empty document without a
// path starts Untitled; anything else starts Clean.
func NewDocument(text, path string, opts ...engine.Option) *Document {
	d := &Document{
		id:   ID(uuid.NewString()),
		path: cleanPath(path),
	}

	opts = append([]engine.Option{engine.WithContent(text)}, opts...)
	d.buf = engine.New(opts...)

	if text == "" && path == "" {
		d.state = Untitled
	} else {
		d.state = Clean
	}
	d.release = d.buf.OnChange(d.onChange)
	return d
}

// ID returns the stable session id.
func (d *Document) ID() ID { return d.id }

// Buffer returns the owned text buffer.
func (d *Document) Buffer() *engine.Engine { return d.buf }

// Path returns the file path, empty for untitled documents.
func (d *Document) Path() string { return d.path }

// IsDirty returns true if there are unsaved user edits.
func (d *Document) IsDirty() bool { return d.dirty }

// State returns the lifecycle state.
func (d *Document) State() State { return d.state }

// Version increments on every content change.
func (d *Document) Version() uint64 { return d.version }

// Text returns the buffer content.
func (d *Document) Text() string { return d.buf.Text() }

// IsClosed returns true once Close succeeded.
func (d *Document) IsClosed() bool { return d.state == Closing }

// IsPristine reports whether the document is an untouched untitled one.
func (d *Document) IsPristine() bool {
	return d.state == Untitled && !d.dirty && d.path == "" && d.buf.Len() == 0
}

// Name returns the base name of the path, or untitled when there is none.
func (d *Document) Name(untitled string) string {
	if d.path == "" {
		return untitled
	}
	return filepath.Base(d.path)
}

// Title returns the tab title: the name with a trailing "*" when dirty.
func (d *Document) Title(untitled string) string {
	name := d.Name(untitled)
	if d.dirty {
		return name + "*"
	}
	return name
}

// OnContentChange registers fn for buffer changes. Observers run after the
// document has updated its dirty flag and cache. The returned function
// removes the registration.
func (d *Document) OnContentChange(fn ContentFunc) func() {
	d.nextObs++
	id := d.nextObs
	d.observers = append(d.observers, observer{id: id, fn: fn})

	return func() {
		for i, o := range d.observers {
			if o.id == id {
				d.observers = append(d.observers[:i], d.observers[i+1:]...)
				return
			}
		}
	}
}

// Save writes the buffer to path, or to the current path when path is
// empty. On failure the document is unchanged.
func (d *Document) Save(store vfs.Store, path string) error {
	if d.state == Closing {
		return ErrClosed
	}
	if path == "" {
		path = d.path
	}
	if path == "" {
		return ErrNoPath
	}
	path = filepath.Clean(path)

	if err := store.WriteFile(path, d.buf.Text()); err != nil {
		return &IOError{Op: "save", Path: path, Err: err}
	}

	d.path = path
	d.dirty = false
	d.state = Clean
	return nil
}

// Load replaces the buffer with the content of path. The replacement is
// programmatic: it resets undo history and does not mark the document
// dirty. On failure the document is unchanged.
func (d *Document) Load(store vfs.Store, path string) error {
	if d.state == Closing {
		return ErrClosed
	}
	path = filepath.Clean(path)

	text, err := store.ReadFile(path)
	if err != nil {
		return &IOError{Op: "open", Path: path, Err: err}
	}
	return d.adopt(path, text)
}

// adopt takes over path and text as if freshly loaded.
func (d *Document) adopt(path, text string) error {
	if err := d.buf.SetText(text, engine.OriginProgrammatic); err != nil {
		return err
	}
	d.path = cleanPath(path)
	d.dirty = false
	d.state = Clean
	return nil
}

// Close runs the close protocol. A clean document closes immediately. A dirty
// one asks r for a decision: Save writes first and aborts the close if the
// save fails or no path is chosen, Discard closes, Cancel aborts.
func (d *Document) Close(store vfs.Store, r Resolver) (bool, error) {
	if d.state == Closing {
		return true, nil
	}

	if d.dirty {
		if r == nil {
			return false, nil
		}
		switch r.ConfirmClose(d) {
		case DecisionCancel:
			return false, nil
		case DecisionSave:
			path := d.path
			if path == "" {
				p, ok := r.SavePath(d)
				if !ok || p == "" {
					return false, nil
				}
				path = p
			}
			if err := d.Save(store, path); err != nil {
				return false, err
			}
		case DecisionDiscard:
		}
	}

	d.state = Closing
	if d.release != nil {
		d.release()
		d.release = nil
	}
	d.observers = nil
	d.cached = false
	d.cache = renderer.Output{}
	return true, nil
}

// Rendered returns the rendered view for the given theme and locale,
// recomputing only when the content, theme or locale changed.
func (d *Document) Rendered(p *renderer.Pipeline, th theme.Context, loc i18n.Locale) renderer.Output {
	key := cacheKey{mode: th.Mode(), locale: loc.String()}
	if d.cached && d.cacheKey == key {
		return d.cache
	}
	d.cache = p.Render(d.buf.Text(), th, loc)
	d.cacheKey = key
	d.cached = true
	return d.cache
}

// Cached returns the last rendered view, if still valid.
func (d *Document) Cached() (renderer.Output, bool) {
	return d.cache, d.cached
}

func (d *Document) onChange(c engine.Change) {
	d.cached = false
	d.version++
	if c.Origin == engine.OriginUser {
		d.dirty = true
		if d.state != Closing {
			d.state = Editing
		}
	}

	observers := make([]observer, len(d.observers))
	copy(observers, d.observers)
	for _, o := range observers {
		o.fn(d, c)
	}
}

func cleanPath(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Clean(path)
}
