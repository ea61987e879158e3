// Package search implements find and replace on the active document.
//
// Matching is literal and case-sensitive. A search that runs off the end
// of the buffer wraps once from the opposite edge; a second miss reports
// not found.
package search

import (
	"context"
	"errors"

	"pkt.systems/pslog"

	"github.com/dshills/keymark/internal/engine"
	"github.com/dshills/keymark/internal/session"
)

// ErrNoActiveSession indicates there is no document to search.
var ErrNoActiveSession = errors.New("no active session")

// Source provides the document searches operate on.
type Source interface {
	Active() *session.Document
}

// State is the search state kept between requests while the dialog is open.
type State struct {
	Query       string
	Replacement string
	// LastMatch is the most recent match, nil when the last search missed
	// or the state was reset.
	LastMatch *engine.Range
	SessionID session.ID
}

// Result describes the outcome of a find or replace request.
type Result struct {
	Match    engine.Range
	Found    bool
	Wrapped  bool
	Replaced int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger pslog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Engine runs find and replace requests against the active document.
//
// Engine is not safe for concurrent use.
type Engine struct {
	src    Source
	state  *State
	logger pslog.Logger
}

// New creates a search engine over src.
func New(src Source, opts ...Option) *Engine {
	e := &Engine{src: src}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = pslog.Ctx(context.Background())
	}
	return e
}

// State returns a copy of the current state and whether one exists.
func (e *Engine) State() (State, bool) {
	if e.state == nil {
		return State{}, false
	}
	return *e.state, true
}

// Reset clears the last match but keeps the query.
func (e *Engine) Reset() {
	if e.state != nil {
		e.state.LastMatch = nil
	}
}

// Close discards the search state.
func (e *Engine) Close() {
	e.state = nil
}

// FindNext selects the next occurrence of query after the selection, or
// from the start of the buffer when nothing is selected.
func (e *Engine) FindNext(query string) (Result, error) {
	if query == "" {
		return Result{}, nil
	}
	doc, st, err := e.prepare(query)
	if err != nil {
		return Result{}, err
	}

	buf := doc.Buffer()
	from := 0
	if buf.HasSelection() {
		from = buf.Selection().End()
	}
	return e.find(doc, st, from, false), nil
}

// FindPrevious selects the previous occurrence of query before the
// selection, or from the end of the buffer when nothing is selected.
func (e *Engine) FindPrevious(query string) (Result, error) {
	if query == "" {
		return Result{}, nil
	}
	doc, st, err := e.prepare(query)
	if err != nil {
		return Result{}, err
	}

	buf := doc.Buffer()
	from := buf.Len()
	if buf.HasSelection() {
		from = buf.Selection().Start()
	}
	return e.find(doc, st, from, true), nil
}

// ReplaceOne replaces the selection when it equals query exactly and then
// selects the next occurrence after the replacement. Otherwise it behaves
// like FindNext.
func (e *Engine) ReplaceOne(query, replacement string) (Result, error) {
	if query == "" {
		return Result{}, nil
	}
	doc, st, err := e.prepare(query)
	if err != nil {
		return Result{}, err
	}
	st.Replacement = replacement

	buf := doc.Buffer()
	if !buf.HasSelection() || buf.SelectedText() != query {
		return e.FindNext(query)
	}

	r := buf.Selection().Range()
	end, err := buf.Replace(r.Start, r.End, replacement)
	if err != nil {
		return Result{}, err
	}
	buf.SetCursor(end)

	res := e.find(doc, st, end, false)
	res.Replaced = 1
	return res, nil
}

// ReplaceAll replaces every occurrence of query from the start of the
// buffer, left to right, resuming after each replacement. All replacements
// form one batch: one change notification and one undo step.
func (e *Engine) ReplaceAll(query, replacement string) (int, error) {
	if query == "" {
		return 0, nil
	}
	doc, st, err := e.prepare(query)
	if err != nil {
		return 0, err
	}
	st.Replacement = replacement
	st.LastMatch = nil

	count, err := replaceAll(doc.Buffer(), query, replacement)
	e.logger.Info("replace all", "session", doc.ID(), "count", count)
	return count, err
}

func replaceAll(buf *engine.Engine, query, replacement string) (int, error) {
	buf.BeginBatch()
	defer buf.EndBatch()

	count, pos := 0, 0
	for {
		r, ok := buf.Find(query, pos, false)
		if !ok {
			return count, nil
		}
		end, err := buf.Replace(r.Start, r.End, replacement)
		if err != nil {
			return count, err
		}
		count++
		pos = end
	}
}

// prepare resolves the active document and returns the state for it,
// starting fresh when the document or the query changed.
func (e *Engine) prepare(query string) (*session.Document, *State, error) {
	doc := e.src.Active()
	if doc == nil {
		return nil, nil, ErrNoActiveSession
	}
	if e.state == nil || e.state.SessionID != doc.ID() || e.state.Query != query {
		e.state = &State{Query: query, SessionID: doc.ID()}
	}
	return doc, e.state, nil
}

func (e *Engine) find(doc *session.Document, st *State, from int, backward bool) Result {
	buf := doc.Buffer()

	r, ok := buf.Find(st.Query, from, backward)
	wrapped := false
	if !ok {
		edge := 0
		if backward {
			edge = buf.Len()
		}
		if from != edge {
			r, ok = buf.Find(st.Query, edge, backward)
			wrapped = ok
		}
	}

	if !ok {
		st.LastMatch = nil
		e.logger.Debug("search miss", "session", doc.ID(), "query", st.Query)
		return Result{}
	}

	buf.SetSelection(r.Start, r.End)
	match := r
	st.LastMatch = &match
	return Result{Match: r, Found: true, Wrapped: wrapped}
}
