package engine

import (
	"strings"
	"sync"
)

// Origin distinguishes who caused an edit.
type Origin uint8

const (
	// OriginUser marks edits made on behalf of the user (typing, replace, undo).
	OriginUser Origin = iota
	// OriginProgrammatic marks content replacement that is not an edit by the
	// user, such as loading a file.
	OriginProgrammatic
)

// String returns the origin name.
func (o Origin) String() string {
	switch o {
	case OriginUser:
		return "user"
	case OriginProgrammatic:
		return "programmatic"
	default:
		return "unknown"
	}
}

// Change describes a completed mutation (or a completed batch of mutations).
type Change struct {
	Origin Origin
	// Edits is the number of primitive edits the change covers.
	Edits int
}

// ChangeFunc observes engine mutations.
type ChangeFunc func(Change)

// Engine is a text buffer with a single selection and undo/redo history.
type Engine struct {
	mu       sync.RWMutex
	text     string
	sel      Selection
	history  history
	readOnly bool

	listeners []listener
	nextID    int

	batchDepth  int
	batchEdits  int
	batchOrigin Origin
}

type listener struct {
	id int
	fn ChangeFunc
}

// New creates a new engine with the given options.
func New(opts ...Option) *Engine {
	e := &Engine{history: newHistory()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// OnChange registers fn to be called after each mutation.
// The returned function removes the registration.
func (e *Engine) OnChange(fn ChangeFunc) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextID++
	id := e.nextID
	e.listeners = append(e.listeners, listener{id: id, fn: fn})

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, l := range e.listeners {
			if l.id == id {
				e.listeners = append(e.listeners[:i], e.listeners[i+1:]...)
				return
			}
		}
	}
}

// Text returns the full buffer content.
func (e *Engine) Text() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.text
}

// Len returns the buffer length in bytes.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.text)
}

// Selection returns the current selection.
func (e *Engine) Selection() Selection {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.sel
}

// SetSelection sets the selection, clamping both ends to the buffer.
func (e *Engine) SetSelection(anchor, head int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sel = NewSelection(anchor, head).clamp(len(e.text))
}

// SetCursor collapses the selection to offset.
func (e *Engine) SetCursor(offset int) {
	e.SetSelection(offset, offset)
}

// Cursor returns the selection head.
func (e *Engine) Cursor() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.sel.Head
}

// HasSelection returns true if the selection is non-empty.
func (e *Engine) HasSelection() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return !e.sel.IsEmpty()
}

// SelectedText returns the text covered by the selection.
func (e *Engine) SelectedText() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	r := e.sel.Range()
	return e.text[r.Start:r.End]
}

// Insert inserts text at offset and returns the offset after the insertion.
func (e *Engine) Insert(offset int, text string) (int, error) {
	return e.Replace(offset, offset, text)
}

// Replace replaces [start, end) with text as a user edit and returns the
// offset after the inserted text.
func (e *Engine) Replace(start, end int, text string) (int, error) {
	e.mu.Lock()
	if err := e.checkWrite(start, end); err != nil {
		e.mu.Unlock()
		return 0, err
	}
	before := e.sel
	old := e.text[start:end]
	e.apply(start, end, text)
	e.sel = transformSelection(before, start, end, len(text))
	e.history.record(edit{start: start, oldText: old, newText: text}, before, e.sel)
	change, notify := e.changedLocked(OriginUser, 1)
	e.mu.Unlock()

	if notify {
		e.emit(change)
	}
	return start + len(text), nil
}

// InsertAtCursor replaces the selection (or inserts at the cursor) with text
// and leaves the cursor after it.
func (e *Engine) InsertAtCursor(text string) error {
	e.mu.Lock()
	r := e.sel.Range()
	if err := e.checkWrite(r.Start, r.End); err != nil {
		e.mu.Unlock()
		return err
	}
	before := e.sel
	old := e.text[r.Start:r.End]
	e.apply(r.Start, r.End, text)
	e.sel = NewCursorSelection(r.Start + len(text))
	e.history.record(edit{start: r.Start, oldText: old, newText: text}, before, e.sel)
	change, notify := e.changedLocked(OriginUser, 1)
	e.mu.Unlock()

	if notify {
		e.emit(change)
	}
	return nil
}

// SetText replaces the whole content. A programmatic replacement resets the
// undo history; a user replacement is recorded as one undoable edit.
// The cursor moves to the start of the buffer.
func (e *Engine) SetText(text string, origin Origin) error {
	e.mu.Lock()
	if e.readOnly && origin == OriginUser {
		e.mu.Unlock()
		return ErrReadOnly
	}
	before := e.sel
	old := e.text
	e.text = text
	e.sel = NewCursorSelection(0)
	if origin == OriginProgrammatic {
		e.history.reset()
	} else {
		e.history.record(edit{start: 0, oldText: old, newText: text}, before, e.sel)
	}
	change, notify := e.changedLocked(origin, 1)
	e.mu.Unlock()

	if notify {
		e.emit(change)
	}
	return nil
}

// Find searches for a literal, case-sensitive occurrence of query.
// Forward search returns the first match starting at or after from;
// backward search returns the last match ending at or before from.
func (e *Engine) Find(query string, from int, backward bool) (Range, bool) {
	if query == "" {
		return Range{}, false
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	from = clampOffset(from, len(e.text))
	if backward {
		idx := strings.LastIndex(e.text[:from], query)
		if idx < 0 {
			return Range{}, false
		}
		return Range{Start: idx, End: idx + len(query)}, true
	}

	idx := strings.Index(e.text[from:], query)
	if idx < 0 {
		return Range{}, false
	}
	start := from + idx
	return Range{Start: start, End: start + len(query)}, true
}

// CanUndo returns true if there is something to undo.
func (e *Engine) CanUndo() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.history.undoStack) > 0
}

// CanRedo returns true if there is something to redo.
func (e *Engine) CanRedo() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.history.redoStack) > 0
}

// Undo reverts the most recent undo step.
func (e *Engine) Undo() error {
	e.mu.Lock()
	if e.readOnly {
		e.mu.Unlock()
		return ErrReadOnly
	}
	entry := e.history.popUndo()
	if entry == nil {
		e.mu.Unlock()
		return ErrNothingToUndo
	}
	for i := len(entry.edits) - 1; i >= 0; i-- {
		ed := entry.edits[i]
		e.apply(ed.start, ed.start+len(ed.newText), ed.oldText)
	}
	e.sel = entry.selBefore.clamp(len(e.text))
	change, notify := e.changedLocked(OriginUser, len(entry.edits))
	e.mu.Unlock()

	if notify {
		e.emit(change)
	}
	return nil
}

// Redo reapplies the most recently undone step.
func (e *Engine) Redo() error {
	e.mu.Lock()
	if e.readOnly {
		e.mu.Unlock()
		return ErrReadOnly
	}
	entry := e.history.popRedo()
	if entry == nil {
		e.mu.Unlock()
		return ErrNothingToRedo
	}
	for _, ed := range entry.edits {
		e.apply(ed.start, ed.start+len(ed.oldText), ed.newText)
	}
	e.sel = entry.selAfter.clamp(len(e.text))
	change, notify := e.changedLocked(OriginUser, len(entry.edits))
	e.mu.Unlock()

	if notify {
		e.emit(change)
	}
	return nil
}

// BeginBatch starts coalescing edits. Calls nest.
func (e *Engine) BeginBatch() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.batchDepth == 0 {
		e.batchEdits = 0
		e.batchOrigin = OriginProgrammatic
		e.history.begin(e.sel)
	}
	e.batchDepth++
}

// EndBatch ends the current batch. When the outermost batch ends and any edit
// happened, listeners receive a single Change.
func (e *Engine) EndBatch() {
	e.mu.Lock()
	if e.batchDepth == 0 {
		e.mu.Unlock()
		return
	}
	e.batchDepth--
	if e.batchDepth > 0 {
		e.mu.Unlock()
		return
	}
	e.history.end()
	edits, origin := e.batchEdits, e.batchOrigin
	e.batchEdits = 0
	e.mu.Unlock()

	if edits > 0 {
		e.emit(Change{Origin: origin, Edits: edits})
	}
}

// apply performs the raw splice. Caller holds the lock.
func (e *Engine) apply(start, end int, text string) {
	e.text = e.text[:start] + text + e.text[end:]
}

// changedLocked records a mutation and reports whether listeners should be
// notified now. Inside a batch the change is accumulated instead.
func (e *Engine) changedLocked(origin Origin, edits int) (Change, bool) {
	if e.batchDepth > 0 {
		e.batchEdits += edits
		if origin == OriginUser {
			e.batchOrigin = OriginUser
		}
		return Change{}, false
	}
	return Change{Origin: origin, Edits: edits}, true
}

func (e *Engine) emit(c Change) {
	e.mu.RLock()
	fns := make([]ChangeFunc, len(e.listeners))
	for i, l := range e.listeners {
		fns[i] = l.fn
	}
	e.mu.RUnlock()

	for _, fn := range fns {
		fn(c)
	}
}

func (e *Engine) checkRange(start, end int) error {
	if start < 0 || end > len(e.text) || start > len(e.text) {
		return ErrOffsetOutOfRange
	}
	if end < start {
		return ErrRangeInvalid
	}
	return nil
}

func (e *Engine) checkWrite(start, end int) error {
	if e.readOnly {
		return ErrReadOnly
	}
	return e.checkRange(start, end)
}

// transformSelection maps a selection across a replacement of [start, end)
// by insLen bytes.
func transformSelection(s Selection, start, end, insLen int) Selection {
	return Selection{
		Anchor: transformOffset(s.Anchor, start, end, insLen),
		Head:   transformOffset(s.Head, start, end, insLen),
	}
}

func transformOffset(p, start, end, insLen int) int {
	switch {
	case p <= start:
		return p
	case p >= end:
		return p + insLen - (end - start)
	default:
		return start + insLen
	}
}
