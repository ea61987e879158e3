package engine

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	e := New()
	if e.Len() != 0 {
		t.Errorf("expected empty engine, got len %d", e.Len())
	}
	if e.Text() != "" {
		t.Errorf("expected empty text, got %q", e.Text())
	}
}

func TestNewWithContent(t *testing.T) {
	content := "Hello, World!"
	e := New(WithContent(content))

	if e.Text() != content {
		t.Errorf("expected %q, got %q", content, e.Text())
	}
	if e.Len() != len(content) {
		t.Errorf("expected len %d, got %d", len(content), e.Len())
	}
}

func TestInsert(t *testing.T) {
	e := New()

	end, err := e.Insert(0, "Hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if end != 5 {
		t.Errorf("expected end 5, got %d", end)
	}
	if e.Text() != "Hello" {
		t.Errorf("expected 'Hello', got %q", e.Text())
	}
}

func TestInsert_OutOfRange(t *testing.T) {
	e := New(WithContent("abc"))

	if _, err := e.Insert(10, "x"); !errors.Is(err, ErrOffsetOutOfRange) {
		t.Errorf("expected ErrOffsetOutOfRange, got %v", err)
	}
	if _, err := e.Replace(2, 1, "x"); !errors.Is(err, ErrRangeInvalid) {
		t.Errorf("expected ErrRangeInvalid, got %v", err)
	}
}

func TestReplace_TransformsSelection(t *testing.T) {
	e := New(WithContent("Hello, World!"))
	e.SetSelection(7, 12) // "World"

	if _, err := e.Replace(0, 5, "Hi"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Text() != "Hi, World!" {
		t.Fatalf("unexpected text %q", e.Text())
	}
	if got := e.SelectedText(); got != "World" {
		t.Errorf("expected selection to follow text, got %q", got)
	}
}

func TestInsertAtCursor_ReplacesSelection(t *testing.T) {
	e := New(WithContent("one two three"))
	e.SetSelection(4, 7)

	if err := e.InsertAtCursor("2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Text() != "one 2 three" {
		t.Errorf("unexpected text %q", e.Text())
	}
	sel := e.Selection()
	if !sel.IsEmpty() || sel.Head != 5 {
		t.Errorf("expected collapsed cursor at 5, got %+v", sel)
	}
}

func TestSelection_Clamped(t *testing.T) {
	e := New(WithContent("abc"))
	e.SetSelection(-4, 99)

	sel := e.Selection()
	if sel.Anchor != 0 || sel.Head != 3 {
		t.Errorf("expected clamped selection [0,3], got %+v", sel)
	}
	if e.SelectedText() != "abc" {
		t.Errorf("unexpected selected text %q", e.SelectedText())
	}
}

func TestFind(t *testing.T) {
	e := New(WithContent("xx needle yy needle"))

	tests := []struct {
		name     string
		query    string
		from     int
		backward bool
		want     Range
		found    bool
	}{
		{"forward from start", "needle", 0, false, Range{3, 9}, true},
		{"forward skips earlier", "needle", 4, false, Range{13, 19}, true},
		{"forward past last", "needle", 14, false, Range{}, false},
		{"backward from end", "needle", 19, true, Range{13, 19}, true},
		{"backward needs whole match", "needle", 18, true, Range{3, 9}, true},
		{"backward before first", "needle", 5, true, Range{}, false},
		{"case sensitive", "Needle", 0, false, Range{}, false},
		{"empty query", "", 0, false, Range{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := e.Find(tt.query, tt.from, tt.backward)
			if ok != tt.found {
				t.Fatalf("found = %v, want %v", ok, tt.found)
			}
			if ok && got != tt.want {
				t.Errorf("range = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUndoRedo(t *testing.T) {
	e := New()
	e.Insert(0, "Hello")
	e.Insert(5, " World")

	if err := e.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if e.Text() != "Hello" {
		t.Errorf("expected 'Hello', got %q", e.Text())
	}
	if err := e.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if e.Text() != "" {
		t.Errorf("expected empty, got %q", e.Text())
	}
	if err := e.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("expected ErrNothingToUndo, got %v", err)
	}

	if err := e.Redo(); err != nil {
		t.Fatalf("redo: %v", err)
	}
	if e.Text() != "Hello" {
		t.Errorf("expected 'Hello', got %q", e.Text())
	}
}

func TestUndo_NewEditClearsRedo(t *testing.T) {
	e := New()
	e.Insert(0, "a")
	e.Undo()
	e.Insert(0, "b")

	if e.CanRedo() {
		t.Error("expected redo stack to be cleared by a new edit")
	}
	if err := e.Redo(); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("expected ErrNothingToRedo, got %v", err)
	}
}

func TestMaxUndoEntries(t *testing.T) {
	e := New(WithMaxUndoEntries(2))
	e.Insert(0, "a")
	e.Insert(1, "b")
	e.Insert(2, "c")

	e.Undo()
	e.Undo()
	if err := e.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("expected history to be capped at 2, got %v", err)
	}
	if e.Text() != "a" {
		t.Errorf("expected 'a', got %q", e.Text())
	}
}

func TestSetText_ProgrammaticResetsHistory(t *testing.T) {
	e := New()
	e.Insert(0, "typed")

	var changes []Change
	e.OnChange(func(c Change) { changes = append(changes, c) })

	e.SetText("loaded", OriginProgrammatic)

	if e.Text() != "loaded" {
		t.Errorf("unexpected text %q", e.Text())
	}
	if e.CanUndo() {
		t.Error("expected programmatic replacement to reset undo history")
	}
	if len(changes) != 1 || changes[0].Origin != OriginProgrammatic {
		t.Errorf("expected one programmatic change, got %+v", changes)
	}
}

func TestOnChange_Unsubscribe(t *testing.T) {
	e := New()
	calls := 0
	remove := e.OnChange(func(Change) { calls++ })

	e.Insert(0, "x")
	remove()
	e.Insert(0, "y")

	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestBatch_SingleNotificationAndUndoStep(t *testing.T) {
	e := New(WithContent("aaa"))

	var changes []Change
	e.OnChange(func(c Change) { changes = append(changes, c) })

	e.BeginBatch()
	e.BeginBatch() // nested
	e.Replace(0, 1, "bb")
	e.Replace(2, 3, "bb")
	e.EndBatch()
	if len(changes) != 0 {
		t.Fatalf("expected no notification inside batch, got %d", len(changes))
	}
	e.Replace(4, 5, "bb")
	e.EndBatch()

	if e.Text() != "bbbbbb" {
		t.Fatalf("unexpected text %q", e.Text())
	}
	if len(changes) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(changes))
	}
	if changes[0].Edits != 3 || changes[0].Origin != OriginUser {
		t.Errorf("unexpected change %+v", changes[0])
	}

	if err := e.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if e.Text() != "aaa" {
		t.Errorf("expected batch to undo as one step, got %q", e.Text())
	}
}

func TestBatch_EmptyDoesNotNotify(t *testing.T) {
	e := New(WithContent("abc"))
	calls := 0
	e.OnChange(func(Change) { calls++ })

	e.BeginBatch()
	e.EndBatch()
	e.EndBatch() // unbalanced end is ignored

	if calls != 0 {
		t.Errorf("expected no notification, got %d", calls)
	}
	if e.CanUndo() {
		t.Error("expected no undo entry for an empty batch")
	}
}

func TestReadOnly(t *testing.T) {
	e := New(WithContent("fixed"), WithReadOnly())

	if _, err := e.Insert(0, "x"); !errors.Is(err, ErrReadOnly) {
		t.Errorf("expected ErrReadOnly, got %v", err)
	}
	if err := e.InsertAtCursor("x"); !errors.Is(err, ErrReadOnly) {
		t.Errorf("expected ErrReadOnly, got %v", err)
	}
	if err := e.SetText("x", OriginUser); !errors.Is(err, ErrReadOnly) {
		t.Errorf("expected ErrReadOnly, got %v", err)
	}
	if err := e.SetText("reloaded", OriginProgrammatic); err != nil {
		t.Errorf("expected programmatic reload to succeed, got %v", err)
	}
}
