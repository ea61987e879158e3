package engine

// edit records one applied replacement so it can be reversed.
type edit struct {
	start   int
	oldText string
	newText string
}

// undoEntry is one undo step. Batched edits share a single entry.
type undoEntry struct {
	edits     []edit
	selBefore Selection
	selAfter  Selection
}

// history manages undo/redo stacks. It is guarded by the engine lock.
type history struct {
	undoStack  []*undoEntry
	redoStack  []*undoEntry
	maxEntries int

	// open collects edits while a batch is in progress.
	open *undoEntry
}

func newHistory() history {
	return history{maxEntries: DefaultMaxUndoEntries}
}

// record adds an applied edit, either to the open batch entry or as its own step.
func (h *history) record(ed edit, before, after Selection) {
	if h.open != nil {
		h.open.edits = append(h.open.edits, ed)
		h.open.selAfter = after
		return
	}
	h.push(&undoEntry{edits: []edit{ed}, selBefore: before, selAfter: after})
}

// begin opens a batch entry.
func (h *history) begin(sel Selection) {
	h.open = &undoEntry{selBefore: sel, selAfter: sel}
}

// end closes the batch entry, pushing it when it holds any edits.
func (h *history) end() {
	entry := h.open
	h.open = nil
	if entry != nil && len(entry.edits) > 0 {
		h.push(entry)
	}
}

func (h *history) push(entry *undoEntry) {
	h.undoStack = append(h.undoStack, entry)
	h.redoStack = nil

	if len(h.undoStack) > h.maxEntries {
		excess := len(h.undoStack) - h.maxEntries
		h.undoStack = h.undoStack[excess:]
	}
}

func (h *history) popUndo() *undoEntry {
	if len(h.undoStack) == 0 {
		return nil
	}
	entry := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.redoStack = append(h.redoStack, entry)
	return entry
}

func (h *history) popRedo() *undoEntry {
	if len(h.redoStack) == 0 {
		return nil
	}
	entry := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.undoStack = append(h.undoStack, entry)
	return entry
}

func (h *history) reset() {
	h.undoStack = nil
	h.redoStack = nil
	h.open = nil
}
