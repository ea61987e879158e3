// Package engine provides the text buffer that backs every open document.
//
// An Engine holds raw UTF-8 text addressed by byte offsets, a single
// selection (anchor and head), literal search, and an undo/redo history.
// Edits carry an Origin so that observers can tell user keystrokes apart
// from programmatic replacement such as loading a file.
//
// # Basic Usage
//
//	e := engine.New(engine.WithContent("Hello, World!"))
//
//	e.Replace(7, 12, "Go") // "Hello, Go!"
//	e.Undo()               // "Hello, World!"
//
// # Change Notification
//
// Listeners registered with OnChange run after every mutation, outside the
// engine lock:
//
//	e.OnChange(func(c engine.Change) {
//	    if c.Origin == engine.OriginUser {
//	        markDirty()
//	    }
//	})
//
// # Batches
//
// BeginBatch and EndBatch coalesce many edits into one change notification
// and one undo step. Nested batches are flattened; the notification fires
// when the outermost batch ends and only if something changed:
//
//	e.BeginBatch()
//	for ... {
//	    e.Replace(start, end, repl)
//	}
//	e.EndBatch()
//
// # Thread Safety
//
// All Engine methods are safe for concurrent use.
package engine
