package session

import (
	"errors"
	"fmt"
)

// Session errors.
var (
	// ErrNotFound indicates no session has the requested id.
	ErrNotFound = errors.New("session not found")

	// ErrNoPath indicates a save was requested for a document without a path.
	ErrNoPath = errors.New("document has no path")

	// ErrClosed indicates the document has already been closed.
	ErrClosed = errors.New("document is closed")

	// ErrPathInUse indicates a save target is open in another session.
	ErrPathInUse = errors.New("path is open in another document")
)

// IOError reports a failed read, write or export.
type IOError struct {
	Op   string // "open", "save", "export"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Op
	if e.Path != "" {
		msg = fmt.Sprintf("%s %s", e.Op, e.Path)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *IOError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches the wrapper instance and the wrapped error.
func (e *IOError) Is(target error) bool {
	if e == nil {
		return false
	}
	if t, ok := target.(*IOError); ok {
		return e == t
	}
	return errors.Is(e.Err, target)
}
