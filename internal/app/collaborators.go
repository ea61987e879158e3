package app

import (
	"github.com/dshills/keymark/internal/renderer"
	"github.com/dshills/keymark/internal/session"
)

// ViewSink displays rendered documents.
type ViewSink interface {
	RenderInto(doc *session.Document, out renderer.Output)
}

// Status is the chrome text for the active document.
type Status struct {
	WindowTitle string
	TabTitle    string
	Words       string
	Chars       string
}

// StatusSink is implemented by view sinks that also show titles and counts.
type StatusSink interface {
	SetStatus(doc *session.Document, st Status)
}

// Notifier shows messages to the user.
type Notifier interface {
	// Notify shows a transient message and returns immediately.
	Notify(msg string)

	// Alert shows a message and returns once the user dismissed it.
	Alert(title, msg string)
}

// Prompter answers questions that need the user. It is the session.Resolver
// used when documents close.
type Prompter interface {
	session.Resolver
}

type nopView struct{}

func (nopView) RenderInto(*session.Document, renderer.Output) {}

type nopNotifier struct{}

func (nopNotifier) Notify(string)        {}
func (nopNotifier) Alert(string, string) {}

// cancelPrompter refuses every decision, so nothing is ever lost silently.
type cancelPrompter struct{}

func (cancelPrompter) ConfirmClose(*session.Document) session.Decision {
	return session.DecisionCancel
}

func (cancelPrompter) SavePath(*session.Document) (string, bool) {
	return "", false
}
