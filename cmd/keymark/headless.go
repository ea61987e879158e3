package main

import (
	"context"
	"fmt"
	"io"

	"pkt.systems/pslog"

	"github.com/dshills/keymark/internal/app"
	"github.com/dshills/keymark/internal/event"
	"github.com/dshills/keymark/internal/renderer"
	"github.com/dshills/keymark/internal/session"
)

// consoleNotifier prints notices and alerts as lines on w.
type consoleNotifier struct {
	w     io.Writer
	quiet bool
}

func (n consoleNotifier) Notify(msg string) {
	if n.quiet {
		return
	}
	fmt.Fprintln(n.w, msg)
}

func (n consoleNotifier) Alert(title, msg string) {
	fmt.Fprintf(n.w, "%s: %s\n", title, msg)
}

// logView records renders in the log instead of displaying them.
type logView struct {
	logger pslog.Logger
}

func (v logView) RenderInto(doc *session.Document, out renderer.Output) {
	v.logger.Debug("rendered", "session", doc.ID(), "words", out.Words, "chars", out.Chars)
}

func (v logView) SetStatus(doc *session.Document, st app.Status) {
	v.logger.Debug("status", "session", doc.ID(), "title", st.WindowTitle, "words", st.Words, "chars", st.Chars)
}

// batchPrompter answers without a user: unsaved changes are kept by
// cancelling, and no save path is offered.
type batchPrompter struct{}

func (batchPrompter) ConfirmClose(*session.Document) session.Decision {
	return session.DecisionCancel
}

func (batchPrompter) SavePath(*session.Document) (string, bool) {
	return "", false
}

// loggedTopics are the lifecycle events written to the debug log.
var loggedTopics = []event.Topic{"session.*", event.TopicDocumentExported, "search.*", "theme.*", "locale.*"}

// logEvents writes lifecycle events published on bus to logger.
func logEvents(bus *event.Bus, logger pslog.Logger) error {
	for _, pattern := range loggedTopics {
		if _, err := bus.Subscribe(pattern, func(_ context.Context, ev event.Event) {
			logger.Debug("editor event", eventFields(ev)...)
		}); err != nil {
			return err
		}
	}
	return nil
}

func eventFields(ev event.Event) []any {
	fields := []any{"topic", ev.Topic.String()}
	switch p := ev.Payload.(type) {
	case event.SessionPayload:
		fields = append(fields, "session", p.ID)
		if p.Path != "" {
			fields = append(fields, "path", p.Path)
		}
	case event.SearchPayload:
		fields = append(fields, "query", p.Query, "count", p.Count)
	case event.ThemePayload:
		fields = append(fields, "theme", p.Theme)
	case event.LocalePayload:
		fields = append(fields, "locale", p.Locale)
	}
	return fields
}
