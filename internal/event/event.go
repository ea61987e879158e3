package event

import (
	"time"

	"github.com/google/uuid"
)

// Event is a published notification. Events are immutable once created.
type Event struct {
	// Topic is the hierarchical event type (e.g., "session.opened").
	Topic Topic

	// Payload contains the event-specific data.
	Payload any

	// ID is a unique identifier for this event instance.
	ID string

	// Timestamp is when the event was created.
	Timestamp time.Time

	// Source identifies the component that published the event.
	Source string
}

// New creates an event with a fresh id and timestamp.
func New(topic Topic, payload any, source string) Event {
	return Event{
		Topic:     topic,
		Payload:   payload,
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Source:    source,
	}
}

// Editor topics.
const (
	// TopicSessionCreated is published when an untitled session is added.
	TopicSessionCreated Topic = "session.created"

	// TopicSessionOpened is published when a file is opened.
	TopicSessionOpened Topic = "session.opened"

	// TopicSessionActivated is published when the active session changes.
	TopicSessionActivated Topic = "session.activated"

	// TopicSessionSaved is published after a successful save.
	TopicSessionSaved Topic = "session.saved"

	// TopicSessionClosed is published after a session is removed.
	TopicSessionClosed Topic = "session.closed"

	// TopicDocumentRendered is published after a document is rendered into the view.
	TopicDocumentRendered Topic = "document.rendered"

	// TopicDocumentExported is published after an HTML export.
	TopicDocumentExported Topic = "document.exported"

	// TopicThemeChanged is published when the theme toggles.
	TopicThemeChanged Topic = "theme.changed"

	// TopicLocaleChanged is published when the interface language changes.
	TopicLocaleChanged Topic = "locale.changed"

	// TopicSearchMissed is published when a search finds nothing.
	TopicSearchMissed Topic = "search.missed"

	// TopicSearchReplaced is published after a replace-all.
	TopicSearchReplaced Topic = "search.replaced"
)

// SessionPayload identifies a session and its file.
type SessionPayload struct {
	ID   string
	Path string
}

// RenderPayload describes a completed render.
type RenderPayload struct {
	ID    string
	Words int
	Chars int
}

// ThemePayload carries the new theme name.
type ThemePayload struct {
	Theme string
}

// LocalePayload carries the new locale tag.
type LocalePayload struct {
	Locale string
}

// SearchPayload describes a search outcome.
type SearchPayload struct {
	Query string
	Count int
}
