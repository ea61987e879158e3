// Package app wires the editor core together.
//
// Application owns the session registry, the search engine, the render
// pipeline, the current theme and the interface locale. User actions enter
// through its methods; results leave through three collaborators supplied by
// the surrounding program:
//
//   - ViewSink receives rendered documents (push only).
//   - Notifier shows non-blocking notices and blocking alerts.
//   - Prompter answers the unsaved-changes decision and asks for save paths.
//
// Every user-facing string is produced from a message key through the
// i18n catalog. Lifecycle notifications are also published on an event.Bus.
//
// Application is driven from a single goroutine and is not safe for
// concurrent use.
package app
