package app

import (
	"errors"
	"path/filepath"

	"github.com/dshills/keymark/internal/event"
	"github.com/dshills/keymark/internal/session"
	"github.com/dshills/keymark/internal/vfs"
)

// NewFile opens a new untitled document and activates it.
func (a *Application) NewFile() session.ID {
	id := a.registry.NewSession()
	a.notifier.Notify(a.T("file_new_message"))
	return id
}

// OpenFile opens path, or activates it when it is already open.
func (a *Application) OpenFile(path string) (session.ID, error) {
	id, err := a.registry.OpenFile(path)
	if err != nil {
		a.logger.Error("open failed", "path", path, "err", err)
		a.notifier.Notify(a.T("file_error_open", errorText(err)))
		return "", err
	}
	a.logger.Info("file opened", "session", id, "path", path)
	a.notifier.Notify(a.T("file_opened", filepath.Clean(path)))
	return id, nil
}

// Reload replaces the active document with the current content of its file.
// A dirty document is first resolved through the prompter: Save writes the
// edits before reloading, Discard drops them, Cancel keeps the buffer. It
// reports false when nothing was reloaded.
func (a *Application) Reload() (bool, error) {
	doc, err := a.requireActive()
	if err != nil {
		return false, err
	}
	if doc.Path() == "" {
		return false, session.ErrNoPath
	}

	if doc.IsDirty() {
		switch a.prompter.ConfirmClose(doc) {
		case session.DecisionCancel:
			return false, nil
		case session.DecisionSave:
			ok, err := a.save(doc, doc.Path())
			if err != nil || !ok {
				return false, err
			}
		case session.DecisionDiscard:
		}
	}

	if err := doc.Load(a.store, doc.Path()); err != nil {
		a.logger.Error("reload failed", "path", doc.Path(), "err", err)
		a.notifier.Notify(a.T("file_error_open", errorText(err)))
		return false, err
	}
	a.pushStatus(doc)
	return true, nil
}

// Save writes the active document to its path, asking for one when the
// document is untitled. It reports false when the user cancelled.
func (a *Application) Save() (bool, error) {
	doc, err := a.requireActive()
	if err != nil {
		return false, err
	}
	return a.save(doc, doc.Path())
}

// SaveAs writes the active document to path. An empty path asks the
// prompter for one.
func (a *Application) SaveAs(path string) (bool, error) {
	doc, err := a.requireActive()
	if err != nil {
		return false, err
	}
	if path == "" {
		p, ok := a.prompter.SavePath(doc)
		if !ok || p == "" {
			return false, nil
		}
		path = p
	}
	return a.save(doc, path)
}

func (a *Application) save(doc *session.Document, path string) (bool, error) {
	if path == "" {
		p, ok := a.prompter.SavePath(doc)
		if !ok || p == "" {
			return false, nil
		}
		path = p
	}

	if err := a.registry.Save(doc, path); err != nil {
		a.logger.Error("save failed", "session", doc.ID(), "path", path, "err", err)
		a.notifier.Notify(a.saveErrorText(err, path))
		return false, err
	}

	a.logger.Info("file saved", "session", doc.ID(), "path", doc.Path())
	a.notifier.Notify(a.T("file_saved", doc.Path()))
	a.publish(event.TopicSessionSaved, event.SessionPayload{ID: string(doc.ID()), Path: doc.Path()})
	if doc.ID() == a.registry.ActiveID() {
		a.pushStatus(doc)
	}
	return true, nil
}

// Close closes the document id, resolving unsaved changes through the
// prompter. It reports false when the close was cancelled.
func (a *Application) Close(id session.ID) (bool, error) {
	closed, err := a.registry.CloseSession(id, a.prompter)
	if err != nil {
		var ioErr *session.IOError
		if errors.As(err, &ioErr) {
			a.notifier.Notify(a.saveErrorText(err, ioErr.Path))
		}
		a.logger.Error("close failed", "session", id, "err", err)
		return false, err
	}
	if closed {
		a.logger.Info("session closed", "session", id)
	}
	return closed, nil
}

// CloseActive closes the active document.
func (a *Application) CloseActive() (bool, error) {
	doc, err := a.requireActive()
	if err != nil {
		return false, err
	}
	return a.Close(doc.ID())
}

// Quit asks about every dirty document in display order. It reports true
// when the program may exit: every dirty document was saved or discarded.
// A cancel or a failed save stops the quit.
func (a *Application) Quit() (bool, error) {
	if !a.registry.HasDirty() {
		a.search.Close()
		return true, nil
	}
	for _, doc := range a.registry.Dirty() {
		switch a.prompter.ConfirmClose(doc) {
		case session.DecisionCancel:
			return false, nil
		case session.DecisionSave:
			ok, err := a.save(doc, doc.Path())
			if err != nil || !ok {
				return false, err
			}
		case session.DecisionDiscard:
		}
	}
	a.search.Close()
	return true, nil
}

// Activate makes id the active document. Unknown ids are ignored.
func (a *Application) Activate(id session.ID) {
	a.registry.SetActive(id)
}

// ExportHTML writes the rendered active document to path, or next to the
// document file when path is empty. It returns the written path.
func (a *Application) ExportHTML(path string) (string, error) {
	doc, err := a.requireActive()
	if err != nil {
		return "", err
	}
	if path == "" {
		path = vfs.ExportPath(doc.Path())
	}

	out := doc.Rendered(a.pipeline, a.theme, a.locale)
	if err := a.store.WriteFile(path, out.HTML); err != nil {
		ioErr := &session.IOError{Op: "export", Path: path, Err: err}
		a.logger.Error("export failed", "session", doc.ID(), "path", path, "err", err)
		a.notifier.Notify(a.T("export_error", errorText(err)))
		return "", ioErr
	}

	a.logger.Info("html exported", "session", doc.ID(), "path", path)
	a.notifier.Notify(a.T("html_file_saved", path))
	a.publish(event.TopicDocumentExported, event.SessionPayload{ID: string(doc.ID()), Path: path})
	return path, nil
}

// saveErrorText is the notice for a failed save to path.
func (a *Application) saveErrorText(err error, path string) string {
	if errors.Is(err, session.ErrPathInUse) {
		return a.T("file_path_open", filepath.Clean(path))
	}
	return a.T("file_error_save", errorText(err))
}

// errorText is the human-readable part of an error shown to the user.
func errorText(err error) string {
	var ioErr *session.IOError
	if errors.As(err, &ioErr) && ioErr.Err != nil {
		return ioErr.Err.Error()
	}
	return err.Error()
}
