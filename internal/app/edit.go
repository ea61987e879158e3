package app

import (
	"errors"

	"github.com/dshills/keymark/internal/event"
	"github.com/dshills/keymark/internal/format"
	"github.com/dshills/keymark/internal/search"
)

// FindNext selects the next match of query in the active document.
func (a *Application) FindNext(query string) (bool, error) {
	res, err := a.search.FindNext(query)
	return a.searched(query, res, err)
}

// FindPrevious selects the previous match of query in the active document.
func (a *Application) FindPrevious(query string) (bool, error) {
	res, err := a.search.FindPrevious(query)
	return a.searched(query, res, err)
}

// ReplaceOne replaces the selected match of query and moves to the next.
func (a *Application) ReplaceOne(query, replacement string) (bool, error) {
	res, err := a.search.ReplaceOne(query, replacement)
	return a.searched(query, res, err)
}

// ReplaceAll replaces every match of query and returns the count.
func (a *Application) ReplaceAll(query, replacement string) (int, error) {
	n, err := a.search.ReplaceAll(query, replacement)
	if errors.Is(err, search.ErrNoActiveSession) {
		a.notifier.Alert(a.T("error"), a.T("no_editor_open"))
		return 0, err
	}
	if err != nil {
		a.logger.Error("replace all failed", "query", query, "err", err)
		return n, err
	}
	if query == "" {
		return 0, nil
	}
	a.notifier.Notify(a.T("replace_all_message", n))
	a.publish(event.TopicSearchReplaced, event.SearchPayload{Query: query, Count: n})
	return n, nil
}

// CloseSearch discards the search state.
func (a *Application) CloseSearch() {
	a.search.Close()
}

func (a *Application) searched(query string, res search.Result, err error) (bool, error) {
	if errors.Is(err, search.ErrNoActiveSession) {
		a.notifier.Alert(a.T("error"), a.T("no_editor_open"))
		return false, err
	}
	if err != nil {
		return false, err
	}
	if query == "" {
		return false, nil
	}
	if !res.Found {
		a.logger.Info("no match", "query", query)
		a.notifier.Notify(a.T("no_match_found", query))
		a.publish(event.TopicSearchMissed, event.SearchPayload{Query: query})
	}
	return res.Found, nil
}

// InsertTable inserts a generated table at the cursor of the active document.
// Dimensions are clamped to the supported range.
func (a *Application) InsertTable(rows, cols int) error {
	doc, err := a.requireActive()
	if err != nil {
		return err
	}
	rows, cols = format.ClampDimension(rows), format.ClampDimension(cols)

	text := format.Table(rows, cols, a.locale, a.catalog)
	if err := doc.Buffer().InsertAtCursor(text); err != nil {
		return err
	}
	a.notifier.Notify(a.T("table_inserted", rows, cols))
	return nil
}

// Format applies a formatting action to the active document.
func (a *Application) Format(action format.Action) error {
	doc, err := a.requireActive()
	if err != nil {
		return err
	}
	notice, err := format.Apply(doc.Buffer(), action)
	if err != nil {
		return err
	}
	if notice.Key != "" {
		a.notifier.Notify(a.T(notice.Key, notice.Args...))
	}
	return nil
}
