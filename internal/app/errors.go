package app

import (
	"errors"

	"github.com/dshills/keymark/internal/search"
)

// Application errors.
var (
	// ErrNoActiveSession indicates an operation needs a document and none is active.
	ErrNoActiveSession = search.ErrNoActiveSession

	// ErrUnsupportedLocale indicates a locale without its own messages.
	ErrUnsupportedLocale = errors.New("unsupported locale")
)
