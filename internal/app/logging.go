package app

import (
	"pkt.systems/pslog"
)

// WithComponent returns a logger tagged with the component name.
func WithComponent(logger pslog.Logger, component string) pslog.Logger {
	return logger.With("component", component)
}
