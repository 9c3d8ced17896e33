package logging

import "log/slog"

// NewNopLogger returns a Logger that discards everything. Intended for tests
// and for components constructed before logging is configured.
func NewNopLogger() Logger {
	return NewSlogLogger(slog.New(slog.DiscardHandler))
}
