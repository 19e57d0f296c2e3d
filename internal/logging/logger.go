// Package logging configures slog for the API and persists error records to
// the system_logs table.
package logging

import (
	"io"
	"log/slog"
)

var level = new(slog.LevelVar)

// Setup installs a JSON logger writing to w as the slog default and returns
// its handler so it can be combined with a PGHandler later.
func Setup(w io.Writer) slog.Handler {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
	return handler
}

// SetLevel adjusts the handler returned by Setup. Unknown names leave the
// level unchanged and report false.
func SetLevel(name string) bool {
	var l slog.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return false
	}
	level.Set(l)
	return true
}
