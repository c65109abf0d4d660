// Package monitoring holds the process-wide diagnostic logging hook shared
// by the motion layers and the CLI.
package monitoring

import (
	"context"
	"fmt"
	"log"
	"log/slog"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// SlogPrintf adapts a structured logger to the Logf signature. Messages are
// emitted at the given level with the formatted text as the message.
func SlogPrintf(l *slog.Logger, level slog.Level) func(format string, v ...interface{}) {
	if l == nil {
		return nil
	}
	return func(format string, v ...interface{}) {
		l.Log(context.Background(), level, fmt.Sprintf(format, v...))
	}
}
