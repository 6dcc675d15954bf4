// Package obslog is a small structured-logging facade used by the
// allocator and cache packages for their degrade-open and rare-error
// logging paths. It wraps zerolog directly, the same way
// joeycumines-go-utilpkg's izerolog package wires zerolog in as a concrete
// logging backend behind a small interface.
package obslog

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger is the facade every package in this module logs through. It is
// intentionally tiny: two severities are all the core's degrade-open and
// detailed-logging paths need.
type Logger interface {
	Warn(msg string, fields map[string]any)
	Debug(msg string, fields map[string]any)
}

type zlogger struct {
	z zerolog.Logger
}

// New builds a Logger backed by zerolog, writing to w as one JSON object
// per line. Pass os.Stdout for CLI tools, or a no-op writer (io.Discard)
// in tests and latency-critical deployments that want logging compiled in
// but silenced.
func New(w io.Writer) Logger {
	return &zlogger{z: zerolog.New(w).With().Timestamp().Logger()}
}

// Discard returns a Logger that drops everything, for callers who want the
// logging call sites to exist (so enabling logs later needs no code
// changes) without paying formatting cost.
func Discard() Logger {
	return &zlogger{z: zerolog.Nop()}
}

// Default returns a Logger writing to stderr, suitable for host programs
// that have not configured their own sink.
func Default() Logger {
	return New(os.Stderr)
}

func (l *zlogger) Warn(msg string, fields map[string]any) {
	ev := l.z.Warn()
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

func (l *zlogger) Debug(msg string, fields map[string]any) {
	ev := l.z.Debug()
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}
