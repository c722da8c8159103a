// Package logging wires the runtime's ambient log calls to logiface, using
// zerolog (via izerolog) as the concrete backend — the same combination the
// rest of the corpus configures for structured logging. Callers that don't
// want output construct a Logger with Nop.
package logging

import (
	"io"

	"github.com/joeycumines/izerolog"
	"github.com/joeycumines/logiface"
	"github.com/rs/zerolog"
)

// Logger is the logging handle threaded through worker, storage, and engine
// host code. It's a type alias so callers needn't import logiface directly.
type Logger = *logiface.Logger[*izerolog.Event]

// New builds a Logger that writes JSON lines to w at level and above.
func New(w io.Writer, level logiface.Level) Logger {
	zl := zerolog.New(w).With().Timestamp().Logger()
	return logiface.New[*izerolog.Event](
		izerolog.WithZerolog(zl),
		logiface.WithLevel[*izerolog.Event](level),
	)
}

// Nop returns a Logger with no writer configured, so every call is a no-op.
func Nop() Logger {
	return logiface.New[*izerolog.Event]()
}

// WorkerCategory tags log events emitted by the worker loop.
const WorkerCategory = "worker"

// StorageCategory tags log events emitted by the storage layer.
const StorageCategory = "storage"

// EngineCategory tags log events emitted by engine tick diagnostics.
const EngineCategory = "engine"
