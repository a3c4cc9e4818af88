// logging.go wires structured logging through logiface, the logging
// library the teacher module itself depends on.
package backburner

import (
	"github.com/joeycumines/logiface"
)

// Logger is the structured logging sink used by a [Backburner] for instance
// begin/end/pause transitions, scheduling, timer arming, debounce/throttle
// firing, flood-guard warnings, and onError-diverted errors; cancellation is
// not logged. It is a thin alias over [logiface.Logger]
// so callers can pass any logiface-backed logger (stumpy, zerolog, logrus,
// slog adapters — anything satisfying [logiface.Event]) via [WithLogger].
type Logger = *logiface.Logger[logiface.Event]

// NewNoOpLogger returns a [Logger] that discards every event. It is the
// default when [WithLogger] is not supplied.
func NewNoOpLogger() Logger {
	return logiface.New[logiface.Event]()
}

// NewWriterLogger returns a [Logger] that forwards every event to write.
// This is a convenience for embedders that want structured events without
// depending on a specific logiface backend (stumpy, zerolog, ...).
func NewWriterLogger(write func(event logiface.Event) error) Logger {
	return logiface.New[logiface.Event](
		logiface.WithWriter[logiface.Event](logiface.NewWriterFunc(write)),
	)
}

// logDebugf emits a low-cardinality debug event, guarded so field
// construction is skipped when debug logging is disabled.
func logDebugf(l Logger, category, message string, fields map[string]any) {
	if l == nil {
		return
	}
	b := l.Debug()
	if b == nil {
		return
	}
	b = b.Str("category", category)
	for k, v := range fields {
		b = logField(b, k, v)
	}
	b.Log(message)
}

// logWarnf emits a warning event, used for flood-guard diagnostics.
func logWarnf(l Logger, category, message string, fields map[string]any) {
	if l == nil {
		return
	}
	b := l.Warning()
	if b == nil {
		return
	}
	b = b.Str("category", category)
	for k, v := range fields {
		b = logField(b, k, v)
	}
	b.Log(message)
}

// logErrf emits an error event carrying err, used when onError diverts a
// panic or returned error from a work item.
func logErrf(l Logger, category, message string, err error, fields map[string]any) {
	if l == nil {
		return
	}
	b := l.Err()
	if b == nil {
		return
	}
	b = b.Str("category", category).Err(err)
	for k, v := range fields {
		b = logField(b, k, v)
	}
	b.Log(message)
}

// logField dispatches a field onto a builder by its dynamic type, since
// logiface's Builder methods are typed rather than accepting `any`.
func logField(b *logiface.Builder[logiface.Event], key string, v any) *logiface.Builder[logiface.Event] {
	switch val := v.(type) {
	case string:
		return b.Str(key, val)
	case int:
		return b.Int(key, val)
	case int64:
		return b.Int64(key, val)
	case bool:
		return b.Bool(key, val)
	case float64:
		return b.Float64(key, val)
	default:
		return b.Any(key, val)
	}
}
