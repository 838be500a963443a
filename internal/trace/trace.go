// Package trace provides a best-effort observability sink for the
// categorization pipeline. Sinks are injected capabilities with a no-op
// default; a failing sink must never affect categorization results, so
// emission errors are swallowed.
package trace

import (
	"context"
	"log/slog"
	"time"
)

// Event names emitted by the pipeline.
const (
	EventBatchStarted    = "batch_started"
	EventBatchCompleted  = "batch_completed"
	EventGenerationError = "generation_error"
	EventParseError      = "parse_error"
)

// Event is one structured pipeline event.
type Event struct {
	At   time.Time
	Meta map[string]any
	Name string
}

// Sink receives pipeline events. Implementations must be non-blocking in
// spirit: do the minimum and never panic the caller.
type Sink interface {
	Emit(ctx context.Context, ev Event)
}

// NopSink discards all events. It is the default when no sink is configured.
type NopSink struct{}

// Emit discards the event.
func (NopSink) Emit(context.Context, Event) {}

// LogSink writes events to a structured logger at debug level.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a sink backed by logger; nil selects slog.Default.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

// Emit logs the event and its metadata.
func (s *LogSink) Emit(ctx context.Context, ev Event) {
	attrs := make([]any, 0, len(ev.Meta)*2+2)
	attrs = append(attrs, "event", ev.Name)
	for k, v := range ev.Meta {
		attrs = append(attrs, k, v)
	}
	s.logger.DebugContext(ctx, "pipeline event", attrs...)
}

// Emit sends ev to sink, tolerating a nil sink and recovering any panic so
// observability can never corrupt a result mapping.
func Emit(ctx context.Context, sink Sink, name string, meta map[string]any) {
	if sink == nil {
		return
	}
	defer func() {
		_ = recover()
	}()
	sink.Emit(ctx, Event{Name: name, Meta: meta, At: time.Now()})
}
