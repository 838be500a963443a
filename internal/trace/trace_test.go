package trace

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

type panickingSink struct{}

func (panickingSink) Emit(context.Context, Event) {
	panic("sink exploded")
}

type recordingSink struct {
	events []Event
}

func (s *recordingSink) Emit(_ context.Context, ev Event) {
	s.events = append(s.events, ev)
}

func TestEmitNilSink(t *testing.T) {
	// Must not panic.
	Emit(context.Background(), nil, EventBatchStarted, nil)
}

func TestEmitSwallowsPanic(t *testing.T) {
	Emit(context.Background(), panickingSink{}, EventGenerationError, map[string]any{"batch": 1})
}

func TestEmitRecordsEvent(t *testing.T) {
	sink := &recordingSink{}
	Emit(context.Background(), sink, EventBatchCompleted, map[string]any{"rows": 5})

	if len(sink.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(sink.events))
	}
	ev := sink.events[0]
	if ev.Name != EventBatchCompleted {
		t.Errorf("expected %q, got %q", EventBatchCompleted, ev.Name)
	}
	if ev.Meta["rows"] != 5 {
		t.Errorf("expected rows=5, got %v", ev.Meta["rows"])
	}
	if ev.At.IsZero() {
		t.Error("expected timestamp to be set")
	}
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	sink := NewLogSink(logger)
	Emit(context.Background(), sink, EventParseError, map[string]any{"row": 3})

	out := buf.String()
	if !strings.Contains(out, "event="+EventParseError) {
		t.Errorf("expected event name in output, got %q", out)
	}
	if !strings.Contains(out, "row=3") {
		t.Errorf("expected metadata in output, got %q", out)
	}
}
