package emit

import (
	"context"
	"sync"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// mockEmitter records events for assertions.
type mockEmitter struct {
	mu     sync.Mutex
	events []Event
}

func (m *mockEmitter) Emit(event Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

// TestLogEmitter_Levels verifies events are logged at the level matching their kind.
func TestLogEmitter_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	emitter := NewLogEmitter(zap.New(core))

	emitter.Emit(Event{RunID: "run-001", Step: 1, NodeID: "generate_response", Msg: "node_start"})
	emitter.Emit(Event{RunID: "run-001", Step: 1, NodeID: "generate_response", Msg: "node_error",
		Meta: map[string]interface{}{"error": "boom"}})
	emitter.Emit(Event{RunID: "run-001", Msg: "run_complete", Meta: map[string]interface{}{"outcome": "error"}})

	entries := logs.All()
	if len(entries) != 3 {
		t.Fatalf("expected 3 log entries, got %d", len(entries))
	}

	wantLevels := []zapcore.Level{zapcore.DebugLevel, zapcore.WarnLevel, zapcore.InfoLevel}
	for i, want := range wantLevels {
		if entries[i].Level != want {
			t.Errorf("entry %d level = %v, want %v", i, entries[i].Level, want)
		}
	}

	ctx := entries[1].ContextMap()
	if ctx["run_id"] != "run-001" {
		t.Errorf("run_id = %v, want run-001", ctx["run_id"])
	}
	if ctx["node_id"] != "generate_response" {
		t.Errorf("node_id = %v, want generate_response", ctx["node_id"])
	}
	if ctx["error"] != "boom" {
		t.Errorf("error = %v, want boom", ctx["error"])
	}
}

// TestLogEmitter_NilLogger verifies a nil logger is safe.
func TestLogEmitter_NilLogger(t *testing.T) {
	emitter := NewLogEmitter(nil)
	emitter.Emit(Event{RunID: "run-001", Msg: "node_start"})
}

func TestNullEmitter_NoOp(t *testing.T) {
	var e Emitter = NewNullEmitter()
	e.Emit(Event{RunID: "run-001", Msg: "node_start"})
}

func TestMultiEmitter_FansOut(t *testing.T) {
	a, b := &mockEmitter{}, &mockEmitter{}
	multi := NewMultiEmitter(a, nil, b)

	if len(multi) != 2 {
		t.Fatalf("expected nil emitters to be skipped, got %d", len(multi))
	}

	multi.Emit(Event{RunID: "run-001", Msg: "node_end"})

	if len(a.events) != 1 || len(b.events) != 1 {
		t.Errorf("expected each emitter to receive 1 event, got %d and %d", len(a.events), len(b.events))
	}
}

// TestBufferedEmitter_History verifies storage, filtering and isolation by run.
func TestBufferedEmitter_History(t *testing.T) {
	emitter := NewBufferedEmitter(0)

	emitter.Emit(Event{RunID: "run-001", Step: 1, NodeID: "retrieve_context", Msg: "node_start"})
	emitter.Emit(Event{RunID: "run-001", Step: 1, NodeID: "retrieve_context", Msg: "node_end"})
	emitter.Emit(Event{RunID: "run-001", Step: 2, NodeID: "generate_response", Msg: "node_start"})
	emitter.Emit(Event{RunID: "run-002", Step: 1, NodeID: "generate_response", Msg: "node_start"})

	t.Run("all events for run", func(t *testing.T) {
		if got := len(emitter.GetHistory("run-001")); got != 3 {
			t.Errorf("expected 3 events, got %d", got)
		}
	})

	t.Run("unknown run returns empty slice", func(t *testing.T) {
		got := emitter.GetHistory("missing")
		if got == nil || len(got) != 0 {
			t.Errorf("expected empty non-nil slice, got %#v", got)
		}
	})

	t.Run("filter by node and msg", func(t *testing.T) {
		got := emitter.GetHistoryWithFilter("run-001", HistoryFilter{NodeID: "retrieve_context", Msg: "node_end"})
		if len(got) != 1 {
			t.Fatalf("expected 1 event, got %d", len(got))
		}
	})

	t.Run("filter by step range", func(t *testing.T) {
		minStep := 2
		got := emitter.GetHistoryWithFilter("run-001", HistoryFilter{MinStep: &minStep})
		if len(got) != 1 || got[0].NodeID != "generate_response" {
			t.Errorf("expected only step 2 event, got %+v", got)
		}
	})

	t.Run("clear one run", func(t *testing.T) {
		emitter.Clear("run-002")
		if emitter.HasRun("run-002") {
			t.Error("expected run-002 to be cleared")
		}
		if !emitter.HasRun("run-001") {
			t.Error("expected run-001 to survive")
		}
	})
}

// TestBufferedEmitter_EvictsOldestRun verifies the MaxRuns bound.
func TestBufferedEmitter_EvictsOldestRun(t *testing.T) {
	emitter := NewBufferedEmitter(2)

	emitter.Emit(Event{RunID: "a", Msg: "node_start"})
	emitter.Emit(Event{RunID: "b", Msg: "node_start"})
	emitter.Emit(Event{RunID: "a", Msg: "node_end"})
	emitter.Emit(Event{RunID: "c", Msg: "node_start"})

	if emitter.HasRun("a") {
		t.Error("expected oldest run a to be evicted")
	}
	if !emitter.HasRun("b") || !emitter.HasRun("c") {
		t.Error("expected runs b and c to be retained")
	}
}

func TestBufferedEmitter_ThreadSafety(t *testing.T) {
	emitter := NewBufferedEmitter(0)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				emitter.Emit(Event{RunID: "run-001", Step: j, Msg: "node_end"})
				_ = emitter.GetHistory("run-001")
			}
		}()
	}
	wg.Wait()

	if got := len(emitter.GetHistory("run-001")); got != 1000 {
		t.Errorf("expected 1000 events, got %d", got)
	}
}

// TestOTelEmitter_Emit verifies a span is created with standard and metadata attributes.
func TestOTelEmitter_Emit(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	emitter := NewOTelEmitter(tp.Tracer("test"))
	emitter.Emit(Event{
		RunID:  "run-001",
		Step:   2,
		NodeID: "generate_response",
		Msg:    "node_end",
		Meta: map[string]interface{}{
			"duration_ms": int64(250),
			"delta":       map[string]string{"summary": "x"},
		},
	})

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]

	if span.Name != "node_end" {
		t.Errorf("span name = %q, want node_end", span.Name)
	}

	attrs := attributeMap(span.Attributes)
	if got := attrs["footagents.run_id"]; got != "run-001" {
		t.Errorf("run_id = %v, want run-001", got)
	}
	if got := attrs["footagents.step"]; got != int64(2) {
		t.Errorf("step = %v, want 2", got)
	}
	if got := attrs["delta"]; got != `{"summary":"x"}` {
		t.Errorf("delta = %v, want JSON encoding", got)
	}

	if d := span.EndTime.Sub(span.StartTime); d.Milliseconds() != 250 {
		t.Errorf("span duration = %v, want 250ms", d)
	}
}

// TestOTelEmitter_EmitWithError verifies error events set error status.
func TestOTelEmitter_EmitWithError(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	emitter := NewOTelEmitter(tp.Tracer("test"))
	emitter.Emit(Event{
		RunID:  "run-001",
		Step:   1,
		NodeID: "generate_response",
		Msg:    "node_error",
		Meta:   map[string]interface{}{"error": "generation failed"},
	})

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Status.Code != codes.Error {
		t.Errorf("status code = %v, want Error", spans[0].Status.Code)
	}
	if spans[0].Status.Description != "generation failed" {
		t.Errorf("status description = %q", spans[0].Status.Description)
	}
}

func attributeMap(attrs []attribute.KeyValue) map[string]interface{} {
	out := make(map[string]interface{}, len(attrs))
	for _, kv := range attrs {
		out[string(kv.Key)] = kv.Value.AsInterface()
	}
	return out
}
