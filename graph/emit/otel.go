package emit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OTelEmitter implements Emitter by creating OpenTelemetry spans.
//
// Each event becomes a span with:
//   - Span name: event.Msg (e.g., "node_end", "routing_decision")
//   - Attributes: footagents.run_id, footagents.step, footagents.node_id
//     and every event.Meta field
//   - Status: Error if event.Meta["error"] exists
//
// When Meta carries "duration_ms" the span is backdated so its length
// matches the node's execution time.
//
// Usage:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	emitter := emit.NewOTelEmitter(tp.Tracer("footagents"))
type OTelEmitter struct {
	tracer trace.Tracer
}

// NewOTelEmitter creates a new OTelEmitter from a tracer.
func NewOTelEmitter(tracer trace.Tracer) *OTelEmitter {
	return &OTelEmitter{tracer: tracer}
}

// Emit creates and immediately ends a span for the event.
func (o *OTelEmitter) Emit(event Event) {
	end := time.Now()
	start := end
	if d, ok := durationMeta(event.Meta); ok {
		start = end.Add(-d)
	}

	_, span := o.tracer.Start(context.Background(), event.Msg, trace.WithTimestamp(start))
	defer span.End(trace.WithTimestamp(end))

	span.SetAttributes(
		attribute.String("footagents.run_id", event.RunID),
		attribute.Int("footagents.step", event.Step),
		attribute.String("footagents.node_id", event.NodeID),
	)
	addMetadataAttributes(span, event.Meta)

	if msg, ok := event.Meta["error"].(string); ok {
		span.SetStatus(codes.Error, msg)
		span.RecordError(errors.New(msg))
	}
}

func durationMeta(meta map[string]interface{}) (time.Duration, bool) {
	switch v := meta["duration_ms"].(type) {
	case int64:
		return time.Duration(v) * time.Millisecond, true
	case int:
		return time.Duration(v) * time.Millisecond, true
	}
	return 0, false
}

// addMetadataAttributes converts event metadata to span attributes.
//
// Scalars map directly; time.Duration becomes milliseconds; structured
// values (the committed delta, for instance) are JSON encoded.
func addMetadataAttributes(span trace.Span, meta map[string]interface{}) {
	for key, value := range meta {
		switch v := value.(type) {
		case string:
			span.SetAttributes(attribute.String(key, v))
		case int:
			span.SetAttributes(attribute.Int(key, v))
		case int64:
			span.SetAttributes(attribute.Int64(key, v))
		case float64:
			span.SetAttributes(attribute.Float64(key, v))
		case bool:
			span.SetAttributes(attribute.Bool(key, v))
		case time.Duration:
			span.SetAttributes(attribute.Int64(key, int64(v/time.Millisecond)))
		default:
			if data, err := json.Marshal(v); err == nil {
				span.SetAttributes(attribute.String(key, string(data)))
			} else {
				span.SetAttributes(attribute.String(key, fmt.Sprintf("%v", v)))
			}
		}
	}
}
