package emit

import (
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogEmitter implements Emitter by writing events to a zap logger.
//
// Levels follow the event kind:
//   - node_error: warn
//   - run_complete: info
//   - everything else: debug
//
// Example console output:
//
//	2025-01-01T10:00:00.000Z	DEBUG	graph	node_end	{"run_id": "run-001", "step": 2, "node_id": "generate_response", "duration_ms": 812}
//
// Usage:
//
//	logger, _ := zap.NewDevelopment()
//	emitter := emit.NewLogEmitter(logger.Named("graph"))
type LogEmitter struct {
	logger *zap.Logger
}

// NewLogEmitter creates a LogEmitter. A nil logger discards output.
func NewLogEmitter(logger *zap.Logger) *LogEmitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogEmitter{logger: logger}
}

// Emit writes the event as a single structured log entry.
func (l *LogEmitter) Emit(event Event) {
	level := zapcore.DebugLevel
	switch event.Msg {
	case "node_error", "trace_error":
		level = zapcore.WarnLevel
	case "run_complete":
		level = zapcore.InfoLevel
	}

	ce := l.logger.Check(level, event.Msg)
	if ce == nil {
		return
	}
	ce.Write(eventFields(event)...)
}

func eventFields(event Event) []zap.Field {
	fields := make([]zap.Field, 0, 3+len(event.Meta))
	fields = append(fields, zap.String("run_id", event.RunID))
	if event.Step > 0 {
		fields = append(fields, zap.Int("step", event.Step))
	}
	if event.NodeID != "" {
		fields = append(fields, zap.String("node_id", event.NodeID))
	}

	// Stable field order keeps log lines diffable.
	keys := make([]string, 0, len(event.Meta))
	for k := range event.Meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fields = append(fields, zap.Any(k, event.Meta[k]))
	}
	return fields
}
