package emit

// Emitter receives and processes observability events from workflow execution.
//
// Implementations should be:
//   - Non-blocking: Avoid slowing down workflow execution
//   - Thread-safe: Called concurrently from parallel runs
//   - Resilient: Never panic, swallow backend failures
type Emitter interface {
	// Emit sends an observability event to the configured backend.
	Emit(event Event)
}

// MultiEmitter fans every event out to several emitters in order.
type MultiEmitter []Emitter

// NewMultiEmitter skips nil emitters.
func NewMultiEmitter(emitters ...Emitter) MultiEmitter {
	out := make(MultiEmitter, 0, len(emitters))
	for _, e := range emitters {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

// Emit implements Emitter.
func (m MultiEmitter) Emit(event Event) {
	for _, e := range m {
		e.Emit(event)
	}
}
