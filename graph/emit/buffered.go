package emit

import "sync"

// BufferedEmitter implements Emitter by storing events in memory.
//
// Events are organized by runID so a single run's history can be fetched
// after the fact, e.g. by the /runs/{id}/events debugging endpoint or by
// tests asserting on execution order.
//
// When MaxRuns is positive the emitter keeps only the most recent MaxRuns
// runs and evicts the oldest run wholesale.
//
// Example usage:
//
//	emitter := emit.NewBufferedEmitter(100)
//	engine := graph.New(reduce, nil, emitter)
//	engine.Run(ctx, "run-001", initial)
//	ends := emitter.GetHistoryWithFilter("run-001", emit.HistoryFilter{Msg: "node_end"})
type BufferedEmitter struct {
	mu      sync.RWMutex
	events  map[string][]Event // runID -> events
	runs    []string           // insertion order of runIDs
	maxRuns int
}

// HistoryFilter specifies criteria for filtering execution history.
//
// All filter fields are optional. When multiple fields are set, they are
// combined with AND logic.
type HistoryFilter struct {
	NodeID  string // Filter by node ID (empty = no filter)
	Msg     string // Filter by message (empty = no filter)
	MinStep *int   // Minimum step number (nil = no filter)
	MaxStep *int   // Maximum step number (nil = no filter)
}

// NewBufferedEmitter creates a BufferedEmitter retaining at most maxRuns
// runs. Zero or negative keeps everything.
func NewBufferedEmitter(maxRuns int) *BufferedEmitter {
	return &BufferedEmitter{
		events:  make(map[string][]Event),
		maxRuns: maxRuns,
	}
}

// Emit stores an event in the buffer.
func (b *BufferedEmitter) Emit(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.events[event.RunID]; !ok {
		b.runs = append(b.runs, event.RunID)
		if b.maxRuns > 0 && len(b.runs) > b.maxRuns {
			oldest := b.runs[0]
			b.runs = b.runs[1:]
			delete(b.events, oldest)
		}
	}
	b.events[event.RunID] = append(b.events[event.RunID], event)
}

// GetHistory retrieves a copy of all events for a runID in emission order.
// Returns an empty slice for unknown runs.
func (b *BufferedEmitter) GetHistory(runID string) []Event {
	return b.GetHistoryWithFilter(runID, HistoryFilter{})
}

// GetHistoryWithFilter retrieves the events of a run matching filter.
func (b *BufferedEmitter) GetHistoryWithFilter(runID string, filter HistoryFilter) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	result := []Event{}
	for _, event := range b.events[runID] {
		if filter.matches(event) {
			result = append(result, event)
		}
	}
	return result
}

// HasRun reports whether any event of runID is still buffered.
func (b *BufferedEmitter) HasRun(runID string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.events[runID]
	return ok
}

func (f HistoryFilter) matches(event Event) bool {
	if f.NodeID != "" && event.NodeID != f.NodeID {
		return false
	}
	if f.Msg != "" && event.Msg != f.Msg {
		return false
	}
	if f.MinStep != nil && event.Step < *f.MinStep {
		return false
	}
	if f.MaxStep != nil && event.Step > *f.MaxStep {
		return false
	}
	return true
}

// Clear removes stored events for runID, or everything when runID is empty.
func (b *BufferedEmitter) Clear(runID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if runID == "" {
		b.events = make(map[string][]Event)
		b.runs = nil
		return
	}
	delete(b.events, runID)
	for i, id := range b.runs {
		if id == runID {
			b.runs = append(b.runs[:i], b.runs[i+1:]...)
			break
		}
	}
}
