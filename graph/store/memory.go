package store

import (
	"context"
	"sort"
	"sync"
)

// MemStore is an in-memory Store for tests and single-process servers.
//
// When maxRuns is positive the oldest run is dropped once the limit is
// exceeded, which keeps a long-running server's memory bounded.
type MemStore[S any] struct {
	mu      sync.RWMutex
	steps   map[string][]StepRecord[S] // runID -> steps
	runs    []string
	maxRuns int
}

// NewMemStore creates a MemStore retaining at most maxRuns runs
// (zero keeps everything).
func NewMemStore[S any](maxRuns int) *MemStore[S] {
	return &MemStore[S]{
		steps:   make(map[string][]StepRecord[S]),
		maxRuns: maxRuns,
	}
}

// SaveStep implements Store.
func (m *MemStore[S]) SaveStep(_ context.Context, runID string, step int, nodeID string, state S) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.steps[runID]; !ok {
		m.runs = append(m.runs, runID)
		if m.maxRuns > 0 && len(m.runs) > m.maxRuns {
			delete(m.steps, m.runs[0])
			m.runs = m.runs[1:]
		}
	}

	records := m.steps[runID]
	for i := range records {
		if records[i].Step == step {
			records[i] = StepRecord[S]{Step: step, NodeID: nodeID, State: state}
			return nil
		}
	}
	m.steps[runID] = append(records, StepRecord[S]{Step: step, NodeID: nodeID, State: state})
	return nil
}

// LoadLatest implements Store.
func (m *MemStore[S]) LoadLatest(_ context.Context, runID string) (state S, step int, err error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := m.steps[runID]
	if len(records) == 0 {
		var zero S
		return zero, 0, ErrNotFound
	}

	latest := records[0]
	for _, record := range records[1:] {
		if record.Step > latest.Step {
			latest = record
		}
	}
	return latest.State, latest.Step, nil
}

// Steps implements Store.
func (m *MemStore[S]) Steps(_ context.Context, runID string) ([]StepRecord[S], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := m.steps[runID]
	if len(records) == 0 {
		return nil, ErrNotFound
	}

	out := make([]StepRecord[S], len(records))
	copy(out, records)
	sort.Slice(out, func(i, j int) bool { return out[i].Step < out[j].Step })
	return out, nil
}
