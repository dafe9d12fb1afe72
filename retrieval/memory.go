package retrieval

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"gonum.org/v1/gonum/floats"
)

// MemoryIndex is a brute-force cosine similarity index held in memory.
// It is safe for concurrent use.
type MemoryIndex struct {
	mu    sync.RWMutex
	dim   int
	order []string
	docs  map[string]memoryEntry
}

type memoryEntry struct {
	doc  Document
	vec  []float64
	norm float64
}

// NewMemoryIndex returns an empty index. The dimension is fixed by the
// first document added.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{docs: make(map[string]memoryEntry)}
}

// Add implements Index.
func (m *MemoryIndex) Add(_ context.Context, docs []Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, d := range docs {
		if d.ID == "" {
			return fmt.Errorf("memory index: document id is required")
		}
		if len(d.Embedding) == 0 {
			return fmt.Errorf("memory index: document %s has no embedding", d.ID)
		}
		if m.dim == 0 {
			m.dim = len(d.Embedding)
		}
		if len(d.Embedding) != m.dim {
			return fmt.Errorf("%w: expected %d, got %d for %s", ErrDimensionMismatch, m.dim, len(d.Embedding), d.ID)
		}

		vec := toFloat64(d.Embedding)
		if _, exists := m.docs[d.ID]; !exists {
			m.order = append(m.order, d.ID)
		}
		m.docs[d.ID] = memoryEntry{doc: d, vec: vec, norm: floats.Norm(vec, 2)}
	}
	return nil
}

// Query implements Index. Ties keep insertion order.
func (m *MemoryIndex) Query(_ context.Context, embedding []float32, topK int) ([]Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.docs) == 0 {
		return nil, nil
	}
	if len(embedding) != m.dim {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, m.dim, len(embedding))
	}

	q := toFloat64(embedding)
	qNorm := floats.Norm(q, 2)

	matches := make([]Match, 0, len(m.docs))
	for _, id := range m.order {
		e := m.docs[id]
		var score float64
		if qNorm > 0 && e.norm > 0 {
			score = floats.Dot(q, e.vec) / (qNorm * e.norm)
		}
		matches = append(matches, Match{Document: e.doc, Score: float32(score)})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if topK > 0 && topK < len(matches) {
		matches = matches[:topK]
	}
	return matches, nil
}

// Len returns the number of stored documents.
func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}

// Close implements Index.
func (m *MemoryIndex) Close() error {
	return nil
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}
