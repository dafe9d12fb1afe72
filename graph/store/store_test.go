package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

type traceState struct {
	Messages []string `json:"messages"`
	Summary  string   `json:"summary"`
}

// runStoreContract exercises the behavior every Store implementation shares.
func runStoreContract(t *testing.T, st Store[traceState]) {
	t.Helper()
	ctx := context.Background()

	t.Run("unknown run is not found", func(t *testing.T) {
		if _, _, err := st.LoadLatest(ctx, "missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("LoadLatest err = %v, want ErrNotFound", err)
		}
		if _, err := st.Steps(ctx, "missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Steps err = %v, want ErrNotFound", err)
		}
	})

	t.Run("records steps in order", func(t *testing.T) {
		_ = st.SaveStep(ctx, "run-1", 2, "generate_response", traceState{Messages: []string{"hi", "hello"}})
		_ = st.SaveStep(ctx, "run-1", 1, "retrieve_context", traceState{Messages: []string{"hi"}})
		_ = st.SaveStep(ctx, "run-1", 3, "summarize_conversation", traceState{Messages: []string{"hello"}, Summary: "s"})

		steps, err := st.Steps(ctx, "run-1")
		if err != nil {
			t.Fatalf("Steps: %v", err)
		}
		if len(steps) != 3 {
			t.Fatalf("expected 3 steps, got %d", len(steps))
		}
		for i, want := range []string{"retrieve_context", "generate_response", "summarize_conversation"} {
			if steps[i].NodeID != want {
				t.Errorf("step %d node = %q, want %q", i, steps[i].NodeID, want)
			}
		}

		state, step, err := st.LoadLatest(ctx, "run-1")
		if err != nil {
			t.Fatalf("LoadLatest: %v", err)
		}
		if step != 3 || state.Summary != "s" {
			t.Errorf("latest = (%d, %+v), want step 3 with summary", step, state)
		}
	})

	t.Run("saving a step twice overwrites it", func(t *testing.T) {
		_ = st.SaveStep(ctx, "run-2", 1, "a", traceState{Summary: "first"})
		_ = st.SaveStep(ctx, "run-2", 1, "b", traceState{Summary: "second"})

		steps, err := st.Steps(ctx, "run-2")
		if err != nil {
			t.Fatalf("Steps: %v", err)
		}
		if len(steps) != 1 || steps[0].NodeID != "b" || steps[0].State.Summary != "second" {
			t.Errorf("unexpected steps: %+v", steps)
		}
	})
}

func TestMemStore(t *testing.T) {
	runStoreContract(t, NewMemStore[traceState](0))
}

func TestMemStore_EvictsOldestRun(t *testing.T) {
	ctx := context.Background()
	st := NewMemStore[traceState](1)

	_ = st.SaveStep(ctx, "old", 1, "a", traceState{})
	_ = st.SaveStep(ctx, "new", 1, "a", traceState{})

	if _, _, err := st.LoadLatest(ctx, "old"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected old run to be evicted, got %v", err)
	}
	if _, _, err := st.LoadLatest(ctx, "new"); err != nil {
		t.Errorf("expected new run to be retained, got %v", err)
	}
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.db")
	st, err := NewSQLiteStore[traceState](path)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer func() { _ = st.Close() }()

	if st.Path() != path {
		t.Errorf("Path() = %q, want %q", st.Path(), path)
	}
	runStoreContract(t, st)
}

func TestSQLiteStore_ClosedStoreFails(t *testing.T) {
	st, err := NewSQLiteStore[traceState](filepath.Join(t.TempDir(), "trace.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := st.SaveStep(context.Background(), "run", 1, "a", traceState{}); err == nil {
		t.Error("expected error saving to a closed store")
	}
}
