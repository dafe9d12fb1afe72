package graph

import "testing"

type clonable struct {
	Items  []string
	clones *int
}

func (c clonable) Clone() clonable {
	*c.clones++
	items := make([]string, len(c.Items))
	copy(items, c.Items)
	return clonable{Items: items, clones: c.clones}
}

func TestSnapshot_PrefersCloner(t *testing.T) {
	count := 0
	orig := clonable{Items: []string{"a"}, clones: &count}

	cp, err := snapshot(orig)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if count != 1 {
		t.Errorf("expected Clone to be called once, got %d", count)
	}
	cp.Items[0] = "b"
	if orig.Items[0] != "a" {
		t.Error("clone shares backing array with original")
	}
}

func TestDeepCopy_Independent(t *testing.T) {
	orig := TestState{Log: []string{"a", "b"}, Counter: 2}

	cp, err := deepCopy(orig)
	if err != nil {
		t.Fatalf("deepCopy: %v", err)
	}
	cp.Log[0] = "z"
	if orig.Log[0] != "a" {
		t.Error("deep copy shares backing array with original")
	}
	if cp.Counter != 2 {
		t.Errorf("Counter = %d, want 2", cp.Counter)
	}
}

func TestDeepCopy_Unmarshalable(t *testing.T) {
	type bad struct{ Fn func() }
	if _, err := deepCopy(bad{Fn: func() {}}); err == nil {
		t.Error("expected error for func field")
	}
}
