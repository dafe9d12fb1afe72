// Package graph provides the core graph execution engine for the
// conversation workflow.
package graph

// START and END are reserved node IDs marking the entry and the terminal
// point of a workflow. Neither can be registered as a node.
const (
	START = "__start__"
	END   = "__end__"
)

// Edge represents a connection between two nodes in the workflow graph.
//
// Edges define the control flow between nodes. They can be:
// - Unconditional: Always traverse (When = nil).
// - Conditional: Only traverse if predicate returns true (When != nil).
//
// For explicit routing, nodes can return Next in NodeResult which overrides
// edge-based routing.
//
// Type parameter S is the state type used for predicate evaluation.
type Edge[S any] struct {
	// From is the source node ID.
	From string

	// To is the destination node ID, or END.
	To string

	// When is an optional predicate that determines if this edge should be traversed.
	// If nil, the edge is unconditional (always traverse).
	When Predicate[S]
}

// Predicate is a function that evaluates state to determine if an edge should be traversed.
//
// Predicates must be pure functions (deterministic, no side effects).
type Predicate[S any] func(state S) bool

// Router chooses the next node from the committed state after a node
// has run. It returns a node ID or END.
//
// Routers must be pure. The engine rejects a returned ID that was not
// declared as a target when the branch was registered.
type Router[S any] func(state S) string

// branch is a conditional fan of declared targets leaving one node.
type branch[S any] struct {
	route   Router[S]
	targets map[string]struct{}
}

func (b branch[S]) allows(to string) bool {
	_, ok := b.targets[to]
	return ok
}
