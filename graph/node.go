package graph

import "context"

// Node is one step of a workflow. It reads a snapshot of the state and
// reports its changes as a delta; the engine commits the delta through the
// Reducer after Run returns without error.
type Node[S, U any] interface {
	Run(ctx context.Context, state S) NodeResult[U]
}

// NodeResult is what a node hands back to the engine.
type NodeResult[U any] struct {
	// Delta is merged into the state by the Reducer. The zero value must
	// leave the state unchanged.
	Delta U

	// Route overrides the node's edges. Leave it zero to follow them.
	Route Next

	// Err aborts the run. Delta is dropped when Err is set.
	Err error
}

// Next is an explicit routing decision returned by a node.
type Next struct {
	To       string
	Terminal bool
}

// Stop ends the run after the current node.
func Stop() Next { return Next{Terminal: true} }

// Goto continues at nodeID.
func Goto(nodeID string) Next { return Next{To: nodeID} }

// NodeFunc adapts a plain function to Node.
type NodeFunc[S, U any] func(ctx context.Context, state S) NodeResult[U]

func (f NodeFunc[S, U]) Run(ctx context.Context, state S) NodeResult[U] {
	return f(ctx, state)
}

// NodeError reports the failure of a single node. Cause is the error the
// node returned and is reachable through errors.Is and errors.As.
type NodeError struct {
	NodeID string
	Cause  error
}

func (e *NodeError) Error() string {
	if e.NodeID == "" {
		return e.Cause.Error()
	}
	return "node " + e.NodeID + ": " + e.Cause.Error()
}

func (e *NodeError) Unwrap() error { return e.Cause }
