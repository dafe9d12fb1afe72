package emit

// Event represents an observability event emitted during workflow execution.
//
// The engine emits these messages:
//   - "node_start": a node is about to run
//   - "node_end": a node succeeded and its delta was committed
//   - "node_error": a node failed and the run is aborting
//   - "routing_decision": the next hop chosen after a node
//   - "run_complete": the run finished, successfully or not
type Event struct {
	// RunID identifies the workflow execution that emitted this event.
	RunID string

	// Step is the sequential step number in the workflow (1-indexed).
	// Zero for run-level events.
	Step int

	// NodeID identifies which node emitted this event.
	// Empty string for run-level events.
	NodeID string

	// Msg names the event.
	Msg string

	// Meta contains additional structured data specific to this event.
	// Common keys:
	//   - "duration_ms": Execution duration in milliseconds
	//   - "error": Error details
	//   - "delta": The committed partial update
	//   - "next": Routing target
	//   - "graph_id": Workflow name
	Meta map[string]interface{}
}
