package graph

import (
	"context"
	"sync"
	"time"

	"github.com/amoghd24/footagents-ai-game/graph/emit"
	"github.com/amoghd24/footagents-ai-game/graph/store"
)

// Reducer merges a node's partial update into the committed state.
//
// Reducers must be pure and deterministic: given the same prev and delta
// they return the same result, and they must treat the zero delta as a
// no-op.
type Reducer[S, U any] func(prev S, delta U) S

// Engine orchestrates stateful workflow execution over a fixed node table.
//
// The Engine is the core runtime that:
//   - Holds the workflow topology (nodes, edges, conditional branches)
//   - Executes nodes one at a time, each at most once per run
//   - Hands every node an isolated snapshot of the committed state
//   - Merges node updates via the reducer after the node succeeds
//   - Optionally records each committed step in a store
//   - Emits observability events and metrics
//
// The topology is built once and is read-only while runs execute, so a
// single Engine serves concurrent runs without sharing per-run state.
//
// Type parameter S is the state type; U is the partial update type.
//
// Example:
//
//	engine := graph.New(reduce, nil, emit.NewNullEmitter(), graph.WithMaxSteps(20))
//	engine.Add("greet", greetNode)
//	engine.Connect(graph.START, "greet", nil)
//	engine.Connect("greet", graph.END, nil)
//
//	final, err := engine.Run(ctx, "run-001", MyState{Name: "Leo"})
type Engine[S, U any] struct {
	mu sync.RWMutex

	// reducer merges partial state updates deterministically
	reducer Reducer[S, U]

	// nodes maps node IDs to Node implementations
	nodes map[string]Node[S, U]

	// order records node registration order for Nodes()
	order []string

	// edges defines transitions between nodes, evaluated in order
	edges []Edge[S]

	// branches holds at most one conditional router per source node
	branches map[string]branch[S]

	// startNode is the entry point for workflow execution
	startNode string

	// store optionally records committed state after each step
	store store.Store[S]

	// emitter receives observability events
	emitter emit.Emitter

	// opts contains execution configuration
	opts Options

	// optErr is the first error returned by an Option
	optErr error
}

// New creates a new Engine.
//
// Parameters:
//   - reducer: Function to merge partial state updates (required)
//   - st: Step trace store (optional, nil disables tracing)
//   - emitter: Observability event receiver (optional, nil disables events)
//   - opts: Functional options (WithMaxSteps, WithMetrics, WithGraphID)
//
// Validation happens in Validate, which Run calls before executing.
func New[S, U any](reducer Reducer[S, U], st store.Store[S], emitter emit.Emitter, opts ...Option) *Engine[S, U] {
	cfg := &engineConfig{}
	var optErr error
	for _, opt := range opts {
		if err := opt(cfg); err != nil && optErr == nil {
			optErr = err
		}
	}
	if emitter == nil {
		emitter = emit.NewNullEmitter()
	}

	return &Engine[S, U]{
		reducer:  reducer,
		nodes:    make(map[string]Node[S, U]),
		edges:    make([]Edge[S], 0),
		branches: make(map[string]branch[S]),
		store:    st,
		emitter:  emitter,
		opts:     cfg.opts,
		optErr:   optErr,
	}
}

// Add registers a node in the workflow graph.
//
// Returns error if:
//   - nodeID is empty or one of the reserved START/END markers
//   - node is nil
//   - a node with this ID already exists
func (e *Engine[S, U]) Add(nodeID string, node Node[S, U]) error {
	if nodeID == "" {
		return &EngineError{Message: "node ID cannot be empty"}
	}
	if nodeID == START || nodeID == END {
		return &EngineError{
			Message: "node ID is reserved: " + nodeID,
			Code:    "RESERVED_NODE_ID",
		}
	}
	if node == nil {
		return &EngineError{Message: "node cannot be nil"}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.nodes[nodeID]; exists {
		return &EngineError{
			Message: "duplicate node ID: " + nodeID,
			Code:    "DUPLICATE_NODE",
		}
	}

	e.nodes[nodeID] = node
	e.order = append(e.order, nodeID)
	return nil
}

// StartAt sets the entry point for workflow execution.
//
// Connect(START, nodeID, nil) is equivalent.
func (e *Engine[S, U]) StartAt(nodeID string) error {
	if nodeID == "" {
		return &EngineError{Message: "start node ID cannot be empty"}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.nodes[nodeID]; !exists {
		return &EngineError{
			Message: "start node does not exist: " + nodeID,
			Code:    "NODE_NOT_FOUND",
		}
	}

	e.startNode = nodeID
	return nil
}

// Connect creates an edge between two nodes.
//
// Edges can be:
//   - Unconditional: Always traverse (predicate = nil)
//   - Conditional: Only traverse if predicate returns true
//
// A from of START sets the entry point. A to of END terminates the run.
// Node existence is checked by Validate, so edges may be declared before
// their nodes.
//
// Example:
//
//	engine.Connect(graph.START, "retrieve", nil)
//	engine.Connect("retrieve", "generate", nil)
//	engine.Connect("generate", graph.END, nil)
func (e *Engine[S, U]) Connect(from, to string, predicate Predicate[S]) error {
	if from == "" {
		return &EngineError{Message: "from node ID cannot be empty"}
	}
	if to == "" {
		return &EngineError{Message: "to node ID cannot be empty"}
	}
	if from == END || to == START {
		return &EngineError{
			Message: "invalid edge " + from + " -> " + to,
			Code:    "INVALID_EDGE",
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if from == START {
		if predicate != nil {
			return &EngineError{
				Message: "edge from START cannot be conditional",
				Code:    "INVALID_EDGE",
			}
		}
		e.startNode = to
		return nil
	}

	e.edges = append(e.edges, Edge[S]{
		From: from,
		To:   to,
		When: predicate,
	})
	return nil
}

// Branch registers a conditional router leaving a node.
//
// After from runs, the router picks the next node from the committed
// state. targets lists every ID the router may return, END included.
// A branch takes precedence over plain edges from the same node.
//
// Example:
//
//	engine.Branch("connector", func(s State) string {
//	    if len(s.Messages) > 10 {
//	        return "summarize"
//	    }
//	    return graph.END
//	}, "summarize", graph.END)
func (e *Engine[S, U]) Branch(from string, router Router[S], targets ...string) error {
	if from == "" || from == START || from == END {
		return &EngineError{
			Message: "invalid branch source: " + from,
			Code:    "INVALID_EDGE",
		}
	}
	if router == nil {
		return &EngineError{Message: "router cannot be nil"}
	}
	if len(targets) == 0 {
		return &EngineError{
			Message: "branch from " + from + " declares no targets",
			Code:    "INVALID_EDGE",
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.branches[from]; exists {
		return &EngineError{
			Message: "duplicate branch from: " + from,
			Code:    "DUPLICATE_BRANCH",
		}
	}

	b := branch[S]{route: router, targets: make(map[string]struct{}, len(targets))}
	for _, t := range targets {
		b.targets[t] = struct{}{}
	}
	e.branches[from] = b
	return nil
}

// Nodes returns the registered node IDs in registration order.
func (e *Engine[S, U]) Nodes() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

// Validate checks that the graph can be executed.
//
// Returns error if:
//   - an option failed or the reducer is missing
//   - no start node is set, or it does not exist
//   - an edge or branch references an unknown node
func (e *Engine[S, U]) Validate() error {
	if e.optErr != nil {
		return e.optErr
	}
	if e.reducer == nil {
		return &EngineError{
			Message: "reducer is required",
			Code:    "MISSING_REDUCER",
		}
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.startNode == "" {
		return &EngineError{
			Message: "start node not set (connect START or call StartAt before Run)",
			Code:    "NO_START_NODE",
		}
	}
	if _, ok := e.nodes[e.startNode]; !ok {
		return &EngineError{
			Message: "start node does not exist: " + e.startNode,
			Code:    "NODE_NOT_FOUND",
		}
	}

	known := func(id string) bool {
		if id == END {
			return true
		}
		_, ok := e.nodes[id]
		return ok
	}

	for _, edge := range e.edges {
		if !known(edge.From) || !known(edge.To) {
			return &EngineError{
				Message: "edge references unknown node: " + edge.From + " -> " + edge.To,
				Code:    "NODE_NOT_FOUND",
			}
		}
	}
	for from, b := range e.branches {
		if !known(from) {
			return &EngineError{
				Message: "branch source does not exist: " + from,
				Code:    "NODE_NOT_FOUND",
			}
		}
		for to := range b.targets {
			if !known(to) {
				return &EngineError{
					Message: "branch target does not exist: " + from + " -> " + to,
					Code:    "NODE_NOT_FOUND",
				}
			}
		}
	}
	return nil
}

// Run executes the workflow from the start node until END.
//
// Workflow execution:
//  1. Validates the graph
//  2. Hands each node a snapshot of the committed state
//  3. On success merges the node's delta through the reducer
//  4. Records the committed state in the store, if any
//  5. Follows explicit routes, then branches, then edges
//  6. Stops at END or a terminal route
//
// A node error aborts the run. The failing node's delta is discarded and
// Run returns the last committed state together with a *NodeError that
// wraps the cause. Routing back to a node that already ran in this run
// fails with ErrNodeRevisited.
//
// Run holds no mutable engine state, so concurrent calls are safe.
func (e *Engine[S, U]) Run(ctx context.Context, runID string, initial S) (S, error) {
	if err := e.Validate(); err != nil {
		return initial, err
	}

	metrics := e.opts.Metrics
	if metrics != nil {
		defer metrics.trackRun()()
	}

	final, err := e.execute(ctx, runID, initial)

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	if metrics != nil {
		metrics.RecordRun(e.opts.GraphID, outcome)
	}
	meta := map[string]interface{}{"outcome": outcome}
	if err != nil {
		meta["error"] = err.Error()
	}
	e.emit(runID, 0, "", "run_complete", meta)

	return final, err
}

func (e *Engine[S, U]) execute(ctx context.Context, runID string, initial S) (S, error) {
	e.mu.RLock()
	currentNode := e.startNode
	e.mu.RUnlock()

	currentState := initial
	visited := make(map[string]struct{})
	step := 0

	for {
		step++

		if e.opts.MaxSteps > 0 && step > e.opts.MaxSteps {
			return currentState, &EngineError{
				Message: "workflow exceeded MaxSteps limit",
				Code:    "MAX_STEPS_EXCEEDED",
				Err:     ErrMaxStepsExceeded,
			}
		}

		if err := ctx.Err(); err != nil {
			return currentState, err
		}

		if _, seen := visited[currentNode]; seen {
			return currentState, &EngineError{
				Message: "routing revisited node: " + currentNode,
				Code:    "NODE_REVISITED",
				Err:     ErrNodeRevisited,
			}
		}
		visited[currentNode] = struct{}{}

		e.mu.RLock()
		nodeImpl, exists := e.nodes[currentNode]
		e.mu.RUnlock()

		if !exists {
			return currentState, &EngineError{
				Message: "node not found during execution: " + currentNode,
				Code:    "NODE_NOT_FOUND",
			}
		}

		view, err := snapshot(currentState)
		if err != nil {
			return currentState, &EngineError{
				Message: "failed to snapshot state: " + err.Error(),
				Code:    "SNAPSHOT_ERROR",
			}
		}

		e.emit(runID, step, currentNode, "node_start", nil)
		started := time.Now()

		result := nodeImpl.Run(ctx, view)

		elapsed := time.Since(started)
		if result.Err != nil {
			e.recordLatency(currentNode, elapsed, "error")
			if e.opts.Metrics != nil {
				e.opts.Metrics.IncrementNodeErrors(e.opts.GraphID, currentNode)
			}
			e.emit(runID, step, currentNode, "node_error", map[string]interface{}{
				"error":       result.Err.Error(),
				"duration_ms": elapsed.Milliseconds(),
			})
			return currentState, wrapNodeError(currentNode, result.Err)
		}
		e.recordLatency(currentNode, elapsed, "success")

		currentState = e.reducer(currentState, result.Delta)

		if e.store != nil {
			// The step trace is diagnostic; a failed save does not end the run.
			if err := e.store.SaveStep(ctx, runID, step, currentNode, currentState); err != nil {
				e.emit(runID, step, currentNode, "trace_error", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}

		e.emit(runID, step, currentNode, "node_end", map[string]interface{}{
			"delta":       result.Delta,
			"duration_ms": elapsed.Milliseconds(),
		})

		next, err := e.nextNode(currentNode, result.Route, currentState)
		if err != nil {
			return currentState, err
		}

		if e.opts.Metrics != nil {
			e.opts.Metrics.RecordRoute(e.opts.GraphID, currentNode, next)
		}
		e.emit(runID, step, currentNode, "routing_decision", map[string]interface{}{
			"next": next,
		})

		if next == END {
			return currentState, nil
		}
		currentNode = next
	}
}

// nextNode resolves where execution goes after from.
//
// Precedence: explicit Route, then the branch registered for from, then
// the first matching edge in registration order.
func (e *Engine[S, U]) nextNode(from string, route Next, state S) (string, error) {
	if route.Terminal {
		return END, nil
	}
	if route.To != "" {
		return route.To, nil
	}

	e.mu.RLock()
	b, hasBranch := e.branches[from]
	e.mu.RUnlock()

	if hasBranch {
		to := b.route(state)
		if !b.allows(to) {
			return "", &EngineError{
				Message: "router from " + from + " returned undeclared target: " + to,
				Code:    "NO_ROUTE",
			}
		}
		return to, nil
	}

	to := e.evaluateEdges(from, state)
	if to == "" {
		return "", &EngineError{
			Message: "no valid route from node: " + from,
			Code:    "NO_ROUTE",
		}
	}
	return to, nil
}

// evaluateEdges finds the first matching edge from the given node based on predicates.
//
// Evaluates outgoing edges in order:
//  1. If edge has nil predicate (unconditional), always matches
//  2. If edge predicate returns true for current state, matches
//  3. First matching edge wins (priority order)
//
// Returns empty string if no edges match.
func (e *Engine[S, U]) evaluateEdges(fromNode string, state S) string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, edge := range e.edges {
		if edge.From != fromNode {
			continue
		}
		if edge.When == nil || edge.When(state) {
			return edge.To
		}
	}
	return ""
}

func (e *Engine[S, U]) recordLatency(nodeID string, d time.Duration, status string) {
	if e.opts.Metrics != nil {
		e.opts.Metrics.RecordStepLatency(e.opts.GraphID, nodeID, d, status)
	}
}

func (e *Engine[S, U]) emit(runID string, step int, nodeID, msg string, meta map[string]interface{}) {
	if e.opts.GraphID != "" {
		if meta == nil {
			meta = make(map[string]interface{}, 1)
		}
		meta["graph_id"] = e.opts.GraphID
	}
	e.emitter.Emit(emit.Event{
		RunID:  runID,
		Step:   step,
		NodeID: nodeID,
		Msg:    msg,
		Meta:   meta,
	})
}

// wrapNodeError attaches the node ID to a failure unless the node
// already returned a *NodeError.
func wrapNodeError(nodeID string, err error) error {
	if ne, ok := err.(*NodeError); ok {
		if ne.NodeID == "" {
			ne.NodeID = nodeID
		}
		return ne
	}
	return &NodeError{NodeID: nodeID, Cause: err}
}
