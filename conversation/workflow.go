package conversation

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/amoghd24/footagents-ai-game/graph"
	"github.com/amoghd24/footagents-ai-game/graph/emit"
	"github.com/amoghd24/footagents-ai-game/graph/store"
)

// Pipeline selects the shape of the workflow table.
type Pipeline string

const (
	// PipelineFull retrieves and compresses context before answering.
	PipelineFull Pipeline = "full"

	// PipelineSimple answers directly from the transcript.
	PipelineSimple Pipeline = "simple"
)

// Workflow is the engine type running conversation turns.
type Workflow = graph.Engine[State, Update]

// Config configures NewWorkflow.
type Config struct {
	Pipeline        Pipeline
	Threshold       int
	KeepLast        int
	RetrievalPolicy RetrievalPolicy
	MaxSteps        int

	// GraphID labels metrics and events. Defaults to "conversation_<pipeline>".
	GraphID string
}

// DefaultConfig returns the full pipeline compacting to five messages once
// the transcript exceeds ten.
func DefaultConfig() Config {
	return Config{
		Pipeline:        PipelineFull,
		Threshold:       10,
		KeepLast:        5,
		RetrievalPolicy: RetrieveEveryTurn,
		MaxSteps:        20,
	}
}

// Validate reports configuration errors.
func (c Config) Validate() error {
	switch c.Pipeline {
	case PipelineFull, PipelineSimple:
	default:
		return fmt.Errorf("unknown pipeline %q", c.Pipeline)
	}
	if c.Threshold < 1 {
		return fmt.Errorf("threshold must be positive, got %d", c.Threshold)
	}
	if c.KeepLast < 1 || c.KeepLast > c.Threshold {
		return fmt.Errorf("keep_last must be between 1 and threshold (%d), got %d", c.Threshold, c.KeepLast)
	}
	if _, err := ParseRetrievalPolicy(string(c.RetrievalPolicy)); err != nil {
		return err
	}
	return nil
}

// Deps are the collaborators a workflow runs against. Retriever is only
// required by the full pipeline; the rest are optional.
type Deps struct {
	Generator Generator
	Retriever Retriever
	Logger    *zap.Logger
	Emitter   emit.Emitter
	Trace     store.Store[State]
	Metrics   *graph.PrometheusMetrics
}

// NewWorkflow builds and validates the node table for cfg.
//
// The full pipeline:
//
//	START -> retrieve_context -> summarize_context -> generate_response -> connector
//	connector -> summarize_conversation -> END  (len(messages) > Threshold)
//	connector -> END                            (otherwise)
//
// The simple pipeline drops retrieval and the connector, branching
// directly after generate_response.
func NewWorkflow(cfg Config, deps Deps) (*Workflow, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("workflow config: %w", err)
	}
	if deps.Generator == nil {
		return nil, fmt.Errorf("workflow: generator is required")
	}
	if cfg.Pipeline == PipelineFull && deps.Retriever == nil {
		return nil, fmt.Errorf("workflow: the full pipeline requires a retriever")
	}

	policy, _ := ParseRetrievalPolicy(string(cfg.RetrievalPolicy))
	graphID := cfg.GraphID
	if graphID == "" {
		graphID = "conversation_" + string(cfg.Pipeline)
	}

	opts := []graph.Option{graph.WithMaxSteps(cfg.MaxSteps), graph.WithGraphID(graphID)}
	if deps.Metrics != nil {
		opts = append(opts, graph.WithMetrics(deps.Metrics))
	}
	wf := graph.New[State, Update](Reduce, deps.Trace, deps.Emitter, opts...)

	type step struct {
		id   string
		node graph.Node[State, Update]
	}
	var chain []step
	if cfg.Pipeline == PipelineFull {
		chain = append(chain,
			step{NodeRetrieveContext, &RetrieveContextNode{Retriever: deps.Retriever, Policy: policy, Logger: deps.Logger}},
			step{NodeSummarizeContext, &SummarizeContextNode{Generator: deps.Generator}},
		)
	}
	chain = append(chain, step{NodeGenerateResponse, &GenerateResponseNode{Generator: deps.Generator}})
	if cfg.Pipeline == PipelineFull {
		chain = append(chain, step{NodeConnector, ConnectorNode{}})
	}

	prev := graph.START
	for _, s := range chain {
		if err := wf.Add(s.id, s.node); err != nil {
			return nil, err
		}
		if err := wf.Connect(prev, s.id, nil); err != nil {
			return nil, err
		}
		prev = s.id
	}

	summarize := &SummarizeConversationNode{Generator: deps.Generator, KeepLast: cfg.KeepLast}
	if err := wf.Add(NodeSummarizeConversation, summarize); err != nil {
		return nil, err
	}
	if err := wf.Branch(prev, ShouldSummarize(cfg.Threshold), NodeSummarizeConversation, graph.END); err != nil {
		return nil, err
	}
	if err := wf.Connect(NodeSummarizeConversation, graph.END, nil); err != nil {
		return nil, err
	}

	if err := wf.Validate(); err != nil {
		return nil, err
	}
	return wf, nil
}
