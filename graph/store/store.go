// Package store records the committed state of each engine step so a run
// can be inspected after the fact.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a run has no recorded steps.
var ErrNotFound = errors.New("not found")

// Store records engine steps.
//
// The engine calls SaveStep after every node whose delta was committed.
// Failed nodes are never recorded, so the trace only contains states the
// run actually reached.
//
// Implementations must be safe for concurrent use by parallel runs.
type Store[S any] interface {
	// SaveStep records the state after step of runID, produced by nodeID.
	SaveStep(ctx context.Context, runID string, step int, nodeID string, state S) error

	// LoadLatest returns the highest recorded step of runID.
	LoadLatest(ctx context.Context, runID string) (state S, step int, err error)

	// Steps returns every recorded step of runID ordered by step.
	Steps(ctx context.Context, runID string) ([]StepRecord[S], error)
}

// StepRecord is one committed step of a run.
type StepRecord[S any] struct {
	Step   int    `json:"step"`
	NodeID string `json:"node_id"`
	State  S      `json:"state"`
}
