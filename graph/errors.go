package graph

import "errors"

// ErrMaxStepsExceeded indicates that the graph execution reached the maximum
// allowed step count without completing.
var ErrMaxStepsExceeded = errors.New("execution exceeded maximum steps limit")

// ErrNodeRevisited indicates that routing led back to a node that already
// ran in the current run. Each node executes at most once per run.
var ErrNodeRevisited = errors.New("node already executed in this run")

// EngineError represents an error from Engine operations.
type EngineError struct {
	Message string
	Code    string

	// Err is an optional sentinel this error matches via errors.Is.
	Err error
}

func (e *EngineError) Error() string {
	if e.Code != "" {
		return e.Code + ": " + e.Message
	}
	return e.Message
}

// Unwrap exposes the sentinel, if any.
func (e *EngineError) Unwrap() error {
	return e.Err
}
