package graph

import (
	"encoding/json"
	"fmt"
)

// Cloner is implemented by state types that know how to produce an
// independent copy of themselves. The engine prefers Clone over the
// JSON round-trip when handing a snapshot to a node.
type Cloner[S any] interface {
	Clone() S
}

// snapshot returns a copy of state that a node may read without being
// able to affect the committed value.
func snapshot[S any](state S) (S, error) {
	if c, ok := any(state).(Cloner[S]); ok {
		return c.Clone(), nil
	}
	return deepCopy(state)
}

// deepCopy creates a deep copy of state S using JSON round-trip serialization.
//
// This approach works for any Go type that can be JSON-marshaled, including:
//   - Primitives (string, int, bool, float64)
//   - Structs with exported fields
//   - Slices and maps
//
// Limitations:
//   - Unexported struct fields are not copied
//   - Channels and functions fail to marshal
func deepCopy[S any](state S) (S, error) {
	var zero S

	data, err := json.Marshal(state)
	if err != nil {
		return zero, fmt.Errorf("failed to marshal state: %w", err)
	}

	var copied S
	if err := json.Unmarshal(data, &copied); err != nil {
		return zero, fmt.Errorf("failed to unmarshal state: %w", err)
	}

	return copied, nil
}
