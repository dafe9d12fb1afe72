package conversation

import (
	"errors"
	"fmt"
)

// Kind classifies a conversation failure.
type Kind string

// Failure kinds. RetrievalError is the only non-fatal kind: the workflow
// degrades to an empty context instead of aborting.
const (
	KindInvalidState Kind = "InvalidState"
	KindNotFound     Kind = "NotFound"
	KindGeneration   Kind = "GenerationError"
	KindRetrieval    Kind = "RetrievalError"
	KindStore        Kind = "StoreError"
)

// Sentinels matched by errors.Is against any *Error of the same Kind.
var (
	ErrInvalidState = errors.New("invalid state")
	ErrNotFound     = errors.New("not found")
	ErrGeneration   = errors.New("generation failed")
	ErrRetrieval    = errors.New("retrieval failed")
	ErrStore        = errors.New("store failure")
)

// Error is a failure tagged with a Kind and the operation that produced it.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Err != nil:
		return e.Err.Error()
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for e.Kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

func (k Kind) sentinel() error {
	switch k {
	case KindInvalidState:
		return ErrInvalidState
	case KindNotFound:
		return ErrNotFound
	case KindGeneration:
		return ErrGeneration
	case KindRetrieval:
		return ErrRetrieval
	case KindStore:
		return ErrStore
	}
	return nil
}

// E builds an *Error from a message.
func E(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Err: errors.New(msg)}
}

// Wrap tags err with kind. A nil err yields nil. An err that already
// carries a Kind keeps it.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		return err
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the Kind carried by err, or "" when err is untagged.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}
