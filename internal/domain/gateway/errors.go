package gateway

import (
	"errors"
	"fmt"
)

// ErrNotFound marks a document that the remote store does not hold.
var ErrNotFound = errors.New("document not found")

// Error wraps a failure talking to the hosted document store. Callers are
// expected to surface the message, not retry.
type Error struct {
	Op         string
	Collection string
	Err        error
}

func (e *Error) Error() string {
	if e.Collection == "" {
		return fmt.Sprintf("gateway %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("gateway %s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Wrap(op, collection string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Collection: collection, Err: err}
}
