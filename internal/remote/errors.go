package remote

import (
	"errors"
	"fmt"

	"github.com/Makepad-fr/tada/internal/model"
)

// ErrNotFound matches any *NotFoundError with errors.Is.
var ErrNotFound = errors.New("todo not found")

// ErrInvalidID is returned, without contacting the server, for ids that
// cannot name a single todo in a URL path.
var ErrInvalidID = errors.New("invalid todo id")

// TransportError is a network or protocol failure talking to the server.
type TransportError struct {
	Op     string // list, create, replace or delete
	Status int    // HTTP status when the server answered, 0 otherwise
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: server returned %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// NotFoundError reports a mutation aimed at an id the server does not hold.
type NotFoundError struct {
	Op string
	ID model.ID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: todo %s not found", e.Op, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
