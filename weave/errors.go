package weave

import (
	"errors"
	"fmt"
)

// ErrInvalidEvent is matched by every error that rejects an event.
var ErrInvalidEvent = errors.New("invalid event")

// InvalidEventError reports the event that stopped a call to Interweave.
type InvalidEventError[T any] struct {
	Event  Event[T]
	Reason string
}

func (e *InvalidEventError[T]) Error() string {
	return fmt.Sprintf("invalid event %q [%s, %s]: %s",
		e.Event.ID, e.Event.Begin, e.Event.End, e.Reason)
}

// Unwrap makes errors.Is(err, ErrInvalidEvent) hold.
func (e *InvalidEventError[T]) Unwrap() error {
	return ErrInvalidEvent
}
