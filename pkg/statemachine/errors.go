package statemachine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition = errors.New("statemachine: transition needs from, to and event")
	ErrInvalidEvent      = errors.New("statemachine: nil event")
	ErrInvalidState      = errors.New("statemachine: nil state")

	// ErrNoTransition matches a TransitionError for an event the current
	// state has no transition for.
	ErrNoTransition = errors.New("statemachine: no transition")
	// ErrTransitionRejected matches a TransitionError where a guard vetoed
	// every candidate.
	ErrTransitionRejected = errors.New("statemachine: transition rejected")
)

// TransitionError reports a Fire that did not move the machine.
type TransitionError struct {
	State    string
	Event    string
	Rejected bool
}

func (e *TransitionError) Error() string {
	if e.Rejected {
		return fmt.Sprintf("statemachine: %q on %q rejected by guards", e.Event, e.State)
	}
	return fmt.Sprintf("statemachine: no transition for %q from %q", e.Event, e.State)
}

func (e *TransitionError) Unwrap() error {
	if e.Rejected {
		return ErrTransitionRejected
	}
	return ErrNoTransition
}

// IsNoTransitionAvailableError reports whether err says the event is not
// handled in the current state.
func IsNoTransitionAvailableError(err error) bool {
	return errors.Is(err, ErrNoTransition)
}

// IsTransitionRejectedError reports whether err says a guard blocked the move.
func IsTransitionRejectedError(err error) bool {
	return errors.Is(err, ErrTransitionRejected)
}
