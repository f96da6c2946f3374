package payvalidator

import (
	"context"
	"math/big"

	"github.com/chainpe/payvalidator/pkg/statemachine"
)

const (
	StateUnregistered = statemachine.StringState("unregistered")
	StateActive       = statemachine.StringState("active")
	StateConsumed     = statemachine.StringState("consumed")
)

const (
	eventRegister   = statemachine.StringEvent("register")
	eventValidate   = statemachine.StringEvent("validate")
	eventDeactivate = statemachine.StringEvent("deactivate")
)

// transitionInput is the data handed to lifecycle guards.
type transitionInput struct {
	session       PaymentSession
	observed      *big.Int
	replaceActive bool
}

// lifecycle is the session state machine. Only a fresh registration brings a
// memo back to Active; Consumed has no validate transition.
var lifecycle = statemachine.MustNew(
	statemachine.WithTransition(StateUnregistered, StateActive, eventRegister),
	statemachine.WithTransition(StateConsumed, StateActive, eventRegister),
	statemachine.WithTransition(StateActive, StateActive, eventRegister,
		statemachine.WithGuard(replaceAllowed),
	),
	statemachine.WithTransition(StateActive, StateConsumed, eventValidate,
		statemachine.WithGuard(amountSufficient),
	),
	statemachine.WithTransition(StateActive, StateConsumed, eventDeactivate),
	statemachine.WithTransition(StateConsumed, StateConsumed, eventDeactivate),
)

func replaceAllowed(_ context.Context, _ statemachine.State, _ statemachine.Event, data any) bool {
	in, ok := data.(transitionInput)
	return ok && in.replaceActive
}

func amountSufficient(_ context.Context, _ statemachine.State, _ statemachine.Event, data any) bool {
	in, ok := data.(transitionInput)
	return ok && in.session.Satisfies(in.observed)
}

// stateOf maps a stored record (or its absence) to a lifecycle state.
func stateOf(s PaymentSession, found bool) statemachine.State {
	switch {
	case !found:
		return StateUnregistered
	case s.IsActive:
		return StateActive
	default:
		return StateConsumed
	}
}
