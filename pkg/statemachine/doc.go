// Package statemachine provides finite-state-machine transition tables.
//
// A Machine is built once (with New and functional options, or with the fluent
// Builder) and never mutated afterwards. It does not track a current state:
// Fire takes the state the caller loaded from storage and returns the state to
// persist. That makes one package-level Machine usable for every record of a
// given kind.
//
//	const (
//	    Active   = statemachine.StringState("active")
//	    Consumed = statemachine.StringState("consumed")
//	    Use      = statemachine.StringEvent("use")
//	)
//
//	var lifecycle = statemachine.MustNew(
//	    statemachine.WithTransition(Active, Consumed, Use,
//	        statemachine.WithGuard(hasFunds),
//	    ),
//	)
//
//	next, err := lifecycle.Fire(ctx, record.State, Use, payment)
//
// # Guards and Actions
//
// Guards veto a transition based on the data passed to Fire. When several
// transitions share the same state and event, the first one whose guards all
// pass is taken. Actions run after the guards and before Fire returns; an
// action error aborts the transition.
//
// # Error Handling
//
// Fire distinguishes "nothing defined for this state and event" from "defined
// but vetoed by a guard":
//
//	if statemachine.IsNoTransitionAvailableError(err) { /* ... */ }
//	if statemachine.IsTransitionRejectedError(err)   { /* ... */ }
package statemachine
