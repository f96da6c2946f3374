package statemachine

import (
	"context"
	"fmt"
)

// State represents a state in the state machine.
type State interface {
	Name() string
}

// Event represents an event that can trigger a state transition.
type Event interface {
	Name() string
}

// Action executes side effects during a transition. Returning an error prevents the transition.
type Action func(ctx context.Context, from, to State, event Event, data any) error

// Guard evaluates whether a transition should be allowed based on runtime conditions.
type Guard func(ctx context.Context, from State, event Event, data any) bool

// Transition defines a state change triggered by an event, with optional guards and actions.
type Transition struct {
	From    State
	To      State
	Event   Event
	Guards  []Guard  // All must pass for transition to proceed
	Actions []Action // Executed in order before the new state is returned
}

// Machine is an immutable transition table. It holds no current state: the
// caller passes the state it loaded and persists the state Fire returns, so a
// single Machine serves any number of entities concurrently.
type Machine struct {
	transitions map[string]map[string][]Transition
}

func newMachine() *Machine {
	return &Machine{transitions: make(map[string]map[string][]Transition)}
}

func (m *Machine) add(t Transition) error {
	if t.From == nil || t.To == nil || t.Event == nil {
		return ErrInvalidTransition
	}
	from, ev := t.From.Name(), t.Event.Name()
	if _, ok := m.transitions[from]; !ok {
		m.transitions[from] = make(map[string][]Transition)
	}
	// Several transitions may share from/event; the first whose guards pass wins.
	m.transitions[from][ev] = append(m.transitions[from][ev], t)
	return nil
}

// Fire resolves event against current and returns the target state.
//
// A missing transition or a guard veto comes back as *TransitionError. An
// action failure is returned wrapped.
func (m *Machine) Fire(ctx context.Context, current State, event Event, data any) (State, error) {
	if current == nil {
		return nil, ErrInvalidState
	}
	if event == nil {
		return nil, ErrInvalidEvent
	}

	t, err := m.resolve(ctx, current, event, data)
	if err != nil {
		return current, err
	}

	for _, action := range t.Actions {
		if action == nil {
			continue
		}
		if err := action(ctx, current, t.To, event, data); err != nil {
			return current, fmt.Errorf("action failed: %w", err)
		}
	}
	return t.To, nil
}

// CanFire reports whether Fire would find a transition whose guards pass.
// Actions are not run.
func (m *Machine) CanFire(ctx context.Context, current State, event Event, data any) bool {
	if current == nil || event == nil {
		return false
	}
	_, err := m.resolve(ctx, current, event, data)
	return err == nil
}

// Events lists the event names defined for state, in no particular order.
func (m *Machine) Events(state State) []string {
	if state == nil {
		return nil
	}
	byEvent := m.transitions[state.Name()]
	out := make([]string, 0, len(byEvent))
	for name := range byEvent {
		out = append(out, name)
	}
	return out
}

func (m *Machine) resolve(ctx context.Context, current State, event Event, data any) (*Transition, error) {
	candidates := m.transitions[current.Name()][event.Name()]
	if len(candidates) == 0 {
		return nil, &TransitionError{State: current.Name(), Event: event.Name()}
	}

	for i := range candidates {
		if guardsPass(ctx, &candidates[i], current, event, data) {
			return &candidates[i], nil
		}
	}
	return nil, &TransitionError{State: current.Name(), Event: event.Name(), Rejected: true}
}

func guardsPass(ctx context.Context, t *Transition, current State, event Event, data any) bool {
	for _, guard := range t.Guards {
		if guard != nil && !guard(ctx, current, event, data) {
			return false
		}
	}
	return true
}

// StringState provides a simple string-based state implementation.
type StringState string

func (s StringState) Name() string {
	return string(s)
}

// StringEvent provides a simple string-based event implementation.
type StringEvent string

func (e StringEvent) Name() string {
	return string(e)
}
