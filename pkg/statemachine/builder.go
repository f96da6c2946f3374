package statemachine

// Builder provides a fluent API for building a Machine.
type Builder struct {
	machine *Machine
	current Transition
	err     error
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{machine: newMachine()}
}

// From starts a new transition from state.
func (b *Builder) From(state State) *Builder {
	b.current = Transition{From: state}
	return b
}

// When sets the event that triggers the current transition.
func (b *Builder) When(event Event) *Builder {
	b.current.Event = event
	return b
}

// To sets the target state for the current transition.
func (b *Builder) To(state State) *Builder {
	b.current.To = state
	return b
}

// WithGuard adds a guard to the current transition.
func (b *Builder) WithGuard(guard Guard) *Builder {
	if guard != nil {
		b.current.Guards = append(b.current.Guards, guard)
	}
	return b
}

// WithAction adds an action to the current transition.
func (b *Builder) WithAction(action Action) *Builder {
	if action != nil {
		b.current.Actions = append(b.current.Actions, action)
	}
	return b
}

// Add finalizes the current transition. The first error is kept and
// reported by Build.
func (b *Builder) Add() *Builder {
	if b.err == nil {
		b.err = b.machine.add(b.current)
	}
	b.current = Transition{}
	return b
}

// Build returns the constructed machine or the first error recorded by Add.
func (b *Builder) Build() (*Machine, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.machine, nil
}
