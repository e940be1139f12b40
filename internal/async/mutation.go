package async

import (
	"context"
	"sync"

	"github.com/sirius-dms/dms-client/internal/observe"
)

// MutationOptions configures a Mutation.
type MutationOptions[R any] struct {
	OnSuccess func(R)
	OnError   func(error)
}

// MutationState is the observable state of a Mutation. No result is kept;
// callers react to the value returned by Mutate or to OnSuccess.
type MutationState struct {
	Loading bool
	Error   string
}

// Mutation tracks side-effecting calls. Calls may overlap and are never
// cancelled by each other. Each call sets Loading on start and clears it on
// its own completion, so with overlapping calls Loading reflects whichever
// call changed it last.
type Mutation[A, R any] struct {
	fn   func(context.Context, A) (R, error)
	opts MutationOptions[R]

	mu    sync.Mutex
	state MutationState

	subs observe.Hub[MutationState]
}

// NewMutation creates a Mutation around fn.
func NewMutation[A, R any](fn func(context.Context, A) (R, error), opts MutationOptions[R]) *Mutation[A, R] {
	return &Mutation[A, R]{fn: fn, opts: opts}
}

// Mutate runs the wrapped function and returns its result; the error is
// both returned and stored.
func (m *Mutation[A, R]) Mutate(ctx context.Context, arg A) (R, error) {
	m.set(MutationState{Loading: true})

	res, err := m.fn(ctx, arg)
	if err != nil {
		m.set(MutationState{Error: ErrorMessage(err)})
		if m.opts.OnError != nil {
			m.opts.OnError(err)
		}
		var zero R
		return zero, err
	}

	m.set(MutationState{})
	if m.opts.OnSuccess != nil {
		m.opts.OnSuccess(res)
	}
	return res, nil
}

func (m *Mutation[A, R]) set(s MutationState) {
	m.mu.Lock()
	m.state = s
	ver := m.subs.Stamp()
	m.mu.Unlock()
	m.subs.Publish(ver, s)
}

// Loading reports whether the most recent state change was a call starting.
func (m *Mutation[A, R]) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Loading
}

// Error returns the message of the last failed call, or "".
func (m *Mutation[A, R]) Error() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Error
}

// State returns a snapshot of the current state.
func (m *Mutation[A, R]) State() MutationState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Reset clears the stored error. Loading is left alone.
func (m *Mutation[A, R]) Reset() {
	m.mu.Lock()
	m.state.Error = ""
	s, ver := m.state, m.subs.Stamp()
	m.mu.Unlock()
	m.subs.Publish(ver, s)
}

// Subscribe registers fn for state changes and returns a function that removes it.
func (m *Mutation[A, R]) Subscribe(fn func(MutationState)) func() {
	return m.subs.Subscribe(fn)
}
