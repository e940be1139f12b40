package async

import (
	"context"
	"sync"

	"github.com/sirius-dms/dms-client/internal/logging"
	"github.com/sirius-dms/dms-client/internal/observe"
	"go.uber.org/zap"
)

// QueryOptions configures a Query.
type QueryOptions[T any] struct {
	// InitialData seeds State.Data and is restored by Reset. nil means no data.
	InitialData *T

	// OnSuccess and OnError run after the state update of the latest call.
	OnSuccess func(T)
	OnError   func(error)

	// Immediate runs Execute once with the zero argument when the Query is created.
	Immediate bool

	Logger *zap.Logger
}

// Query runs one call at a time in the sense that only the latest Execute
// may write state. Starting a call cancels the context of the one before it;
// the superseded call still returns its own result to its own caller.
type Query[A, T any] struct {
	fn     func(context.Context, A) (T, error)
	opts   QueryOptions[T]
	logger *zap.Logger

	mu     sync.Mutex
	state  State[T]
	seq    uint64
	cancel context.CancelFunc

	subs observe.Hub[State[T]]
}

// NewQuery creates a Query around fn.
func NewQuery[A, T any](fn func(context.Context, A) (T, error), opts QueryOptions[T]) *Query[A, T] {
	q := &Query[A, T]{
		fn:     fn,
		opts:   opts,
		logger: logging.OrNop(opts.Logger),
	}
	q.state = q.initialState()

	if opts.Immediate {
		// Loading is visible before NewQuery returns.
		q.state.Loading = true
		go func() {
			var zero A
			_, _ = q.Execute(context.Background(), zero)
		}()
	}
	return q
}

func (q *Query[A, T]) initialState() State[T] {
	var s State[T]
	if q.opts.InitialData != nil {
		s.Data = *q.opts.InitialData
		s.HasData = true
	}
	return s
}

// Execute runs the wrapped function and records its outcome if no newer
// call has started meanwhile. The error is returned as well as stored.
func (q *Query[A, T]) Execute(ctx context.Context, arg A) (T, error) {
	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	q.mu.Lock()
	q.seq++
	seq := q.seq
	if q.cancel != nil {
		q.cancel()
	}
	q.cancel = cancel
	q.state.Loading = true
	snap, ver := q.state, q.subs.Stamp()
	q.mu.Unlock()
	q.subs.Publish(ver, snap)

	data, err := q.fn(callCtx, arg)

	q.mu.Lock()
	if seq != q.seq {
		q.mu.Unlock()
		q.logger.Debug("discarding superseded query result", zap.Uint64("seq", seq))
		return data, err
	}
	q.cancel = nil
	if err != nil {
		q.state = State[T]{Error: ErrorMessage(err)}
	} else {
		q.state = State[T]{Data: data, HasData: true}
	}
	snap, ver = q.state, q.subs.Stamp()
	q.mu.Unlock()
	q.subs.Publish(ver, snap)

	if err != nil {
		if q.opts.OnError != nil {
			q.opts.OnError(err)
		}
		var zero T
		return zero, err
	}
	if q.opts.OnSuccess != nil {
		q.opts.OnSuccess(data)
	}
	return data, nil
}

// Reset abandons any in-flight call and restores the initial state.
func (q *Query[A, T]) Reset() {
	q.mu.Lock()
	q.seq++
	if q.cancel != nil {
		q.cancel()
		q.cancel = nil
	}
	q.state = q.initialState()
	snap, ver := q.state, q.subs.Stamp()
	q.mu.Unlock()
	q.subs.Publish(ver, snap)
}

// SetData replaces the data locally without a call, e.g. after an
// optimistic update. Any stored error is cleared.
func (q *Query[A, T]) SetData(data T) {
	q.mu.Lock()
	q.state.Data = data
	q.state.HasData = true
	q.state.Error = ""
	snap, ver := q.state, q.subs.Stamp()
	q.mu.Unlock()
	q.subs.Publish(ver, snap)
}

// State returns a snapshot of the current state.
func (q *Query[A, T]) State() State[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

// Subscribe registers fn for state changes and returns a function that removes it.
func (q *Query[A, T]) Subscribe(fn func(State[T])) func() {
	return q.subs.Subscribe(fn)
}
