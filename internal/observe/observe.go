// Package observe delivers state snapshots to listeners in the order the
// snapshots were taken.
package observe

import (
	"sync"
	"sync/atomic"
)

// Hub fans snapshots of type S out to listeners.
//
// Owners call Stamp while holding the lock that guards the state being
// snapshotted, release that lock, then call Publish with the stamp. A
// snapshot older than one already delivered is dropped, so listeners only
// ever move forward. Deliveries are serialized: a listener must not
// synchronously trigger another change on the same owner.
type Hub[S any] struct {
	version atomic.Uint64

	mu   sync.Mutex
	next int
	fns  map[int]func(S)

	deliverMu sync.Mutex
	delivered uint64
}

// Stamp returns the version of the snapshot about to be published.
func (h *Hub[S]) Stamp() uint64 {
	return h.version.Add(1)
}

// Subscribe registers fn and returns a function that removes it.
// The returned function may be called more than once.
func (h *Hub[S]) Subscribe(fn func(S)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.fns == nil {
		h.fns = make(map[int]func(S))
	}
	id := h.next
	h.next++
	h.fns[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.fns, id)
			h.mu.Unlock()
		})
	}
}

// Publish hands v to every listener unless a snapshot with a higher
// version has already been delivered. It reports whether v was delivered.
func (h *Hub[S]) Publish(version uint64, v S) bool {
	h.deliverMu.Lock()
	defer h.deliverMu.Unlock()
	if version <= h.delivered {
		return false
	}
	h.delivered = version

	h.mu.Lock()
	fns := make([]func(S), 0, len(h.fns))
	for _, fn := range h.fns {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
	return true
}

// Len returns the number of registered listeners.
func (h *Hub[S]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.fns)
}
