package cache

import "context"

// handle is the one-shot holder for a single computation bound to a key.
//
// It starts out pending and is settled exactly once, either with a value or
// with an error. Settlement is broadcast by closing the done channel, so any
// number of waiters can observe it. Only the caller that claimed the entry
// (see Cache.claim) may settle its handle.
type handle[V any] struct {
	done    chan struct{}
	settled bool
	value   V
	err     error
}

func newHandle[V any]() *handle[V] {
	return &handle[V]{done: make(chan struct{})}
}

// settle transitions the handle out of its pending state.
// Must be called at most once, and only by the claiming caller.
func (h *handle[V]) settle(value V, err error) {
	if h.settled {
		panic("cache: handle settled twice")
	}
	h.settled = true
	h.value = value
	h.err = err
	close(h.done)
}

// await blocks until the handle settles or ctx is cancelled.
// Cancellation only affects this waiter; the computation keeps running.
func (h *handle[V]) await(ctx context.Context) (V, error) {
	select {
	case <-h.done:
		return h.value, h.err
	case <-ctx.Done():
		var empty V
		return empty, ctx.Err()
	}
}
