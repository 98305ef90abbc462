// Package cache provides a concurrency-safe memoizing cache with
// single-flight semantics: the value for a key is computed by at most one
// caller, while all concurrent callers for the same key wait for that single
// computation and receive its result.
//
// Successful results stay cached for the lifetime of the cache. Failed
// computations are evicted so that a later call can retry from scratch.
// There is no expiration, eviction policy, or size bound.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/Amund211/singleflight/internal/logging"
)

// ErrComputationAbandoned settles a handle whose compute function panicked,
// so that callers waiting on it are not stranded. The panic itself propagates
// to the caller that ran the computation.
var ErrComputationAbandoned = errors.New("cache: computation abandoned before settling")

// Cache memoizes values by key and deduplicates concurrent computations for
// the same key. The zero value is not usable; use New.
type Cache[K comparable, V any] struct {
	lock    sync.Mutex
	entries map[K]*handle[V]
}

func New[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{
		entries: make(map[K]*handle[V]),
	}
}

// claim is the atomic insert-only-if-absent primitive: it returns the handle
// for key, installing a fresh pending one if no entry exists. The second
// return is true iff this caller installed the handle and is therefore
// responsible for settling it.
func (c *Cache[K, V]) claim(key K) (*handle[V], bool) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if h, ok := c.entries[key]; ok {
		return h, false
	}

	h := newHandle[V]()
	c.entries[key] = h
	return h, true
}

// evict removes the entry for key only if it still maps to h. Removal is
// idempotent and never touches a newer handle installed by a retry.
func (c *Cache[K, V]) evict(key K, h *handle[V]) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if current, ok := c.entries[key]; ok && current == h {
		delete(c.entries, key)
	}
}

// GetValue returns the value cached for key, computing it with compute if no
// entry exists yet. Among concurrent callers for the same absent key exactly
// one runs compute; the others block until it settles and observe the same
// outcome. The lock is never held across compute.
//
// If compute fails, or a waiting caller's ctx is cancelled, the entry is
// evicted before the error is returned, so a later call retries from scratch.
// Cancelling a waiter does not cancel the in-progress computation.
func (c *Cache[K, V]) GetValue(ctx context.Context, key K, compute func() (V, error)) (V, error) {
	h, claimed := c.claim(key)

	if !claimed {
		select {
		case <-h.done:
			logging.FromContext(ctx).DebugContext(ctx, "Cache lookup", slog.String("cache", "hit"))
		default:
			logging.FromContext(ctx).DebugContext(ctx, "Cache lookup", slog.String("cache", "wait"))
		}

		value, err := h.await(ctx)
		if err != nil {
			c.evict(key, h)
			var empty V
			return empty, err
		}
		return value, nil
	}

	logging.FromContext(ctx).DebugContext(ctx, "Cache lookup", slog.String("cache", "miss"))

	// Clean up if compute panics, so waiters don't block forever on a
	// handle that will never settle.
	defer func() {
		if !h.settled {
			c.evict(key, h)
			var empty V
			h.settle(empty, ErrComputationAbandoned)
		}
	}()

	value, err := compute()
	if err != nil {
		c.evict(key, h)
		h.settle(value, err)
		var empty V
		return empty, err
	}

	h.settle(value, nil)
	return value, nil
}

// SetValueIfAbsent installs value for key if no entry exists yet. If an entry
// already exists, pending or settled, it is left untouched. Never blocks.
func (c *Cache[K, V]) SetValueIfAbsent(key K, value V) {
	h, claimed := c.claim(key)
	if !claimed {
		return
	}
	h.settle(value, nil)
}
