package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Amund211/singleflight/cache"
)

type Fibonacci func(ctx context.Context, n int) (uint64, error)

var ErrNegativeIndex = errors.New("fibonacci index must be non-negative")

// BuildFibonacci returns a memoized Fibonacci sequence over the given cache.
// The two base cases are seeded up front so no caller ever computes them; all
// other numbers are computed recursively through the cache, so each index is
// computed at most once even under concurrent callers.
func BuildFibonacci(numberCache *cache.Cache[int, uint64]) Fibonacci {
	numberCache.SetValueIfAbsent(0, 1)
	numberCache.SetValueIfAbsent(1, 1)

	var fibonacci Fibonacci
	fibonacci = func(ctx context.Context, n int) (uint64, error) {
		if n < 0 {
			return 0, fmt.Errorf("%w: %d", ErrNegativeIndex, n)
		}

		return numberCache.GetValue(ctx, n, func() (value uint64, err error) {
			start := time.Now()
			defer func() { observeCompute(ctx, "fibonacci", start, err) }()

			previous, err := fibonacci(ctx, n-1)
			if err != nil {
				return 0, err
			}
			beforePrevious, err := fibonacci(ctx, n-2)
			if err != nil {
				return 0, err
			}
			return previous + beforePrevious, nil
		})
	}
	return fibonacci
}
