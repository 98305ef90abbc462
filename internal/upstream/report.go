// Package upstream simulates a slow external report service. Every fetch
// sleeps for a configured delay, and a per-key rate limit rejects duplicate
// concurrent fetches, so callers are expected to deduplicate requests.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Amund211/singleflight/internal/ratelimiting"
	"github.com/google/uuid"
)

var ErrThrottled = errors.New("upstream throttled")

type Report struct {
	ID          string
	Key         string
	GeneratedAt time.Time
}

type ReportProvider interface {
	FetchReport(ctx context.Context, key string) (Report, error)
}

type slowReportProvider struct {
	delay   time.Duration
	limiter ratelimiting.RateLimiter
	now     func() time.Time
}

func NewSlowReportProvider(delay time.Duration, limiter ratelimiting.RateLimiter, now func() time.Time) ReportProvider {
	return &slowReportProvider{
		delay:   delay,
		limiter: limiter,
		now:     now,
	}
}

func (provider *slowReportProvider) FetchReport(ctx context.Context, key string) (Report, error) {
	if !provider.limiter.Consume(key) {
		return Report{}, fmt.Errorf("%w for key %s", ErrThrottled, key)
	}

	timer := time.NewTimer(provider.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return Report{}, ctx.Err()
	case <-timer.C:
	}

	return Report{
		ID:          uuid.New().String(),
		Key:         key,
		GeneratedAt: provider.now(),
	}, nil
}
