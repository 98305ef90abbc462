package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Amund211/singleflight/cache"
	"github.com/Amund211/singleflight/internal/reporting"
	"github.com/Amund211/singleflight/internal/upstream"
)

type FetchReportWithCache func(ctx context.Context, key string) (upstream.Report, error)

// BuildFetchReportWithCache memoizes report fetches from a slow upstream.
// Concurrent fetches for the same key are collapsed into a single upstream
// call, which keeps the upstream's per-key rate limit from ever tripping.
func BuildFetchReportWithCache(reportCache *cache.Cache[string, upstream.Report], provider upstream.ReportProvider) FetchReportWithCache {
	return func(ctx context.Context, key string) (upstream.Report, error) {
		report, err := reportCache.GetValue(ctx, key, func() (upstream.Report, error) {
			start := time.Now()
			report, err := provider.FetchReport(ctx, key)
			observeCompute(ctx, "slowtask", start, err)
			return report, err
		})
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				reporting.Report(ctx, err, map[string]string{"key": key})
			}
			return upstream.Report{}, fmt.Errorf("failed to fetch report: %w", err)
		}
		return report, nil
	}
}
