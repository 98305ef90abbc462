package app

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type appMetricsCollection struct {
	computeCount    metric.Int64Counter
	computeDuration metric.Float64Histogram
}

var metrics appMetricsCollection

func init() {
	const name = "singleflight/app"
	meter := otel.Meter(name)

	computeCount, err := meter.Int64Counter(
		"app/compute_count",
		metric.WithDescription("Total number of cache computations executed"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create compute count metric: %w", err))
	}

	computeDuration, err := meter.Float64Histogram(
		"app/compute_duration_seconds",
		metric.WithDescription("Execution time for cache computations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create compute duration metric: %w", err))
	}

	metrics = appMetricsCollection{
		computeCount:    computeCount,
		computeDuration: computeDuration,
	}
}

// observeCompute records one executed computation. Calls served from the
// cache never reach this, so the counter doubles as a deduplication check.
func observeCompute(ctx context.Context, consumer string, start time.Time, err error) {
	attributesOption := metric.WithAttributes(
		attribute.String("consumer", consumer),
		attribute.Bool("error", err != nil),
	)

	metrics.computeCount.Add(ctx, 1, attributesOption)
	metrics.computeDuration.Record(ctx, time.Since(start).Seconds(), attributesOption)
}
