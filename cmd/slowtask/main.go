package main

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/Amund211/singleflight/cache"
	"github.com/Amund211/singleflight/internal/app"
	"github.com/Amund211/singleflight/internal/config"
	"github.com/Amund211/singleflight/internal/logging"
	"github.com/Amund211/singleflight/internal/ratelimiting"
	"github.com/Amund211/singleflight/internal/reporting"
	"github.com/Amund211/singleflight/internal/telemetry"
	"github.com/Amund211/singleflight/internal/upstream"
	"github.com/google/uuid"

	_ "golang.org/x/crypto/x509roots/fallback"
)

const concurrentCallers = 10
const repeatedCalls = 100

func main() {
	instanceID := uuid.New().String()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("instanceID", instanceID)

	fail := func(msg string, args ...any) {
		logger.Error(msg, args...)
		os.Exit(1)
	}

	conf, err := config.ConfigFromEnv()
	if err != nil {
		fail("Failed to load config", "error", err.Error())
	}
	logger.Info("Loaded config", "config", conf.NonSensitiveString())

	flush, err := reporting.NewSentryOrMock(conf)
	if err != nil {
		fail("Failed to initialize Sentry", "error", err.Error())
	}
	defer flush()

	ctx := logging.AddToContext(context.Background(), logger)

	shutdown, err := telemetry.SetupOTelSDK(ctx, "singleflight-slowtask")
	if err != nil {
		fail("Failed to set up OpenTelemetry", "error", err.Error())
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Error("Failed to shut down OpenTelemetry", "error", err.Error())
		}
	}()

	// The upstream allows one fetch per key per minute. Only request
	// deduplication keeps the burst below from tripping it.
	rateLimiter, stopRateLimiter := ratelimiting.NewKeyBasedRateLimiter(1.0/60.0, 1)
	defer stopRateLimiter()

	provider := upstream.NewSlowReportProvider(conf.UpstreamDelay(), rateLimiter, time.Now)
	fetchReport := app.BuildFetchReportWithCache(cache.New[string, upstream.Report](), provider)

	logger.Info("Requesting report concurrently", "callers", concurrentCallers)
	var wg sync.WaitGroup
	for i := 0; i < concurrentCallers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			callerLogger := logger.With("caller", i)
			callerCtx := logging.AddToContext(ctx, callerLogger)

			start := time.Now()
			report, err := fetchReport(callerCtx, "daily")
			if err != nil {
				callerLogger.Error("Failed to fetch report", "error", err.Error())
				return
			}
			callerLogger.Info("Fetched report", "reportID", report.ID, "duration", time.Since(start).String())
		}(i)
	}
	wg.Wait()

	start := time.Now()
	for i := 0; i < repeatedCalls; i++ {
		if _, err := fetchReport(ctx, "daily"); err != nil {
			fail("Failed to fetch cached report", "error", err.Error())
		}
	}
	logger.Info("Fetched cached report repeatedly", "calls", repeatedCalls, "totalDuration", time.Since(start).String())
}
