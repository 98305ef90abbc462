package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/Amund211/singleflight/cache"
	"github.com/Amund211/singleflight/internal/app"
	"github.com/Amund211/singleflight/internal/config"
	"github.com/Amund211/singleflight/internal/logging"
	"github.com/Amund211/singleflight/internal/reporting"
	"github.com/Amund211/singleflight/internal/telemetry"
	"github.com/google/uuid"

	_ "golang.org/x/crypto/x509roots/fallback"
)

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

	shutdown, err := telemetry.SetupOTelSDK(ctx, "singleflight-fibonacci")
	if err != nil {
		fail("Failed to set up OpenTelemetry", "error", err.Error())
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Error("Failed to shut down OpenTelemetry", "error", err.Error())
		}
	}()

	fibonacci := app.BuildFibonacci(cache.New[int, uint64]())
	target := conf.FibonacciTarget()

	start := time.Now()
	value, err := fibonacci(ctx, target)
	if err != nil {
		fail("Failed to compute fibonacci number", "n", target, "error", err.Error())
	}
	logger.Info("Computed fibonacci number", "n", target, "value", value, "duration", time.Since(start).String())

	// Served from the cache this time
	start = time.Now()
	value, err = fibonacci(ctx, target)
	if err != nil {
		fail("Failed to fetch cached fibonacci number", "n", target, "error", err.Error())
	}
	logger.Info("Fetched cached fibonacci number", "n", target, "value", value, "duration", time.Since(start).String())
}
