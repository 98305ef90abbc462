package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

var ErrMissingRequiredValue = errors.New("missing required value")
var ErrInvalidValue = errors.New("invalid value")

type environment string

const (
	production  environment = "production"
	staging     environment = "staging"
	development environment = "development"
)

const defaultUpstreamDelay = 3 * time.Second
const defaultFibonacciTarget = 12

type Config struct {
	sentryDSN       string
	upstreamDelay   time.Duration
	fibonacciTarget int
	env             environment
}

func (c *Config) SentryDSN() string {
	return c.sentryDSN
}

func (c *Config) UpstreamDelay() time.Duration {
	return c.upstreamDelay
}

func (c *Config) FibonacciTarget() int {
	return c.fibonacciTarget
}

func (c *Config) IsProduction() bool {
	return c.env == production
}

func (c *Config) IsStaging() bool {
	return c.env == staging
}

func (c *Config) IsDevelopment() bool {
	return c.env == development
}

// Return a string representation suitable for logging etc
func (c *Config) NonSensitiveString() string {
	return fmt.Sprintf("Config{env: %s, upstreamDelay: %s, fibonacciTarget: %d, ...}", string(c.env), c.upstreamDelay, c.fibonacciTarget)
}

func ConfigFromEnv() (Config, error) {
	missingKey := func(key string) (Config, error) {
		return Config{}, fmt.Errorf("%w: %s", ErrMissingRequiredValue, key)
	}

	var env environment
	rawEnv, ok := os.LookupEnv("SINGLEFLIGHT_ENVIRONMENT")
	if !ok {
		return missingKey("SINGLEFLIGHT_ENVIRONMENT")
	}
	switch rawEnv {
	case "production":
		env = production
	case "staging":
		env = staging
	case "development":
		env = development
	default:
		return Config{}, fmt.Errorf("%w: SINGLEFLIGHT_ENVIRONMENT (%s)", ErrInvalidValue, rawEnv)
	}
	if string(env) == "" {
		panic("logic error: env is empty")
	}

	sentryDSN := os.Getenv("SENTRY_DSN")

	if env == production || env == staging {
		if sentryDSN == "" {
			return missingKey("SENTRY_DSN")
		}
	}

	upstreamDelay := defaultUpstreamDelay
	if rawDelay, ok := os.LookupEnv("UPSTREAM_DELAY"); ok {
		parsed, err := time.ParseDuration(rawDelay)
		if err != nil || parsed < 0 {
			return Config{}, fmt.Errorf("%w: UPSTREAM_DELAY (%s)", ErrInvalidValue, rawDelay)
		}
		upstreamDelay = parsed
	}

	fibonacciTarget := defaultFibonacciTarget
	if rawTarget, ok := os.LookupEnv("FIBONACCI_TARGET"); ok {
		parsed, err := strconv.Atoi(rawTarget)
		if err != nil || parsed < 0 {
			return Config{}, fmt.Errorf("%w: FIBONACCI_TARGET (%s)", ErrInvalidValue, rawTarget)
		}
		fibonacciTarget = parsed
	}

	return Config{
		sentryDSN:       sentryDSN,
		upstreamDelay:   upstreamDelay,
		fibonacciTarget: fibonacciTarget,
		env:             env,
	}, nil
}
