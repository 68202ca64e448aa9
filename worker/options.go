package worker

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

// Option defines optional settings for building a [Pool].
//
// WithAmbientLimit replaces the [DefaultLimit] capacity of the pool's
// ambient limiter.
//
// WithRateLimit adds a token-bucket admission gate in front of the
// limiter, pacing how fast offloaded calls may start.
//
// WithLogger, WithTracer, and WithRegisterer inject observability
// hooks; all three default to doing nothing visible (default slog
// logger, no-op tracer, unregistered metrics).
type Option func(*options) error

type options struct {
	ambientLimit *int64
	rps          int
	burst        int
	logger       *slog.Logger
	tracer       trace.Tracer
	registerer   prometheus.Registerer
}

func WithAmbientLimit(n int64) Option {
	return func(opts *options) error {
		opts.ambientLimit = &n
		return nil
	}
}

func WithRateLimit(rps, burst int) Option {
	return func(opts *options) error {
		if rps <= 0 || burst <= 0 {
			return fmt.Errorf("rps[%d] and burst[%d] %w", rps, burst, ErrMustNotBeZero)
		}

		opts.rps = rps
		opts.burst = burst
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(opts *options) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		opts.logger = logger
		return nil
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(opts *options) error {
		if tracer == nil {
			return errors.New("tracer must not be nil")
		}
		opts.tracer = tracer
		return nil
	}
}

func WithRegisterer(reg prometheus.Registerer) Option {
	return func(opts *options) error {
		if reg == nil {
			return errors.New("registerer must not be nil")
		}
		opts.registerer = reg
		return nil
	}
}
