package offload

import (
	"errors"
	"log/slog"

	"github.com/adamwoolhether/offload/limiter"
	"github.com/adamwoolhether/offload/worker"
)

// Option defines optional settings for a [Registry].
//
// WithLogger injects a custom logger into the registry.
// WithRunner sets the worker facility that calls dispatched through
// the registry are submitted to.
type Option func(*registryOpts) error

type registryOpts struct {
	logger *slog.Logger
	runner worker.Runner
}

func WithLogger(logger *slog.Logger) Option {
	return func(opts *registryOpts) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		opts.logger = logger
		return nil
	}
}

func WithRunner(runner worker.Runner) Option {
	return func(opts *registryOpts) error {
		if runner == nil {
			return errors.New("runner must not be nil")
		}
		opts.runner = runner
		return nil
	}
}

// /////////////////////////////////////////////////////////////////

// CallOption defines optional settings for calls wrapped by [Async]
// and [Async1].
//
// WithLimiter bounds the wrapped call with the given limiter as-is;
// the registry is never consulted.
// WithLimiterName bounds the wrapped call with the limiter registered
// under name, looked up again on every invocation.
// WithRegistry resolves names against the given registry instead of
// the [Default] one.
//
// WithLimiter and WithLimiterName cannot be used together.
type CallOption func(*callOpts) error

type callOpts struct {
	limiter  *limiter.Limiter
	name     string
	registry *Registry
}

func WithLimiter(lim *limiter.Limiter) CallOption {
	return func(opts *callOpts) error {
		if lim == nil {
			return errors.New("limiter must not be nil")
		}
		if opts.name != "" {
			return errors.New("a direct limiter cannot be used with a limiter name")
		}

		opts.limiter = lim
		return nil
	}
}

func WithLimiterName(name string) CallOption {
	return func(opts *callOpts) error {
		if name == "" {
			return errors.New("limiter name must not be empty")
		}
		if opts.limiter != nil {
			return errors.New("a limiter name cannot be used with a direct limiter")
		}

		opts.name = name
		return nil
	}
}

func WithRegistry(reg *Registry) CallOption {
	return func(opts *callOpts) error {
		if reg == nil {
			return errors.New("registry must not be nil")
		}

		opts.registry = reg
		return nil
	}
}
