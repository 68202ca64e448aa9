package offload

import (
	"context"
	"errors"
	"fmt"

	"github.com/adamwoolhether/offload/worker"
)

// Async wraps a blocking function so that calling the result submits
// fn to a worker instead of running it in place. Used bare, the call
// runs under the worker facility's own ambient bound:
//
//	load := offload.Async(loadReport)
//	t, err := load(ctx)
//
// Configured with call options, the bound comes from a direct limiter
// or from a named registry entry:
//
//	load := offload.Async(loadReport, offload.WithLimiterName("reports"))
//
// A name is resolved on every invocation, so the wrapped func tracks
// registry changes made between calls. fn's return value and error
// are handed to the caller through the task unchanged: no retries, no
// added timeout, every invocation is its own independent submission.
func Async[T any](fn func(ctx context.Context) (T, error), optFns ...CallOption) Func[T] {
	return func(ctx context.Context) (*Task[T], error) {
		if fn == nil {
			return nil, errors.New("offload: nil function")
		}

		work := func(ctx context.Context) (any, error) {
			return fn(ctx)
		}

		return dispatch[T](ctx, work, optFns)
	}
}

// Async1 is [Async] for a function taking one argument. The argument
// given at call time travels with that submission.
func Async1[A, T any](fn func(ctx context.Context, arg A) (T, error), optFns ...CallOption) Func1[A, T] {
	return func(ctx context.Context, arg A) (*Task[T], error) {
		if fn == nil {
			return nil, errors.New("offload: nil function")
		}

		work := func(ctx context.Context) (any, error) {
			return fn(ctx, arg)
		}

		return dispatch[T](ctx, work, optFns)
	}
}

// dispatch applies the call options, resolves the limiter for this
// one invocation, and submits the work. Option and resolution errors
// are returned before anything is submitted.
func dispatch[T any](ctx context.Context, work worker.Work, optFns []CallOption) (*Task[T], error) {
	var opts callOpts
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying call option: %w", err)
		}
	}

	reg := opts.registry
	if reg == nil {
		reg = Default()
	}

	lim := opts.limiter
	if opts.name != "" {
		var ok bool
		lim, ok = reg.Lookup(opts.name)
		if !ok {
			return nil, fmt.Errorf("resolving limiter %q: %w", opts.name, ErrUnknownLimiter)
		}
	}

	return &Task[T]{task: reg.run().Run(ctx, work, lim)}, nil
}
