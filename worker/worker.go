// Package worker runs blocking functions on dedicated goroutines so a
// caller's serving loop never stalls on slow synchronous work.
//
// # The Runner contract
//
// The root offload package dispatches through the [Runner] interface:
// submit a [Work] function together with an optional capacity limiter
// and receive the pending [Task] immediately. Anything satisfying
// Runner can stand in for the built-in pool.
//
// # The built-in Pool
//
// [New] builds a [Pool] that runs each submission on its own goroutine
// behind the given limiter, or behind the pool's ambient limiter when
// none is given:
//
//	p, err := worker.New(
//		worker.WithAmbientLimit(16),
//		worker.WithRateLimit(100, 10),
//	)
//	t := p.Run(ctx, loadReport, nil)
//	// ... keep serving ...
//	report, err := t.Result(ctx)
//
// [Default] exposes a shared process-wide pool for call sites that do
// not manage their own.
package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/adamwoolhether/offload/limiter"
)

// DefaultLimit is the capacity of a pool's ambient limiter unless
// overridden with [WithAmbientLimit]. It bounds calls that were
// submitted without an explicit limiter.
const DefaultLimit = 40

// Work is a blocking function as submitted to a [Runner]. The context
// carries per-call cancellation; Work that never checks it simply runs
// to completion.
type Work func(ctx context.Context) (any, error)

// Runner runs blocking work on a worker, bounded by lim, and returns
// the pending result without blocking the caller. A nil lim applies
// the runner's own ambient bound.
type Runner interface {
	Run(ctx context.Context, work Work, lim *limiter.Limiter) *Task
}

var (
	defaultOnce sync.Once
	defaultPool *Pool
)

// Default returns the shared process-wide [Pool], building it on first
// use. Code that wants its own lifecycle, bound, or instrumentation
// builds a pool with [New] instead.
func Default() *Pool {
	defaultOnce.Do(func() {
		var err error
		defaultPool, err = New()
		if err != nil {
			// New without options cannot fail.
			panic(fmt.Sprintf("worker: building default pool: %v", err))
		}
	})

	return defaultPool
}
