package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/adamwoolhether/offload/limiter"
)

// ErrPoolShutdown is reported by tasks that reach the execution stage
// after [Pool.Shutdown].
var ErrPoolShutdown = errors.New("pool is shut down")

// PanicError carries a panic recovered from an offloaded call, so a
// misbehaving function cannot take the process down from a worker
// goroutine.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("offloaded call panicked: %v", e.Value)
}

// Pool is the built-in [Runner]. Every submission runs on its own
// goroutine, paced by an optional admission rate gate and bounded by a
// capacity limiter.
type Pool struct {
	ambient *limiter.Limiter
	gate    *rateGate
	logger  *slog.Logger // nil resolves to slog.Default at use
	tracer  trace.Tracer
	metrics *metrics

	wg       sync.WaitGroup
	shutdown atomic.Bool
}

// New builds a Pool with the provided options. Without options the
// pool uses an ambient limiter of [DefaultLimit], no rate gate, the
// default slog logger, a no-op tracer, and unregistered metrics.
func New(optFns ...Option) (*Pool, error) {
	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying worker option: %w", err)
		}
	}

	cfg := config{AmbientLimit: DefaultLimit, RPS: opts.rps, Burst: opts.burst}
	if opts.ambientLimit != nil {
		cfg.AmbientLimit = *opts.ambientLimit
	}
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("worker config: %w", err)
	}

	p := &Pool{
		ambient: limiter.New(cfg.AmbientLimit),
		logger:  opts.logger,
		tracer:  opts.tracer,
		metrics: newMetrics(opts.registerer),
	}
	if p.tracer == nil {
		p.tracer = noop.NewTracerProvider().Tracer("")
	}

	if cfg.RPS > 0 || cfg.Burst > 0 {
		gate, err := newRateGate(cfg.RPS, cfg.Burst, p.log)
		if err != nil {
			return nil, fmt.Errorf("configuring admission gate: %w", err)
		}
		p.gate = gate
	}

	return p, nil
}

// Run submits work to its own goroutine and returns the pending [Task]
// immediately. The execution slot is taken from lim, or from the
// pool's ambient limiter when lim is nil. The task completes with the
// work's value or error unchanged: no retries, no added timeout.
// Cancelling ctx while waiting for a slot fails the task with the
// context's error.
func (p *Pool) Run(ctx context.Context, work Work, lim *limiter.Limiter) *Task {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{
		id:     uuid.New(),
		done:   make(chan struct{}),
		cancel: cancel,
	}

	if lim == nil {
		lim = p.ambient
	}

	p.wg.Add(1)
	go func() {
		defer func() {
			cancel()
			close(t.done)
			p.wg.Done()
		}()

		ctx, span := p.tracer.Start(ctx, "worker.task")
		span.SetAttributes(
			attribute.String("task_id", t.id.String()),
			attribute.Bool("ambient_limiter", lim == p.ambient),
		)
		defer span.End()

		if p.gate != nil {
			if err := p.gate.wait(ctx); err != nil {
				t.err = err
				p.metrics.tasks.WithLabelValues(outcomeRejected).Inc()
				return
			}
		}

		span.AddEvent("waiting for slot")

		start := time.Now()
		err := lim.Acquire(ctx)
		wait := time.Since(start)
		p.metrics.waitSeconds.WithLabelValues(waitOutcome(err)).Observe(wait.Seconds())
		if err != nil {
			t.err = err
			p.metrics.tasks.WithLabelValues(outcomeRejected).Inc()
			return
		}
		defer lim.Release()

		if p.shutdown.Load() {
			t.err = ErrPoolShutdown
			p.metrics.tasks.WithLabelValues(outcomeShutdown).Inc()
			return
		}

		span.AddEvent("running", trace.WithAttributes(
			attribute.Float64("wait_seconds", wait.Seconds()),
		))

		p.metrics.inflight.Inc()
		defer p.metrics.inflight.Dec()

		t.val, t.err = p.invoke(ctx, work, t.id)
		p.metrics.tasks.WithLabelValues(taskOutcome(t.err)).Inc()
	}()

	return t
}

// Ambient returns the pool's own limiter, applied when [Pool.Run] is
// given a nil one. Resizing it with SetCapacity retunes the ambient
// bound for subsequent admissions.
func (p *Pool) Ambient() *limiter.Limiter { return p.ambient }

// Shutdown stops admitting new work: tasks reaching the execution
// stage after this call complete with [ErrPoolShutdown]. In-flight
// calls are not interrupted.
func (p *Pool) Shutdown() { p.shutdown.Store(true) }

// Wait blocks until every task submitted so far has completed. For a
// clean teardown call [Pool.Shutdown] first, then Wait.
func (p *Pool) Wait() { p.wg.Wait() }

// invoke runs one work function, converting a panic into a
// [PanicError] carried by the task.
func (p *Pool) invoke(ctx context.Context, work Work, id uuid.UUID) (val any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			p.log().Error("offloaded call panicked", "task_id", id.String(), "panic", rec)
			val = nil
			err = &PanicError{Value: rec, Stack: debug.Stack()}
		}
	}()

	return work(ctx)
}

// log resolves the logger at use time so option ordering and late
// slog.SetDefault calls both behave.
func (p *Pool) log() *slog.Logger {
	if p.logger != nil {
		return p.logger
	}

	return slog.Default()
}
