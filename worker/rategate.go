package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

var (
	// ErrMustNotBeZero reports a non-positive rate or burst.
	ErrMustNotBeZero = errors.New("must be greater than zero")
	// ErrWaitingFailed wraps an admission wait that did not complete.
	ErrWaitingFailed = errors.New("admission waiting failed")
	// ErrGateEnded reports a context that expired at the admission gate.
	ErrGateEnded = errors.New("admission context ended")
)

// rateGate paces task admissions with a time/rate token bucket,
// restricting how fast offloaded calls may start. logFn lazily
// resolves the logger at admission time, making option ordering
// irrelevant.
type rateGate struct {
	limiter *rate.Limiter
	rps     int
	burst   int
	logFn   func() *slog.Logger
}

func newRateGate(rps, burst int, logFn func() *slog.Logger) (*rateGate, error) {
	if rps <= 0 || burst <= 0 {
		return nil, fmt.Errorf("rps[%d] and burst[%d] %w", rps, burst, ErrMustNotBeZero)
	}

	g := &rateGate{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		rps:     rps,
		burst:   burst,
		logFn:   logFn,
	}

	return g, nil
}

func (g *rateGate) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w early: %w", ErrGateEnded, err)
	}

	var waited time.Duration
	logger := g.logFn()
	if logger != nil && g.limiter.Tokens() < 1 {
		logger.Info("admission tokens exhausted", "rate", g.rps, "burst", g.burst)

		defer func() {
			logger.Info("admission wait complete", "waited", waited.String(), "rate", g.rps, "burst", g.burst)
		}()
	}

	start := time.Now()

	err := g.limiter.Wait(ctx)
	waited = time.Since(start)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWaitingFailed, err)
	}

	if err := ctx.Err(); err != nil { // Check context hasn't expired again.
		return fmt.Errorf("%w post-wait: %w", ErrGateEnded, err)
	}

	return nil
}
