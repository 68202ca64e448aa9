package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func discardLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewRateGate_Validation(t *testing.T) {
	testCases := []struct {
		name   string
		rps    int
		burst  int
		expErr error
	}{
		{name: "invalid rps (zero)", rps: 0, burst: 10, expErr: ErrMustNotBeZero},
		{name: "invalid rps (negative)", rps: -5, burst: 10, expErr: ErrMustNotBeZero},
		{name: "invalid burst (zero)", rps: 10, burst: 0, expErr: ErrMustNotBeZero},
		{name: "invalid burst (negative)", rps: 10, burst: -5, expErr: ErrMustNotBeZero},
		{name: "valid input", rps: 10, burst: 20},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g, err := newRateGate(tc.rps, tc.burst, discardLog)

			if tc.expErr != nil {
				if !errors.Is(err, tc.expErr) {
					t.Errorf("exp err %v; got: %v", tc.expErr, err)
				}
				return
			}

			if err != nil {
				t.Errorf("exp nil err, got: %v", err)
			}
			if g == nil {
				t.Error("exp non-nil gate")
			}
		})
	}
}

func TestRateGate_FastUnderLimit(t *testing.T) {
	g, err := newRateGate(1000, 100, discardLog)
	if err != nil {
		t.Fatalf("building gate: %v", err)
	}

	start := time.Now()
	for range 10 {
		if err := g.wait(t.Context()); err != nil {
			t.Fatalf("wait: %v", err)
		}
	}

	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("10 admissions under a high limit took %v, want well under 500ms", elapsed)
	}
}

func TestRateGate_SlowsDownOverLimit(t *testing.T) {
	// Burst of one: the second and third admissions must each wait for
	// a token refill at 50 rps, 20ms apart.
	g, err := newRateGate(50, 1, discardLog)
	if err != nil {
		t.Fatalf("building gate: %v", err)
	}

	start := time.Now()
	for range 3 {
		if err := g.wait(t.Context()); err != nil {
			t.Fatalf("wait: %v", err)
		}
	}

	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("3 admissions at 50 rps took %v, want at least 30ms", elapsed)
	}
}

func TestRateGate_ContextAlreadyDone(t *testing.T) {
	g, err := newRateGate(10, 1, discardLog)
	if err != nil {
		t.Fatalf("building gate: %v", err)
	}

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err = g.wait(ctx)
	if !errors.Is(err, ErrGateEnded) {
		t.Errorf("wait with done context = %v, want ErrGateEnded", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("wait with done context = %v, want to wrap context.Canceled", err)
	}
}

func TestRateGate_DeadlineWhileWaiting(t *testing.T) {
	g, err := newRateGate(1, 1, discardLog)
	if err != nil {
		t.Fatalf("building gate: %v", err)
	}

	// Drain the only token so the next wait needs a full second.
	if err := g.wait(t.Context()); err != nil {
		t.Fatalf("draining token: %v", err)
	}

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()

	err = g.wait(ctx)
	if !errors.Is(err, ErrWaitingFailed) {
		t.Errorf("wait past deadline = %v, want ErrWaitingFailed", err)
	}
}

func TestPool_RateGateRejection(t *testing.T) {
	p := quietPool(t, WithRateLimit(1, 1))

	// First admission takes the burst token; the second cannot be
	// admitted within its deadline.
	if err := p.Run(t.Context(), func(ctx context.Context) (any, error) {
		return nil, nil
	}, nil).Err(); err != nil {
		t.Fatalf("first task: %v", err)
	}

	ctx, cancel := context.WithTimeout(t.Context(), 100*time.Millisecond)
	defer cancel()

	task := p.Run(ctx, func(ctx context.Context) (any, error) {
		t.Error("work function should not have been admitted")
		return nil, nil
	}, nil)

	if err := task.Err(); !errors.Is(err, ErrWaitingFailed) {
		t.Errorf("Err() = %v, want ErrWaitingFailed", err)
	}
}
