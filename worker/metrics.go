package worker

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeCompleted = "completed"
	outcomeError     = "error"
	outcomePanicked  = "panicked"
	outcomeRejected  = "rejected"
	outcomeShutdown  = "shutdown"
)

// metrics instruments a pool. A nil registerer leaves the collectors
// unregistered, so an uninstrumented pool pays only counter bumps.
type metrics struct {
	inflight    prometheus.Gauge
	waitSeconds *prometheus.HistogramVec
	tasks       *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	return &metrics{
		inflight: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "offload_tasks_in_flight",
			Help: "Number of offloaded calls currently executing.",
		}),
		waitSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "offload_limiter_wait_seconds",
			Help:    "How long submissions waited for a limiter slot.",
			Buckets: []float64{.001, .01, .1, .3, .6, 1, 3, 6, 15, 30, 60},
		}, []string{"outcome"}),
		tasks: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "offload_tasks_total",
			Help: "Offloaded calls by final outcome.",
		}, []string{"outcome"}),
	}
}

// waitOutcome labels a limiter wait the way the acquisition ended.
func waitOutcome(err error) string {
	switch {
	case err == nil:
		return "permitted"
	case errors.Is(err, context.Canceled):
		return "rejected_canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "rejected_deadline_exceeded"
	default:
		return "rejected_other"
	}
}

// taskOutcome labels a finished call by how the work function ended.
func taskOutcome(err error) string {
	var pe *PanicError
	switch {
	case err == nil:
		return outcomeCompleted
	case errors.As(err, &pe):
		return outcomePanicked
	default:
		return outcomeError
	}
}
