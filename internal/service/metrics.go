package service

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	apperrors "github.com/medigo/backend/pkg/errors"
)

var (
	// CartOperationsTotal counts cart service calls by operation and outcome.
	CartOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_operations_total",
			Help: "Total number of cart operations by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	// CartLockWaitSeconds observes how long mutations waited for the per-user lock.
	CartLockWaitSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cart_lock_wait_seconds",
			Help:    "Time spent waiting for the per-user cart lock",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
	)
)

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, apperrors.ErrInvalidInput):
		return "invalid"
	case errors.Is(err, apperrors.ErrServiceUnavail):
		return "busy"
	case errors.Is(err, apperrors.ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}

func recordOperation(operation string, err error) {
	CartOperationsTotal.WithLabelValues(operation, outcomeOf(err)).Inc()
}
