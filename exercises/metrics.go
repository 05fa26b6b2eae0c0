package exercises

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tabula",
		Name:      "exercise_runs_total",
		Help:      "Exercise runs by exercise and status.",
	}, []string{"exercise", "status"})

	runSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tabula",
		Name:      "exercise_run_seconds",
		Help:      "How long exercise runs take.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"exercise"})
)

func observeRun(exercise, status string, elapsed time.Duration) {
	runsTotal.WithLabelValues(exercise, status).Inc()
	runSeconds.WithLabelValues(exercise).Observe(elapsed.Seconds())
}
