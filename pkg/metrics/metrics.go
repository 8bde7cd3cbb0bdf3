// Package metrics holds the fleet's Prometheus metrics, in the teacher's
// promauto-registration style.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// --- Run metrics ---

	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pafsched",
			Subsystem: "runs",
			Name:      "total",
			Help:      "Total number of scheduling runs by outcome",
		},
		[]string{"heuristic", "outcome"},
	)

	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pafsched",
			Subsystem: "runs",
			Name:      "duration_seconds",
			Help:      "Wall-clock duration of a scheduling run",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 15),
		},
		[]string{"heuristic"},
	)

	UnassignedJobs = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pafsched",
			Subsystem: "runs",
			Name:      "unassigned_jobs",
			Help:      "Number of jobs left unassigned at PAF termination",
			Buckets:   prometheus.LinearBuckets(0, 5, 10),
		},
		[]string{"heuristic"},
	)

	// --- PAF metrics ---

	PAFIterations = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pafsched",
			Subsystem: "paf",
			Name:      "iterations",
			Help:      "Number of PAF outer-loop iterations per run",
			Buckets:   prometheus.LinearBuckets(1, 1, 20),
		},
		[]string{"heuristic"},
	)

	PAFGiveUps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pafsched",
			Subsystem: "paf",
			Name:      "give_ups_total",
			Help:      "Total number of PAF runs that gave up during pre-allocation",
		},
		[]string{"heuristic"},
	)

	// --- Queue metrics ---

	QueueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "pafsched",
			Subsystem: "queue",
			Name:      "pending_runs",
			Help:      "Number of task-set files pending in the work queue",
		},
		[]string{"partition"},
	)

	// --- Worker metrics ---

	ActiveWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "pafsched",
			Subsystem: "cluster",
			Name:      "active_workers",
			Help:      "Number of worker processes currently holding a heartbeat lease",
		},
	)

	WorkerCPUPercent = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "pafsched",
			Subsystem: "worker",
			Name:      "cpu_percent",
			Help:      "Self-reported host CPU utilization percentage",
		},
		[]string{"worker_id"},
	)

	WorkerMemoryPercent = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "pafsched",
			Subsystem: "worker",
			Name:      "memory_percent",
			Help:      "Self-reported host memory utilization percentage",
		},
		[]string{"worker_id"},
	)

	HeartbeatsSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pafsched",
			Subsystem: "worker",
			Name:      "heartbeats_total",
			Help:      "Total heartbeats sent by this worker",
		},
	)

	CircuitBreakerTrips = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pafsched",
			Subsystem: "resilience",
			Name:      "circuit_breaker_trips_total",
			Help:      "Total number of times a circuit breaker opened",
		},
		[]string{"breaker"},
	)
)

// RecordRun records the terminal outcome of one scheduling run.
func RecordRun(heuristic, outcome string, durationSeconds float64, unassigned, iterations int) {
	RunsTotal.WithLabelValues(heuristic, outcome).Inc()
	RunDuration.WithLabelValues(heuristic).Observe(durationSeconds)
	UnassignedJobs.WithLabelValues(heuristic).Observe(float64(unassigned))
	PAFIterations.WithLabelValues(heuristic).Observe(float64(iterations))
	if outcome == "give_up" {
		PAFGiveUps.WithLabelValues(heuristic).Inc()
	}
}
