package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Job API metrics, registered once on the default registerer and shared by
// every Server in the process.
var (
	jobsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "harmonysearch",
			Subsystem: "server",
			Name:      "jobs_created_total",
			Help:      "Jobs accepted for execution, by optimizer backend",
		},
		[]string{"optimizer"},
	)

	jobsFinishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "harmonysearch",
			Subsystem: "server",
			Name:      "jobs_finished_total",
			Help:      "Jobs that reached a terminal state, by state",
		},
		[]string{"state"},
	)

	jobsRateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "harmonysearch",
			Subsystem: "server",
			Name:      "jobs_rate_limited_total",
			Help:      "Job submissions rejected by the rate limiter",
		},
	)

	jobDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "harmonysearch",
			Subsystem: "server",
			Name:      "job_duration_seconds",
			Help:      "Wall time from job creation to terminal state",
			Buckets:   prometheus.ExponentialBuckets(0.005, 4, 9),
		},
	)
)
