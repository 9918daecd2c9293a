// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	DialogueTurns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialogue_turns_total",
			Help: "Dialogue turns processed, by workflow and resulting step",
		},
		[]string{"workflow", "step"},
	)

	// source is "nlu" when the caller supplied the category and "text" when
	// it was detected from the message.
	CategoryDetections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialogue_category_detections_total",
			Help: "Rental categories recognized in user turns",
		},
		[]string{"source", "category"},
	)

	StepFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialogue_step_fallbacks_total",
			Help: "Turns that needed a recovery transition",
		},
		[]string{"reason"},
	)

	ChatRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_chat_requests_total",
			Help: "Chat API requests by HTTP status",
		},
		[]string{"status"},
	)
)
