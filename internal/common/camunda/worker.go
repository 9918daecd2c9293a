// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"booking-dialogue/internal/common/config"
	"booking-dialogue/internal/common/logger"
	"booking-dialogue/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// HandlerFunc matches the Handle method of every worker package.
type HandlerFunc func(client worker.JobClient, job entities.Job)

// JobWorkerBuilder is the subset of zbc.Client needed to open workers.
type JobWorkerBuilder interface {
	NewJobWorker() worker.JobWorkerBuilderStep1
}

// CamundaWorker is an opened job worker for one task type.
type CamundaWorker struct {
	worker   worker.JobWorker
	logger   logger.Logger
	taskType string
}

// JobObserver receives the outcome of every handled job.
type JobObserver interface {
	RecordJobProcessed(ctx context.Context, status string)
	RecordJobDuration(ctx context.Context, duration time.Duration, status string)
}

// Job outcomes reported to a JobObserver.
const (
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
	JobStatusError     = "bpmn_error"
	JobStatusAbandoned = "abandoned"
)

// statusClient notes which command the handler issued for the job.
type statusClient struct {
	worker.JobClient
	status string
}

func (c *statusClient) NewCompleteJobCommand() commands.CompleteJobCommandStep1 {
	c.status = JobStatusCompleted
	return c.JobClient.NewCompleteJobCommand()
}

func (c *statusClient) NewFailJobCommand() commands.FailJobCommandStep1 {
	c.status = JobStatusFailed
	return c.JobClient.NewFailJobCommand()
}

func (c *statusClient) NewThrowErrorCommand() commands.ThrowErrorCommandStep1 {
	c.status = JobStatusError
	return c.JobClient.NewThrowErrorCommand()
}

// Instrument records active jobs and duration around handler. When obs is
// non-nil it also reports how the job ended.
func Instrument(taskType string, handler HandlerFunc, obs JobObserver) HandlerFunc {
	return func(client worker.JobClient, job entities.Job) {
		metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
		defer metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()

		tracked := &statusClient{JobClient: client, status: JobStatusAbandoned}
		start := time.Now()
		handler(tracked, job)
		elapsed := time.Since(start)
		metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())

		if obs != nil {
			ctx := context.Background()
			obs.RecordJobProcessed(ctx, tracked.status)
			obs.RecordJobDuration(ctx, elapsed, tracked.status)
		}
	}
}

// StartWorker opens a job worker unless the task type is disabled.
// It returns nil for disabled workers.
func StartWorker(client JobWorkerBuilder, taskType string, wcfg config.WorkerConfig, handler HandlerFunc, obs JobObserver, log logger.Logger) *CamundaWorker {
	log = log.With(map[string]interface{}{"taskType": taskType})
	if !wcfg.Enabled {
		log.Info("worker disabled", nil)
		return nil
	}

	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(worker.JobHandler(Instrument(taskType, handler, obs))).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Open()

	log.Info("worker started", map[string]interface{}{
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})

	return &CamundaWorker{worker: jobWorker, logger: log, taskType: taskType}
}

// Stop closes the worker and waits for in-flight jobs.
func (w *CamundaWorker) Stop() {
	if w == nil {
		return
	}
	w.logger.Info("stopping worker", nil)
	w.worker.Close()
	w.worker.AwaitClose()
}

var _ JobWorkerBuilder = zbc.Client(nil)
