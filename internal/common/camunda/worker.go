// internal/common/camunda/worker.go
package camunda

import (
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"

	"raiox-platform/internal/common/config"
	"raiox-platform/internal/common/metrics"
)

// JobHandlerFunc matches the Handle method of the pipeline worker
// handlers. Handlers report failures to the broker themselves, so there
// is no error return.
type JobHandlerFunc func(client worker.JobClient, job entities.Job)

// PipelineWorker is a running job subscription for one task type of the
// lead pipeline.
type PipelineWorker struct {
	worker   worker.JobWorker
	logger   *zap.Logger
	taskType string
}

// StartWorker opens a job subscription for the given task type. A
// disabled worker config returns nil.
func StartWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handler JobHandlerFunc, log *zap.Logger) *PipelineWorker {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return nil
	}

	instrumented := func(c worker.JobClient, job entities.Job) {
		metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
		start := time.Now()

		handler(c, job)

		metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()
		metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(time.Since(start).Seconds())
	}

	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(instrumented).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(wcfg.JobTimeout()).
		Open()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)

	return &PipelineWorker{
		worker:   jobWorker,
		logger:   log,
		taskType: taskType,
	}
}

// Close drains the subscription and stops polling for jobs.
func (w *PipelineWorker) Close() {
	if w == nil {
		return
	}
	w.logger.Info("stopping worker", zap.String("taskType", w.taskType))
	w.worker.Close()
}
