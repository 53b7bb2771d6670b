// internal/workers/lead/index-lead/handler.go
package indexlead

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"raiox-platform/internal/common/logger"
	"raiox-platform/internal/common/metrics"
	"raiox-platform/internal/models"
)

const TaskType = "index-lead"

type LeadLoader interface {
	GetByID(ctx context.Context, id string) (*models.Lead, error)
}

type LeadIndexer interface {
	Index(ctx context.Context, lead *models.Lead) error
}

type Handler struct {
	config  *Config
	repo    LeadLoader
	indexer LeadIndexer
	logger  logger.Logger
}

func NewHandler(config *Config, repo LeadLoader, indexer LeadIndexer, log logger.Logger) *Handler {
	return &Handler{
		config:  config,
		repo:    repo,
		indexer: indexer,
		logger:  log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

// Handle completes with indexed=false on any failure: search mirroring is
// best-effort and the authoritative copy lives in Postgres.
func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":     job.Key,
		"processKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.logger.Warn("unparseable input, skipping index", map[string]interface{}{"error": err.Error()})
		h.completeJob(client, job, &Output{Indexed: false})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.logger.Warn("lead indexing failed", map[string]interface{}{
			"leadId": input.LeadID,
			"error":  err.Error(),
		})
		output = &Output{LeadID: input.LeadID, Indexed: false}
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.LeadID == "" {
		return nil, fmt.Errorf("leadId is required")
	}

	lead, err := h.repo.GetByID(ctx, input.LeadID)
	if err != nil {
		return nil, fmt.Errorf("load lead: %w", err)
	}

	if err := h.indexer.Index(ctx, lead); err != nil {
		return nil, err
	}

	h.logger.Info("lead indexed", map[string]interface{}{"leadId": input.LeadID})
	return &Output{LeadID: input.LeadID, Indexed: true}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{"error": err})
		return
	}
	if _, err = cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{"error": err})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
