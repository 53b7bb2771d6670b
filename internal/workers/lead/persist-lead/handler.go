// internal/workers/lead/persist-lead/handler.go
package persistlead

import (
	"context"
	"encoding/json"
	"fmt"

	"raiox-platform/internal/common/errors"
	"raiox-platform/internal/common/logger"
	"raiox-platform/internal/common/metrics"
	"raiox-platform/internal/models"
	"raiox-platform/internal/scoring"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "persist-lead"

// LeadRepository is the storage subset this worker needs.
type LeadRepository interface {
	Create(ctx context.Context, lead *models.Lead) error
	GetByID(ctx context.Context, id string) (*models.Lead, error)
}

type Handler struct {
	config *Config
	repo   LeadRepository
	logger logger.Logger
}

func NewHandler(config *Config, repo LeadRepository, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		repo:   repo,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":     job.Key,
		"processKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, errors.BPMNCodeOrDefault(err, "PERSIST_FAILED"), err.Error())
		return
	}

	h.completeJob(client, job, output)
}

// execute is idempotent: the HTTP layer usually persists the lead before
// the pipeline starts, so an existing row under the same id completes
// without a second insert.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.LeadID == "" {
		return nil, fmt.Errorf("leadId is required")
	}

	if _, err := h.repo.GetByID(ctx, input.LeadID); err == nil {
		h.logger.Debug("lead already persisted", map[string]interface{}{"leadId": input.LeadID})
		return &Output{LeadID: input.LeadID, Persisted: true}, nil
	} else if stdErr, ok := err.(*errors.StandardError); !ok || stdErr.Code != errors.ErrCodeLeadNotFound {
		return nil, fmt.Errorf("lookup lead: %w", err)
	}

	lead := &models.Lead{
		ID:      input.LeadID,
		Contact: input.Contact,
		Variant: input.Variant,
		Answers: input.Answers,
		Score:   input.Score,
		Tier:    scoring.LeadTier(input.Tier),
		Result:  input.Result,
	}

	if err := h.repo.Create(ctx, lead); err != nil {
		if stdErr, ok := err.(*errors.StandardError); ok && stdErr.Code == errors.ErrCodeDuplicateLead {
			metrics.LeadsDuplicate.Inc()
			h.logger.Info("duplicate submission dropped", map[string]interface{}{
				"leadId": input.LeadID,
				"email":  input.Contact.Email,
			})
			return &Output{LeadID: input.LeadID, Duplicate: true}, nil
		}
		return nil, fmt.Errorf("persist lead: %w", err)
	}

	metrics.LeadsPersisted.WithLabelValues(input.Variant).Inc()
	return &Output{LeadID: input.LeadID, Persisted: true}, nil
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

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode).Inc()
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{"error": err})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
