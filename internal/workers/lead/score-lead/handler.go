// internal/workers/lead/score-lead/handler.go
package scorelead

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"raiox-platform/internal/common/logger"
	"raiox-platform/internal/common/metrics"
	"raiox-platform/internal/models"
	"raiox-platform/internal/scoring"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/xeipuuv/gojsonschema"
)

const TaskType = "score-lead"

// inputSchema rejects malformed pipeline variables before they reach the
// scoring core. Answer values themselves are checked by the normalizer.
const inputSchema = `{
	"type": "object",
	"required": ["leadId", "variant"],
	"properties": {
		"leadId":  {"type": "string", "minLength": 1},
		"variant": {"type": "string", "enum": ["business", "immigration"]},
		"answers": {"type": "object"}
	}
}`

var inputSchemaLoader = gojsonschema.NewStringLoader(inputSchema)

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
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
		h.failJob(client, job, "SCORING_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	docLoader := gojsonschema.NewGoLoader(input)
	validation, err := gojsonschema.Validate(inputSchemaLoader, docLoader)
	if err != nil {
		return nil, fmt.Errorf("input validation error: %w", err)
	}
	if !validation.Valid() {
		msgs := make([]string, len(validation.Errors()))
		for i, desc := range validation.Errors() {
			msgs[i] = desc.String()
		}
		return nil, fmt.Errorf("invalid input: %v", msgs)
	}

	answers, err := scoring.Normalize(input.Answers)
	if err != nil {
		return nil, fmt.Errorf("normalize answers: %w", err)
	}

	scoreStart := time.Now()
	var result *scoring.Result
	switch input.Variant {
	case models.VariantBusiness:
		result = scoring.NewViabilityScorer().Score(answers)
	default:
		result = scoring.NewProfileScorer().Score(answers)
	}

	metrics.ScoringDuration.WithLabelValues(input.Variant).Observe(time.Since(scoreStart).Seconds())
	metrics.LeadsScored.WithLabelValues(input.Variant, string(result.Tier)).Inc()
	h.logger.Info("lead scored", map[string]interface{}{
		"leadId":  input.LeadID,
		"variant": input.Variant,
		"score":   result.OverallScore,
		"tier":    result.Tier,
	})

	return &Output{
		LeadID: input.LeadID,
		Score:  result.OverallScore,
		Tier:   string(result.Tier),
		Result: result,
	}, nil
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
