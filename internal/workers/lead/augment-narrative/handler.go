// internal/workers/lead/augment-narrative/handler.go
package augmentnarrative

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	commonhttp "raiox-platform/internal/common/http"
	"raiox-platform/internal/common/logger"
	"raiox-platform/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "augment-narrative"

// NarrativeStore persists the generated text once the AI call succeeds.
type NarrativeStore interface {
	UpdateNarrative(ctx context.Context, id, narrative string) error
}

type Handler struct {
	config *Config
	store  NarrativeStore
	client *commonhttp.Client
	logger logger.Logger
}

func NewHandler(config *Config, store NarrativeStore, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		store:  store,
		client: commonhttp.NewClient(config.Timeout),
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

// Handle never throws: the narrative is strictly additive, so every
// failure path completes the job with augmented=false and the pipeline
// moves on.
func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":     job.Key,
		"processKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.logger.Warn("unparseable input, skipping narrative", map[string]interface{}{"error": err.Error()})
		h.completeJob(client, job, &Output{Augmented: false})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.logger.Warn("narrative generation failed, completing without it", map[string]interface{}{
			"leadId": input.LeadID,
			"error":  err.Error(),
		})
		output = &Output{LeadID: input.LeadID, Augmented: false}
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.LeadID == "" {
		return nil, fmt.Errorf("leadId is required")
	}
	if h.config.BaseURL == "" {
		return nil, fmt.Errorf("narrative service is not configured")
	}

	narrative, err := h.generate(ctx, input)
	if err != nil {
		return nil, err
	}

	if err := h.store.UpdateNarrative(ctx, input.LeadID, narrative); err != nil {
		return nil, fmt.Errorf("store narrative: %w", err)
	}

	h.logger.Info("narrative attached", map[string]interface{}{
		"leadId": input.LeadID,
		"length": len(narrative),
	})
	return &Output{LeadID: input.LeadID, Augmented: true, Narrative: narrative}, nil
}

func (h *Handler) generate(ctx context.Context, input *Input) (string, error) {
	requestBody := map[string]interface{}{
		"model":      h.config.Model,
		"prompt":     buildPrompt(input),
		"max_tokens": h.config.MaxTokens,
	}

	body, _ := json.Marshal(requestBody)

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= h.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.config.BaseURL+"/v1/generate", bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if h.config.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+h.config.APIKey)
		}

		resp, lastErr = h.client.Do(req)
		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}

	if resp == nil {
		return "", fmt.Errorf("narrative request failed: %w", lastErr)
	}
	defer resp.Body.Close()

	var apiResponse struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if strings.TrimSpace(apiResponse.Text) == "" {
		return "", fmt.Errorf("empty narrative response")
	}
	return strings.TrimSpace(apiResponse.Text), nil
}

// buildPrompt turns the deterministic scoring output into a short brief
// for the text generator. The generator elaborates; it never scores.
func buildPrompt(input *Input) string {
	var sb strings.Builder
	sb.WriteString("Escreva um parágrafo curto e encorajador em português para um lead ")
	fmt.Fprintf(&sb, "com pontuação %d de 100 (faixa %s). ", input.Score, input.Tier)

	if input.Result != nil {
		if len(input.Result.Strengths) > 0 {
			sb.WriteString("Pontos fortes: ")
			sb.WriteString(strings.Join(input.Result.Strengths, "; "))
			sb.WriteString(". ")
		}
		if len(input.Result.RecommendedCodes) > 0 {
			sb.WriteString("Vistos recomendados: ")
			sb.WriteString(strings.Join(input.Result.RecommendedCodes, ", "))
			sb.WriteString(". ")
		}
	}
	sb.WriteString("Não invente números nem prometa aprovação.")
	return sb.String()
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
