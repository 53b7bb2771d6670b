// internal/workers/lead/sync-crm/handler.go
package synccrm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"raiox-platform/internal/common/errors"
	"raiox-platform/internal/common/logger"
	"raiox-platform/internal/common/metrics"
	"raiox-platform/internal/common/zoho"
	"raiox-platform/internal/models"
)

const TaskType = "sync-crm"

// CRMGateway is the Zoho surface this worker uses, mockable in tests.
type CRMGateway interface {
	CreateLead(ctx context.Context, lead *zoho.Lead) (string, error)
	UpdateLead(ctx context.Context, leadID string, lead *zoho.Lead) error
	SearchLeads(ctx context.Context, email string) ([]zoho.Lead, error)
}

// LeadRepository loads the lead and records the CRM id after the sync.
type LeadRepository interface {
	GetByID(ctx context.Context, id string) (*models.Lead, error)
	SetCRMID(ctx context.Context, id, crmID string) error
}

type Handler struct {
	config *Config
	repo   LeadRepository
	crm    CRMGateway
	logger logger.Logger
}

func NewHandler(config *Config, repo LeadRepository, crm CRMGateway, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		repo:   repo,
		crm:    crm,
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
		h.failJob(client, job, errors.BPMNCodeOrDefault(err, "CRM_SYNC_FAILED"), err.Error())
		return
	}

	h.completeJob(client, job, output)
}

// execute upserts by email: a repeat prospect updates their existing Zoho
// record instead of creating a duplicate.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.LeadID == "" {
		return nil, fmt.Errorf("leadId is required")
	}

	lead, err := h.repo.GetByID(ctx, input.LeadID)
	if err != nil {
		return nil, fmt.Errorf("load lead: %w", err)
	}

	crmLead := h.toCRMLead(lead)

	existing, err := h.crm.SearchLeads(ctx, lead.Contact.Email)
	if err != nil {
		return nil, fmt.Errorf("search crm: %w", err)
	}

	var crmID string
	if len(existing) > 0 {
		crmID = existing[0].ID
		if err := h.crm.UpdateLead(ctx, crmID, crmLead); err != nil {
			return nil, fmt.Errorf("update crm lead: %w", err)
		}
	} else {
		crmID, err = h.crm.CreateLead(ctx, crmLead)
		if err != nil {
			return nil, fmt.Errorf("create crm lead: %w", err)
		}
	}

	if err := h.repo.SetCRMID(ctx, lead.ID, crmID); err != nil {
		return nil, fmt.Errorf("record crm id: %w", err)
	}

	h.logger.Info("lead synced to crm", map[string]interface{}{
		"leadId": lead.ID,
		"crmId":  crmID,
	})
	return &Output{LeadID: lead.ID, CRMID: crmID, Synced: true}, nil
}

func (h *Handler) toCRMLead(lead *models.Lead) *zoho.Lead {
	first, last := splitName(lead.Contact.Name)

	crmLead := &zoho.Lead{
		Email:          lead.Contact.Email,
		FirstName:      first,
		LastName:       last,
		Phone:          lead.Contact.Phone,
		Source:         h.config.LeadSource,
		RaioxScore:     lead.Score,
		LeadTier:       string(lead.Tier),
		ScoringVariant: lead.Variant,
	}
	if lead.Result != nil && len(lead.Result.RecommendedCodes) > 0 {
		crmLead.RecommendedVisa = lead.Result.RecommendedCodes[0]
	}
	return crmLead
}

// splitName maps a free-form name onto Zoho's first/last fields. Last name
// is mandatory in the Leads module, so single names land there.
func splitName(name string) (first, last string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", "—"
	case 1:
		return "", parts[0]
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
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
