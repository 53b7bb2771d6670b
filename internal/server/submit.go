package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"
	"go.opentelemetry.io/otel"

	"raiox-platform/internal/common/errors"
	"raiox-platform/internal/common/metrics"
	"raiox-platform/internal/common/validation"
	"raiox-platform/internal/models"
	"raiox-platform/internal/scoring"
)

// submissionSchema is the wire contract for both questionnaire variants.
// Answers are deliberately loose here; the scoring normalizer owns their
// semantics and tolerates anything JSON-shaped.
const submissionSchema = `{
	"type": "object",
	"required": ["contact", "answers"],
	"properties": {
		"contact": {
			"type": "object",
			"required": ["name", "email", "consent"],
			"properties": {
				"name":    {"type": "string", "minLength": 2},
				"email":   {"type": "string", "minLength": 5},
				"phone":   {"type": "string"},
				"source":  {"type": "string"},
				"consent": {"type": "boolean"}
			}
		},
		"answers": {"type": "object"}
	}
}`

var submissionSchemaLoader = gojsonschema.NewStringLoader(submissionSchema)

type submissionRequest struct {
	Contact models.Contact         `json:"contact"`
	Answers map[string]interface{} `json:"answers"`
}

type submissionResponse struct {
	LeadID string          `json:"leadId"`
	Result *scoring.Result `json:"result"`
}

// handleSubmit scores synchronously and answers immediately; persistence
// and the Camunda pipeline run detached so their failure never costs the
// visitor their result.
func (s *Server) handleSubmit(variant string, newScorer func() scoring.Scorer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var raw json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		result, err := gojsonschema.Validate(submissionSchemaLoader, gojsonschema.NewBytesLoader(raw))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if !result.Valid() {
			msgs := make([]string, 0, len(result.Errors()))
			for _, desc := range result.Errors() {
				msgs = append(msgs, desc.String())
			}
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":   "invalid submission payload",
				"details": msgs,
			})
			return
		}

		var req submissionRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if !validation.ValidateEmail(req.Contact.Email) {
			writeError(w, http.StatusBadRequest, "invalid email address")
			return
		}
		if !validation.ValidatePhone(req.Contact.Phone) {
			writeError(w, http.StatusBadRequest, "invalid phone number")
			return
		}
		if !req.Contact.Consent {
			writeError(w, http.StatusBadRequest, "consent is required")
			return
		}

		answers, err := scoring.Normalize(req.Answers)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		scoreStart := time.Now()
		scoreResult := newScorer().Score(answers)
		metrics.ScoringDuration.WithLabelValues(variant).Observe(time.Since(scoreStart).Seconds())
		metrics.LeadsScored.WithLabelValues(variant, string(scoreResult.Tier)).Inc()

		lead := &models.Lead{
			ID:      uuid.NewString(),
			Contact: req.Contact,
			Variant: variant,
			Answers: req.Answers,
			Score:   scoreResult.OverallScore,
			Tier:    scoreResult.Tier,
			Result:  scoreResult,
		}

		go s.dispatchLead(lead)

		writeJSON(w, http.StatusOK, submissionResponse{LeadID: lead.ID, Result: scoreResult})
	}
}

// dispatchLead persists the lead and starts the async pipeline, detached
// from the request. Each step is best-effort.
func (s *Server) dispatchLead(lead *models.Lead) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	ctx, span := otel.Tracer("leadgen-server").Start(ctx, "lead.dispatch")
	defer span.End()

	if err := s.store.Create(ctx, lead); err != nil {
		if stdErr, ok := err.(*errors.StandardError); ok && stdErr.Code == errors.ErrCodeDuplicateLead {
			metrics.LeadsDuplicate.Inc()
		}
		s.log.Warn("lead persistence failed", map[string]interface{}{
			"leadId": lead.ID,
			"error":  err.Error(),
		})
		return
	}
	metrics.LeadsPersisted.WithLabelValues(lead.Variant).Inc()

	if s.pipeline == nil {
		return
	}
	key, err := s.pipeline.StartProcess(ctx, s.cfg.Camunda.ProcessID, map[string]interface{}{
		"leadId":  lead.ID,
		"variant": lead.Variant,
		"answers": lead.Answers,
		"score":   lead.Score,
		"tier":    string(lead.Tier),
	})
	if err != nil {
		s.log.Warn("lead pipeline start failed", map[string]interface{}{
			"leadId": lead.ID,
			"error":  err.Error(),
		})
		return
	}
	s.log.Info("lead pipeline started", map[string]interface{}{
		"leadId":     lead.ID,
		"processKey": key,
	})
}
