// internal/models/lead.go
package models

import (
	"time"

	"raiox-platform/internal/scoring"
)

// Contact is the identification block submitted with a questionnaire.
type Contact struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Source  string `json:"source,omitempty"`
	Consent bool   `json:"consent"`
}

// Questionnaire variants, matching the scoring core's result labels. The
// business variant is branded "raiox" on the public site but stored under
// its scoring name.
const (
	VariantBusiness    = scoring.VariantBusiness
	VariantImmigration = scoring.VariantImmigration
)

// Lead is one captured prospect: contact data, the raw answers as
// submitted, and the scoring result computed from them. The stored answers
// allow re-scoring after rule changes.
type Lead struct {
	ID         string                 `json:"id"`
	Contact    Contact                `json:"contact"`
	Variant    string                 `json:"variant"`
	Answers    map[string]interface{} `json:"answers"`
	Score      int                    `json:"score"`
	Tier       scoring.LeadTier       `json:"tier"`
	Result     *scoring.Result        `json:"result,omitempty"`
	Narrative  string                 `json:"narrative,omitempty"`
	CRMID      string                 `json:"crmId,omitempty"`
	ProcessKey int64                  `json:"processKey,omitempty"`
	CreatedAt  time.Time              `json:"createdAt"`
	UpdatedAt  time.Time              `json:"updatedAt"`
}

// LeadSummary is the list-view projection of a lead for the back office.
type LeadSummary struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	Variant   string           `json:"variant"`
	Score     int              `json:"score"`
	Tier      scoring.LeadTier `json:"tier"`
	CreatedAt time.Time        `json:"createdAt"`
}

// LeadFilter narrows back-office listings.
type LeadFilter struct {
	Tier    scoring.LeadTier `json:"tier,omitempty"`
	Variant string           `json:"variant,omitempty"`
	Limit   int              `json:"limit,omitempty"`
	Offset  int              `json:"offset,omitempty"`
}

// AuditEntry records one event in a lead's lifecycle.
type AuditEntry struct {
	ID        int64     `json:"id"`
	LeadID    string    `json:"leadId"`
	Event     string    `json:"event"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Audit event names written by the repository and the pipeline workers.
const (
	AuditLeadCaptured      = "lead_captured"
	AuditNarrativeAttached = "narrative_attached"
	AuditSalesNotified     = "sales_notified"
	AuditIndexed           = "search_indexed"
	AuditCRMSynced         = "crm_synced"
)
