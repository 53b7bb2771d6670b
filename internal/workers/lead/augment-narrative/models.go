// internal/workers/lead/augment-narrative/models.go
package augmentnarrative

import "raiox-platform/internal/scoring"

type Input struct {
	LeadID  string          `json:"leadId"`
	Variant string          `json:"variant"`
	Score   int             `json:"score"`
	Tier    string          `json:"tier"`
	Result  *scoring.Result `json:"result,omitempty"`
}

type Output struct {
	LeadID    string `json:"leadId"`
	Augmented bool   `json:"augmented"`
	Narrative string `json:"narrative,omitempty"`
}
