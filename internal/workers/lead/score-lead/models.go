// internal/workers/lead/score-lead/models.go
package scorelead

import "raiox-platform/internal/scoring"

type Input struct {
	LeadID  string                 `json:"leadId"`
	Variant string                 `json:"variant"`
	Answers map[string]interface{} `json:"answers"`
}

type Output struct {
	LeadID string          `json:"leadId"`
	Score  int             `json:"score"`
	Tier   string          `json:"tier"`
	Result *scoring.Result `json:"result"`
}
