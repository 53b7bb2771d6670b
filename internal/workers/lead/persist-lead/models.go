// internal/workers/lead/persist-lead/models.go
package persistlead

import (
	"raiox-platform/internal/models"
	"raiox-platform/internal/scoring"
)

type Input struct {
	LeadID  string                 `json:"leadId"`
	Variant string                 `json:"variant"`
	Contact models.Contact         `json:"contact"`
	Answers map[string]interface{} `json:"answers"`
	Score   int                    `json:"score"`
	Tier    string                 `json:"tier"`
	Result  *scoring.Result        `json:"result,omitempty"`
}

type Output struct {
	LeadID    string `json:"leadId"`
	Persisted bool   `json:"persisted"`
	Duplicate bool   `json:"duplicate"`
}
