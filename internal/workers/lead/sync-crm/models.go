// internal/workers/lead/sync-crm/models.go
package synccrm

type Input struct {
	LeadID string `json:"leadId"`
}

type Output struct {
	LeadID string `json:"leadId"`
	CRMID  string `json:"crmId"`
	Synced bool   `json:"synced"`
}
