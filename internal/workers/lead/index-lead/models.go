// internal/workers/lead/index-lead/models.go
package indexlead

type Input struct {
	LeadID string `json:"leadId"`
}

type Output struct {
	LeadID  string `json:"leadId"`
	Indexed bool   `json:"indexed"`
}
