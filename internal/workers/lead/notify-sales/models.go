// internal/workers/lead/notify-sales/models.go
package notifysales

type Input struct {
	LeadID  string `json:"leadId"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Variant string `json:"variant"`
	Score   int    `json:"score"`
	Tier    string `json:"tier"`
}

type Output struct {
	LeadID   string   `json:"leadId"`
	Notified bool     `json:"notified"`
	Channels []string `json:"channels"`
}
