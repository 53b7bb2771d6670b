// internal/workers/lead/sync-crm/config.go
package synccrm

import "time"

type Config struct {
	Timeout    time.Duration
	LeadSource string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:    20 * time.Second,
		LeadSource: "raiox",
	}
}
