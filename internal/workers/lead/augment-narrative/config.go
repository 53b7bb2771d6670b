// internal/workers/lead/augment-narrative/config.go
package augmentnarrative

import "time"

type Config struct {
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	MaxTokens  int
}

func LoadConfig() *Config {
	return &Config{
		Model:      "gpt-4o-mini",
		Timeout:    20 * time.Second,
		MaxRetries: 2,
		MaxTokens:  600,
	}
}
