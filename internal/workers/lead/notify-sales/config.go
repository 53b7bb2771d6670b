// internal/workers/lead/notify-sales/config.go
package notifysales

import (
	"time"

	"raiox-platform/internal/common/config"
)

type Config struct {
	Timeout       time.Duration
	Notifications config.NotificationConfig
}

func LoadConfig(notifications config.NotificationConfig) *Config {
	return &Config{
		Timeout:       15 * time.Second,
		Notifications: notifications,
	}
}
