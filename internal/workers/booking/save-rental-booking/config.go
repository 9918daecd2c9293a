// internal/workers/booking/save-rental-booking/config.go
package saverentalbooking

import (
	"time"

	"booking-dialogue/internal/common/config"
)

type Config struct {
	Enabled       bool
	MaxJobsActive int
	Timeout       time.Duration
}

func LoadConfig(appConfig *config.Config) *Config {
	cfg := &Config{Enabled: true, MaxJobsActive: 5, Timeout: 10 * time.Second}
	if appConfig == nil {
		return cfg
	}
	w := config.GetWorkerConfig(appConfig, TaskType)
	cfg.Enabled = w.Enabled
	if w.MaxJobsActive > 0 {
		cfg.MaxJobsActive = w.MaxJobsActive
	}
	if w.Timeout > 0 {
		cfg.Timeout = config.GetDuration(w.Timeout)
	}
	return cfg
}
