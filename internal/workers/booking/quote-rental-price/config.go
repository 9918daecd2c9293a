// internal/workers/booking/quote-rental-price/config.go
package quoterentalprice

import (
	"time"

	"booking-dialogue/internal/common/config"
)

type Config struct {
	Enabled         bool          `mapstructure:"enabled"`
	MaxJobsActive   int           `mapstructure:"max_jobs_active"`
	Timeout         time.Duration `mapstructure:"timeout"`
	DefaultCurrency string        `mapstructure:"default_currency"`
}

func LoadConfig(appConfig *config.Config) *Config {
	cfg := &Config{
		Enabled:         true,
		MaxJobsActive:   5,
		Timeout:         5 * time.Second,
		DefaultCurrency: "HUF",
	}
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
