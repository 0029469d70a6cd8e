package config

import (
	"fmt"
	"strings"
	"time"
)

// ApplyModePreset applies a deployment preset to the config.
// Supported presets:
// - demo:   simulated backend endpoints, faster refreshes for demos
// - live:   live endpoints using configured values
// - local:  live endpoints against a local backend, no sync throttle
func ApplyModePreset(cfg *Config, preset string) error {
	p := strings.ToLower(strings.TrimSpace(preset))
	if p == "" {
		return nil
	}

	switch p {
	case "demo":
		cfg.Mode = "demo"
		clampMaxDuration(&cfg.TradesRefreshInterval, 10*time.Second)
		clampMaxDuration(&cfg.MetricsRefreshInterval, time.Minute)
		clampMaxDuration(&cfg.OpportunitiesRefreshInterval, time.Minute)
	case "live":
		cfg.Mode = "live"
	case "local":
		cfg.Mode = "live"
		cfg.BackendBaseURL = "http://localhost:8000/api"
		cfg.SyncMinInterval = 0
	default:
		return fmt.Errorf("unknown mode preset %q (supported: demo|live|local)", preset)
	}

	return nil
}

func clampMaxDuration(v *time.Duration, max time.Duration) {
	if max <= 0 {
		return
	}
	if *v <= 0 || *v > max {
		*v = max
	}
}
