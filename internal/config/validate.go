package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks high-impact runtime configuration constraints.
func (c Config) Validate() error {
	mode := strings.ToLower(strings.TrimSpace(c.Mode))
	if mode != "" && mode != "live" && mode != "demo" {
		return fmt.Errorf("mode must be 'live' or 'demo', got %q", c.Mode)
	}

	u, err := url.Parse(c.BackendBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend_base_url must be an absolute URL, got %q", c.BackendBaseURL)
	}

	if c.ReadTimeout <= 0 {
		return fmt.Errorf("read_timeout must be > 0, got %v", c.ReadTimeout)
	}
	if c.MutateTimeout <= 0 {
		return fmt.Errorf("mutate_timeout must be > 0, got %v", c.MutateTimeout)
	}
	if c.TradesRefreshInterval <= 0 {
		return fmt.Errorf("trades_refresh_interval must be > 0, got %v", c.TradesRefreshInterval)
	}
	if c.MetricsRefreshInterval <= 0 {
		return fmt.Errorf("metrics_refresh_interval must be > 0, got %v", c.MetricsRefreshInterval)
	}
	if c.OpportunitiesRefreshInterval <= 0 {
		return fmt.Errorf("opportunities_refresh_interval must be > 0, got %v", c.OpportunitiesRefreshInterval)
	}
	if c.PerformanceDays <= 0 {
		return fmt.Errorf("performance_days must be > 0, got %d", c.PerformanceDays)
	}
	if c.SyncMinInterval < 0 {
		return fmt.Errorf("sync_min_interval must be >= 0, got %v", c.SyncMinInterval)
	}

	return nil
}
