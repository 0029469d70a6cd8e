package config

import (
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// BackendBaseURL is the trading backend's API root. The default matches
	// a local backend; deployments override it.
	BackendBaseURL string `yaml:"backend_base_url"`

	// Mode selects live or demo backend endpoints.
	Mode     string `yaml:"mode"`
	LogLevel string `yaml:"log_level"`

	ReadTimeout   time.Duration `yaml:"read_timeout"`
	MutateTimeout time.Duration `yaml:"mutate_timeout"`

	TradesRefreshInterval        time.Duration `yaml:"trades_refresh_interval"`
	MetricsRefreshInterval       time.Duration `yaml:"metrics_refresh_interval"`
	OpportunitiesRefreshInterval time.Duration `yaml:"opportunities_refresh_interval"`
	HeartbeatInterval            time.Duration `yaml:"heartbeat_interval"`

	PerformanceDays int           `yaml:"performance_days"`
	SyncMinInterval time.Duration `yaml:"sync_min_interval"`

	Telegram TelegramConfig `yaml:"telegram"`
	API      APIConfig      `yaml:"api"`
}

type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}

type APIConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

func Default() Config {
	return Config{
		BackendBaseURL: "http://localhost:8000/api",
		Mode:           "live",
		LogLevel:       "info",

		ReadTimeout:   15 * time.Second,
		MutateTimeout: 20 * time.Second,

		TradesRefreshInterval:        30 * time.Second,
		MetricsRefreshInterval:       5 * time.Minute,
		OpportunitiesRefreshInterval: 5 * time.Minute,
		HeartbeatInterval:            30 * time.Second,

		PerformanceDays: 30,
		SyncMinInterval: time.Minute,

		API: APIConfig{
			Enabled: true,
			Addr:    ":8080",
		},
	}
}

func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv("DASHBOARD_BACKEND_URL")); v != "" {
		c.BackendBaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("DASHBOARD_MODE")); v != "" {
		c.Mode = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("DASHBOARD_API_ADDR")); v != "" {
		c.API.Addr = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("DASHBOARD_TELEGRAM_ENABLED"); v != "" {
		c.Telegram.Enabled = strings.EqualFold(v, "true") || v == "1"
	}
}

// Demo reports whether the config routes to simulated backend endpoints.
func (c Config) Demo() bool {
	return strings.EqualFold(strings.TrimSpace(c.Mode), "demo")
}
