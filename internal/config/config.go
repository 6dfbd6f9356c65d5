package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName              string        `mapstructure:"app_name"`
	Env                  string        `mapstructure:"app_env"`
	LogLevel             string        `mapstructure:"log_level"`
	AuthBaseURL          string        `mapstructure:"auth_base_url"`
	StrictResponses      bool          `mapstructure:"strict_responses"`
	ReportDir            string        `mapstructure:"report_dir"`
	PublishersFile       string        `mapstructure:"publishers_file"`
	ProbeIntervalSeconds int64         `mapstructure:"probe_interval"`
	ProbeInterval        time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "authprobe")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("auth_base_url", "http://localhost:8080")
	v.SetDefault("strict_responses", true)
	v.SetDefault("report_dir", "./allure-results")
	v.SetDefault("publishers_file", "")
	v.SetDefault("probe_interval", 0) // seconds; 0 runs once

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.AuthBaseURL = strings.TrimSpace(cfg.AuthBaseURL)
	u, err := url.Parse(cfg.AuthBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid auth_base_url %q (must be an absolute http(s) URL)", cfg.AuthBaseURL)
	}

	if cfg.ProbeIntervalSeconds < 0 {
		return nil, fmt.Errorf("invalid probe_interval (must be zero or positive seconds)")
	}
	cfg.ProbeInterval = time.Duration(cfg.ProbeIntervalSeconds) * time.Second

	return &cfg, nil
}
