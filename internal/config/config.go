package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v4"
)

type OIDCProviderConfig struct {
	Id           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	IssuerURL    string   `yaml:"issuer_url"`
	RedirectURL  string   `yaml:"redirect_url"`
	Scopes       []string `yaml:"scopes"`
}

type NudgeConfig struct {
	Email          string `yaml:"email"`
	ThresholdHours int    `yaml:"threshold_hours"`
	Schedule       string `yaml:"schedule"`
}

type Config struct {
	ListenAddr string `yaml:"listen_addr"`
	DBPath     string `yaml:"db_path"`
	LogFormat  string `yaml:"log_format"`
	LogLevel   string `yaml:"log_level"`

	// client side settings, used by the CLI and the nudge command
	APIBaseURL string `yaml:"api_base_url"`
	AuthToken  string `yaml:"auth_token"`

	AuthEnabled   bool                 `yaml:"auth_enabled"`
	JWTSecret     string               `yaml:"jwt_secret"`
	OIDCProviders []OIDCProviderConfig `yaml:"oidc_providers"`

	Nudge NudgeConfig `yaml:"nudge"`
}

// Load reads the YAML config named by HABITBOARD_CONFIG, falling back to
// ./config.yaml.
func Load() (*Config, error) {
	path := os.Getenv("HABITBOARD_CONFIG")
	if path == "" {
		path = "config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "habitboard.db"
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "http://localhost:8080"
	}
	if cfg.Nudge.ThresholdHours == 0 {
		cfg.Nudge.ThresholdHours = 4
	}
	if cfg.AuthEnabled && cfg.JWTSecret == "" && len(cfg.OIDCProviders) == 0 {
		return nil, fmt.Errorf("auth_enabled requires jwt_secret or at least one oidc provider")
	}

	return &cfg, nil
}
