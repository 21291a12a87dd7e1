package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// ClientConfig 是 rosterctl 的配置，先读 YAML 文件，再用环境变量覆盖
type ClientConfig struct {
	BaseURL      string        `yaml:"base_url" env:"BASE_URL"`
	TokenFile    string        `yaml:"token_file" env:"TOKEN_FILE"`
	Timeout      time.Duration `yaml:"timeout" env:"TIMEOUT"`
	UpcomingDays int           `yaml:"upcoming_days" env:"UPCOMING_DAYS"`
	Categories   []string      `yaml:"categories" env:"CATEGORIES" envSeparator:","`
}

const (
	DefaultClientTimeout = 15 * time.Second
	DefaultUpcomingDays  = 5
)

func DefaultClientConfig() *ClientConfig {
	home, _ := os.UserHomeDir()
	return &ClientConfig{
		BaseURL:      "http://localhost:3000/admin",
		TokenFile:    filepath.Join(home, ".rosterctl", "token"),
		Timeout:      DefaultClientTimeout,
		UpcomingDays: DefaultUpcomingDays,
	}
}

func LoadClientConfig(path string) (*ClientConfig, error) {
	cfg := DefaultClientConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
			// 没有配置文件时使用默认值
		default:
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "ROSTERCTL_"}); err != nil {
		return nil, err
	}

	if cfg.BaseURL == "" {
		return nil, errors.New("base_url must not be empty")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultClientTimeout
	}
	if cfg.UpcomingDays <= 0 {
		cfg.UpcomingDays = DefaultUpcomingDays
	}

	return cfg, nil
}
