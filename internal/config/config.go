package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token       string  `yaml:"token"`
	Username    string  `yaml:"username"`
	AdminChatID int64   `yaml:"admin_chat_id"` // destination for completed applications
	AdminIDs    []int64 `yaml:"admin_ids"`     // optional moderator allow-list; empty honors any presser
	Workers     int     `yaml:"workers"`       // webhook update workers
}

type WebhookConfig struct {
	BaseURL string `yaml:"base_url"` // externally reachable address, e.g. https://bot.example.com
	Path    string `yaml:"path"`
	Port    int    `yaml:"port"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type RedisConfig struct {
	URL      string        `yaml:"url"` // empty keeps sessions in process memory
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"` // abandoned-session expiry
}

type DatabaseConfig struct {
	URL string `yaml:"url"` // empty keeps the submission archive in process memory
}

type Config struct {
	Bot      BotConfig      `yaml:"bot"`
	Webhook  WebhookConfig  `yaml:"webhook"`
	Log      LogConfig      `yaml:"log"`
	Redis    RedisConfig    `yaml:"redis"`
	Database DatabaseConfig `yaml:"database"`
	Lang     string         `yaml:"lang"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(configPath string, dev bool) (*Config, error) {
	b, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Webhook.Path == "" {
		cfg.Webhook.Path = "/webhook"
	}
	if !strings.HasPrefix(cfg.Webhook.Path, "/") {
		cfg.Webhook.Path = "/" + cfg.Webhook.Path
	}
	if cfg.Webhook.Port <= 0 {
		cfg.Webhook.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Redis.TTL <= 0 {
		// Give users 15 minutes to finish an abandoned questionnaire.
		cfg.Redis.TTL = 15 * time.Minute
	}
	if cfg.Lang == "" {
		cfg.Lang = "en"
	}

	// Minimal validation: these three cannot be defaulted.
	if cfg.Bot.Token == "" {
		return nil, errors.New("bot.token is required")
	}
	if cfg.Bot.AdminChatID == 0 {
		return nil, errors.New("bot.admin_chat_id is required")
	}
	if cfg.Webhook.BaseURL == "" {
		return nil, errors.New("webhook.base_url is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

// WebhookURL is the full address registered with Telegram.
func (c *Config) WebhookURL() string {
	return strings.TrimSuffix(c.Webhook.BaseURL, "/") + c.Webhook.Path
}
