package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds every runtime setting of the storefront.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Payments  PaymentsConfig  `yaml:"payments"`
	Email     EmailConfig     `yaml:"email"`
	Media     MediaConfig     `yaml:"media"`
	AI        AIConfig        `yaml:"ai"`
	Messaging MessagingConfig `yaml:"messaging"`
	Cache     CacheConfig     `yaml:"cache"`
	Inventory InventoryConfig `yaml:"inventory"`
	Marketing MarketingConfig `yaml:"marketing"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type HTTPConfig struct {
	Addr            string   `yaml:"addr"`
	PublicURL       string   `yaml:"public_url"`
	CORSOrigins     []string `yaml:"cors_origins"`
	ShutdownTimeout string   `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type AuthConfig struct {
	Secret   string `yaml:"secret"`
	TokenTTL string `yaml:"token_ttl"`
}

type PaymentsConfig struct {
	StripeSecretKey     string `yaml:"stripe_secret_key"`
	StripeWebhookSecret string `yaml:"stripe_webhook_secret"`
	Currency            string `yaml:"currency"`
}

type EmailConfig struct {
	ResendAPIKey string `yaml:"resend_api_key"`
	From         string `yaml:"from"`
}

type MediaConfig struct {
	CloudinaryURL string `yaml:"cloudinary_url"`
	Folder        string `yaml:"folder"`
}

type AIConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type MessagingConfig struct {
	KafkaBrokers []string `yaml:"kafka_brokers"`
}

type CacheConfig struct {
	RedisURL string `yaml:"redis_url"`
}

type InventoryConfig struct {
	LowStockThreshold int `yaml:"low_stock_threshold"`
}

type MarketingConfig struct {
	SchedulerInterval string `yaml:"scheduler_interval"`
	CampaignWorkers   int    `yaml:"campaign_workers"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the settings used when nothing overrides them.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Addr:            ":8080",
			PublicURL:       "http://localhost:3000",
			CORSOrigins:     []string{"*"},
			ShutdownTimeout: "15s",
		},
		Auth:      AuthConfig{TokenTTL: "24h"},
		Payments:  PaymentsConfig{Currency: "usd"},
		Email:     EmailConfig{From: "La Pesqueria Outfitters <orders@lapesqueria.com>"},
		Media:     MediaConfig{Folder: "lapesqueria"},
		AI:        AIConfig{Model: "gemini-2.0-flash"},
		Inventory: InventoryConfig{LowStockThreshold: 10},
		Marketing: MarketingConfig{SchedulerInterval: "1m", CampaignWorkers: 5},
		Logging:   LoggingConfig{Level: "info"},
	}
}

// Load reads an optional .env file and YAML file, then applies environment overrides.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	list := func(key string, dst *[]string) {
		if v := os.Getenv(key); v != "" {
			*dst = splitList(v)
		}
	}

	str("HTTP_ADDR", &c.HTTP.Addr)
	str("PUBLIC_URL", &c.HTTP.PublicURL)
	list("CORS_ORIGINS", &c.HTTP.CORSOrigins)
	str("DATABASE_URL", &c.Database.URL)
	str("AUTH_SECRET", &c.Auth.Secret)
	str("STRIPE_SECRET_KEY", &c.Payments.StripeSecretKey)
	str("STRIPE_WEBHOOK_SECRET", &c.Payments.StripeWebhookSecret)
	str("STRIPE_CURRENCY", &c.Payments.Currency)
	str("RESEND_API_KEY", &c.Email.ResendAPIKey)
	str("EMAIL_FROM", &c.Email.From)
	str("CLOUDINARY_URL", &c.Media.CloudinaryURL)
	str("GOOGLE_GENERATIVE_AI_KEY", &c.AI.APIKey)
	str("AI_MODEL", &c.AI.Model)
	list("KAFKA_BROKERS", &c.Messaging.KafkaBrokers)
	str("REDIS_URL", &c.Cache.RedisURL)
	str("LOG_LEVEL", &c.Logging.Level)

	if v := os.Getenv("LOW_STOCK_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Inventory.LowStockThreshold = n
		}
	}
}

// Validate checks the settings required to serve traffic.
func (c *Config) Validate() error {
	var errs []error
	if c.Database.URL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.Auth.Secret == "" {
		errs = append(errs, errors.New("AUTH_SECRET is required"))
	}
	if _, err := time.ParseDuration(c.Auth.TokenTTL); err != nil {
		errs = append(errs, fmt.Errorf("invalid auth token_ttl %q", c.Auth.TokenTTL))
	}
	return errors.Join(errs...)
}

// TokenTTL returns the session lifetime.
func (c *Config) TokenTTL() time.Duration {
	return parseDuration(c.Auth.TokenTTL, 24*time.Hour)
}

// ShutdownTimeout returns how long graceful shutdown may take.
func (c *Config) ShutdownTimeout() time.Duration {
	return parseDuration(c.HTTP.ShutdownTimeout, 15*time.Second)
}

// SchedulerInterval returns the social post scheduler tick.
func (c *Config) SchedulerInterval() time.Duration {
	return parseDuration(c.Marketing.SchedulerInterval, time.Minute)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
