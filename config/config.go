// File: /config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const defaultJWTSecret = "your-secret-key"

type Config struct {
	Port           string `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"`
	DatabaseDriver string `mapstructure:"DATABASE_DRIVER"`
	DatabaseURL    string `mapstructure:"DATABASE_URL"`
	RedisURL       string `mapstructure:"REDIS_URL"`
	JWTSecret      string `mapstructure:"JWT_SECRET"`
	AdminEmails    string `mapstructure:"ADMIN_EMAILS"`
	Timezone       string `mapstructure:"TIMEZONE"`
	LogLevel       string `mapstructure:"LOG_LEVEL"`
	CORSOrigins    string `mapstructure:"CORS_ORIGINS"`

	// Object storage
	StorageEndpoint  string `mapstructure:"STORAGE_ENDPOINT"`
	StorageAccessKey string `mapstructure:"STORAGE_ACCESS_KEY"`
	StorageSecretKey string `mapstructure:"STORAGE_SECRET_KEY"`
	StorageUseSSL    bool   `mapstructure:"STORAGE_USE_SSL"`
	StoragePublicURL string `mapstructure:"STORAGE_PUBLIC_URL"`
	PhotoBucket      string `mapstructure:"PHOTO_BUCKET"`
	CoverBucket      string `mapstructure:"COVER_BUCKET"`

	// Registration intake and admin
	DefaultEventSlug   string        `mapstructure:"DEFAULT_EVENT_SLUG"`
	AtomicActivation   bool          `mapstructure:"ATOMIC_ACTIVATION"`
	RequestTimeout     time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	SubmissionTimeout  time.Duration `mapstructure:"SUBMISSION_TIMEOUT"`
	RateLimitPerMinute int           `mapstructure:"RATE_LIMIT_PER_MINUTE"`
	AuditInterval      time.Duration `mapstructure:"AUDIT_INTERVAL"`

	// Email Configuration
	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	FromEmail    string `mapstructure:"FROM_EMAIL"`
	FromName     string `mapstructure:"FROM_NAME"`
}

var defaults = map[string]interface{}{
	"PORT":                  "8080",
	"APP_ENV":               "development",
	"DATABASE_DRIVER":       "mysql",
	"DATABASE_URL":          "user:password@tcp(localhost:3306)/convoy?charset=utf8mb4&parseTime=True&loc=Local",
	"REDIS_URL":             "",
	"JWT_SECRET":            defaultJWTSecret,
	"ADMIN_EMAILS":          "",
	"TIMEZONE":              "Local",
	"LOG_LEVEL":             "info",
	"CORS_ORIGINS":          "*",
	"STORAGE_ENDPOINT":      "localhost:9000",
	"STORAGE_ACCESS_KEY":    "minioadmin",
	"STORAGE_SECRET_KEY":    "minioadmin",
	"STORAGE_USE_SSL":       false,
	"STORAGE_PUBLIC_URL":    "",
	"PHOTO_BUCKET":          "car-photos",
	"COVER_BUCKET":          "blog-covers",
	"DEFAULT_EVENT_SLUG":    "monterey-car-week-2025",
	"ATOMIC_ACTIVATION":     true,
	"REQUEST_TIMEOUT":       "30s",
	"SUBMISSION_TIMEOUT":    "60s",
	"RATE_LIMIT_PER_MINUTE": 30,
	"AUDIT_INTERVAL":        "5m",
	"SMTP_HOST":             "sandbox.smtp.mailtrap.io",
	"SMTP_PORT":             2525,
	"SMTP_USERNAME":         "",
	"SMTP_PASSWORD":         "",
	"FROM_EMAIL":            "noreply@convoyforacause.org",
	"FROM_NAME":             "Convoy for a Cause",
}

// Load reads config.yml (optional) and the environment. Environment wins.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks required values and production-only rules.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}

	switch c.DatabaseDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("DATABASE_DRIVER %q is not supported (mysql, postgres, sqlite)", c.DatabaseDriver)
	}

	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT must be positive")
	}
	if c.SubmissionTimeout <= 0 {
		return errors.New("SUBMISSION_TIMEOUT must be positive")
	}
	if c.PhotoBucket == "" || c.CoverBucket == "" {
		return errors.New("PHOTO_BUCKET and COVER_BUCKET are required")
	}

	if c.IsProduction() && c.JWTSecret == defaultJWTSecret {
		return errors.New("JWT_SECRET must be changed from the default value in production")
	}

	if _, err := c.Location(); err != nil {
		return fmt.Errorf("TIMEZONE: %w", err)
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

func splitList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// AdminEmailList returns ADMIN_EMAILS split, trimmed and lowercased.
func (c *Config) AdminEmailList() []string {
	emails := splitList(c.AdminEmails)
	for i := range emails {
		emails[i] = strings.ToLower(emails[i])
	}
	return emails
}

// CORSOriginList returns the allowed browser origins; "*" allows any.
func (c *Config) CORSOriginList() []string {
	return splitList(c.CORSOrigins)
}

// Location resolves TIMEZONE for calendar-date rendering.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}
