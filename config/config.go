package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	RateLimit     RateLimitConfig
	Sanitizer     SanitizerConfig
	SMTP          SMTPConfig
	Delivery      DeliveryConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
	Profiling     ProfilingConfig
}

type ServerConfig struct {
	Port           string
	GinMode        string
	AppEnv         string
	BaseURL        string
	AllowedOrigins []string
}

type RateLimitConfig struct {
	// MaxRequests is the number of submissions allowed per client per window
	MaxRequests int `validate:"min=1"`
	// WindowMinutes is the fixed-window span for the submission gate
	WindowMinutes int `validate:"min=1"`
	// SweepIntervalMinutes controls how often expired records are purged
	SweepIntervalMinutes int `validate:"min=1"`
}

type SanitizerConfig struct {
	// MaxFieldLength caps every free-text field after trimming and stripping
	MaxFieldLength int `validate:"min=1"`
	// StripSemicolon controls whether ';' joins '<' and '>' on the denylist
	StripSemicolon bool
}

type SMTPConfig struct {
	Host        string
	Port        int    `validate:"min=0,max=65535"`
	Username    string
	Password    string
	UseSSL      bool
	FromAddress string `validate:"omitempty,email"`
	FromName    string
	ToAddress   string `validate:"omitempty,email"`
}

type DeliveryConfig struct {
	// TimeoutSeconds bounds the render+send step of one submission
	TimeoutSeconds int `validate:"min=1"`
	SubjectPrefix  string
}

type LoggingConfig struct {
	Level string
	Dir   string
}

type ObservabilityConfig struct {
	ExporterEndpoint  string
	ServiceName       string
	ServiceNamespace  string
	ServiceVersion    string
	ServiceInstanceID string
}

type ProfilingConfig struct {
	Enabled               bool
	Endpoint              string
	AppName               string
	SampleTypes           string
	UploadIntervalSeconds int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("BASE_URL", "http://localhost:8080")
	v.SetDefault("ALLOWED_CORS_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DIR", "")
	v.SetDefault("RATE_LIMIT_MAX_REQUESTS", 3)
	v.SetDefault("RATE_LIMIT_WINDOW_MINUTES", 15)
	v.SetDefault("RATE_LIMIT_SWEEP_INTERVAL_MINUTES", 5)
	v.SetDefault("SANITIZER_MAX_FIELD_LENGTH", 1000)
	v.SetDefault("SANITIZER_STRIP_SEMICOLON", true)
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USE_SSL", false)
	v.SetDefault("MAIL_FROM_NAME", "Website Contact Form")
	v.SetDefault("MAIL_SUBJECT_PREFIX", "New contact form submission")
	v.SetDefault("DELIVERY_TIMEOUT_SECONDS", 30)
	v.SetDefault("O11Y_EXPORTER_ENDPOINT", "")
	v.SetDefault("O11Y_SERVICE_NAME", "formgate-api")
	v.SetDefault("O11Y_SERVICE_NAMESPACE", "formgate")
	v.SetDefault("O11Y_SERVICE_VERSION", "1.0.0")
	v.SetDefault("O11Y_PROFILING_ENABLED", false)
	v.SetDefault("O11Y_PROFILING_APP_NAME", "formgate-api")
	v.SetDefault("O11Y_PROFILING_SAMPLE_TYPES", "cpu,alloc_space,alloc_objects,goroutines,mutex,block")
	v.SetDefault("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS", 15)

	// Automatically read environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	_ = v.ReadInConfig() //nolint:errcheck // Ignore error if .env file doesn't exist

	// Parse allowed CORS origins (comma-separated)
	allowedOrigins := []string{}
	originsStr := v.GetString("ALLOWED_CORS_ORIGINS")
	if originsStr != "" {
		for _, origin := range strings.Split(originsStr, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins = append(allowedOrigins, origin)
			}
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			GinMode:        v.GetString("GIN_MODE"),
			AppEnv:         v.GetString("APP_ENV"),
			BaseURL:        v.GetString("BASE_URL"),
			AllowedOrigins: allowedOrigins,
		},
		RateLimit: RateLimitConfig{
			MaxRequests:          v.GetInt("RATE_LIMIT_MAX_REQUESTS"),
			WindowMinutes:        v.GetInt("RATE_LIMIT_WINDOW_MINUTES"),
			SweepIntervalMinutes: v.GetInt("RATE_LIMIT_SWEEP_INTERVAL_MINUTES"),
		},
		Sanitizer: SanitizerConfig{
			MaxFieldLength: v.GetInt("SANITIZER_MAX_FIELD_LENGTH"),
			StripSemicolon: v.GetBool("SANITIZER_STRIP_SEMICOLON"),
		},
		SMTP: SMTPConfig{
			Host:        v.GetString("SMTP_HOST"),
			Port:        v.GetInt("SMTP_PORT"),
			Username:    v.GetString("SMTP_USERNAME"),
			Password:    v.GetString("SMTP_PASSWORD"),
			UseSSL:      v.GetBool("SMTP_USE_SSL"),
			FromAddress: v.GetString("MAIL_FROM_ADDRESS"),
			FromName:    v.GetString("MAIL_FROM_NAME"),
			ToAddress:   v.GetString("MAIL_TO_ADDRESS"),
		},
		Delivery: DeliveryConfig{
			TimeoutSeconds: v.GetInt("DELIVERY_TIMEOUT_SECONDS"),
			SubjectPrefix:  v.GetString("MAIL_SUBJECT_PREFIX"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
			Dir:   v.GetString("LOG_DIR"),
		},
		Observability: ObservabilityConfig{
			ExporterEndpoint:  v.GetString("O11Y_EXPORTER_ENDPOINT"),
			ServiceName:       v.GetString("O11Y_SERVICE_NAME"),
			ServiceNamespace:  v.GetString("O11Y_SERVICE_NAMESPACE"),
			ServiceVersion:    v.GetString("O11Y_SERVICE_VERSION"),
			ServiceInstanceID: v.GetString("O11Y_SERVICE_INSTANCE_ID"),
		},
		Profiling: ProfilingConfig{
			Enabled:               v.GetBool("O11Y_PROFILING_ENABLED"),
			Endpoint:              v.GetString("O11Y_PROFILING_ENDPOINT"),
			AppName:               v.GetString("O11Y_PROFILING_APP_NAME"),
			SampleTypes:           v.GetString("O11Y_PROFILING_SAMPLE_TYPES"),
			UploadIntervalSeconds: v.GetInt("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the loaded configuration for values that would only fail
// deep inside a request path otherwise.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Mail delivery needs a complete SMTP block once a host is configured.
	// With no host the service runs with a log-only sender (local testing).
	if c.SMTP.Host != "" {
		if c.SMTP.FromAddress == "" {
			return fmt.Errorf("invalid configuration: MAIL_FROM_ADDRESS is required when SMTP_HOST is set")
		}
		if c.SMTP.ToAddress == "" {
			return fmt.Errorf("invalid configuration: MAIL_TO_ADDRESS is required when SMTP_HOST is set")
		}
		if c.SMTP.Port == 0 {
			return fmt.Errorf("invalid configuration: SMTP_PORT is required when SMTP_HOST is set")
		}
	}

	return nil
}

// IsDevelopment returns true when running in a development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development" || c.Server.GinMode == "debug"
}

// MailDeliveryEnabled reports whether a real SMTP transport is configured
func (c *Config) MailDeliveryEnabled() bool {
	return c.SMTP.Host != ""
}

// RateLimitWindow returns the submission window as a duration
func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimit.WindowMinutes) * time.Minute
}

// DeliveryTimeout returns the render+send budget as a duration
func (c *Config) DeliveryTimeout() time.Duration {
	return time.Duration(c.Delivery.TimeoutSeconds) * time.Second
}
