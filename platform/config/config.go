// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTSecret() string
}

// AuthServiceConfig provides settings needed by the auth service.
type AuthServiceConfig interface {
	JWTConfig
	GetAccessTokenTTL() time.Duration
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSOrigins() []string
}

// DutyAPIConfig provides settings for the duty-roster feed and report API.
type DutyAPIConfig interface {
	GetDutyAPIBaseURL() string
	GetDutyAPILanguage() string
}

// GraphConfig provides settings for the social platform Graph API.
type GraphConfig interface {
	GetGraphBaseURL() string
}

// GeocodeConfig provides settings for the geocoding lookup.
type GeocodeConfig interface {
	GetGeocodeBaseURL() string
	GetGeocodeCountryCodes() string
}

// StorageConfig provides settings for MinIO S3-compatible storage.
type StorageConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetRosterImageBucket() string
	IsMinIOEnabled() bool
}

// RasterConfig provides settings for the PDF rasterizer.
type RasterConfig interface {
	GetConvertBinary() string
	GetRasterWorkDir() string
}

// SchedulerConfig provides settings for the asynq task scheduler.
type SchedulerConfig interface {
	GetRedisURL() string
	GetQueueName() string
}

// MailConfig provides settings for run-summary emails.
type MailConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetMailFrom() string
	GetMailTo() string
	IsMailEnabled() bool
}

// VaultConfig provides the key used to encrypt stored duty-feed tokens.
type VaultConfig interface {
	GetTokenVaultKey() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                 string
	HTTPAddr            string
	DatabaseURL         string
	JWTSecret           string
	AccessTokenTTL      time.Duration
	CORSOrigins         []string
	DutyAPIBaseURL      string
	DutyAPILanguage     string
	GraphBaseURL        string
	GeocodeBaseURL      string
	GeocodeCountryCodes string
	MinIOEndpoint       string
	MinIOAccessKey      string
	MinIOSecretKey      string
	MinIOUseSSL         bool
	RosterImageBucket   string
	ConvertBinary       string
	RasterWorkDir       string
	RedisURL            string
	QueueName           string
	SMTPHost            string
	SMTPPort            int
	SMTPUsername        string
	SMTPPassword        string
	MailFrom            string
	MailTo              string
	TokenVaultKey       string
}

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTSecret() string { return c.JWTSecret }

// AuthServiceConfig implementation
func (c *Config) GetAccessTokenTTL() time.Duration { return c.AccessTokenTTL }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }

// DutyAPIConfig implementation
func (c *Config) GetDutyAPIBaseURL() string  { return c.DutyAPIBaseURL }
func (c *Config) GetDutyAPILanguage() string { return c.DutyAPILanguage }

// GraphConfig implementation
func (c *Config) GetGraphBaseURL() string { return c.GraphBaseURL }

// GeocodeConfig implementation
func (c *Config) GetGeocodeBaseURL() string      { return c.GeocodeBaseURL }
func (c *Config) GetGeocodeCountryCodes() string { return c.GeocodeCountryCodes }

// StorageConfig implementation
func (c *Config) GetMinIOEndpoint() string     { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string    { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string    { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool         { return c.MinIOUseSSL }
func (c *Config) GetRosterImageBucket() string { return c.RosterImageBucket }
func (c *Config) IsMinIOEnabled() bool         { return c.MinIOEndpoint != "" }

// RasterConfig implementation
func (c *Config) GetConvertBinary() string { return c.ConvertBinary }
func (c *Config) GetRasterWorkDir() string { return c.RasterWorkDir }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string  { return c.RedisURL }
func (c *Config) GetQueueName() string { return c.QueueName }

// MailConfig implementation
func (c *Config) GetSMTPHost() string     { return c.SMTPHost }
func (c *Config) GetSMTPPort() int        { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string { return c.SMTPPassword }
func (c *Config) GetMailFrom() string     { return c.MailFrom }
func (c *Config) GetMailTo() string       { return c.MailTo }
func (c *Config) IsMailEnabled() bool     { return c.SMTPHost != "" && c.MailTo != "" }

// VaultConfig implementation
func (c *Config) GetTokenVaultKey() string { return c.TokenVaultKey }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:                 getEnv("APP_ENV", "development"),
		HTTPAddr:            getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		AccessTokenTTL:      mustDuration(getEnv("JWT_ACCESS_TTL", "12h")),
		CORSOrigins:         splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		DutyAPIBaseURL:      getEnv("DUTY_API_BASE_URL", "https://www.pharmagarde.be/api"),
		DutyAPILanguage:     getEnv("DUTY_API_LANGUAGE", "FR"),
		GraphBaseURL:        getEnv("GRAPH_BASE_URL", "https://graph.facebook.com/v19.0"),
		GeocodeBaseURL:      getEnv("GEOCODE_BASE_URL", "https://nominatim.openstreetmap.org/search"),
		GeocodeCountryCodes: getEnv("GEOCODE_COUNTRY_CODES", "be"),
		MinIOEndpoint:       getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:      getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:      getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:         strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		RosterImageBucket:   getEnv("MINIO_BUCKET_ROSTER_IMAGES", "roster-images"),
		ConvertBinary:       getEnv("CONVERT_BINARY", "convert"),
		RasterWorkDir:       getEnv("RASTER_WORK_DIR", os.TempDir()),
		RedisURL:            getEnv("REDIS_URL", ""),
		QueueName:           getEnv("ASYNQ_QUEUE", "default"),
		SMTPHost:            getEnv("SMTP_HOST", ""),
		SMTPPort:            mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:        getEnv("SMTP_USERNAME", ""),
		SMTPPassword:        getEnv("SMTP_PASSWORD", ""),
		MailFrom:            getEnv("MAIL_FROM", ""),
		MailTo:              getEnv("MAIL_TO", ""),
		TokenVaultKey:       getEnv("TOKEN_VAULT_KEY", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.IsMailEnabled() && cfg.MailFrom == "" {
		return nil, fmt.Errorf("MAIL_FROM is required when SMTP_HOST is set")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}
