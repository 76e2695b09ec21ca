// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"errors"
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

// DatabaseConfig provides database connection and pool settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
	GetDBMaxConns() int32
	GetDBMinConns() int32
	GetDBMaxConnLifetime() time.Duration
	GetDBMaxConnIdleTime() time.Duration
	GetDBHealthCheckPeriod() time.Duration
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// AuthServiceConfig provides settings needed by the auth service.
type AuthServiceConfig interface {
	JWTConfig
	GetAccessTokenTTL() time.Duration
	GetVerifyTokenTTL() time.Duration
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSOrigins() []string
}

// MinIOConfig provides settings for MinIO S3-compatible storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	GetMinioBucketDocuments() string
	IsMinIOEnabled() bool
}

// SchedulerConfig provides settings for the asynq compensation queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// SMTPConfig provides settings for outgoing mail.
type SMTPConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
	IsEmailEnabled() bool
}

// NotificationConfig provides settings for the notification module.
type NotificationConfig interface {
	GetAppBaseURL() string
}

// RegistrationConfig provides settings for the tenant registration workflow.
type RegistrationConfig interface {
	GetRegistrationStepTimeout() time.Duration
	GetRegistrationUndoTimeout() time.Duration
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                     string
	HTTPAddr                string
	DatabaseURL             string
	DBMaxConns              int32
	DBMinConns              int32
	DBMaxConnLifetime       time.Duration
	DBMaxConnIdleTime       time.Duration
	DBHealthCheckPeriod     time.Duration
	JWTAccessSecret         string
	AccessTokenTTL          time.Duration
	VerifyTokenTTL          time.Duration
	CORSOrigins             []string
	AppBaseURL              string
	MinIOEndpoint           string
	MinIOAccessKey          string
	MinIOSecretKey          string
	MinIOUseSSL             bool
	MinIOMaxFileSize        int64
	MinioBucketDocuments    string
	RedisURL                string
	RedisTLSInsecure        bool
	AsynqQueueName          string
	AsynqConcurrency        int
	SMTPHost                string
	SMTPPort                int
	SMTPUsername            string
	SMTPPassword            string
	EmailFromName           string
	EmailFromAddress        string
	RegistrationStepTimeout time.Duration
	RegistrationUndoTimeout time.Duration
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string                { return c.DatabaseURL }
func (c *Config) GetDBMaxConns() int32                  { return c.DBMaxConns }
func (c *Config) GetDBMinConns() int32                  { return c.DBMinConns }
func (c *Config) GetDBMaxConnLifetime() time.Duration   { return c.DBMaxConnLifetime }
func (c *Config) GetDBMaxConnIdleTime() time.Duration   { return c.DBMaxConnIdleTime }
func (c *Config) GetDBHealthCheckPeriod() time.Duration { return c.DBHealthCheckPeriod }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// AuthServiceConfig implementation
func (c *Config) GetAccessTokenTTL() time.Duration { return c.AccessTokenTTL }
func (c *Config) GetVerifyTokenTTL() time.Duration { return c.VerifyTokenTTL }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }

// MinIOConfig implementation
func (c *Config) GetMinIOEndpoint() string        { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string       { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string       { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool            { return c.MinIOUseSSL }
func (c *Config) GetMinIOMaxFileSize() int64      { return c.MinIOMaxFileSize }
func (c *Config) GetMinioBucketDocuments() string { return c.MinioBucketDocuments }
func (c *Config) IsMinIOEnabled() bool            { return c.MinIOEndpoint != "" }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string        { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool  { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string  { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int   { return c.AsynqConcurrency }

// SMTPConfig implementation
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string    { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }
func (c *Config) IsEmailEnabled() bool        { return c.SMTPHost != "" }

// NotificationConfig implementation
func (c *Config) GetAppBaseURL() string { return c.AppBaseURL }

// RegistrationConfig implementation
func (c *Config) GetRegistrationStepTimeout() time.Duration { return c.RegistrationStepTimeout }
func (c *Config) GetRegistrationUndoTimeout() time.Duration { return c.RegistrationUndoTimeout }

// Load reads configuration from environment variables. Malformed numeric
// and duration values are reported together rather than replaced by zero.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var env envParser
	cfg := &Config{
		Env:                     getEnv("APP_ENV", "development"),
		HTTPAddr:                getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:             getEnv("DATABASE_URL", ""),
		DBMaxConns:              int32(env.integer("DB_MAX_CONNS", 25, 32)),
		DBMinConns:              int32(env.integer("DB_MIN_CONNS", 5, 32)),
		DBMaxConnLifetime:       env.duration("DB_MAX_CONN_LIFETIME", time.Hour),
		DBMaxConnIdleTime:       env.duration("DB_MAX_CONN_IDLE_TIME", 30*time.Minute),
		DBHealthCheckPeriod:     env.duration("DB_HEALTH_CHECK_PERIOD", time.Minute),
		JWTAccessSecret:         getEnv("JWT_ACCESS_SECRET", ""),
		AccessTokenTTL:          env.duration("JWT_ACCESS_TTL", time.Hour),
		VerifyTokenTTL:          env.duration("VERIFY_TOKEN_TTL", 48*time.Hour),
		CORSOrigins:             splitCSV(getEnv("CORS_ORIGINS", "*")),
		AppBaseURL:              getEnv("APP_BASE_URL", "http://localhost:5173"),
		MinIOEndpoint:           getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:          getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:          getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:             strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinIOMaxFileSize:        env.integer("MINIO_MAX_FILE_SIZE", 50<<20, 64),
		MinioBucketDocuments:    getEnv("MINIO_BUCKET_DOCUMENTS", "documents"),
		RedisURL:                getEnv("REDIS_URL", ""),
		RedisTLSInsecure:        strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:          getEnv("ASYNQ_QUEUE", "compensation"),
		AsynqConcurrency:        int(env.integer("ASYNQ_CONCURRENCY", 5, 32)),
		SMTPHost:                getEnv("SMTP_HOST", ""),
		SMTPPort:                int(env.integer("SMTP_PORT", 587, 32)),
		SMTPUsername:            getEnv("SMTP_USERNAME", ""),
		SMTPPassword:            getEnv("SMTP_PASSWORD", ""),
		EmailFromName:           getEnv("EMAIL_FROM_NAME", "NGO ERP"),
		EmailFromAddress:        getEnv("EMAIL_FROM_ADDRESS", ""),
		RegistrationStepTimeout: env.duration("REGISTRATION_STEP_TIMEOUT", 10*time.Second),
		RegistrationUndoTimeout: env.duration("REGISTRATION_UNDO_TIMEOUT", 10*time.Second),
	}
	if err := env.err(); err != nil {
		return nil, err
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.IsEmailEnabled() && cfg.EmailFromAddress == "" {
		return nil, fmt.Errorf("EMAIL_FROM_ADDRESS is required when SMTP_HOST is set")
	}
	if cfg.DBMinConns > cfg.DBMaxConns {
		return nil, fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", cfg.DBMinConns, cfg.DBMaxConns)
	}
	if cfg.RegistrationStepTimeout <= 0 {
		cfg.RegistrationStepTimeout = 10 * time.Second
	}
	if cfg.RegistrationUndoTimeout <= 0 {
		cfg.RegistrationUndoTimeout = 10 * time.Second
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

// envParser reads typed variables and remembers every malformed one.
type envParser struct {
	errs []error
}

func (p *envParser) duration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid duration %q", key, raw))
		return fallback
	}
	return d
}

func (p *envParser) integer(key string, fallback int64, bits int) int64 {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback
	}
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, bits)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid integer %q", key, raw))
		return fallback
	}
	return n
}

func (p *envParser) err() error {
	return errors.Join(p.errs...)
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
