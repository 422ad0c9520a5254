package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName  string
	AppEnv   string
	Port     string
	Timezone string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string
	DBMigrate    bool

	// Security
	JWTSecret string
	JWTIssuer string

	// Observability (optional)
	SentryDSN string

	// Storage (S3-compatible, optional: media uploads are disabled without a bucket)
	S3Region            string
	S3Bucket            string
	S3AccessKey         string
	S3SecretKey         string
	S3Endpoint          string        // Optional: for S3-compatible services (MinIO, DO Spaces, R2, etc.)
	S3PresignExpiry     time.Duration // Expiry for media URLs handed to clients - default: 7 days
	MediaMaxUploadBytes int64

	// Symmetry analysis function (optional)
	AnalysisURL     string
	AnalysisAPIKey  string
	AnalysisTimeout time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName:  envString("APP_NAME", "Ritual"),
		AppEnv:   envRequired("APP_ENV"), // Required: 'development' or 'production'
		Port:     envString("PORT", "8090"),
		Timezone: envString("TZ_DEFAULT", "UTC"),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/ritual.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),
		DBMigrate:    envBool("DB_MIGRATE", true),

		// Security
		JWTSecret: envRequired("JWT_SECRET"),
		JWTIssuer: envString("JWT_ISSUER", ""),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),

		// Storage
		S3Region:            envString("S3_REGION", "us-east-1"),
		S3Bucket:            envString("S3_BUCKET", ""),
		S3AccessKey:         envString("S3_ACCESS_KEY", ""),
		S3SecretKey:         envString("S3_SECRET_KEY", ""),
		S3Endpoint:          envString("S3_ENDPOINT", ""),
		S3PresignExpiry:     envDuration("S3_PRESIGN_EXPIRY", 168*time.Hour),
		MediaMaxUploadBytes: envInt64("MEDIA_MAX_UPLOAD_BYTES", 50<<20),

		// Analysis
		AnalysisURL:     envString("ANALYSIS_URL", ""),
		AnalysisAPIKey:  envString("ANALYSIS_API_KEY", ""),
		AnalysisTimeout: envDuration("ANALYSIS_TIMEOUT", 30*time.Second),
	}

	// Production: validate required services
	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction ensures production deployments do not run with
// development shortcuts.
func validateProduction(cfg *Config) {
	if len(cfg.JWTSecret) < 32 {
		slog.Error("production deployment requires a JWT_SECRET of at least 32 bytes")
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envInt64(key string, def int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		slog.Warn("config invalid integer, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// StorageEnabled reports whether a media bucket is configured.
func (c *Config) StorageEnabled() bool {
	return c.S3Bucket != ""
}

// AnalysisEnabled reports whether the symmetry analysis endpoint is configured.
func (c *Config) AnalysisEnabled() bool {
	return c.AnalysisURL != ""
}

// Location resolves Timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		slog.Warn("config invalid timezone, using UTC", "timezone", c.Timezone, "error", err)
		return time.UTC
	}
	return loc
}
