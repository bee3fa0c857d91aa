package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the immutable startup configuration. It is loaded once and
// passed into constructors; nothing reads the environment after Load.
type Config struct {
	Profile  string
	HTTPAddr string

	// Signing key material. All three are required at startup.
	JWTSecret   string
	JWTIssuer   string
	JWTAudience string

	AccessTokenTTL time.Duration
	SessionTTL     time.Duration

	// Empty DatabaseURL selects the in-memory session store and sqlite
	// domain storage (dev profile only).
	DatabaseURL string
	RedisAddr   string

	CORSOrigins      []string
	AuthRateLimitRPM int
	APIRateLimitRPM  int

	AdminUsername string
	AdminEmail    string
	AdminPassword string

	OTELEnabled               bool
	OTELServiceName           string
	OTELEnvironment           string
	OTELExporterOTLPEndpoint  string
	OTELExporterOTLPInsecure  bool
	OTELMetricsExportInterval time.Duration
	OTELLogsEnabled           bool
}

// Load reads configuration from the environment, after merging an optional
// .env file (existing variables win). Missing signing material is a fatal
// load error.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Profile:  getEnv("APP_PROFILE", "dev"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		JWTSecret:   os.Getenv("JWT_SECRET"),
		JWTIssuer:   os.Getenv("JWT_ISSUER"),
		JWTAudience: os.Getenv("JWT_AUDIENCE"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),

		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),

		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@admin.com"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		OTELEnabled:              getEnvBool("OTEL_ENABLED", false),
		OTELServiceName:          getEnv("OTEL_SERVICE_NAME", "karkasai-backend"),
		OTELEnvironment:          getEnv("OTEL_ENVIRONMENT", "dev"),
		OTELExporterOTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTELExporterOTLPInsecure: getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OTELLogsEnabled:          getEnvBool("OTEL_LOGS_ENABLED", false),
	}

	var err error
	if cfg.AccessTokenTTL, err = getEnvDuration("ACCESS_TOKEN_TTL", 10*time.Minute); err != nil {
		recordConfigValidationEvent(ctx, cfg.Profile, "failure", classifyConfigLoadError(err))
		return nil, err
	}
	if cfg.SessionTTL, err = getEnvDuration("SESSION_TTL", 72*time.Hour); err != nil {
		recordConfigValidationEvent(ctx, cfg.Profile, "failure", classifyConfigLoadError(err))
		return nil, err
	}
	if cfg.OTELMetricsExportInterval, err = getEnvDuration("OTEL_METRICS_EXPORT_INTERVAL", 30*time.Second); err != nil {
		recordConfigValidationEvent(ctx, cfg.Profile, "failure", classifyConfigLoadError(err))
		return nil, err
	}
	if cfg.AuthRateLimitRPM, err = getEnvInt("AUTH_RATE_LIMIT_RPM", 30); err != nil {
		recordConfigValidationEvent(ctx, cfg.Profile, "failure", classifyConfigLoadError(err))
		return nil, err
	}
	if cfg.APIRateLimitRPM, err = getEnvInt("API_RATE_LIMIT_RPM", 300); err != nil {
		recordConfigValidationEvent(ctx, cfg.Profile, "failure", classifyConfigLoadError(err))
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		recordConfigValidationEvent(ctx, cfg.Profile, "failure", classifyConfigLoadError(err))
		return nil, err
	}
	recordConfigValidationEvent(ctx, cfg.Profile, "success", "none")
	return cfg, nil
}

func (c *Config) validate() error {
	var missing []string
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.JWTIssuer == "" {
		missing = append(missing, "JWT_ISSUER")
	}
	if c.JWTAudience == "" {
		missing = append(missing, "JWT_AUDIENCE")
	}
	if len(missing) > 0 {
		return fmt.Errorf("validate config: %s required", strings.Join(missing, ", "))
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("validate config: JWT_SECRET must be at least 32 bytes")
	}
	if c.Profile != "dev" && c.DatabaseURL == "" {
		return fmt.Errorf("validate config: DATABASE_URL required outside the dev profile")
	}
	return nil
}

func (c *Config) IsDev() bool { return normalizeConfigProfile(c.Profile) == "dev" }

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
