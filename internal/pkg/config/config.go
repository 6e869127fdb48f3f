package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type SessionConfig struct {
	// Backend is one of cookie, redis or memory.
	Backend      string
	CookieName   string
	Secret       string
	TTL          time.Duration
	SecureCookie bool
	Redis        RedisConfig
}

type ObservabilityConfig struct {
	ServiceName  string
	OTLPEndpoint string
	MetricsAddr  string
	PprofAddr    string
}

type DevAPIConfig struct {
	Port          string
	JWTSecret     string
	TokenTTL      time.Duration
	AdminEmail    string
	AdminPassword string
	StaffEmail    string
	StaffPassword string
}

type Config struct {
	Env           string
	ServerPort    string
	LogLevel      string
	API           APIConfig
	Session       SessionConfig
	Observability ObservabilityConfig
	DevAPI        DevAPIConfig
}

const devSessionSecret = "dev-session-secret-change-me-32b!"

func Load() (*Config, error) {
	var errs []string
	env := getEnvOrDefault("APP_ENV", "development")

	cfg := &Config{
		Env:        env,
		ServerPort: getEnvOrDefault("SERVER_PORT", "8091"),
		LogLevel:   getEnvOrDefault("LOG_LEVEL", "info"),
		API: APIConfig{
			BaseURL: getEnvOrDefault("API_BASE_URL", "http://localhost:5000/api"),
			Timeout: getDurationOrDefault("API_TIMEOUT", 15*time.Second, &errs),
		},
		Session: SessionConfig{
			Backend:      strings.ToLower(getEnvOrDefault("SESSION_BACKEND", "cookie")),
			CookieName:   getEnvOrDefault("SESSION_COOKIE_NAME", "fieldops_session"),
			Secret:       getEnvOrDefault("SESSION_SECRET", ""),
			TTL:          getDurationOrDefault("SESSION_TTL", 7*24*time.Hour, &errs),
			SecureCookie: getBoolOrDefault("SESSION_SECURE_COOKIE", env == "production", &errs),
			Redis: RedisConfig{
				Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
				Password: getEnvOrDefault("REDIS_PASSWORD", ""),
				DB:       getIntOrDefault("REDIS_DB", 0, &errs),
			},
		},
		Observability: ObservabilityConfig{
			ServiceName:  getEnvOrDefault("OTEL_SERVICE_NAME", "fieldops-web"),
			OTLPEndpoint: getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			MetricsAddr:  getEnvOrDefault("METRICS_ADDR", ":9092"),
			PprofAddr:    getEnvOrDefault("PPROF_ADDR", ":6060"),
		},
		DevAPI: DevAPIConfig{
			Port:          getEnvOrDefault("DEVAPI_PORT", "5000"),
			JWTSecret:     getEnvOrDefault("JWT_SECRET_KEY", "default-secret-key-change-in-production-min-32-chars"),
			TokenTTL:      getDurationOrDefault("JWT_TTL", 24*time.Hour, &errs),
			AdminEmail:    getEnvOrDefault("DEVAPI_ADMIN_EMAIL", "admin@fieldops.local"),
			AdminPassword: getEnvOrDefault("DEVAPI_ADMIN_PASSWORD", "admin123"),
			StaffEmail:    getEnvOrDefault("DEVAPI_STAFF_EMAIL", "staff@fieldops.local"),
			StaffPassword: getEnvOrDefault("DEVAPI_STAFF_PASSWORD", "staff123"),
		},
	}

	switch cfg.Session.Backend {
	case "cookie", "redis", "memory":
	default:
		errs = append(errs, fmt.Sprintf("SESSION_BACKEND must be cookie, redis or memory, got %q", cfg.Session.Backend))
	}

	if cfg.Session.Secret == "" {
		if env == "production" {
			errs = append(errs, "SESSION_SECRET environment variable is required in production")
		}
		cfg.Session.Secret = devSessionSecret
	}
	if len(cfg.Session.Secret) < 32 {
		errs = append(errs, "SESSION_SECRET must be at least 32 bytes")
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration, errs *[]string) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("%s: %v", key, err))
		return defaultValue
	}
	return d
}

func getIntOrDefault(key string, defaultValue int, errs *[]string) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("%s: %v", key, err))
		return defaultValue
	}
	return n
}

func getBoolOrDefault(key string, defaultValue bool, errs *[]string) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("%s: %v", key, err))
		return defaultValue
	}
	return b
}
