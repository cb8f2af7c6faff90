package app

import (
	"os"
	"strconv"
	"time"

	"github.com/aussiebroadwan/campusgate/internal/gateway/service"
	"github.com/aussiebroadwan/campusgate/pkg/authgate"
	"github.com/aussiebroadwan/campusgate/pkg/uis"
)

// API authentication modes.
const (
	AuthModeJWT  = "jwt"
	AuthModeNone = "none"
)

type Config struct {
	IdentityProviderHost string        // Identity provider authority (default: uis.fudan.edu.cn)
	SessionTTL           time.Duration // How long a login is trusted per host (default: 2h)
	MaxConcurrent        int           // Cap on simultaneous upstream operations, 0 is unbounded (default: 0)
	RequestTimeout       time.Duration // Upstream HTTP timeout (default: 30s)
	LoginInterval        time.Duration // Minimum gap between credential submissions, negative disables (default: 2s)
	UserAgent            string        // Upstream User-Agent (default: uis.DefaultUserAgent)

	DatabaseFile   string        // Path to SQLite database file (default: ./campusgate.db)
	MasterKeyPath  string        // Optional: file holding the credential sealing key, else GATEWAY_MASTER_KEY
	AuditRetention time.Duration // How long login attempts are kept (default: 30 days)

	AuthMode    string        // API authentication: jwt or none (default: jwt)
	JWKSURL     string        // JWKS endpoint of the token issuer (required in jwt mode)
	JWTIssuer   string        // Optional: expected iss claim
	JWTAudience string        // Optional: expected aud claim
	JWKSRefresh time.Duration // JWKS refresh interval (default: 15m)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	return Config{
		IdentityProviderHost: getEnvOrDefault("GATEWAY_IDP_HOST", uis.DefaultIdentityProviderHost),
		SessionTTL:           getEnvDurationOrDefault("GATEWAY_SESSION_TTL", authgate.DefaultValidity),
		MaxConcurrent:        getEnvIntOrDefault("GATEWAY_MAX_CONCURRENT", 0),
		RequestTimeout:       getEnvDurationOrDefault("GATEWAY_REQUEST_TIMEOUT", uis.DefaultTimeout),
		LoginInterval:        getEnvDurationOrDefault("GATEWAY_LOGIN_RATE", uis.DefaultLoginInterval),
		UserAgent:            getEnvOrDefault("GATEWAY_USER_AGENT", uis.DefaultUserAgent),

		DatabaseFile:   getEnvOrDefault("GATEWAY_DATABASE_FILE", "campusgate.db"),
		MasterKeyPath:  os.Getenv("GATEWAY_MASTER_KEY_PATH"),
		AuditRetention: getEnvDurationOrDefault("GATEWAY_AUDIT_RETENTION", service.DefaultAuditRetention),

		AuthMode:    getEnvOrDefault("API_AUTH_MODE", AuthModeJWT),
		JWKSURL:     os.Getenv("API_JWKS_URL"),
		JWTIssuer:   os.Getenv("API_JWT_ISSUER"),
		JWTAudience: os.Getenv("API_JWT_AUDIENCE"),
		JWKSRefresh: getEnvDurationOrDefault("API_JWKS_REFRESH", 15*time.Minute),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

// IsDev reports whether insecure development fallbacks are allowed.
func (c Config) IsDev() bool {
	return c.Env == "dev" || c.Env == "test"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}
	return defaultValue
}

// getEnvDurationOrDefault accepts Go durations ("90s", "2h") or whole minutes.
func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}
	return defaultValue
}
