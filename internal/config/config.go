package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/alfreddev/weatherproxy/internal/credential"
)

// Config holds all gateway configuration values.
type Config struct {
	// Server
	Addr             string
	Host             string
	Port             string
	Env              string
	GracefulTimeout  time.Duration
	KeepAliveTimeout time.Duration

	// Credentials
	Credentials []credential.Credential

	// Auth
	AppIDKey string

	// Quota / retry
	DailyLimit int
	MaxErrors  int
	APITimeout time.Duration
	RetryCount int
	RetryDelay time.Duration

	// Cache
	CacheEnabled bool
	CacheTTL     time.Duration
	CacheMaxKeys int

	// Redis (ledger backend)
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// Ambient rate limiting / CORS
	RateLimitMax    int
	RateLimitWindow time.Duration
	CORSOrigin      string

	// Observability
	LogLevel        string
	MetricsEnabled  bool
	RequestIDHeader string

	// Time zone for DayKey computation. Empty means process-local.
	TimeZoneName string
}

// Load reads configuration from environment variables and an optional
// .env file. OPENWEATHER_API_KEYS and APP_ID_KEY are required; Load
// returns an error if either is missing.
func Load() (*Config, error) {
	_ = godotenv.Load()

	keysRaw := getEnv("OPENWEATHER_API_KEYS", "")
	if strings.TrimSpace(keysRaw) == "" {
		return nil, fmt.Errorf("OPENWEATHER_API_KEYS is required (comma-separated secrets)")
	}
	creds := parseCredentials(keysRaw)

	appID := getEnv("APP_ID_KEY", "")
	if appID == "" {
		return nil, fmt.Errorf("APP_ID_KEY is required")
	}

	host := getEnv("HOST", "0.0.0.0")
	port := getEnv("PORT", "8080")

	cfg := &Config{
		Addr:             host + ":" + port,
		Host:             host,
		Port:             port,
		Env:              getEnv("ENV", "development"),
		GracefulTimeout:  time.Duration(getEnvInt("GATEWAY_GRACEFUL_TIMEOUT_SEC", 15)) * time.Second,
		KeepAliveTimeout: time.Duration(getEnvInt("KEEPALIVE_TIMEOUT", 120)) * time.Second,

		Credentials: creds,
		AppIDKey:    appID,

		DailyLimit: getEnvInt("API_DAILY_LIMIT", 1000),
		MaxErrors:  3,
		APITimeout: time.Duration(getEnvInt("API_TIMEOUT", 10000)) * time.Millisecond,
		RetryCount: getEnvInt("API_RETRY_COUNT", 3),
		RetryDelay: time.Duration(getEnvInt("API_RETRY_DELAY", 1000)) * time.Millisecond,

		CacheEnabled: getEnvBool("ENABLE_CACHE", true),
		CacheTTL:     time.Duration(getEnvInt("CACHE_TTL", 300)) * time.Second,
		CacheMaxKeys: getEnvInt("CACHE_MAX_KEYS", 10000),

		RedisURL:      getEnv("REDIS_URL", "redis://localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		RateLimitMax:    getEnvInt("RATE_LIMIT_MAX", 120),
		RateLimitWindow: time.Duration(getEnvInt("RATE_LIMIT_WINDOW", 60)) * time.Second,
		CORSOrigin:      getEnv("CORS_ORIGIN", "*"),

		LogLevel:        getEnv("LOG_LEVEL", "info"),
		MetricsEnabled:  getEnvBool("METRICS_ENABLED", true),
		RequestIDHeader: getEnv("REQUEST_ID_HEADER", "X-Request-Id"),

		TimeZoneName: getEnv("TIMEZONE", ""),
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// parseCredentials splits the comma-separated secret list into an
// ordered, immutable Credential slice. Index determines both the ID
// suffix and the priority.
func parseCredentials(raw string) []credential.Credential {
	parts := strings.Split(raw, ",")
	creds := make([]credential.Credential, 0, len(parts))
	idx := 0
	for _, p := range parts {
		secret := strings.TrimSpace(p)
		if secret == "" {
			continue
		}
		creds = append(creds, credential.Credential{
			ID:       fmt.Sprintf("key_%d", idx),
			Secret:   secret,
			Priority: idx,
		})
		idx++
	}
	return creds
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
