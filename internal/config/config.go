package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string
	Timezone string

	// Upstream booking portal
	UpstreamTimeout       time.Duration
	UpstreamSessionCookie string
	UpstreamUserAgent     string

	// HTTP surface
	CORSAllowedOrigins []string
	CalendarRateLimit  float64
	CalendarRateBurst  int
	TrustProxyHeaders  bool

	// Wizard sessions
	RedisAddr        string
	RedisPassword    string
	RedisTLS         bool
	WizardSessionTTL time.Duration

	// Catalog
	DatabaseURL string

	// Snapshot archive
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
	SnapshotBucket      string
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Timezone: getEnv("TIMEZONE", "Europe/Warsaw"),

		UpstreamTimeout:       getEnvAsDuration("UPSTREAM_TIMEOUT", 8*time.Second),
		UpstreamSessionCookie: getEnv("UPSTREAM_SESSION_COOKIE", "PHPSESSID"),
		UpstreamUserAgent:     getEnv("UPSTREAM_USER_AGENT", defaultUserAgent),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		CalendarRateLimit:  getEnvAsFloat("CALENDAR_RATE_LIMIT", 2),
		CalendarRateBurst:  getEnvAsInt("CALENDAR_RATE_BURST", 10),
		TrustProxyHeaders:  getEnvAsBool("TRUST_PROXY_HEADERS", false),

		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisTLS:         getEnvAsBool("REDIS_TLS", false),
		WizardSessionTTL: getEnvAsDuration("WIZARD_SESSION_TTL", 2*time.Hour),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		AWSRegion:           getEnv("AWS_REGION", "eu-central-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		SnapshotBucket:      getEnv("SNAPSHOT_BUCKET", ""),
	}
}

// Location resolves Timezone. The "current week" is computed in this zone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(strings.TrimSpace(c.Timezone))
	if err != nil || c.Timezone == "" {
		return time.UTC
	}
	return loc
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil && value > 0 {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping blanks.
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
