package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// AppConfig holds environment driven configuration values. Every field has
// a default that is safe for local development; production deployments
// override via config/config.json or environment variables.
type AppConfig struct {
	AppPort     string
	GinMode     string
	JWTSecret   string
	TokenTTLHrs int

	// DatabaseURI is either a sqlite file path (default) or a MySQL DSN.
	DatabaseURI string

	// Sliding-window rate limit applied to authenticated write endpoints.
	RateLimitMax       int
	RateLimitWindowSec int

	AllowedOrigins []string

	// Redis for best-effort response caching.
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string

	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

var cfg AppConfig
var loaded bool

// Load loads the application configuration. It should be called once during
// boot; precedence is config/config.json -> defaults -> env overrides.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	_ = loadJSONConfig(filepath.Join("config", "config.json"), &cfg)
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if cfg.JWTSecret == devSecret {
		log.Println("warning: using built-in development signing secret; set VIBE_SECRET in production")
	}

	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

const devSecret = "super-secret-for-dev"

// loadJSONConfig reads a grouped JSON file into out if present. A missing
// file is not an error; invalid JSON is.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var raw map[string]map[string]any
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return err
	}

	getString := func(section, key string) string {
		if m, ok := raw[section]; ok {
			if s, ok := m[key].(string); ok {
				return s
			}
		}
		return ""
	}
	getInt := func(section, key string) int {
		if m, ok := raw[section]; ok {
			if f, ok := m[key].(float64); ok {
				return int(f)
			}
		}
		return 0
	}
	getBool := func(section, key string) bool {
		if m, ok := raw[section]; ok {
			if b, ok := m[key].(bool); ok {
				return b
			}
		}
		return false
	}

	out.AppPort = getString("app", "AppPort")
	out.GinMode = getString("app", "GinMode")
	out.JWTSecret = getString("app", "JWTSecret")
	out.TokenTTLHrs = getInt("app", "TokenTTLHrs")
	out.RateLimitMax = getInt("app", "RateLimitMax")
	out.RateLimitWindowSec = getInt("app", "RateLimitWindowSec")
	if s := getString("app", "AllowedOrigins"); s != "" {
		out.AllowedOrigins = splitAndTrim(s)
	}

	out.DatabaseURI = getString("database", "DatabaseURI")

	out.RedisHost = getString("redis", "RedisHost")
	out.RedisPort = getInt("redis", "RedisPort")
	out.RedisDB = getInt("redis", "RedisDB")
	out.RedisPassword = getString("redis", "RedisPassword")

	out.LogLevel = getString("log", "Level")
	out.LogPath = getString("log", "Path")
	out.LogMaxSizeMB = getInt("log", "MaxSizeMB")
	out.LogMaxBackups = getInt("log", "MaxBackups")
	out.LogMaxAgeDays = getInt("log", "MaxAgeDays")
	out.LogCompress = getBool("log", "Compress")

	return nil
}

// applyDefaults sets sane defaults for zero-value fields.
func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.JWTSecret == "" {
		c.JWTSecret = devSecret
	}
	if c.TokenTTLHrs == 0 {
		c.TokenTTLHrs = 24 * 7
	}
	if c.DatabaseURI == "" {
		c.DatabaseURI = "vibe.db"
	}
	if c.RateLimitMax == 0 {
		c.RateLimitMax = 3
	}
	if c.RateLimitWindowSec == 0 {
		c.RateLimitWindowSec = 60
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.RedisHost == "" {
		c.RedisHost = "127.0.0.1"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
}

// applyEnvOverrides maps known environment variables onto config values.
func applyEnvOverrides(c *AppConfig) {
	if v := os.Getenv("APP_PORT"); v != "" {
		c.AppPort = v
	}
	if v := os.Getenv("GIN_MODE"); v != "" {
		c.GinMode = v
	}
	if v := os.Getenv("VIBE_SECRET"); v != "" {
		c.JWTSecret = v
	}
	if v := os.Getenv("VIBE_TOKEN_TTL_HOURS"); v != "" {
		c.TokenTTLHrs = mustParseInt("VIBE_TOKEN_TTL_HOURS", v)
	}
	if v := os.Getenv("VIBE_DATABASE_URL"); v != "" {
		c.DatabaseURI = v
	}
	if v := os.Getenv("VIBE_RL_MAX"); v != "" {
		c.RateLimitMax = mustParseInt("VIBE_RL_MAX", v)
	}
	if v := os.Getenv("VIBE_RL_WINDOW"); v != "" {
		c.RateLimitWindowSec = mustParseInt("VIBE_RL_WINDOW", v)
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = splitAndTrim(v)
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.RedisHost = v
	}
	if v := os.Getenv("REDIS_PORT"); v != "" {
		c.RedisPort = mustParseInt("REDIS_PORT", v)
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		c.RedisDB = mustParseInt("REDIS_DB", v)
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.RedisPassword = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("LOG_PATH"); v != "" {
		c.LogPath = v
	}
	if v := os.Getenv("LOG_MAX_SIZE_MB"); v != "" {
		c.LogMaxSizeMB = mustParseInt("LOG_MAX_SIZE_MB", v)
	}
	if v := os.Getenv("LOG_MAX_BACKUPS"); v != "" {
		c.LogMaxBackups = mustParseInt("LOG_MAX_BACKUPS", v)
	}
	if v := os.Getenv("LOG_MAX_AGE_DAYS"); v != "" {
		c.LogMaxAgeDays = mustParseInt("LOG_MAX_AGE_DAYS", v)
	}
	if v := os.Getenv("LOG_COMPRESS"); v != "" {
		c.LogCompress = v == "true"
	}
}

func mustParseInt(key, val string) int {
	i, err := strconv.Atoi(val)
	if err != nil {
		log.Fatalf("invalid integer value for %s: %q", key, val)
	}
	return i
}

func splitAndTrim(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
