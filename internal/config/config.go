package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	DataFile string // path to the JSON snapshot file
	SeedFile string // optional YAML catalog imported on first boot (empty = disabled)

	AdminPIN        string        // shared admin secret; empty => verify-pin always rejects
	SessionTTL      time.Duration // admin session lifetime
	ClaimGCInterval time.Duration // interval between expired-claim prunes

	TrustProxy     bool     // true => resolve client IP from proxy headers
	AdminCIDRs     []string // optional, restrict /api/admin to specific IPs/CIDRs
	AllowedOrigins []string // optional CORS origins (empty = allow all)

	// Redis (optional, claim counters only)
	RedisAddr           string // empty = stats disabled
	RedisUser           string
	RedisPassword       string
	RedisDB             int
	RedisDT             time.Duration // dial timeout
	RedisRT             time.Duration // read timeout
	RedisWT             time.Duration // write timeout
	RedisPoolSize       int
	RedisConnectTimeout time.Duration
	RedisRetryInterval  time.Duration
	RedisMaxWait        time.Duration
	RedisPingTimeout    time.Duration
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("LINKDROP_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("LINKDROP_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("LINKDROP_LOG_LEVEL", "info"),
		PrettyLog: mustBool("LINKDROP_PRETTY_LOG", true),

		// Storage
		DataFile: getenv("LINKDROP_DATA_FILE", "data/linkdrop.json"),
		SeedFile: getenv("LINKDROP_SEED_FILE", ""),

		// Admin
		AdminPIN:        os.Getenv("LINKDROP_ADMIN_PIN"),
		SessionTTL:      mustDuration("LINKDROP_SESSION_TTL", 12*time.Hour),
		ClaimGCInterval: mustDuration("LINKDROP_CLAIM_GC_INTERVAL", 24*time.Hour),

		// Access
		TrustProxy:     mustBool("LINKDROP_TRUST_PROXY", true),
		AdminCIDRs:     splitAndTrim(getenv("LINKDROP_ADMIN_CIDRS", "")),
		AllowedOrigins: splitAndTrim(getenv("LINKDROP_ALLOWED_ORIGINS", "")),

		// Redis settings (only used when RedisAddr is set)
		RedisAddr:           getenv("LINKDROP_REDIS_ADDR", ""),
		RedisUser:           getenv("LINKDROP_REDIS_USERNAME", "default"),
		RedisPassword:       getenv("LINKDROP_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("LINKDROP_REDIS_DB", 0),
		RedisDT:             mustDuration("LINKDROP_REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("LINKDROP_REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("LINKDROP_REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisPoolSize:       getenvInt("LINKDROP_REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("LINKDROP_REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("LINKDROP_REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisMaxWait:        mustDuration("LINKDROP_REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("LINKDROP_REDIS_PING_TIMEOUT", 5*time.Second),
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
