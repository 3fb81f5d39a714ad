package config

import (
	"encoding/base64"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Backend selects the secure storage implementation.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Defaults applied when the environment leaves a knob unset.
const (
	DefaultAddr          = ":8080"
	DefaultSQLitePath    = "helpmoto-privacy.db"
	DefaultPolicyVersion = "1.0"
	DefaultAccessLogCap  = 1000
	DefaultTokenTTL      = 15 * time.Minute
)

// Server captures process level configuration. The encryption secret is
// carried here explicitly so key rotation is a config change, not a code
// change.
type Server struct {
	Addr        string
	Environment string
	LogLevel    slog.Level

	Backend    string
	SQLitePath string
	RedisAddr  string

	// EncryptionKey is a raw 32-byte key, base64-encoded. When empty, the
	// key is derived from Passphrase and Salt with argon2id.
	EncryptionKey string
	Passphrase    string
	Salt          string

	PolicyVersion string
	AccessLogCap  int

	JWTSigningKey string
	TokenTTL      time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:          envOr("HELPMOTO_ADDR", DefaultAddr),
		Environment:   envOr("HELPMOTO_ENV", "development"),
		Backend:       envOr("HELPMOTO_STORAGE_BACKEND", BackendMemory),
		SQLitePath:    envOr("HELPMOTO_SQLITE_PATH", DefaultSQLitePath),
		RedisAddr:     os.Getenv("HELPMOTO_REDIS_ADDR"),
		EncryptionKey: os.Getenv("HELPMOTO_ENCRYPTION_KEY"),
		Passphrase:    os.Getenv("HELPMOTO_ENCRYPTION_PASSPHRASE"),
		Salt:          os.Getenv("HELPMOTO_ENCRYPTION_SALT"),
		PolicyVersion: envOr("HELPMOTO_POLICY_VERSION", DefaultPolicyVersion),
		AccessLogCap:  DefaultAccessLogCap,
		JWTSigningKey: os.Getenv("HELPMOTO_JWT_SIGNING_KEY"),
		TokenTTL:      DefaultTokenTTL,
	}

	if cfg.JWTSigningKey == "" {
		// Use a default for development - should be overridden in production
		cfg.JWTSigningKey = "dev-secret-key-change-in-production"
	}

	if v := os.Getenv("HELPMOTO_ACCESS_LOG_CAP"); v != "" {
		if cap, err := strconv.Atoi(v); err == nil && cap > 0 {
			cfg.AccessLogCap = cap
		}
	}

	if v := os.Getenv("HELPMOTO_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.TokenTTL = d
		}
	}

	if os.Getenv("HELPMOTO_LOG_LEVEL") == "debug" {
		cfg.LogLevel = slog.LevelDebug
	} else {
		cfg.LogLevel = slog.LevelInfo
	}

	return cfg
}

// KeyMaterial decodes the configured raw encryption key, if one is set.
// Returns nil when the key should be derived from the passphrase instead.
func (c Server) KeyMaterial() ([]byte, error) {
	if c.EncryptionKey == "" {
		return nil, nil
	}
	return base64.RawURLEncoding.DecodeString(c.EncryptionKey)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
