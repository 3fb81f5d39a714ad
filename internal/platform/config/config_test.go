package config

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, DefaultAddr, cfg.Addr)
	assert.Equal(t, BackendMemory, cfg.Backend)
	assert.Equal(t, DefaultPolicyVersion, cfg.PolicyVersion)
	assert.Equal(t, DefaultAccessLogCap, cfg.AccessLogCap)
	assert.Equal(t, DefaultTokenTTL, cfg.TokenTTL)
	assert.NotEmpty(t, cfg.JWTSigningKey)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("HELPMOTO_ADDR", ":9090")
	t.Setenv("HELPMOTO_STORAGE_BACKEND", BackendSQLite)
	t.Setenv("HELPMOTO_ACCESS_LOG_CAP", "500")
	t.Setenv("HELPMOTO_TOKEN_TTL", "1h")
	t.Setenv("HELPMOTO_POLICY_VERSION", "2.1")

	cfg := FromEnv()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, BackendSQLite, cfg.Backend)
	assert.Equal(t, 500, cfg.AccessLogCap)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, "2.1", cfg.PolicyVersion)
}

func TestFromEnv_InvalidNumbersIgnored(t *testing.T) {
	t.Setenv("HELPMOTO_ACCESS_LOG_CAP", "not-a-number")
	t.Setenv("HELPMOTO_TOKEN_TTL", "soon")

	cfg := FromEnv()

	assert.Equal(t, DefaultAccessLogCap, cfg.AccessLogCap)
	assert.Equal(t, DefaultTokenTTL, cfg.TokenTTL)
}

func TestKeyMaterial(t *testing.T) {
	t.Run("empty key means derive from passphrase", func(t *testing.T) {
		var cfg Server
		key, err := cfg.KeyMaterial()
		require.NoError(t, err)
		assert.Nil(t, key)
	})

	t.Run("decodes base64 key", func(t *testing.T) {
		raw := make([]byte, 32)
		for i := range raw {
			raw[i] = byte(i)
		}
		cfg := Server{EncryptionKey: base64.RawURLEncoding.EncodeToString(raw)}
		key, err := cfg.KeyMaterial()
		require.NoError(t, err)
		assert.Equal(t, raw, key)
	})

	t.Run("rejects malformed key", func(t *testing.T) {
		cfg := Server{EncryptionKey: "%%%not-base64%%%"}
		_, err := cfg.KeyMaterial()
		require.Error(t, err)
	})
}
