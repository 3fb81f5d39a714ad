// Package securestore persists JSON-serializable values under string keys,
// optionally sealed with AES-256-GCM, through a pluggable storage backend.
package securestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"helpmoto/internal/platform/metrics"
	"helpmoto/internal/sentinel"
)

// Config carries the key material for the store. Passing it explicitly at
// construction keeps secrets out of package state and makes key rotation a
// deployment concern. Key wins when both are set.
type Config struct {
	// Key is a raw 32-byte AES key.
	Key []byte
	// Passphrase and Salt derive the key with argon2id when Key is nil.
	Passphrase string
	Salt       string
}

// Option configures the Store.
type Option func(*Store)

// WithMetrics enables latency observation for backend operations.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// Store is the secure key-value layer everything above persists through.
//
// Error Contract:
//   - Set and Delete surface backend failures to the caller; writes that did
//     not land must never look like they did.
//   - Get treats every fault (backend read, decryption, deserialization) as a
//     logged miss. Corrupted or key-rotated ciphertext degrades to "absent"
//     instead of crashing callers.
type Store struct {
	backend Backend
	cipher  *Cipher
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New constructs a Store. The key comes from cfg.Key, or is derived from
// cfg.Passphrase and cfg.Salt when no raw key is given.
func New(backend Backend, cfg Config, logger *slog.Logger, opts ...Option) (*Store, error) {
	key := cfg.Key
	if key == nil {
		if cfg.Passphrase == "" || cfg.Salt == "" {
			return nil, fmt.Errorf("either a raw key or passphrase and salt are required")
		}
		key = DeriveKey([]byte(cfg.Passphrase), []byte(cfg.Salt))
	}
	cipher, err := NewCipher(key)
	if err != nil {
		return nil, err
	}
	s := &Store{
		backend: backend,
		cipher:  cipher,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Set serializes value and persists it under key, sealed when encrypt is
// true. An existing value at key is overwritten.
func (s *Store) Set(ctx context.Context, key string, value any, encrypt bool) error {
	var payload string
	if encrypt {
		sealed, err := s.cipher.EncryptJSON(value)
		if err != nil {
			return fmt.Errorf("encrypt %q: %w", key, err)
		}
		payload = sealed
	} else {
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("marshal %q: %w", key, err)
		}
		payload = string(raw)
	}

	start := time.Now()
	err := s.backend.SetItem(ctx, key, payload)
	s.observe("set", start)
	if err != nil {
		return fmt.Errorf("store %q: %w", key, err)
	}
	return nil
}

// Get loads the value at key into dest, unsealing when decrypt is true.
// Returns false when the key is absent or the stored payload cannot be
// read back; callers see a miss, never a fault.
func (s *Store) Get(ctx context.Context, key string, decrypt bool, dest any) bool {
	start := time.Now()
	payload, err := s.backend.GetItem(ctx, key)
	s.observe("get", start)
	if err != nil {
		s.logMiss(ctx, key, "backend read failed", err)
		return false
	}

	if decrypt {
		if err := s.cipher.DecryptJSON(payload, dest); err != nil {
			s.logMiss(ctx, key, "decrypt failed", err)
			return false
		}
		return true
	}

	if err := json.Unmarshal([]byte(payload), dest); err != nil {
		s.logMiss(ctx, key, "unmarshal failed", err)
		return false
	}
	return true
}

// Delete removes the value at key. Absent keys are a no-op; backend
// failures surface to the caller.
func (s *Store) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := s.backend.DeleteItem(ctx, key)
	s.observe("delete", start)
	if err != nil {
		return fmt.Errorf("remove %q: %w", key, err)
	}
	return nil
}

func (s *Store) observe(operation string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveStoreOperationLatency(operation, time.Since(start).Seconds())
	}
}

func (s *Store) logMiss(ctx context.Context, key, reason string, err error) {
	if s.logger == nil {
		return
	}
	// Absent keys are expected; everything else is worth a warning.
	level := slog.LevelWarn
	if errors.Is(err, sentinel.ErrNotFound) {
		level = slog.LevelDebug
	}
	s.logger.Log(ctx, level, "secure store miss",
		"key", key,
		"reason", reason,
		"error", err,
	)
}
