// Package accesslog keeps the LGPD data-access trail: who touched which
// personal data category and why.
package accesslog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"helpmoto/internal/platform/metrics"
	"helpmoto/internal/securestore"
)

// DefaultCap bounds the log to the most recent entries, store-wide.
const DefaultCap = 1000

// Entry records a single access to personal data. Append-only; the log is
// capped FIFO across all users, not per user.
type Entry struct {
	UserID    string    `json:"userId"`
	DataType  string    `json:"dataType"`
	Purpose   string    `json:"purpose"`
	Accessor  string    `json:"accessor"`
	Timestamp time.Time `json:"timestamp"`
}

// Option configures the Recorder.
type Option func(*Recorder)

// WithCap overrides the entry cap. Values below one keep the default.
func WithCap(cap int) Option {
	return func(r *Recorder) {
		if cap > 0 {
			r.cap = cap
		}
	}
}

// WithMetrics enables entry and eviction counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Recorder) {
		r.metrics = m
	}
}

// Recorder appends entries to the sealed global access log, trimming the
// oldest entries once the cap is exceeded.
type Recorder struct {
	mu      sync.Mutex
	kv      *securestore.Store
	cap     int
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New constructs a Recorder over the given secure store.
func New(kv *securestore.Store, logger *slog.Logger, opts ...Option) *Recorder {
	r := &Recorder{
		kv:     kv,
		cap:    DefaultCap,
		logger: logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record appends an access entry. The write is best-effort from the
// caller's perspective: a failure must not block the data access that is
// being logged, so callers typically log the returned error and move on.
func (r *Recorder) Record(ctx context.Context, userID, dataType, purpose, accessor string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var entries []Entry
	r.kv.Get(ctx, securestore.AccessLogKey, true, &entries)

	entries = append(entries, Entry{
		UserID:    userID,
		DataType:  dataType,
		Purpose:   purpose,
		Accessor:  accessor,
		Timestamp: time.Now().UTC(),
	})

	if evicted := len(entries) - r.cap; evicted > 0 {
		entries = entries[evicted:]
		if r.metrics != nil {
			r.metrics.IncrementAccessLogEvictions(float64(evicted))
		}
	}

	if err := r.kv.Set(ctx, securestore.AccessLogKey, entries, true); err != nil {
		return fmt.Errorf("record data access: %w", err)
	}
	if r.metrics != nil {
		r.metrics.IncrementAccessLogEntries()
	}
	return nil
}

// List returns the current log contents, oldest first.
func (r *Recorder) List(ctx context.Context) []Entry {
	var entries []Entry
	r.kv.Get(ctx, securestore.AccessLogKey, true, &entries)
	return entries
}

// ListByUser returns the entries concerning a single user, oldest first.
func (r *Recorder) ListByUser(ctx context.Context, userID string) []Entry {
	var filtered []Entry
	for _, entry := range r.List(ctx) {
		if entry.UserID == userID {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}
