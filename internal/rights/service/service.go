// Package service implements the data subject rights operations: full data
// export and account erasure.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"helpmoto/internal/audit"
	consentmodels "helpmoto/internal/consent/models"
	"helpmoto/internal/platform/metrics"
	"helpmoto/internal/securestore"
	dErrors "helpmoto/pkg/domain-errors"
)

// Error Contract:
// - Export fails only on a missing user; absent or unreadable stored data
//   degrades to null/empty sections of the bundle.
// - Erase attempts every key even after failures and returns CodeStorageFault
//   when any key could not be removed, so callers can retry.

// ExportFormat is the only serialization the export bundle is produced in.
const ExportFormat = "JSON"

// ExportBundle is the complete portable copy of a user's stored data.
type ExportBundle struct {
	UserData       any                    `json:"userData"`
	ConsentHistory []consentmodels.Record `json:"consentHistory"`
	ExportDate     time.Time              `json:"exportDate"`
	Format         string                 `json:"format"`
}

// ConsentHistorian is the slice of the consent service the exporter needs.
type ConsentHistorian interface {
	History(ctx context.Context, userID string) ([]consentmodels.Record, error)
}

// Service executes export and erasure against the secure store.
type Service struct {
	kv      *securestore.Store
	consent ConsentHistorian
	auditor *audit.Publisher
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures optional Service dependencies.
type Option func(*Service)

// WithMetrics attaches metric counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService constructs the rights service.
func NewService(kv *securestore.Store, consent ConsentHistorian, auditor *audit.Publisher, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		kv:      kv,
		consent: consent,
		auditor: auditor,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Export assembles the portable data bundle. Profile and consent history are
// fetched concurrently; a user with nothing stored still receives a valid
// bundle with a null userData section and empty history.
func (s *Service) Export(ctx context.Context, userID string) (*ExportBundle, error) {
	if userID == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "user ID is required")
	}

	var (
		profile any
		history []consentmodels.Record
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var stored map[string]any
		if s.kv.Get(gctx, securestore.ProfileKey(userID), true, &stored) {
			profile = stored
		}
		return nil
	})
	g.Go(func() error {
		var err error
		history, err = s.consent.History(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorageFault, "failed to assemble export")
	}

	if history == nil {
		history = []consentmodels.Record{}
	}

	s.emitAudit(ctx, audit.Event{
		UserID:   userID,
		Action:   audit.ActionDataExported,
		Decision: audit.DecisionGranted,
		Reason:   audit.ReasonUserInitiated,
	})
	if s.metrics != nil {
		s.metrics.IncrementDataExports()
	}
	s.logger.Info("user data exported", slog.String("user_id", userID))

	return &ExportBundle{
		UserData:       profile,
		ConsentHistory: history,
		ExportDate:     time.Now().UTC(),
		Format:         ExportFormat,
	}, nil
}

// Erase removes every stored key in the user's footprint. Failures on one
// key do not stop the sweep; the remaining keys are still attempted.
func (s *Service) Erase(ctx context.Context, userID string) error {
	if userID == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "user ID is required")
	}

	var failed []string
	for _, key := range securestore.ErasureKeys(userID) {
		if err := s.kv.Delete(ctx, key); err != nil {
			failed = append(failed, key)
			s.logger.Error("failed to erase key",
				slog.String("user_id", userID),
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
			if s.metrics != nil {
				s.metrics.IncrementErasureKeyFailures()
			}
		}
	}

	s.emitAudit(ctx, audit.Event{
		UserID:   userID,
		Action:   audit.ActionDataErased,
		Decision: audit.DecisionErased,
		Reason:   audit.ReasonUserInitiated,
	})
	if s.metrics != nil {
		s.metrics.IncrementDataErasures()
	}

	if len(failed) > 0 {
		return dErrors.New(dErrors.CodeStorageFault,
			fmt.Sprintf("erasure incomplete: %d of %d keys failed", len(failed), len(securestore.ErasureKeys(userID))))
	}
	s.logger.Info("user data erased", slog.String("user_id", userID))
	return nil
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.Warn("failed to emit audit event",
			slog.String("action", event.Action),
			slog.String("error", err.Error()),
		)
	}
}
