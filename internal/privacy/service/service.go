// Package service projects privacy settings toggles onto the consent ledger
// and persists them through the secure store.
package service

import (
	"context"
	"log/slog"

	"helpmoto/internal/audit"
	consentmodels "helpmoto/internal/consent/models"
	"helpmoto/internal/platform/metrics"
	"helpmoto/internal/privacy/models"
	"helpmoto/internal/securestore"
	dErrors "helpmoto/pkg/domain-errors"
)

// Error Contract:
// - Update fails with CodeUnauthorized on a missing user and CodeBadRequest
//   on an empty patch.
// - A failed settings write fails the whole update with CodeStorageFault;
//   no consent records are mirrored in that case.
// - Mirror failures after a persisted settings write do NOT fail the update;
//   they are logged and counted, and the remaining toggles still mirror.

// ConsentRecorder is the slice of the consent service the projector needs.
type ConsentRecorder interface {
	Record(ctx context.Context, userID string, dataType consentmodels.DataType, purpose consentmodels.Purpose, granted bool) (*consentmodels.Record, error)
}

// Service owns the settings document lifecycle.
type Service struct {
	kv      *securestore.Store
	consent ConsentRecorder
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

// NewService constructs the settings projector.
func NewService(kv *securestore.Store, consent ConsentRecorder, auditor *audit.Publisher, logger *slog.Logger, opts ...Option) *Service {
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

// Load returns the user's stored settings, or the all-off default when none
// exist or the stored blob is unreadable.
func (s *Service) Load(ctx context.Context, userID string) (models.Settings, error) {
	if userID == "" {
		return models.Settings{}, dErrors.New(dErrors.CodeUnauthorized, "user ID is required")
	}
	var settings models.Settings
	s.kv.Get(ctx, securestore.PreferencesKey(userID), true, &settings)
	return settings, nil
}

// Update merges the patch into the stored settings, persists the result, and
// mirrors each touched toggle into the consent ledger. Settings persistence
// and ledger mirroring are deliberately not atomic: the settings document is
// the source of truth for the UI, the ledger for consent decisions, and a
// mirror failure must not roll back an already accepted toggle.
func (s *Service) Update(ctx context.Context, userID string, patch models.SettingsPatch) (models.Settings, error) {
	if userID == "" {
		return models.Settings{}, dErrors.New(dErrors.CodeUnauthorized, "user ID is required")
	}
	if patch.IsEmpty() {
		return models.Settings{}, dErrors.New(dErrors.CodeBadRequest, "settings patch is empty")
	}

	var settings models.Settings
	key := securestore.PreferencesKey(userID)
	s.kv.Get(ctx, key, true, &settings)

	touched := settings.Apply(patch)

	if err := s.kv.Set(ctx, key, settings, true); err != nil {
		return models.Settings{}, dErrors.Wrap(err, dErrors.CodeStorageFault, "failed to persist settings")
	}

	s.mirror(ctx, userID, settings, touched)

	s.emitAudit(ctx, audit.Event{
		UserID:   userID,
		Action:   audit.ActionSettingsUpdated,
		Decision: audit.DecisionGranted,
		Reason:   audit.ReasonUserInitiated,
	})
	if s.metrics != nil {
		s.metrics.IncrementSettingsUpdates()
	}

	s.logger.Info("privacy settings updated",
		slog.String("user_id", userID),
		slog.Any("touched", touched),
	)
	return settings, nil
}

// mirror appends one consent record per touched toggle that has a ledger
// pair. Each pair mirrors independently so one failure cannot starve the
// rest.
func (s *Service) mirror(ctx context.Context, userID string, settings models.Settings, touched []string) {
	touchedSet := make(map[string]bool, len(touched))
	for _, name := range touched {
		touchedSet[name] = true
	}

	for _, pair := range models.MirrorPairs {
		if !touchedSet[pair.Setting] {
			continue
		}
		granted := settings.Value(pair.Setting)
		if _, err := s.consent.Record(ctx, userID, pair.DataType, pair.Purpose, granted); err != nil {
			s.logger.Error("failed to mirror settings toggle into consent ledger",
				slog.String("user_id", userID),
				slog.String("setting", pair.Setting),
				slog.String("error", err.Error()),
			)
			if s.metrics != nil {
				s.metrics.IncrementConsentMirrorFailures(pair.Setting)
			}
			s.emitAudit(ctx, audit.Event{
				UserID:   userID,
				Action:   audit.ActionSettingsUpdated,
				DataType: string(pair.DataType),
				Purpose:  string(pair.Purpose),
				Decision: audit.DecisionDenied,
				Reason:   audit.ReasonSettingsMirror,
			})
		}
	}
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.Warn("failed to emit audit event",
			slog.String("action", string(event.Action)),
			slog.String("error", err.Error()),
		)
	}
}
