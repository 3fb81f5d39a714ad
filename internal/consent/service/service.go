package service

import (
	"context"
	"log/slog"
	"time"

	"helpmoto/internal/audit"
	"helpmoto/internal/consent/models"
	"helpmoto/internal/platform/metrics"
	dErrors "helpmoto/pkg/domain-errors"
)

// Ledger defines the persistence interface for consent histories.
// Error Contract:
// - Append returns nil only when the record is durably persisted
// - History degrades to an empty slice on unreadable state
type Ledger interface {
	Append(ctx context.Context, record *models.Record) error
	History(ctx context.Context, userID string) ([]models.Record, error)
	DeleteByUser(ctx context.Context, userID string) error
}

// AccessRecorder logs accesses to personal data for the audit trail.
type AccessRecorder interface {
	Record(ctx context.Context, userID, dataType, purpose, accessor string) error
}

// Option configures the Service.
type Option func(*Service)

// WithMetrics sets the metrics instance for the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithPolicyVersion sets the privacy policy version stamped on new records.
func WithPolicyVersion(version string) Option {
	return func(s *Service) {
		if version != "" {
			s.policyVersion = version
		}
	}
}

// WithAccessRecorder enables data-access logging on consent grants.
func WithAccessRecorder(recorder AccessRecorder) Option {
	return func(s *Service) {
		s.access = recorder
	}
}

const defaultPolicyVersion = "1.0"

// Service owns the consent ledger lifecycle: recording decisions,
// reading history, and answering "is this pair currently consented".
type Service struct {
	ledger        Ledger
	auditor       *audit.Publisher
	logger        *slog.Logger
	metrics       *metrics.Metrics
	access        AccessRecorder
	policyVersion string
}

func NewService(ledger Ledger, auditor *audit.Publisher, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		ledger:        ledger,
		auditor:       auditor,
		logger:        logger,
		policyVersion: defaultPolicyVersion,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Record appends a consent decision to the user's ledger. The ledger never
// overwrites: re-confirming the current state still appends, which is the
// audit trail working as intended. When the underlying write fails the whole
// operation fails and no cached state may be updated by the caller.
func (s *Service) Record(ctx context.Context, userID string, dataType models.DataType, purpose models.Purpose, granted bool) (*models.Record, error) {
	if userID == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing user context")
	}
	if !dataType.IsValid() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "invalid data type")
	}
	if !purpose.IsValid() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "invalid purpose")
	}

	record, err := models.NewRecord(userID, dataType, purpose, granted, time.Now().UTC(), s.policyVersion)
	if err != nil {
		return nil, err
	}

	if err := s.ledger.Append(ctx, record); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorageFault, "failed to persist consent")
	}

	action := audit.ActionConsentGranted
	decision := audit.DecisionGranted
	if !granted {
		action = audit.ActionConsentRevoked
		decision = audit.DecisionRevoked
	}
	s.emitAudit(ctx, audit.Event{
		UserID:    userID,
		DataType:  string(dataType),
		Purpose:   string(purpose),
		Action:    action,
		Decision:  decision,
		Reason:    audit.ReasonUserInitiated,
		Timestamp: record.Timestamp,
	})

	if s.metrics != nil {
		if granted {
			s.metrics.IncrementConsentsGranted(string(dataType), string(purpose))
		} else {
			s.metrics.IncrementConsentsRevoked(string(dataType), string(purpose))
		}
	}

	if granted && s.access != nil {
		if err := s.access.Record(ctx, userID, string(dataType), string(purpose), "user_consent"); err != nil {
			s.logger.WarnContext(ctx, "failed to log data access for consent grant",
				"user_id", userID,
				"error", err,
			)
		}
	}

	return record, nil
}

// History returns the user's full ordered consent history. Missing or
// unreadable state is an empty history, never an error.
func (s *Service) History(ctx context.Context, userID string) ([]models.Record, error) {
	if userID == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing user context")
	}
	history, err := s.ledger.History(ctx, userID)
	if err != nil {
		s.logger.WarnContext(ctx, "consent history read degraded to empty",
			"user_id", userID,
			"error", err,
		)
		return []models.Record{}, nil
	}
	if history == nil {
		return []models.Record{}, nil
	}
	return history, nil
}

// HasValidConsent reports the current status of a (data type, purpose)
// pair: the Granted value of the last matching record, false when no record
// matches or the history cannot be read.
func (s *Service) HasValidConsent(ctx context.Context, userID string, dataType models.DataType, purpose models.Purpose) bool {
	if userID == "" || !dataType.IsValid() || !purpose.IsValid() {
		return false
	}
	history, err := s.ledger.History(ctx, userID)
	if err != nil {
		s.logger.WarnContext(ctx, "consent check degraded to denied",
			"user_id", userID,
			"error", err,
		)
		history = nil
	}

	granted := models.CurrentStatus(history, dataType, purpose)

	decision := audit.DecisionDenied
	if granted {
		decision = audit.DecisionGranted
	}
	s.emitAudit(ctx, audit.Event{
		UserID:   userID,
		DataType: string(dataType),
		Purpose:  string(purpose),
		Action:   audit.ActionConsentChecked,
		Decision: decision,
		Reason:   audit.ReasonUserInitiated,
	})

	if s.metrics != nil {
		if granted {
			s.metrics.IncrementConsentCheckPassed(string(dataType), string(purpose))
		} else {
			s.metrics.IncrementConsentCheckFailed(string(dataType), string(purpose))
		}
	}
	return granted
}

// Require enforces that consent is currently granted for the pair, for
// callers that gate a data flow on it.
func (s *Service) Require(ctx context.Context, userID string, dataType models.DataType, purpose models.Purpose) error {
	if s.HasValidConsent(ctx, userID, dataType, purpose) {
		return nil
	}
	return dErrors.New(dErrors.CodeMissingConsent, "consent not granted for required purpose")
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	_ = s.auditor.Emit(ctx, event)
}
