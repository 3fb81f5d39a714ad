package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"helpmoto/internal/audit"
	"helpmoto/internal/consent/models"
	"helpmoto/internal/consent/store"
	"helpmoto/internal/securestore"
	dErrors "helpmoto/pkg/domain-errors"
)

type recordedAccess struct {
	userID, dataType, purpose, accessor string
}

type fakeAccessRecorder struct {
	records []recordedAccess
	err     error
}

func (f *fakeAccessRecorder) Record(_ context.Context, userID, dataType, purpose, accessor string) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, recordedAccess{userID, dataType, purpose, accessor})
	return nil
}

type failingLedger struct{}

func (failingLedger) Append(context.Context, *models.Record) error {
	return errors.New("backend down")
}
func (failingLedger) History(context.Context, string) ([]models.Record, error) {
	return nil, nil
}
func (failingLedger) DeleteByUser(context.Context, string) error {
	return nil
}

type ServiceSuite struct {
	suite.Suite
	service    *Service
	auditStore *audit.InMemoryStore
	access     *fakeAccessRecorder
}

func (s *ServiceSuite) SetupTest() {
	key := make([]byte, securestore.KeySize)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	kv, err := securestore.New(securestore.NewMemoryBackend(), securestore.Config{Key: key}, logger)
	s.Require().NoError(err)

	s.auditStore = audit.NewInMemoryStore()
	s.access = &fakeAccessRecorder{}
	s.service = NewService(
		store.New(kv),
		audit.NewPublisher(s.auditStore),
		logger,
		WithPolicyVersion("1.0"),
		WithAccessRecorder(s.access),
	)
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

// TestRecord_ValidationErrors verifies domain error code mapping for invalid input.
func (s *ServiceSuite) TestRecord_ValidationErrors() {
	ctx := context.Background()

	s.T().Run("missing userID returns CodeUnauthorized", func(t *testing.T) {
		_, err := s.service.Record(ctx, "", models.DataTypeLocation, models.PurposeServiceProvision, true)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.T().Run("invalid data type returns CodeBadRequest", func(t *testing.T) {
		_, err := s.service.Record(ctx, "u1", "bogus", models.PurposeServiceProvision, true)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.T().Run("invalid purpose returns CodeBadRequest", func(t *testing.T) {
		_, err := s.service.Record(ctx, "u1", models.DataTypeLocation, "bogus", true)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

// TestRecord_AppendOnly verifies that every call appends and nothing
// deduplicates, including identical consecutive decisions.
func (s *ServiceSuite) TestRecord_AppendOnly() {
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := s.service.Record(ctx, "u1", models.DataTypeLocation, models.PurposeServiceProvision, true)
		s.Require().NoError(err)
	}

	history, err := s.service.History(ctx, "u1")
	s.Require().NoError(err)
	s.Len(history, 3)
	for _, record := range history {
		s.True(record.Granted)
		s.Equal("1.0", record.Version)
	}
}

// TestGrantThenRevoke verifies last-write-wins status resolution.
func (s *ServiceSuite) TestGrantThenRevoke() {
	ctx := context.Background()

	_, err := s.service.Record(ctx, "u1", models.DataTypeLocation, models.PurposeServiceProvision, true)
	s.Require().NoError(err)
	_, err = s.service.Record(ctx, "u1", models.DataTypeLocation, models.PurposeServiceProvision, false)
	s.Require().NoError(err)

	s.False(s.service.HasValidConsent(ctx, "u1", models.DataTypeLocation, models.PurposeServiceProvision))

	history, err := s.service.History(ctx, "u1")
	s.Require().NoError(err)
	s.Len(history, 2)
}

// TestHasValidConsent_DefaultDenied verifies absence of records means not granted.
func (s *ServiceSuite) TestHasValidConsent_DefaultDenied() {
	ctx := context.Background()

	s.False(s.service.HasValidConsent(ctx, "u1", models.DataTypeBehavioral, models.PurposeAnalytics))

	// A different pair's grant does not leak into the checked pair.
	_, err := s.service.Record(ctx, "u1", models.DataTypeLocation, models.PurposeServiceProvision, true)
	s.Require().NoError(err)
	s.False(s.service.HasValidConsent(ctx, "u1", models.DataTypeBehavioral, models.PurposeAnalytics))
}

// TestHasValidConsent_PairIsolation verifies per-pair status with interleaved history.
func (s *ServiceSuite) TestHasValidConsent_PairIsolation() {
	ctx := context.Background()

	_, err := s.service.Record(ctx, "u1", models.DataTypeLocation, models.PurposeServiceProvision, true)
	s.Require().NoError(err)
	_, err = s.service.Record(ctx, "u1", models.DataTypePersonal, models.PurposeMarketing, true)
	s.Require().NoError(err)
	_, err = s.service.Record(ctx, "u1", models.DataTypePersonal, models.PurposeMarketing, false)
	s.Require().NoError(err)

	s.True(s.service.HasValidConsent(ctx, "u1", models.DataTypeLocation, models.PurposeServiceProvision))
	s.False(s.service.HasValidConsent(ctx, "u1", models.DataTypePersonal, models.PurposeMarketing))
}

// TestRecord_StorageFaultFailsWholeOperation verifies that a failed write
// surfaces and nothing is optimistically reported as recorded.
func (s *ServiceSuite) TestRecord_StorageFaultFailsWholeOperation() {
	svc := NewService(failingLedger{}, audit.NewPublisher(s.auditStore),
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := svc.Record(context.Background(), "u1", models.DataTypeLocation, models.PurposeServiceProvision, true)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeStorageFault))
}

// TestRecord_EmitsAudit verifies grant/revoke audit actions.
func (s *ServiceSuite) TestRecord_EmitsAudit() {
	ctx := context.Background()

	_, err := s.service.Record(ctx, "u1", models.DataTypeLocation, models.PurposeServiceProvision, true)
	s.Require().NoError(err)
	_, err = s.service.Record(ctx, "u1", models.DataTypeLocation, models.PurposeServiceProvision, false)
	s.Require().NoError(err)

	events, err := s.auditStore.ListByUser(ctx, "u1")
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(audit.ActionConsentGranted, events[0].Action)
	s.Equal(audit.ActionConsentRevoked, events[1].Action)
}

// TestRecord_LogsDataAccessOnGrant verifies the access trail entry on grants only.
func (s *ServiceSuite) TestRecord_LogsDataAccessOnGrant() {
	ctx := context.Background()

	_, err := s.service.Record(ctx, "u1", models.DataTypeLocation, models.PurposeServiceProvision, true)
	s.Require().NoError(err)
	_, err = s.service.Record(ctx, "u1", models.DataTypeLocation, models.PurposeServiceProvision, false)
	s.Require().NoError(err)

	s.Require().Len(s.access.records, 1)
	s.Equal("user_consent", s.access.records[0].accessor)
	s.Equal("location", s.access.records[0].dataType)
}

// TestRecord_AccessLogFailureDoesNotFailRecord verifies access logging is best-effort.
func (s *ServiceSuite) TestRecord_AccessLogFailureDoesNotFailRecord() {
	s.access.err = errors.New("log sink down")

	_, err := s.service.Record(context.Background(), "u1", models.DataTypeLocation, models.PurposeServiceProvision, true)
	s.Require().NoError(err)
}

// TestHistory_EmptyForUnknownUser verifies the empty-not-error contract.
func (s *ServiceSuite) TestHistory_EmptyForUnknownUser() {
	history, err := s.service.History(context.Background(), "ghost")
	s.Require().NoError(err)
	s.NotNil(history)
	s.Empty(history)
}

// TestRequire verifies the enforcement helper maps denial to CodeMissingConsent.
func (s *ServiceSuite) TestRequire() {
	ctx := context.Background()

	err := s.service.Require(ctx, "u1", models.DataTypeLocation, models.PurposeServiceProvision)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeMissingConsent))

	_, err = s.service.Record(ctx, "u1", models.DataTypeLocation, models.PurposeServiceProvision, true)
	s.Require().NoError(err)
	s.NoError(s.service.Require(ctx, "u1", models.DataTypeLocation, models.PurposeServiceProvision))
}
