package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	"helpmoto/internal/audit"
	consentmodels "helpmoto/internal/consent/models"
	consentservice "helpmoto/internal/consent/service"
	consentstore "helpmoto/internal/consent/store"
	"helpmoto/internal/securestore"
	dErrors "helpmoto/pkg/domain-errors"
)

// deleteFailBackend fails deletes for one key and records every delete
// attempt, so tests can assert the erasure sweep keeps going after a fault.
type deleteFailBackend struct {
	*securestore.MemoryBackend
	failKey  string
	attempts []string
}

func (b *deleteFailBackend) DeleteItem(ctx context.Context, key string) error {
	b.attempts = append(b.attempts, key)
	if key == b.failKey {
		return errors.New("backend down")
	}
	return b.MemoryBackend.DeleteItem(ctx, key)
}

type ServiceSuite struct {
	suite.Suite
	kv         *securestore.Store
	consent    *consentservice.Service
	service    *Service
	auditStore *audit.InMemoryStore
}

func (s *ServiceSuite) newStore(backend securestore.Backend) *securestore.Store {
	key := make([]byte, securestore.KeySize)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	kv, err := securestore.New(backend, securestore.Config{Key: key}, logger)
	s.Require().NoError(err)
	return kv
}

func (s *ServiceSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.kv = s.newStore(securestore.NewMemoryBackend())
	s.auditStore = audit.NewInMemoryStore()
	auditor := audit.NewPublisher(s.auditStore)
	s.consent = consentservice.NewService(consentstore.New(s.kv), auditor, logger)
	s.service = NewService(s.kv, s.consent, auditor, logger)
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) seedUser(ctx context.Context, userID string) {
	profile := map[string]any{"name": "Ana Souza", "email": "ana@example.com"}
	s.Require().NoError(s.kv.Set(ctx, securestore.ProfileKey(userID), profile, true))
	_, err := s.consent.Record(ctx, userID, consentmodels.DataTypeLocation, consentmodels.PurposeServiceProvision, true)
	s.Require().NoError(err)
}

// TestExport_BundleShape verifies a populated bundle carries profile,
// history, and the fixed format marker.
func (s *ServiceSuite) TestExport_BundleShape() {
	ctx := context.Background()
	s.seedUser(ctx, "u1")

	bundle, err := s.service.Export(ctx, "u1")
	s.Require().NoError(err)
	s.Equal(ExportFormat, bundle.Format)
	s.False(bundle.ExportDate.IsZero())

	profile, ok := bundle.UserData.(map[string]any)
	s.Require().True(ok)
	s.Equal("Ana Souza", profile["name"])

	s.Require().Len(bundle.ConsentHistory, 1)
	s.True(bundle.ConsentHistory[0].Granted)
}

// TestExport_UnknownUserGetsEmptyBundle verifies absence degrades, not errors.
func (s *ServiceSuite) TestExport_UnknownUserGetsEmptyBundle() {
	bundle, err := s.service.Export(context.Background(), "ghost")
	s.Require().NoError(err)
	s.Nil(bundle.UserData)
	s.NotNil(bundle.ConsentHistory)
	s.Empty(bundle.ConsentHistory)
	s.Equal(ExportFormat, bundle.Format)
}

func (s *ServiceSuite) TestExport_RequiresUser() {
	_, err := s.service.Export(context.Background(), "")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

// TestErase_RemovesFullFootprint verifies every stored key is gone and a
// subsequent export sees a fresh account.
func (s *ServiceSuite) TestErase_RemovesFullFootprint() {
	ctx := context.Background()
	s.seedUser(ctx, "u1")
	s.Require().NoError(s.kv.Set(ctx, securestore.LocationKey("u1"), map[string]any{"lat": -23.55}, true))

	s.Require().NoError(s.service.Erase(ctx, "u1"))

	bundle, err := s.service.Export(ctx, "u1")
	s.Require().NoError(err)
	s.Nil(bundle.UserData)
	s.Empty(bundle.ConsentHistory)

	var loc map[string]any
	s.False(s.kv.Get(ctx, securestore.LocationKey("u1"), true, &loc))
}

// TestErase_PartialFailureAttemptsAllKeys verifies the sweep does not stop
// at the first failed key and reports the incomplete erasure.
func (s *ServiceSuite) TestErase_PartialFailureAttemptsAllKeys() {
	ctx := context.Background()
	backend := &deleteFailBackend{
		MemoryBackend: securestore.NewMemoryBackend(),
		failKey:       securestore.ConsentKey("u1"),
	}
	kv := s.newStore(backend)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(kv, consentservice.NewService(consentstore.New(kv), audit.NewPublisher(s.auditStore), logger), audit.NewPublisher(s.auditStore), logger)

	err := svc.Erase(ctx, "u1")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeStorageFault))
	s.Equal(securestore.ErasureKeys("u1"), backend.attempts)
}

func (s *ServiceSuite) TestErase_RequiresUser() {
	err := s.service.Erase(context.Background(), "")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

// TestErase_EmitsAudit verifies the erasure audit trail survives the wipe,
// since audit events live outside the user's stored footprint.
func (s *ServiceSuite) TestErase_EmitsAudit() {
	ctx := context.Background()
	s.seedUser(ctx, "u1")
	s.Require().NoError(s.service.Erase(ctx, "u1"))

	events, err := s.auditStore.ListByUser(ctx, "u1")
	s.Require().NoError(err)

	var erased bool
	for _, event := range events {
		if event.Action == audit.ActionDataErased {
			erased = true
		}
	}
	s.True(erased)
}
