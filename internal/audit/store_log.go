package audit

import (
	"context"
	"log/slog"

	"helpmoto/pkg/privacy"
)

// LogStore writes audit events to the structured log. Used in deployments
// where the log pipeline is the system of record for compliance events.
// User IDs are pseudonymized before they reach the log so the pipeline never
// stores a direct identifier.
type LogStore struct {
	logger *slog.Logger
}

func NewLogStore(logger *slog.Logger) *LogStore {
	return &LogStore{logger: logger}
}

func (s *LogStore) Append(ctx context.Context, event Event) error {
	s.logger.InfoContext(ctx, "audit event",
		"action", event.Action,
		"subject", privacy.AnonymousID(event.UserID),
		"data_type", event.DataType,
		"purpose", event.Purpose,
		"decision", event.Decision,
		"reason", event.Reason,
		"timestamp", event.Timestamp,
	)
	return nil
}

// ListByUser is unsupported for the log sink; queries go to the log pipeline.
func (s *LogStore) ListByUser(_ context.Context, _ string) ([]Event, error) {
	return nil, nil
}
