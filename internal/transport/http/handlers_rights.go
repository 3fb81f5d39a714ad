package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"helpmoto/internal/platform/middleware"
	rightsService "helpmoto/internal/rights/service"
	jsonutil "helpmoto/internal/transport/http/json"
	"helpmoto/internal/transport/http/shared"
	dErrors "helpmoto/pkg/domain-errors"
	"helpmoto/pkg/privacy"
)

type RightsService interface {
	Export(ctx context.Context, userID string) (*rightsService.ExportBundle, error)
	Erase(ctx context.Context, userID string) error
}

// RightsHandler handles data subject rights endpoints.
type RightsHandler struct {
	logger *slog.Logger
	rights RightsService
}

func NewRightsHandler(rights RightsService, logger *slog.Logger) *RightsHandler {
	return &RightsHandler{logger: logger, rights: rights}
}

func (h *RightsHandler) Register(r chi.Router) {
	r.Get("/me/data-export", h.handleDataExport)
	r.Delete("/me", h.handleDataErasure)
}

func (h *RightsHandler) handleDataExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := resolveSubject(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	bundle, err := h.rights.Export(ctx, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to export user data",
			slog.String("request_id", middleware.GetRequestID(ctx)),
			slog.String("error", err.Error()),
		)
		shared.WriteError(w, err)
		return
	}

	// anonymize=true returns the bundle with PII fields masked, for sharing
	// the export with a third party without handing over identifiers.
	if r.URL.Query().Get("anonymize") == "true" {
		if profile, ok := bundle.UserData.(map[string]any); ok {
			bundle.UserData = privacy.AnonymizeProfile(userID, profile)
		}
	}

	jsonutil.WriteJSON(w, http.StatusOK, bundle)
}

func (h *RightsHandler) handleDataErasure(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := resolveSubject(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.rights.Erase(ctx, userID); err != nil {
		h.logger.ErrorContext(ctx, "failed to erase user data",
			slog.String("request_id", middleware.GetRequestID(ctx)),
			slog.String("error", err.Error()),
		)
		shared.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// resolveSubject determines which user a request acts on. By default that is
// the authenticated subject; a caller holding the admin scope may act on
// another user via the user_id query parameter.
func resolveSubject(r *http.Request) (string, error) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", dErrors.New(dErrors.CodeUnauthorized, "missing authenticated subject")
	}

	if target := r.URL.Query().Get("user_id"); target != "" && target != userID {
		if !middleware.HasScope(ctx, middleware.ScopeAdmin) {
			return "", dErrors.New(dErrors.CodeForbidden, "acting on another user requires admin scope")
		}
		return target, nil
	}
	return userID, nil
}
