package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"helpmoto/internal/platform/middleware"
	privacyModel "helpmoto/internal/privacy/models"
	jsonutil "helpmoto/internal/transport/http/json"
	"helpmoto/internal/transport/http/shared"
	dErrors "helpmoto/pkg/domain-errors"
)

type SettingsService interface {
	Load(ctx context.Context, userID string) (privacyModel.Settings, error)
	Update(ctx context.Context, userID string, patch privacyModel.SettingsPatch) (privacyModel.Settings, error)
}

// SettingsHandler handles the privacy settings endpoints.
type SettingsHandler struct {
	logger   *slog.Logger
	settings SettingsService
}

func NewSettingsHandler(settings SettingsService, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{logger: logger, settings: settings}
}

func (h *SettingsHandler) Register(r chi.Router) {
	r.Get("/privacy/settings", h.handleGetSettings)
	r.Put("/privacy/settings", h.handleUpdateSettings)
}

func (h *SettingsHandler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	userID, err := resolveSubject(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	settings, err := h.settings.Load(r.Context(), userID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	jsonutil.WriteJSON(w, http.StatusOK, settings)
}

func (h *SettingsHandler) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var patch privacyModel.SettingsPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	userID, err := resolveSubject(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	settings, err := h.settings.Update(ctx, userID, patch)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to update privacy settings",
			slog.String("request_id", middleware.GetRequestID(ctx)),
			slog.String("error", err.Error()),
		)
		shared.WriteError(w, err)
		return
	}

	jsonutil.WriteJSON(w, http.StatusOK, settings)
}
