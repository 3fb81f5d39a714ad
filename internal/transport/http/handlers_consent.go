package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	consentModel "helpmoto/internal/consent/models"
	"helpmoto/internal/platform/middleware"
	jsonutil "helpmoto/internal/transport/http/json"
	"helpmoto/internal/transport/http/shared"
	dErrors "helpmoto/pkg/domain-errors"
)

type ConsentService interface {
	Record(ctx context.Context, userID string, dataType consentModel.DataType, purpose consentModel.Purpose, granted bool) (*consentModel.Record, error)
	History(ctx context.Context, userID string) ([]consentModel.Record, error)
	HasValidConsent(ctx context.Context, userID string, dataType consentModel.DataType, purpose consentModel.Purpose) bool
}

// ConsentHandler handles consent ledger endpoints.
type ConsentHandler struct {
	logger  *slog.Logger
	consent ConsentService
}

func NewConsentHandler(consent ConsentService, logger *slog.Logger) *ConsentHandler {
	return &ConsentHandler{logger: logger, consent: consent}
}

func (h *ConsentHandler) Register(r chi.Router) {
	r.Post("/privacy/consent", h.handleRecordConsent)
	r.Get("/privacy/consent", h.handleGetHistory)
	r.Get("/privacy/consent/check", h.handleCheckConsent)
}

type recordConsentRequest struct {
	DataType string `json:"dataType"`
	Purpose  string `json:"purpose"`
	Granted  *bool  `json:"granted"`
}

func (h *ConsentHandler) handleRecordConsent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req recordConsentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if req.Granted == nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "granted is required"))
		return
	}

	userID, err := resolveSubject(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	record, err := h.consent.Record(ctx, userID,
		consentModel.DataType(req.DataType), consentModel.Purpose(req.Purpose), *req.Granted)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to record consent",
			slog.String("request_id", middleware.GetRequestID(ctx)),
			slog.String("error", err.Error()),
		)
		shared.WriteError(w, err)
		return
	}

	jsonutil.WriteJSON(w, http.StatusCreated, record)
}

func (h *ConsentHandler) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := resolveSubject(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	history, err := h.consent.History(ctx, userID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	jsonutil.WriteJSON(w, http.StatusOK, map[string]any{
		"userId":  userID,
		"history": history,
	})
}

func (h *ConsentHandler) handleCheckConsent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dataType := consentModel.DataType(r.URL.Query().Get("dataType"))
	purpose := consentModel.Purpose(r.URL.Query().Get("purpose"))
	if !dataType.IsValid() || !purpose.IsValid() {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "dataType and purpose query parameters are required"))
		return
	}

	userID, err := resolveSubject(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	jsonutil.WriteJSON(w, http.StatusOK, map[string]any{
		"dataType": dataType,
		"purpose":  purpose,
		"granted":  h.consent.HasValidConsent(ctx, userID, dataType, purpose),
	})
}
