package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"helpmoto/internal/platform/health"
	"helpmoto/internal/platform/middleware"
)

// RouterConfig bundles the handlers and cross-cutting dependencies the
// router wires together.
type RouterConfig struct {
	Consent   *ConsentHandler
	Settings  *SettingsHandler
	Rights    *RightsHandler
	Health    *health.Handler
	Validator middleware.TokenValidator
	Logger    *slog.Logger
}

// NewRouter wires all endpoints with the middleware stack. Health and
// metrics stay outside the auth gate; every privacy and rights endpoint
// requires a valid bearer token.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ContentTypeJSON)

	cfg.Health.Register(r)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(cfg.Validator, cfg.Logger))
		cfg.Consent.Register(r)
		cfg.Settings.Register(r)
		cfg.Rights.Register(r)
	})

	return r
}
