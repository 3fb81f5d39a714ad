package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"helpmoto/internal/accesslog"
	"helpmoto/internal/audit"
	consentservice "helpmoto/internal/consent/service"
	consentstore "helpmoto/internal/consent/store"
	"helpmoto/internal/jwtauth"
	"helpmoto/internal/platform/config"
	"helpmoto/internal/platform/health"
	"helpmoto/internal/platform/httpserver"
	"helpmoto/internal/platform/logger"
	"helpmoto/internal/platform/metrics"
	privacyservice "helpmoto/internal/privacy/service"
	rightsservice "helpmoto/internal/rights/service"
	"helpmoto/internal/securestore"
	httptransport "helpmoto/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	log.Info("initializing helpmoto privacy service",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"backend", cfg.Backend,
	)

	healthHandler := health.New(cfg.Environment)

	backend, closeBackend, err := buildBackend(cfg, healthHandler)
	if err != nil {
		log.Error("failed to initialize storage backend", "error", err)
		os.Exit(1)
	}
	defer closeBackend()

	key, err := cfg.KeyMaterial()
	if err != nil {
		log.Error("invalid encryption key", "error", err)
		os.Exit(1)
	}

	m := metrics.New()

	kv, err := securestore.New(backend, securestore.Config{
		Key:        key,
		Passphrase: cfg.Passphrase,
		Salt:       cfg.Salt,
	}, log, securestore.WithMetrics(m))
	if err != nil {
		log.Error("failed to initialize secure store", "error", err)
		os.Exit(1)
	}

	auditor := audit.NewPublisher(
		audit.NewLogStore(log),
		audit.WithAsyncBuffer(256),
		audit.WithPublisherLogger(log),
	)
	defer auditor.Close()

	recorder := accesslog.New(kv, log,
		accesslog.WithCap(cfg.AccessLogCap),
		accesslog.WithMetrics(m),
	)

	consent := consentservice.NewService(consentstore.New(kv), auditor, log,
		consentservice.WithMetrics(m),
		consentservice.WithPolicyVersion(cfg.PolicyVersion),
		consentservice.WithAccessRecorder(recorder),
	)
	settings := privacyservice.NewService(kv, consent, auditor, log,
		privacyservice.WithMetrics(m),
	)
	rights := rightsservice.NewService(kv, consent, auditor, log,
		rightsservice.WithMetrics(m),
	)

	tokens := jwtauth.NewService(cfg.JWTSigningKey, "helpmoto", cfg.TokenTTL)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Consent:   httptransport.NewConsentHandler(consent, log),
		Settings:  httptransport.NewSettingsHandler(settings, log),
		Rights:    httptransport.NewRightsHandler(rights, log),
		Health:    healthHandler,
		Validator: jwtauth.NewMiddlewareAdapter(tokens),
		Logger:    log,
	})

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting http server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown on SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	log.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}

// buildBackend selects the secure storage backend from config and registers
// its readiness check. The returned func releases backend resources.
func buildBackend(cfg config.Server, h *health.Handler) (securestore.Backend, func(), error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		backend, err := securestore.NewSQLiteBackend(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		h.RegisterCheck("sqlite", func() error { return backend.Ping(context.Background()) })
		return backend, func() { _ = backend.Close() }, nil
	case config.BackendRedis:
		backend := securestore.NewRedisBackend(cfg.RedisAddr)
		h.RegisterCheck("redis", func() error { return backend.Ping(context.Background()) })
		return backend, func() { _ = backend.Close() }, nil
	default:
		return securestore.NewMemoryBackend(), func() {}, nil
	}
}
