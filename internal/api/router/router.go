// Package router assembles the HTTP surface of the guidance API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/douggil74/busy-preacher-mvp-sub000/internal/guidance"
	httpmiddleware "github.com/douggil74/busy-preacher-mvp-sub000/internal/http/middleware"
	"github.com/douggil74/busy-preacher-mvp-sub000/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	GuidanceHandler    *guidance.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.GuidanceHandler != nil {
		r.Route("/api", func(api chi.Router) {
			if cfg.RateLimitPerSecond > 0 {
				api.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
			}
			api.Post("/pastoral-guidance", cfg.GuidanceHandler.Guidance)
		})
	}

	return r
}
