// Package httptransport assembles the /api router: shared middleware, the
// bearer token gate and the role groups each module mounts its routes into.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"truetrace/internal/platform/metrics"
	"truetrace/pkg/domain"
	"truetrace/pkg/platform/middleware/auth"
	"truetrace/pkg/platform/middleware/metadata"
	request "truetrace/pkg/platform/middleware/request"
	"truetrace/pkg/platform/middleware/requesttime"
)

// Routes mounts a module's handlers, for example (*handler.Handler).Register.
type Routes func(r chi.Router)

type Config struct {
	Logger  *slog.Logger
	Metrics *metrics.HTTP
	Tokens  auth.JWTValidator
	// RequestTimeout bounds the request context, 0 for none. Verification
	// waits for the wallet, so keep it above the signing round trip.
	RequestTimeout time.Duration

	// Public routes need no token.
	Public []Routes
	// Authenticated routes accept any role.
	Authenticated []Routes
	// Manufacturer routes are restricted to the Manufacturer role.
	Manufacturer []Routes
}

// NewRouter mounts every group under /api.
func NewRouter(cfg Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recovery(logger))
	r.Use(cfg.Metrics.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	if cfg.RequestTimeout > 0 {
		r.Use(request.Timeout(cfg.RequestTimeout))
	}

	r.Route("/api", func(api chi.Router) {
		api.Group(func(g chi.Router) {
			for _, mount := range cfg.Public {
				mount(g)
			}
		})
		api.Group(func(g chi.Router) {
			g.Use(auth.RequireAuth(cfg.Tokens, logger))
			for _, mount := range cfg.Authenticated {
				mount(g)
			}
			g.Group(func(m chi.Router) {
				m.Use(auth.RequireRole(logger, domain.RoleManufacturer))
				for _, mount := range cfg.Manufacturer {
					mount(m)
				}
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not_found","error_description":"route not found"}`))
	})
	return r
}
