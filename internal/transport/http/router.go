package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shopkeep/internal/admin"
	"shopkeep/internal/audit"
	"shopkeep/internal/auth"
	"shopkeep/internal/identity"
	"shopkeep/internal/platform/middleware"
	"shopkeep/internal/product"
	"shopkeep/internal/transport/httputil"
	"shopkeep/internal/user"
)

// Handlers bundles the per-domain HTTP handlers mounted by the router.
type Handlers struct {
	Auth     *auth.Handler
	Users    *user.Handler
	Products *product.Handler
	Audit    *audit.Handler
	Admin    *admin.Handler
}

// Config wires the router.
type Config struct {
	Logger   *slog.Logger
	Verifier middleware.PrincipalVerifier
	Handlers Handlers
	// Ready reports dependency health for the /healthz endpoint. Nil means
	// always healthy.
	Ready func(r *http.Request) error
}

// NewRouter assembles the full route table. Authorization shape: login and
// the active-product listing are public; everything else requires a verified
// token, with the audit trail and admin operations additionally gated to
// ADMIN before the handler runs.
func NewRouter(cfg Config) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if cfg.Ready != nil {
			if err := cfg.Ready(req); err != nil {
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Public surface.
	cfg.Handlers.Auth.RegisterPublic(r)
	cfg.Handlers.Products.RegisterPublic(r)

	// Authenticated surface. Role gates live in the services; the extra
	// router-level ADMIN gate below covers read paths with no service gate.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(cfg.Verifier, cfg.Logger))

		cfg.Handlers.Auth.Register(r)
		cfg.Handlers.Users.Register(r)
		cfg.Handlers.Products.Register(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(cfg.Logger, identity.RoleAdmin))
			cfg.Handlers.Audit.Register(r)
			cfg.Handlers.Admin.Register(r)
		})
	})

	return r
}
