package admin

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"shopkeep/internal/identity"
	"shopkeep/internal/platform/middleware"
	"shopkeep/internal/transport/httputil"
)

// Handler exposes the admin endpoints over HTTP.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler constructs the admin HTTP handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the admin routes on the given router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/admin/stats", h.HandleStats)
	r.Post("/admin/truncate", h.HandleTruncate)
}

func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context(), identity.PrincipalFromContext(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) HandleTruncate(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Truncate(r.Context(), identity.PrincipalFromContext(r.Context())); err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "all tables have been truncated successfully",
	})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorContext(r.Context(), "admin request failed",
		"error", err,
		"path", r.URL.Path,
		"request_id", middleware.GetRequestID(r.Context()),
	)
	httputil.WriteError(w, err)
}
