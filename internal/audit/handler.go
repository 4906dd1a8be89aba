package audit

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"shopkeep/internal/platform/middleware"
	"shopkeep/internal/transport/httputil"
)

// Handler exposes the audit trail to the admin surface.
type Handler struct {
	query  *Query
	logger *slog.Logger
}

// NewHandler creates an audit query handler.
func NewHandler(query *Query, logger *slog.Logger) *Handler {
	return &Handler{query: query, logger: logger}
}

// Register registers audit routes with the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/audit-logs", h.HandleList)
}

// HandleList returns one page of audit logs, filterable by entity_type and
// action_type, ordered newest first.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", defaultPageLimit)
	filter := Filter{
		EntityType: r.URL.Query().Get("entity_type"),
		ActionType: ActionType(r.URL.Query().Get("action_type")),
	}

	result, err := h.query.List(ctx, filter, page, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list audit logs",
			"error", err,
			"request_id", requestID,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "audit logs retrieved",
		"request_id", requestID,
		"count", len(result.Logs),
		"total", result.Pagination.Total,
	)

	httputil.WriteJSON(w, http.StatusOK, result)
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 1 {
		return fallback
	}
	return parsed
}
