// Package handler exposes the admin dashboard endpoint.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vecinal/internal/stats/service"
	"vecinal/pkg/platform/httputil"
	"vecinal/pkg/requestcontext"
)

// Service defines the interface for dashboard aggregation.
type Service interface {
	Summary(ctx context.Context) (*service.Summary, error)
}

// Handler wires the dashboard endpoint to the stats service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a stats handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterAdmin mounts the dashboard endpoint; the router wraps it in the
// admin role check.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/stats/summary", h.HandleSummary)
}

// HandleSummary handles GET /stats/summary.
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	summary, err := h.service.Summary(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "summary aggregation failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"summary": summary})
}
