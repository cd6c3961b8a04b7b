// Package handler exposes the electoral tribunal endpoints.
package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"vecinal/internal/tribunal/models"
	dErrors "vecinal/pkg/domain-errors"
	"vecinal/pkg/platform/httputil"
	"vecinal/pkg/requestcontext"
)

const maxDocumentBody = 16 << 20

// Service defines the interface for tribunal operations.
type Service interface {
	Create(ctx context.Context, tribunal *models.Tribunal) (*models.Tribunal, error)
	Update(ctx context.Context, id string, tribunal *models.Tribunal) (*models.Tribunal, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, params url.Values) ([]*models.Tribunal, int, error)
	Get(ctx context.Context, id string) (*models.Tribunal, error)
	AttachDocument(ctx context.Context, id, kind, contentType string, body io.Reader) (*models.Tribunal, error)
}

// Handler wires tribunal endpoints to the tribunal service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a tribunal handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the public read endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Get("/tribunals", h.HandleList)
	r.Get("/tribunals/{id}", h.HandleGet)
}

// RegisterAdmin mounts the write endpoints; the router wraps them in the
// admin role check.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/tribunals", h.HandleCreate)
	r.Put("/tribunals/{id}", h.HandleUpdate)
	r.Delete("/tribunals/{id}", h.HandleDelete)
	r.Put("/tribunals/{id}/documents", h.HandleDocuments)
}

// HandleList handles GET /tribunals.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tribunals, total, err := h.service.List(ctx, r.URL.Query())
	if err != nil {
		h.logger.ErrorContext(ctx, "list tribunals failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteList(w, "tribunals", tribunals, len(tribunals), total)
}

// HandleGet handles GET /tribunals/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	tribunal, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"tribunal": tribunal})
}

// HandleCreate handles POST /tribunals.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[TribunalRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	tribunal, err := h.service.Create(ctx, req.Tribunal())
	if err != nil {
		h.logger.WarnContext(ctx, "tribunal creation rejected",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{"tribunal": tribunal})
}

// HandleUpdate handles PUT /tribunals/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	id := chi.URLParam(r, "id")

	req, ok := httputil.DecodeAndPrepare[TribunalRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	tribunal, err := h.service.Update(ctx, id, req.Tribunal())
	if err != nil {
		h.logger.WarnContext(ctx, "tribunal update rejected",
			"request_id", requestID,
			"tribunal_id", id,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"tribunal": tribunal})
}

// HandleDelete handles DELETE /tribunals/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteMessage(w, http.StatusOK, "tribunal deleted", nil)
}

// HandleDocuments handles PUT /tribunals/{id}/documents: multipart parts
// named "statute" and/or "regulations" are stored and their URLs written to
// the tribunal.
func (h *Handler) HandleDocuments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	r.Body = http.MaxBytesReader(w, r.Body, maxDocumentBody)
	if err := r.ParseMultipartForm(maxDocumentBody); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "malformed multipart body"))
		return
	}

	var tribunal *models.Tribunal
	attached := 0
	for _, kind := range []string{"statute", "regulations"} {
		file, header, err := r.FormFile(kind)
		if err != nil {
			continue
		}
		tribunal, err = h.service.AttachDocument(ctx, id, kind, header.Header.Get("Content-Type"), file)
		file.Close()
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		attached++
	}
	if attached == 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "attach a statute or regulations part"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"tribunal": tribunal})
}
