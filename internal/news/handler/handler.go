package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"vecinal/internal/news/models"
	"vecinal/internal/news/service"
	"vecinal/internal/platform/middleware"
	"vecinal/internal/storage"
	dErrors "vecinal/pkg/domain-errors"
	"vecinal/pkg/platform/httputil"
	"vecinal/pkg/requestcontext"
)

const maxAttachmentBody = 16 << 20

// Service defines the interface for news operations.
type Service interface {
	Create(ctx context.Context, in service.CreateInput) (*models.Article, error)
	Update(ctx context.Context, id string, in service.UpdateInput) (*models.Article, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, params url.Values, includeDrafts bool) ([]models.Enriched, int, error)
	Get(ctx context.Context, id string, includeDrafts bool) (*models.Enriched, error)
}

// Handler wires news endpoints to the news service.
type Handler struct {
	service Service
	files   storage.Store
	logger  *slog.Logger
}

// New constructs a news handler with its dependencies.
func New(service Service, files storage.Store, logger *slog.Logger) *Handler {
	return &Handler{service: service, files: files, logger: logger}
}

// Register mounts the public read endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Get("/news", h.HandleList)
	r.Get("/news/{id}", h.HandleGet)
}

// RegisterStaff mounts the write endpoints; the router wraps them in the
// staff-or-admin role check.
func (h *Handler) RegisterStaff(r chi.Router) {
	r.Post("/news", h.HandleCreate)
	r.Put("/news/{id}", h.HandleUpdate)
	r.Put("/news/{id}/attachment", h.HandleAttachment)
}

// RegisterAdmin mounts deletion, which staff accounts cannot perform.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Delete("/news/{id}", h.HandleDelete)
}

func staffAccess(ctx context.Context) bool {
	role := requestcontext.Role(ctx)
	return role == middleware.RoleStaff || role == middleware.RoleAdmin
}

// HandleList handles GET /news.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	articles, total, err := h.service.List(ctx, r.URL.Query(), staffAccess(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "list articles failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteList(w, "news", articles, len(articles), total)
}

// HandleGet handles GET /news/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	article, err := h.service.Get(ctx, chi.URLParam(r, "id"), staffAccess(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"article": article})
}

// HandleCreate handles POST /news.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	article, err := h.service.Create(ctx, req.Input(requestcontext.UserID(ctx)))
	if err != nil {
		h.logger.WarnContext(ctx, "article creation rejected",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{"article": article})
}

// HandleUpdate handles PUT /news/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	id := chi.URLParam(r, "id")

	req, ok := httputil.DecodeAndPrepare[UpdateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	article, err := h.service.Update(ctx, id, req.Input())
	if err != nil {
		h.logger.WarnContext(ctx, "article update rejected",
			"request_id", requestID,
			"article_id", id,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"article": article})
}

// HandleDelete handles DELETE /news/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.service.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteMessage(w, http.StatusOK, "article deleted", nil)
}

// HandleAttachment handles PUT /news/{id}/attachment: multipart parts named
// "image" and/or "document" are stored and their URLs written to the
// article.
func (h *Handler) HandleAttachment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	r.Body = http.MaxBytesReader(w, r.Body, maxAttachmentBody)
	if err := r.ParseMultipartForm(maxAttachmentBody); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "malformed multipart body"))
		return
	}

	var in service.UpdateInput
	for part, target := range map[string]**string{
		"image":    &in.ImageURL,
		"document": &in.DocumentURL,
	} {
		file, header, err := r.FormFile(part)
		if err != nil {
			continue
		}
		key := fmt.Sprintf("news/%s/%s", id, part)
		fileURL, err := h.files.Upload(ctx, key, header.Header.Get("Content-Type"), file)
		file.Close()
		if err != nil {
			httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "store attachment"))
			return
		}
		*target = &fileURL
	}
	if in.ImageURL == nil && in.DocumentURL == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "attach an image or document part"))
		return
	}

	article, err := h.service.Update(ctx, id, in)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"article": article})
}
