package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"vecinal/internal/location/models"
	dErrors "vecinal/pkg/domain-errors"
	"vecinal/pkg/platform/httputil"
	"vecinal/pkg/requestcontext"
)

// Service defines the interface for taxonomy operations.
type Service interface {
	Departments(ctx context.Context) ([]*models.Department, error)
	Provinces(ctx context.Context, departmentCode int) ([]*models.Province, error)
	Municipalities(ctx context.Context, provinceCode int) ([]*models.Municipality, error)
	Reseed(ctx context.Context, departments []*models.Department, provinces []*models.Province, municipalities []*models.Municipality) error
}

// Handler wires taxonomy endpoints to the location service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a location handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the public browse endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/locations/departments", h.HandleDepartments)
	r.Get("/locations/provinces", h.HandleProvinces)
	r.Get("/locations/municipalities", h.HandleMunicipalities)
}

// RegisterAdmin mounts the reseed endpoint; the router wraps it in the admin
// role check.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Put("/locations", h.HandleReseed)
}

// HandleDepartments handles GET /locations/departments.
func (h *Handler) HandleDepartments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	departments, err := h.service.Departments(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list departments failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteList(w, "departments", departments, len(departments), len(departments))
}

// HandleProvinces handles GET /locations/provinces?departmentCode=X.
func (h *Handler) HandleProvinces(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	departmentCode, err := intQueryParam(r, "departmentCode")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	provinces, err := h.service.Provinces(ctx, departmentCode)
	if err != nil {
		h.logger.ErrorContext(ctx, "list provinces failed",
			"request_id", requestcontext.RequestID(ctx),
			"department_code", departmentCode,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteList(w, "provinces", provinces, len(provinces), len(provinces))
}

// HandleMunicipalities handles GET /locations/municipalities?provinceCode=Y.
func (h *Handler) HandleMunicipalities(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	provinceCode, err := intQueryParam(r, "provinceCode")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	municipalities, err := h.service.Municipalities(ctx, provinceCode)
	if err != nil {
		h.logger.ErrorContext(ctx, "list municipalities failed",
			"request_id", requestcontext.RequestID(ctx),
			"province_code", provinceCode,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteList(w, "municipalities", municipalities, len(municipalities), len(municipalities))
}

// HandleReseed handles PUT /admin/locations requests.
func (h *Handler) HandleReseed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[ReseedRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.Reseed(ctx, req.Departments, req.Provinces, req.Municipalities); err != nil {
		h.logger.ErrorContext(ctx, "taxonomy reseed failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "taxonomy reseeded",
		"request_id", requestID,
		"departments", len(req.Departments),
		"provinces", len(req.Provinces),
		"municipalities", len(req.Municipalities),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteMessage(w, http.StatusOK, "taxonomy replaced", map[string]any{
		"departments":    len(req.Departments),
		"provinces":      len(req.Provinces),
		"municipalities": len(req.Municipalities),
	})
}

// intQueryParam parses a required integer query parameter. Callers sanitize
// parent codes here; the generic query builder never sees them.
func intQueryParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, dErrors.Newf(dErrors.CodeBadRequest, "%s is required", name)
	}
	code, err := strconv.Atoi(raw)
	if err != nil {
		return 0, dErrors.Newf(dErrors.CodeBadRequest, "%s must be an integer", name)
	}
	return code, nil
}
