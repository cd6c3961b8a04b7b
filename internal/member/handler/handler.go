package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	locmodels "vecinal/internal/location/models"
	"vecinal/internal/member/models"
	"vecinal/internal/member/service"
	dErrors "vecinal/pkg/domain-errors"
	"vecinal/pkg/platform/httputil"
	"vecinal/pkg/requestcontext"
)

// Photo uploads are small portraits; cap the whole multipart body.
const maxRegisterBody = 8 << 20

// Service defines the interface for member registry operations.
type Service interface {
	Register(ctx context.Context, in service.RegisterInput) (*models.Member, error)
	List(ctx context.Context, params url.Values) ([]models.Enriched, int, error)
	Get(ctx context.Context, code string) (*models.Enriched, error)
	UpdateStatus(ctx context.Context, code string, target models.Status) (*models.Member, error)
	CouncilRoles() []models.CouncilRole
}

// Handler wires member endpoints to the member service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a member handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the public member endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Post("/members/register", h.HandleRegister)
	r.Get("/members/council-roles", h.HandleCouncilRoles)
}

// RegisterAdmin mounts the admin member endpoints.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/members", h.HandleList)
	r.Get("/members/{code}", h.HandleGet)
	r.Put("/members/{code}/status", h.HandleUpdateStatus)
}

// HandleRegister handles POST /members/register. The body is either JSON or
// multipart form data with an optional photo part.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	var req *RegisterRequest
	var in service.RegisterInput

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, maxRegisterBody)
		if err := r.ParseMultipartForm(maxRegisterBody); err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "malformed multipart body"))
			return
		}
		req = registerFromForm(r)
		if err := req.Validate(); err != nil {
			httputil.WriteError(w, err)
			return
		}
		in = req.Input()
		if file, header, err := r.FormFile("photo"); err == nil {
			defer file.Close()
			in.Photo = file
			in.PhotoContentType = header.Header.Get("Content-Type")
		}
	} else {
		var ok bool
		req, ok = httputil.DecodeAndPrepare[RegisterRequest](w, r, h.logger, ctx, requestID)
		if !ok {
			return
		}
		in = req.Input()
	}

	member, err := h.service.Register(ctx, in)
	if err != nil {
		h.logger.WarnContext(ctx, "member registration rejected",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "member registered",
		"request_id", requestID,
		"registration_code", member.RegistrationCode,
	)
	httputil.WriteMessage(w, http.StatusCreated,
		"registration received; keep your registration code to link your account later",
		map[string]any{"member": member})
}

// HandleCouncilRoles handles GET /members/council-roles.
func (h *Handler) HandleCouncilRoles(w http.ResponseWriter, r *http.Request) {
	roles := h.service.CouncilRoles()
	httputil.WriteList(w, "councilRoles", roles, len(roles), len(roles))
}

// HandleList handles GET /members with filter/sort/pagination parameters.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	members, total, err := h.service.List(ctx, r.URL.Query())
	if err != nil {
		h.logger.ErrorContext(ctx, "list members failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteList(w, "members", members, len(members), total)
}

// HandleGet handles GET /members/{code}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	member, err := h.service.Get(ctx, chi.URLParam(r, "code"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"member": member})
}

// HandleUpdateStatus handles PUT /members/{code}/status.
func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	code := chi.URLParam(r, "code")

	req, ok := httputil.DecodeAndPrepare[StatusRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	member, err := h.service.UpdateStatus(ctx, code, req.ParsedStatus())
	if err != nil {
		h.logger.WarnContext(ctx, "member status update rejected",
			"request_id", requestID,
			"registration_code", code,
			"target_status", req.Status,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "member status updated",
		"request_id", requestID,
		"registration_code", code,
		"status", member.Status,
	)
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"member": member})
}

// registerFromForm maps multipart form fields onto the JSON request shape.
func registerFromForm(r *http.Request) *RegisterRequest {
	req := &RegisterRequest{
		FirstName:               r.FormValue("firstName"),
		LastName:                r.FormValue("lastName"),
		IDCard:                  r.FormValue("idCard"),
		IDCardExtension:         r.FormValue("idCardExtension"),
		BirthDate:               r.FormValue("birthDate"),
		Gender:                  r.FormValue("gender"),
		PhoneNumber:             r.FormValue("phoneNumber"),
		NeighborhoodCouncilName: r.FormValue("neighborhoodCouncilName"),
		CouncilRoleCode:         formInt(r, "councilRoleCode"),
	}
	req.Location = locmodels.Location{
		DepartmentCode:   formCode(r, "departmentCode"),
		ProvinceCode:     formCode(r, "provinceCode"),
		MunicipalityCode: formCode(r, "municipalityCode"),
		Zone:             r.FormValue("zone"),
		Barrio:           r.FormValue("barrio"),
	}
	return req
}

func formInt(r *http.Request, name string) int {
	if code := formCode(r, name); code != nil {
		return *code
	}
	return 0
}

func formCode(r *http.Request, name string) *int {
	raw := strings.TrimSpace(r.FormValue(name))
	if raw == "" {
		return nil
	}
	code, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &code
}
