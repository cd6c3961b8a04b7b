package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vecinal/internal/location/models"
	"vecinal/internal/location/service"
	"vecinal/internal/location/store"
)

func newTestHandler(t *testing.T) (*Handler, *store.InMemory) {
	t.Helper()
	taxonomy := store.NewInMemory()
	err := taxonomy.ReplaceAll(context.Background(),
		[]*models.Department{{Code: 2, Name: "La Paz", Abbreviation: "LP"}},
		[]*models.Province{{Code: 21, Name: "Murillo", DepartmentCode: 2}},
		[]*models.Municipality{{Code: 211, Name: "La Paz", ProvinceCode: 21, DepartmentCode: 2}})
	require.NoError(t, err)

	svc := service.New(taxonomy)
	return New(svc, slog.Default()), taxonomy
}

func testRouter(h *Handler) chi.Router {
	r := chi.NewRouter()
	h.Register(r)
	r.Route("/admin", h.RegisterAdmin)
	return r
}

func TestHandleDepartments(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := httptest.NewRecorder()

	testRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/locations/departments", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Status     string `json:"status"`
		Results    int    `json:"results"`
		TotalCount int    `json:"totalCount"`
		Data       struct {
			Departments []models.Department `json:"departments"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "success", body.Status)
	assert.Equal(t, 1, body.Results)
	assert.Equal(t, 1, body.TotalCount)
	require.Len(t, body.Data.Departments, 1)
	assert.Equal(t, "La Paz", body.Data.Departments[0].Name)
}

func TestHandleProvinces_BadParam(t *testing.T) {
	h, _ := newTestHandler(t)

	for _, target := range []string{"/locations/provinces", "/locations/provinces?departmentCode=abc"} {
		rec := httptest.NewRecorder()
		testRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

		require.Equal(t, http.StatusBadRequest, rec.Code, target)
		var body struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "fail", body.Status)
		assert.Contains(t, body.Message, "departmentCode")
	}
}

func TestHandleProvinces(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := httptest.NewRecorder()

	testRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/locations/provinces?departmentCode=2", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Results int `json:"results"`
		Data    struct {
			Provinces []models.Province `json:"provinces"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 1, body.Results)
	assert.Equal(t, "Murillo", body.Data.Provinces[0].Name)
}

func TestHandleMunicipalities(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := httptest.NewRecorder()

	testRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/locations/municipalities?provinceCode=21", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Results int `json:"results"`
		Data    struct {
			Municipalities []models.Municipality `json:"municipalities"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 1, body.Results)
	assert.Equal(t, 211, body.Data.Municipalities[0].Code)
}

func TestHandleReseed(t *testing.T) {
	h, taxonomy := newTestHandler(t)

	payload := `{
		"departments": [{"code": 9, "name": "Pando", "abbreviation": "PA"}],
		"provinces": [{"code": 91, "name": "Nicolas Suarez", "departmentCode": 9}],
		"municipalities": [{"code": 911, "name": "Cobija", "provinceCode": 91, "departmentCode": 9}]
	}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/admin/locations", strings.NewReader(payload))

	testRouter(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	departments, err := taxonomy.Departments(context.Background())
	require.NoError(t, err)
	require.Len(t, departments, 1)
	assert.Equal(t, "Pando", departments[0].Name)
}

func TestHandleReseed_RejectsInconsistentTaxonomy(t *testing.T) {
	h, _ := newTestHandler(t)

	// Province referencing a department that is not in the payload.
	payload := `{
		"departments": [{"code": 9, "name": "Pando", "abbreviation": "PA"}],
		"provinces": [{"code": 91, "name": "Nicolas Suarez", "departmentCode": 4}]
	}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/admin/locations", strings.NewReader(payload))

	testRouter(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown department")
}
