package service

import (
	"context"
	"log/slog"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	locmodels "vecinal/internal/location/models"
	locservice "vecinal/internal/location/service"
	locstore "vecinal/internal/location/store"
	"vecinal/internal/project/models"
	"vecinal/internal/project/store"
	dErrors "vecinal/pkg/domain-errors"
)

func newService(t *testing.T) *Service {
	t.Helper()
	taxonomy := locstore.NewInMemory()
	err := taxonomy.ReplaceAll(context.Background(),
		[]*locmodels.Department{{Code: 2, Name: "La Paz", Abbreviation: "LP"}},
		[]*locmodels.Province{{Code: 21, Name: "Murillo", DepartmentCode: 2}},
		[]*locmodels.Municipality{{Code: 211, Name: "La Paz", ProvinceCode: 21, DepartmentCode: 2}})
	require.NoError(t, err)
	return New(store.NewInMemory(), locservice.New(taxonomy), slog.Default())
}

func validInput() CreateInput {
	return CreateInput{
		ProjectName: "Mejora de alumbrado publico",
		Objective:   "Iluminar la zona Sur",
		Location: locmodels.Location{
			DepartmentCode:   locmodels.Ptr(2),
			ProvinceCode:     locmodels.Ptr(21),
			MunicipalityCode: locmodels.Ptr(211),
			Zone:             "Sur",
			Barrio:           "Obrajes",
		},
		FundingSource: "municipal",
		Beneficiaries: 1200,
		StartDate:     time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		CreatedByID:   "staff-1",
	}
}

func TestCreate(t *testing.T) {
	svc := newService(t)

	project, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	assert.NotEmpty(t, project.ID)
	assert.Equal(t, models.StatusPlanned, project.Status, "status defaults to PLANNED")
}

func TestCreate_DateOrdering(t *testing.T) {
	svc := newService(t)

	in := validInput()
	in.EndDate = in.StartDate.AddDate(0, -1, 0)
	_, err := svc.Create(context.Background(), in)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestCreate_IncompleteLocation(t *testing.T) {
	svc := newService(t)

	in := validInput()
	in.Location.MunicipalityCode = nil
	_, err := svc.Create(context.Background(), in)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestUpdate_DateOrderingOnMerge(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	project, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	// Moving startDate past the stored endDate must be rejected.
	late := project.EndDate.AddDate(0, 1, 0)
	_, err = svc.Update(ctx, project.ID, UpdateInput{StartDate: &late})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))

	status := models.StatusInExecution
	updated, err := svc.Update(ctx, project.ID, UpdateInput{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, models.StatusInExecution, updated.Status)
}

func TestList_StatusFilterAndEnrichment(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	_, err = svc.Create(ctx, validInput())
	require.NoError(t, err)

	status := models.StatusCompleted
	_, err = svc.Update(ctx, first.ID, UpdateInput{Status: &status})
	require.NoError(t, err)

	page, total, err := svc.List(ctx, url.Values{"status": {"COMPLETED"}})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, page, 1)
	assert.Equal(t, first.ID, page[0].ID)
	require.NotNil(t, page[0].Location.DepartmentName)
	assert.Equal(t, "La Paz", *page[0].Location.DepartmentName)
}

func TestDelete(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	project, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, project.ID))

	_, err = svc.Get(ctx, project.ID)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}
