package service

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	locmodels "vecinal/internal/location/models"
	locservice "vecinal/internal/location/service"
	locstore "vecinal/internal/location/store"
	"vecinal/internal/member/models"
	"vecinal/internal/member/store"
	dErrors "vecinal/pkg/domain-errors"
)

func newService(t *testing.T) (*Service, *store.InMemory) {
	t.Helper()
	taxonomy := locstore.NewInMemory()
	err := taxonomy.ReplaceAll(context.Background(),
		[]*locmodels.Department{{Code: 2, Name: "La Paz", Abbreviation: "LP"}},
		[]*locmodels.Province{{Code: 21, Name: "Murillo", DepartmentCode: 2}},
		[]*locmodels.Municipality{{Code: 211, Name: "La Paz", ProvinceCode: 21, DepartmentCode: 2}})
	require.NoError(t, err)

	members := store.NewInMemory()
	return New(members, locservice.New(taxonomy)), members
}

func validInput(idCard string) RegisterInput {
	return RegisterInput{
		FirstName:       "Maria",
		LastName:        "Quispe",
		IDCard:          idCard,
		IDCardExtension: "LP",
		BirthDate:       time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC),
		Gender:          "F",
		PhoneNumber:     "71234567",
		Location: locmodels.Location{
			DepartmentCode:   locmodels.Ptr(2),
			ProvinceCode:     locmodels.Ptr(21),
			MunicipalityCode: locmodels.Ptr(211),
			Zone:             "Sur",
			Barrio:           "Obrajes",
		},
		NeighborhoodCouncilName: "Junta Vecinal Obrajes",
		CouncilRoleCode:         3,
	}
}

var registrationCodePattern = regexp.MustCompile(`^CON-[0-9A-Z]{10}$`)

func TestRegister(t *testing.T) {
	svc, _ := newService(t)

	member, err := svc.Register(context.Background(), validInput("4567890"))
	require.NoError(t, err)
	assert.Regexp(t, registrationCodePattern, member.RegistrationCode)
	assert.Equal(t, models.StatusPending, member.Status)
	assert.Empty(t, member.LinkedUserID)
	assert.False(t, member.CreatedAt.IsZero())
}

func TestRegister_PhotoUpload(t *testing.T) {
	svc, _ := newService(t)

	in := validInput("4567891")
	in.Photo = strings.NewReader("jpeg-bytes")
	in.PhotoContentType = "image/jpeg"

	member, err := svc.Register(context.Background(), in)
	require.NoError(t, err)
	assert.Contains(t, member.PhotoURL, member.RegistrationCode)
}

func TestRegister_DuplicateIDCard(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, validInput("4567890"))
	require.NoError(t, err)

	_, err = svc.Register(ctx, validInput("4567890"))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestRegister_Invalid(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	incomplete := validInput("1111111")
	incomplete.Location.Zone = ""
	_, err := svc.Register(ctx, incomplete)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))

	// Province 21 belongs to department 2, not 7.
	mismatched := validInput("2222222")
	mismatched.Location.DepartmentCode = locmodels.Ptr(7)
	_, err = svc.Register(ctx, mismatched)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))

	badRole := validInput("3333333")
	badRole.CouncilRoleCode = 99
	_, err = svc.Register(ctx, badRole)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func registerN(t *testing.T, svc *Service, n int) []*models.Member {
	t.Helper()
	out := make([]*models.Member, n)
	for i := range n {
		m, err := svc.Register(context.Background(), validInput(fmt.Sprintf("50%05d", i)))
		require.NoError(t, err)
		out[i] = m
	}
	return out
}

func TestList_Pagination(t *testing.T) {
	svc, _ := newService(t)
	registerN(t, svc, 25)

	page, total, err := svc.List(context.Background(), url.Values{
		"limit": {"10"},
		"page":  {"3"},
	})
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	assert.Len(t, page, 5)
}

func TestList_FiltersAndEnrichment(t *testing.T) {
	svc, _ := newService(t)
	created := registerN(t, svc, 3)

	_, err := svc.UpdateStatus(context.Background(), created[0].RegistrationCode, models.StatusVerified)
	require.NoError(t, err)

	verified, total, err := svc.List(context.Background(), url.Values{
		"status": {"VERIFIED"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, verified, 1)
	assert.Equal(t, created[0].RegistrationCode, verified[0].RegistrationCode)
	// List views carry the resolved department name.
	require.NotNil(t, verified[0].Location.DepartmentName)
	assert.Equal(t, "La Paz", *verified[0].Location.DepartmentName)
	assert.Equal(t, "Sur", verified[0].Location.Zone)
}

func TestList_UnknownFilterMatchesNothing(t *testing.T) {
	svc, _ := newService(t)
	registerN(t, svc, 3)

	page, total, err := svc.List(context.Background(), url.Values{
		"favoriteColor": {"green"},
	})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, page)
}

func TestList_NonIntegerCodeDroppedSilently(t *testing.T) {
	svc, _ := newService(t)
	registerN(t, svc, 3)

	page, total, err := svc.List(context.Background(), url.Values{
		"location.departmentCode": {"not-a-number"},
		"status":                  {"PENDING"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, total, "remaining filters still apply")
	assert.Len(t, page, 3)
}

func TestGet_FullEnrichment(t *testing.T) {
	svc, _ := newService(t)
	created := registerN(t, svc, 1)

	got, err := svc.Get(context.Background(), created[0].RegistrationCode)
	require.NoError(t, err)
	require.NotNil(t, got.Location.DepartmentName)
	require.NotNil(t, got.Location.ProvinceName)
	require.NotNil(t, got.Location.MunicipalityName)
	assert.Equal(t, "Murillo", *got.Location.ProvinceName)
}

func TestGet_NotFound(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Get(context.Background(), "CON-ZZZZZZZZZZ")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestUpdateStatus_EdgeSet(t *testing.T) {
	tests := []struct {
		name    string
		from    models.Status
		to      models.Status
		allowed bool
	}{
		{"pending to verified", models.StatusPending, models.StatusVerified, true},
		{"pending to rejected", models.StatusPending, models.StatusRejected, true},
		{"verified to inactive", models.StatusVerified, models.StatusInactive, true},
		{"pending to inactive", models.StatusPending, models.StatusInactive, false},
		{"rejected to verified", models.StatusRejected, models.StatusVerified, false},
		{"inactive to verified", models.StatusInactive, models.StatusVerified, false},
		{"verified to rejected", models.StatusVerified, models.StatusRejected, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, members := newService(t)
			created := registerN(t, svc, 1)
			code := created[0].RegistrationCode
			_, err := members.UpdateStatus(context.Background(), code, tt.from)
			require.NoError(t, err)

			updated, err := svc.UpdateStatus(context.Background(), code, tt.to)
			if !tt.allowed {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, updated.Status)
		})
	}
}

func TestUpdateStatus_SameStatusIsNoop(t *testing.T) {
	svc, _ := newService(t)
	created := registerN(t, svc, 1)

	updated, err := svc.UpdateStatus(context.Background(), created[0].RegistrationCode, models.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, updated.Status)
}

func TestClaim(t *testing.T) {
	svc, _ := newService(t)
	created := registerN(t, svc, 1)
	code := created[0].RegistrationCode
	ctx := context.Background()

	// Only verified members can be linked.
	_, err := svc.Claim(ctx, code, "user-1")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))

	_, err = svc.UpdateStatus(ctx, code, models.StatusVerified)
	require.NoError(t, err)

	member, err := svc.Claim(ctx, code, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", member.LinkedUserID)

	// Re-linking the same pair is idempotent.
	member, err = svc.Claim(ctx, code, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", member.LinkedUserID)

	// A second distinct user conflicts.
	_, err = svc.Claim(ctx, code, "user-2")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestRelease(t *testing.T) {
	svc, members := newService(t)
	created := registerN(t, svc, 1)
	code := created[0].RegistrationCode
	ctx := context.Background()

	_, err := svc.UpdateStatus(ctx, code, models.StatusVerified)
	require.NoError(t, err)
	_, err = svc.Claim(ctx, code, "user-1")
	require.NoError(t, err)

	svc.Release(ctx, code, "user-1")

	m, err := members.ByRegistrationCode(ctx, code)
	require.NoError(t, err)
	assert.Empty(t, m.LinkedUserID)
}
