package service

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	locmodels "vecinal/internal/location/models"
	locservice "vecinal/internal/location/service"
	locstore "vecinal/internal/location/store"
	memmodels "vecinal/internal/member/models"
	memservice "vecinal/internal/member/service"
	memstore "vecinal/internal/member/store"
	"vecinal/internal/user/models"
	"vecinal/internal/user/store"
	dErrors "vecinal/pkg/domain-errors"
)

type stubIssuer struct{}

func (stubIssuer) Issue(userID, role string) (string, error) {
	return "token-" + userID, nil
}

type fixture struct {
	svc     *Service
	users   *store.InMemory
	members *memstore.InMemory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	taxonomy := locstore.NewInMemory()
	err := taxonomy.ReplaceAll(context.Background(),
		[]*locmodels.Department{{Code: 2, Name: "La Paz", Abbreviation: "LP"}},
		[]*locmodels.Province{{Code: 21, Name: "Murillo", DepartmentCode: 2}},
		[]*locmodels.Municipality{{Code: 211, Name: "La Paz", ProvinceCode: 21, DepartmentCode: 2}})
	require.NoError(t, err)
	locations := locservice.New(taxonomy)

	members := memstore.NewInMemory()
	users := store.NewInMemory()
	svc := New(users, locations, memservice.New(members, locations), stubIssuer{})
	return &fixture{svc: svc, users: users, members: members}
}

func validInput(username string) RegisterInput {
	return RegisterInput{
		Name:     "Maria Quispe",
		Username: username,
		Email:    username + "@example.org",
		Password: "correct horse battery",
		Location: locmodels.Location{
			DepartmentCode: locmodels.Ptr(2),
			ProvinceCode:   locmodels.Ptr(21),
		},
	}
}

// verifiedMember seeds a VERIFIED member record directly through the store.
func verifiedMember(t *testing.T, f *fixture, code string) {
	t.Helper()
	ctx := context.Background()
	err := f.members.Create(ctx, &memmodels.Member{
		RegistrationCode: code,
		FirstName:        "Pedro",
		LastName:         "Mamani",
		IDCard:           "4567890",
		IDCardExtension:  "LP",
		Status:           memmodels.StatusPending,
		CreatedAt:        time.Now().UTC(),
	})
	require.NoError(t, err)
	_, err = f.members.UpdateStatus(ctx, code, memmodels.StatusVerified)
	require.NoError(t, err)
}

func TestRegister(t *testing.T) {
	f := newFixture(t)

	session, err := f.svc.Register(context.Background(), validInput("maria"))
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, session.User.Role)
	assert.True(t, session.User.IsActive)
	assert.Equal(t, "token-"+session.User.ID, session.Token)
	assert.NotEqual(t, "correct horse battery", session.User.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(session.User.PasswordHash), []byte("correct horse battery")))
}

func TestRegister_DuplicateUsername(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, validInput("maria"))
	require.NoError(t, err)

	in := validInput("maria")
	in.Email = "other@example.org"
	_, err = f.svc.Register(ctx, in)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeConflict, dErrors.CodeOf(err))
}

func TestRegister_RequiresDepartment(t *testing.T) {
	f := newFixture(t)

	in := validInput("maria")
	in.Location = locmodels.Location{}
	_, err := f.svc.Register(context.Background(), in)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeBadRequest, dErrors.CodeOf(err))
}

func TestRegister_RejectsBrokenHierarchy(t *testing.T) {
	f := newFixture(t)

	in := validInput("maria")
	in.Location = locmodels.Location{
		DepartmentCode: locmodels.Ptr(2),
		ProvinceCode:   locmodels.Ptr(99),
	}
	_, err := f.svc.Register(context.Background(), in)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeInvariantViolation, dErrors.CodeOf(err))
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, validInput("maria"))
	require.NoError(t, err)

	byUsername, err := f.svc.Login(ctx, "maria", "correct horse battery")
	require.NoError(t, err)
	assert.NotEmpty(t, byUsername.Token)

	byEmail, err := f.svc.Login(ctx, "maria@example.org", "correct horse battery")
	require.NoError(t, err)
	assert.Equal(t, byUsername.User.ID, byEmail.User.ID)
}

func TestLogin_BadCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, validInput("maria"))
	require.NoError(t, err)

	wrongSession, wrongErr := f.svc.Login(ctx, "maria", "nope")
	_, wrongPassword := mustFail(t, wrongSession, wrongErr)
	unknownSession, unknownErr := f.svc.Login(ctx, "nobody", "nope")
	_, unknownLogin := mustFail(t, unknownSession, unknownErr)

	// An attacker probing logins cannot tell the two cases apart.
	assert.Equal(t, dErrors.CodeUnauthorized, dErrors.CodeOf(wrongPassword))
	assert.Equal(t, wrongPassword.Error(), unknownLogin.Error())
}

func TestLogin_DisabledAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, f.users.Create(ctx, &models.User{
		ID:           "u-disabled",
		Username:     "gone",
		Email:        "gone@example.org",
		PasswordHash: string(hash),
		Role:         models.RoleUser,
		IsActive:     false,
	}))

	_, err = f.svc.Login(ctx, "gone", "hunter2hunter2")
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeUnauthorized, dErrors.CodeOf(err))
	assert.Contains(t, err.Error(), "disabled")
}

func mustFail(t *testing.T, s *Session, err error) (*Session, error) {
	t.Helper()
	require.Error(t, err)
	require.Nil(t, s)
	return s, err
}

func TestMe_EnrichesLocation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.svc.Register(ctx, validInput("maria"))
	require.NoError(t, err)

	me, err := f.svc.Me(ctx, session.User.ID)
	require.NoError(t, err)
	require.NotNil(t, me.Location.DepartmentName)
	assert.Equal(t, "La Paz", *me.Location.DepartmentName)
	require.NotNil(t, me.Location.ProvinceName)
	assert.Equal(t, "Murillo", *me.Location.ProvinceName)
}

func TestUpdateLocation_RejectsBrokenHierarchy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.svc.Register(ctx, validInput("maria"))
	require.NoError(t, err)

	_, err = f.svc.UpdateLocation(ctx, session.User.ID, locmodels.Location{
		DepartmentCode:   locmodels.Ptr(2),
		ProvinceCode:     locmodels.Ptr(21),
		MunicipalityCode: locmodels.Ptr(999),
	})
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeInvariantViolation, dErrors.CodeOf(err))
}

func TestList_FiltersByRoleAndEnriches(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin, err := f.svc.Register(ctx, validInput("admin"))
	require.NoError(t, err)
	_, err = f.svc.UpdateRole(ctx, admin.User.ID, models.RoleAdmin)
	require.NoError(t, err)
	_, err = f.svc.Register(ctx, validInput("maria"))
	require.NoError(t, err)

	users, total, err := f.svc.List(ctx, url.Values{"role": []string{"USER"}})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, "maria", users[0].Username)
	require.NotNil(t, users[0].Location.DepartmentName)
	assert.Equal(t, "La Paz", *users[0].Location.DepartmentName)
}

func TestUpdateRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.svc.Register(ctx, validInput("maria"))
	require.NoError(t, err)

	promoted, err := f.svc.UpdateRole(ctx, session.User.ID, models.RoleStaff)
	require.NoError(t, err)
	assert.Equal(t, models.RoleStaff, promoted.Role)

	_, err = f.svc.UpdateRole(ctx, session.User.ID, "SUPERUSER")
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeBadRequest, dErrors.CodeOf(err))
}

func TestLinkMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.svc.Register(ctx, validInput("maria"))
	require.NoError(t, err)
	verifiedMember(t, f, "CON-AAAA111122")

	member, err := f.svc.LinkMember(ctx, session.User.ID, "CON-AAAA111122")
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, member.LinkedUserID)

	me, err := f.svc.Me(ctx, session.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "CON-AAAA111122", me.MemberRegistrationCode)
}

func TestLinkMember_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.svc.Register(ctx, validInput("maria"))
	require.NoError(t, err)
	verifiedMember(t, f, "CON-AAAA111122")

	_, err = f.svc.LinkMember(ctx, session.User.ID, "CON-AAAA111122")
	require.NoError(t, err)
	_, err = f.svc.LinkMember(ctx, session.User.ID, "CON-AAAA111122")
	require.NoError(t, err)
}

func TestLinkMember_Conflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Register(ctx, validInput("maria"))
	require.NoError(t, err)
	second, err := f.svc.Register(ctx, validInput("pedro"))
	require.NoError(t, err)
	verifiedMember(t, f, "CON-AAAA111122")
	verifiedMember2 := func(code string) {
		err := f.members.Create(ctx, &memmodels.Member{
			RegistrationCode: code,
			FirstName:        "Julia",
			LastName:         "Condori",
			IDCard:           "7654321",
			IDCardExtension:  "LP",
			Status:           memmodels.StatusPending,
		})
		require.NoError(t, err)
		_, err = f.members.UpdateStatus(ctx, code, memmodels.StatusVerified)
		require.NoError(t, err)
	}
	verifiedMember2("CON-BBBB333344")

	_, err = f.svc.LinkMember(ctx, first.User.ID, "CON-AAAA111122")
	require.NoError(t, err)

	// Someone else's member record.
	_, err = f.svc.LinkMember(ctx, second.User.ID, "CON-AAAA111122")
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeConflict, dErrors.CodeOf(err))

	// An account holds at most one link.
	_, err = f.svc.LinkMember(ctx, first.User.ID, "CON-BBBB333344")
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeConflict, dErrors.CodeOf(err))
}

func TestLinkMember_RequiresVerifiedMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.svc.Register(ctx, validInput("maria"))
	require.NoError(t, err)
	err = f.members.Create(ctx, &memmodels.Member{
		RegistrationCode: "CON-CCCC555566",
		FirstName:        "Ana",
		LastName:         "Flores",
		IDCard:           "1112223",
		IDCardExtension:  "LP",
		Status:           memmodels.StatusPending,
	})
	require.NoError(t, err)

	_, err = f.svc.LinkMember(ctx, session.User.ID, "CON-CCCC555566")
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeInvariantViolation, dErrors.CodeOf(err))
}

// failingUsers makes the account-side write of a link fail.
type failingUsers struct {
	store.Store
}

func (f failingUsers) SetMemberRegistrationCode(ctx context.Context, id, code string) (*models.User, error) {
	return nil, assert.AnError
}

func TestLinkMember_ReleasesClaimOnAccountWriteFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.svc.Register(ctx, validInput("maria"))
	require.NoError(t, err)
	verifiedMember(t, f, "CON-AAAA111122")

	broken := *f.svc
	broken.users = failingUsers{Store: f.users}
	_, err = broken.LinkMember(ctx, session.User.ID, "CON-AAAA111122")
	require.Error(t, err)

	// The claim was released, so the member is linkable again.
	member, err := f.members.ByRegistrationCode(ctx, "CON-AAAA111122")
	require.NoError(t, err)
	assert.Empty(t, member.LinkedUserID)

	// And a retry through the intact service succeeds.
	_, err = f.svc.LinkMember(ctx, session.User.ID, "CON-AAAA111122")
	require.NoError(t, err)
}
