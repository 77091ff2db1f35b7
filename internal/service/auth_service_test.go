package service

import (
	"context"
	"testing"

	"github.com/lshigami/psytest/config"
	"github.com/lshigami/psytest/internal/apperror"
	"github.com/lshigami/psytest/internal/dto"
	"github.com/lshigami/psytest/internal/model"
	"github.com/lshigami/psytest/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func register(t *testing.T, f *fixture, username string) *dto.AuthResponse {
	t.Helper()
	resp, err := f.auth.Register(f.ctx, dto.RegisterRequest{
		Email:    username + "@Example.com",
		Username: username,
		Password: "secret1",
	})
	require.NoError(t, err)
	return resp
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	reg := register(t, f, "alice")
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "alice@example.com", reg.User.Email)
	assert.Equal(t, string(model.RoleUser), reg.User.Role)
	assert.True(t, reg.User.IsActive)

	byEmail, err := f.auth.Login(f.ctx, dto.LoginRequest{Login: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, byEmail.User.ID)

	byName, err := f.auth.Login(f.ctx, dto.LoginRequest{Login: "alice", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, byName.Token)

	_, err = f.auth.Login(f.ctx, dto.LoginRequest{Login: "alice", Password: "wrong!!"})
	assert.True(t, apperror.Is(err, apperror.KindUnauthenticated))
	_, err = f.auth.Login(f.ctx, dto.LoginRequest{Login: "nobody", Password: "secret1"})
	assert.True(t, apperror.Is(err, apperror.KindUnauthenticated))
}

func TestLogin_EmailIgnoresCase(t *testing.T) {
	f := newFixture(t)
	reg, err := f.auth.Register(f.ctx, dto.RegisterRequest{Email: "Alice@Example.com", Username: "Alice", Password: "secret1"})
	require.NoError(t, err)

	for _, login := range []string{"Alice@Example.com", "ALICE@EXAMPLE.COM", " alice@example.com "} {
		resp, err := f.auth.Login(f.ctx, dto.LoginRequest{Login: login, Password: "secret1"})
		require.NoError(t, err, login)
		assert.Equal(t, reg.User.ID, resp.User.ID)
	}

	_, err = f.auth.Login(f.ctx, dto.LoginRequest{Login: "alice", Password: "secret1"})
	assert.True(t, apperror.Is(err, apperror.KindUnauthenticated), "usernames stay case-sensitive")
}

// racingUsers hides existing rows from the pre-insert check, as a concurrent
// registration would.
type racingUsers struct {
	repository.UserRepository
}

func (racingUsers) ExistsByEmailOrUsername(context.Context, string, string, uint) (bool, error) {
	return false, nil
}

func TestRegister_DuplicateInsertIsConflict(t *testing.T) {
	f := newFixture(t)
	register(t, f, "alice")

	auth := NewAuthService(racingUsers{f.users}, &config.Config{JWT: config.JWT{Secret: "test-secret"}})
	_, err := auth.Register(f.ctx, dto.RegisterRequest{Email: "alice@example.com", Username: "alice-2", Password: "secret1"})
	assert.True(t, apperror.Is(err, apperror.KindConflict), "got %v", err)
	assert.Equal(t, int64(1), countRows(t, f.db, &model.User{}))
}

func TestRegister_Rejections(t *testing.T) {
	f := newFixture(t)
	register(t, f, "alice")

	_, err := f.auth.Register(f.ctx, dto.RegisterRequest{Email: "other@example.com", Username: "alice", Password: "secret1"})
	assert.True(t, apperror.Is(err, apperror.KindConflict))

	_, err = f.auth.Register(f.ctx, dto.RegisterRequest{Email: "ALICE@example.com", Username: "alice2", Password: "secret1"})
	assert.True(t, apperror.Is(err, apperror.KindConflict))

	_, err = f.auth.Register(f.ctx, dto.RegisterRequest{Email: "b@example.com", Username: "bob", Password: "123"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	reg := register(t, f, "alice")

	caller, err := f.auth.Authenticate(f.ctx, reg.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, caller.UserID)
	assert.Equal(t, model.RoleUser, caller.Role)

	_, err = f.auth.Authenticate(f.ctx, "not-a-token")
	assert.True(t, apperror.Is(err, apperror.KindUnauthenticated))

	_, err = f.adminUsers.ToggleUserActive(f.ctx, reg.User.ID, adminCaller)
	require.NoError(t, err)

	_, err = f.auth.Authenticate(f.ctx, reg.Token)
	assert.True(t, apperror.Is(err, apperror.KindUnauthenticated))

	_, err = f.auth.Login(f.ctx, dto.LoginRequest{Login: "alice", Password: "secret1"})
	assert.True(t, apperror.Is(err, apperror.KindForbidden))
}

func TestUpdateProfile_KeepsEmptyFields(t *testing.T) {
	f := newFixture(t)
	reg := register(t, f, "alice")
	caller, err := f.auth.Authenticate(f.ctx, reg.Token)
	require.NoError(t, err)

	first, last := "Alice", "Liddell"
	_, err = f.auth.UpdateProfile(f.ctx, caller, dto.UpdateProfileRequest{FirstName: &first, LastName: &last})
	require.NoError(t, err)

	empty := ""
	resp, err := f.auth.UpdateProfile(f.ctx, caller, dto.UpdateProfileRequest{FirstName: &empty})
	require.NoError(t, err)
	require.NotNil(t, resp.User.FirstName)
	assert.Equal(t, "Alice", *resp.User.FirstName)
	assert.Equal(t, "Liddell", *resp.User.LastName)

	_, err = f.auth.Profile(f.ctx, nil)
	assert.True(t, apperror.Is(err, apperror.KindUnauthenticated))
}

func TestSeedStaff_Idempotent(t *testing.T) {
	f := newFixture(t)
	seed := config.Seed{
		AdminEmail:           " Admin@Example.com ",
		AdminUsername:        "admin",
		AdminPassword:        "admin123",
		PsychologistEmail:    "psy@example.com",
		PsychologistUsername: "psychologist",
		PsychologistPassword: "psy12345",
	}
	require.NoError(t, f.auth.SeedStaff(f.ctx, seed))
	require.NoError(t, f.auth.SeedStaff(f.ctx, seed))
	assert.Equal(t, int64(2), countRows(t, f.db, &model.User{}))

	admin, err := f.auth.Login(f.ctx, dto.LoginRequest{Login: "admin", Password: "admin123"})
	require.NoError(t, err)
	assert.Equal(t, string(model.RoleAdmin), admin.User.Role)
	assert.Equal(t, "admin@example.com", admin.User.Email)

	_, err = f.auth.Login(f.ctx, dto.LoginRequest{Login: "Admin@Example.com", Password: "admin123"})
	require.NoError(t, err)

	weak := config.Seed{AdminEmail: "a2@example.com", AdminUsername: "a2", AdminPassword: "x",
		PsychologistEmail: "psy@example.com", PsychologistUsername: "psychologist"}
	err = f.auth.SeedStaff(f.ctx, weak)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestAdminUsers(t *testing.T) {
	f := newFixture(t)
	reg := register(t, f, "alice")
	user := f.createUser(t, "bob", model.RoleUser)

	list, err := f.adminUsers.ListUsers(f.ctx, adminCaller)
	require.NoError(t, err)
	assert.Len(t, list.Users, 2)

	_, err = f.adminUsers.ListUsers(f.ctx, user)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	resp, err := f.adminUsers.ToggleUserActive(f.ctx, reg.User.ID, adminCaller)
	require.NoError(t, err)
	assert.False(t, resp.User.IsActive)
	resp, err = f.adminUsers.ToggleUserActive(f.ctx, reg.User.ID, adminCaller)
	require.NoError(t, err)
	assert.True(t, resp.User.IsActive)

	_, err = f.adminUsers.ToggleUserActive(f.ctx, 999, adminCaller)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}
