package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/stockroom/app/models"
	"github.com/shashiranjanraj/stockroom/app/services"
	"github.com/shashiranjanraj/stockroom/pkg/auth"
)

func TestAuth_RegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	svc := services.NewAuthService(f.users)
	ctx := context.Background()

	user, err := svc.Register(ctx, services.UserInput{
		Name:     "Ann",
		Email:    " Ann@Example.com ",
		Password: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", user.Email)
	assert.Equal(t, models.RoleCustomer, user.Role)
	assert.NotEqual(t, "secret1", user.Password)

	_, err = svc.Register(ctx, services.UserInput{Name: "Ann", Email: "ann@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, services.ErrDuplicate)

	_, err = svc.Register(ctx, services.UserInput{Name: "Short", Email: "short@example.com", Password: "123"})
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = svc.Register(ctx, services.UserInput{Name: "Root", Email: "root@example.com", Password: "secret1", Role: "root"})
	assert.ErrorIs(t, err, services.ErrValidation)

	session, err := svc.Login(ctx, services.LoginInput{Email: "ANN@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, session.User.ID)

	claims, err := auth.ValidateToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, models.RoleCustomer, claims.Role)

	who, err := svc.Authenticate(session.Token)
	require.NoError(t, err)
	assert.Equal(t, services.Identity{UserID: user.ID, Role: models.RoleCustomer}, who)

	_, err = svc.Login(ctx, services.LoginInput{Email: "ann@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	_, err = svc.Login(ctx, services.LoginInput{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	_, err = svc.Authenticate("not-a-token")
	assert.ErrorIs(t, err, services.ErrUnauthorized)
}

func TestAuth_ChangePassword(t *testing.T) {
	f := newFixture(t)
	svc := services.NewAuthService(f.users)
	ctx := context.Background()

	user, err := svc.Register(ctx, services.UserInput{Name: "Ann", Email: "ann@example.com", Password: "secret1"})
	require.NoError(t, err)
	who := services.Identity{UserID: user.ID, Role: user.Role}

	err = svc.ChangePassword(ctx, services.ChangePasswordInput{CurrentPassword: "nope", NewPassword: "secret2"}, who)
	assert.ErrorIs(t, err, services.ErrValidation)

	require.NoError(t, svc.ChangePassword(ctx, services.ChangePasswordInput{CurrentPassword: "secret1", NewPassword: "secret2"}, who))

	_, err = svc.Login(ctx, services.LoginInput{Email: "ann@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, services.ErrUnauthorized)
	_, err = svc.Login(ctx, services.LoginInput{Email: "ann@example.com", Password: "secret2"})
	assert.NoError(t, err)

	profile, err := svc.Profile(ctx, who)
	require.NoError(t, err)
	assert.Equal(t, "Ann", profile.Name)
}

func TestAuth_UserAdministration(t *testing.T) {
	f := newFixture(t)
	svc := services.NewAuthService(f.users)
	admin := f.user(t, "admin@example.com", models.RoleAdmin)
	customer := f.user(t, "ann@example.com", models.RoleCustomer)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, services.UserInput{Name: "Bob", Email: "bob@example.com", Password: "secret1"}, customer)
	assert.ErrorIs(t, err, services.ErrForbidden)

	bob, err := svc.CreateUser(ctx, services.UserInput{Name: "Bob", Email: "bob@example.com", Password: "secret1", Role: models.RoleAdmin}, admin)
	require.NoError(t, err)
	assert.True(t, bob.IsAdmin())

	page, err := svc.ListUsers(ctx, 1, 2, admin)
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	assert.Len(t, page.Users, 2)
	assert.Equal(t, 2, page.Limit)

	page, err = svc.ListUsers(ctx, 0, 500, admin)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.Limit)

	_, err = svc.ListUsers(ctx, 1, 20, customer)
	assert.ErrorIs(t, err, services.ErrForbidden)

	assert.ErrorIs(t, svc.DeleteUser(ctx, admin.UserID, admin), services.ErrConflict)
	require.NoError(t, svc.DeleteUser(ctx, bob.ID, admin))
	assert.ErrorIs(t, svc.DeleteUser(ctx, bob.ID, admin), services.ErrNotFound)
}
