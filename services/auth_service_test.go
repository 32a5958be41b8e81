package services

import (
	"context"
	"testing"

	"github.com/Dosada05/slot-arena/models"
	"github.com/Dosada05/slot-arena/repositories/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBootstrap_OnlyOnce(t *testing.T) {
	store := memory.NewStore()
	auth := NewAuthService(store, discardLogger())
	ctx := context.Background()

	admin, err := auth.Bootstrap(ctx, CreateAdminInput{Username: "root", Password: "correct-horse", Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, models.RoleSuperAdmin, admin.Role)
	assert.True(t, admin.IsActive)
	assert.NotEqual(t, "correct-horse", admin.PasswordHash)

	_, err = auth.Bootstrap(ctx, CreateAdminInput{Username: "second", Password: "correct-horse"})
	assert.ErrorIs(t, err, ErrAdminExists)

	n, err := store.Admins.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCreateAdmin_Validation(t *testing.T) {
	auth := NewAuthService(memory.NewStore(), discardLogger())
	ctx := context.Background()

	tests := []struct {
		name  string
		input CreateAdminInput
		want  error
	}{
		{"missing username", CreateAdminInput{Password: "longenough"}, ErrUsernameRequired},
		{"short password", CreateAdminInput{Username: "mod", Password: "short"}, ErrPasswordTooShort},
		{"unknown role", CreateAdminInput{Username: "mod", Password: "longenough", Role: "owner"}, ErrValidationFailed},
		{"unknown permission", CreateAdminInput{Username: "mod", Password: "longenough", Permissions: []models.Permission{"sudo"}}, ErrValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.CreateAdmin(ctx, tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreateAdmin_DuplicateUsername(t *testing.T) {
	auth := NewAuthService(memory.NewStore(), discardLogger())
	ctx := context.Background()

	admin, err := auth.CreateAdmin(ctx, CreateAdminInput{Username: "mod", Password: "longenough"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)

	_, err = auth.CreateAdmin(ctx, CreateAdminInput{Username: "mod", Password: "longenough"})
	assert.ErrorIs(t, err, ErrAdminConflict)
}

func TestLogin(t *testing.T) {
	auth := NewAuthService(memory.NewStore(), discardLogger())
	ctx := context.Background()

	_, err := auth.CreateAdmin(ctx, CreateAdminInput{
		Username:    "mod",
		Password:    "longenough",
		Permissions: []models.Permission{models.PermResetTournaments},
	})
	require.NoError(t, err)

	admin, err := auth.Login(ctx, LoginInput{Username: " mod ", Password: "longenough"})
	require.NoError(t, err)
	assert.Equal(t, "mod", admin.Username)
	assert.NotNil(t, admin.LastLogin)
	assert.Equal(t, []models.Permission{models.PermResetTournaments}, admin.Permissions)

	_, err = auth.Login(ctx, LoginInput{Username: "mod", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrAuthInvalidCredentials)

	_, err = auth.Login(ctx, LoginInput{Username: "ghost", Password: "longenough"})
	assert.ErrorIs(t, err, ErrAuthInvalidCredentials)
}
