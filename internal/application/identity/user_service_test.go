package identity

import (
	"context"
	"testing"

	"github.com/destocard/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_Profile(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	reg := register(t, f, "flora@example.com", "flora")

	me, err := f.users.Me(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "flora", me.FullName)
	assert.False(t, me.Pro)

	updated, err := f.users.UpdateProfile(ctx, reg.User.ID, UpdateProfileRequest{FirstName: "Flora", LastName: "Maple"})
	require.NoError(t, err)
	assert.Equal(t, "Flora Maple", updated.FullName)

	_, err = f.users.Me(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUserService_ChangePassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	reg := register(t, f, "max@example.com", "max")

	err := f.users.ChangePassword(ctx, reg.User.ID, ChangePasswordRequest{
		OldPassword: "dracaufeu151", NewPassword: "tortank2024", ConfirmPassword: "tortank2025",
	})
	assert.ErrorIs(t, err, ErrPasswordMismatch)

	err = f.users.ChangePassword(ctx, reg.User.ID, ChangePasswordRequest{
		OldPassword: "mauvais123", NewPassword: "tortank2024", ConfirmPassword: "tortank2024",
	})
	require.Error(t, err)
	assert.Equal(t, "Le mot de passe actuel est incorrect", err.Error())

	require.NoError(t, f.users.ChangePassword(ctx, reg.User.ID, ChangePasswordRequest{
		OldPassword: "dracaufeu151", NewPassword: "tortank2024", ConfirmPassword: "tortank2024",
	}))

	_, err = f.auth.Login(ctx, LoginRequest{Email: "max@example.com", Password: "dracaufeu151"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.auth.Login(ctx, LoginRequest{Email: "max@example.com", Password: "tortank2024"})
	assert.NoError(t, err)
}

func TestUserService_PromoteAdmin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	register(t, f, "admin@example.com", "admin")

	promoted, err := f.users.PromoteAdmin(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Contains(t, promoted.Roles, "ROLE_ADMIN")

	again, err := f.users.PromoteAdmin(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Len(t, again.Roles, 2)

	_, err = f.users.PromoteAdmin(ctx, "personne@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
