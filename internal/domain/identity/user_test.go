package identity

import (
	"errors"
	"testing"

	"github.com/destocard/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Run("creates user with ROLE_USER and hashed password", func(t *testing.T) {
		user, err := NewUser("  Sacha@Example.COM ", "sacha", "pikachu123")
		require.NoError(t, err)

		assert.Equal(t, "sacha@example.com", user.Email)
		assert.Equal(t, "sacha", user.Username)
		assert.Equal(t, Roles{RoleUser}, user.Roles)
		assert.NotEqual(t, "pikachu123", user.PasswordHash)
		assert.True(t, user.VerifyPassword("pikachu123"))
		assert.Equal(t, 1, user.GetVersion())
		require.Len(t, user.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeUserRegistered, user.GetDomainEvents()[0].EventType())
	})

	tests := []struct {
		name     string
		email    string
		username string
		password string
		code     string
	}{
		{"invalid email", "not-an-email", "sacha", "pikachu123", "INVALID_EMAIL"},
		{"empty email", "", "sacha", "pikachu123", "INVALID_EMAIL"},
		{"short username", "a@b.fr", "ab", "pikachu123", "INVALID_USERNAME"},
		{"username with spaces", "a@b.fr", "sacha ketchum", "pikachu123", "INVALID_USERNAME"},
		{"short password", "a@b.fr", "sacha", "pika1", "INVALID_PASSWORD"},
		{"password without digit", "a@b.fr", "sacha", "pikachupika", "INVALID_PASSWORD"},
		{"password without letter", "a@b.fr", "sacha", "12345678", "INVALID_PASSWORD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUser(tt.email, tt.username, tt.password)
			require.Error(t, err)
			var de *shared.DomainError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, tt.code, de.Code)
		})
	}
}

func TestUser_ChangePassword(t *testing.T) {
	user, err := NewUser("ondine@example.com", "ondine", "psykokwak1")
	require.NoError(t, err)

	err = user.ChangePassword("wrong", "staross22")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "incorrect")

	require.NoError(t, user.ChangePassword("psykokwak1", "staross22"))
	assert.True(t, user.VerifyPassword("staross22"))
	assert.False(t, user.VerifyPassword("psykokwak1"))
	assert.Equal(t, 2, user.GetVersion())
}

func TestUser_Roles(t *testing.T) {
	user, err := NewUser("pierre@example.com", "pierre", "onix12345")
	require.NoError(t, err)

	assert.False(t, user.IsAdmin())
	require.NoError(t, user.GrantRole(RoleAdmin))
	assert.True(t, user.IsAdmin())
	assert.Equal(t, []string{"ROLE_USER", "ROLE_ADMIN"}, user.RoleNames())

	require.NoError(t, user.GrantRole(RoleAdmin))
	assert.Len(t, user.Roles, 2)

	assert.Error(t, user.GrantRole(Role("ROLE_ROOT")))
	assert.Error(t, user.RevokeRole(RoleUser))

	require.NoError(t, user.RevokeRole(RoleAdmin))
	assert.False(t, user.IsAdmin())
}

func TestRoles_ValueScan(t *testing.T) {
	v, err := Roles{RoleUser, RoleAdmin}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["ROLE_USER","ROLE_ADMIN"]`, v)

	var r Roles
	require.NoError(t, r.Scan([]byte(`["ROLE_USER"]`)))
	assert.Equal(t, Roles{RoleUser}, r)

	require.NoError(t, r.Scan(nil))
	assert.Empty(t, r)

	assert.Error(t, r.Scan(42))
}

func TestUser_Subscription(t *testing.T) {
	user, err := NewUser("red@example.com", "red", "dracaufeu6")
	require.NoError(t, err)

	assert.False(t, user.IsPro())
	user.SetSubscription("sub_123", SubscriptionTrialing)
	assert.True(t, user.IsPro())
	user.SetSubscription("sub_123", SubscriptionCanceled)
	assert.False(t, user.IsPro())
}

func TestUser_FullName(t *testing.T) {
	user, err := NewUser("blue@example.com", "blue", "tortank999")
	require.NoError(t, err)
	assert.Equal(t, "blue", user.FullName())

	require.NoError(t, user.UpdateProfile("Régis", "Chen", ""))
	assert.Equal(t, "Régis Chen", user.FullName())
}
