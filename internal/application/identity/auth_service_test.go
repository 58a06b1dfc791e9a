package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/destocard/backend/internal/domain/identity"
	"github.com/destocard/backend/internal/domain/shared"
	"github.com/destocard/backend/internal/infrastructure/auth"
	"github.com/destocard/backend/internal/infrastructure/config"
	"github.com/destocard/backend/internal/infrastructure/persistence"
	"github.com/destocard/backend/internal/infrastructure/persistence/persistencetest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]identity.User, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByStripeCustomerID(ctx context.Context, customerID string) (*identity.User, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) Like(ctx context.Context, userID, productID uuid.UUID) error {
	return m.Called(ctx, userID, productID).Error(0)
}

func (m *MockUserRepository) Unlike(ctx context.Context, userID, productID uuid.UUID) error {
	return m.Called(ctx, userID, productID).Error(0)
}

func (m *MockUserRepository) IsLiked(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, productID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) FindLikedProductIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockUserRepository) CountLikes(ctx context.Context, productID uuid.UUID) (int64, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(int64), args.Error(1)
}

var _ identity.UserRepository = (*MockUserRepository)(nil)

func newJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-for-jwt-testing-32chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "destocard-test",
	})
}

type authFixture struct {
	auth  *AuthService
	users *UserService
	repo  identity.UserRepository
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	repo := persistence.NewGormUserRepository(persistencetest.NewDB(t))
	blacklist := auth.NewInMemoryTokenBlacklist()
	return &authFixture{
		auth:  NewAuthService(repo, newJWTService(), blacklist, nil),
		users: NewUserService(repo, blacklist, 7*24*time.Hour, nil),
		repo:  repo,
	}
}

func register(t *testing.T, f *authFixture, email, username string) *AuthResponse {
	t.Helper()
	resp, err := f.auth.Register(context.Background(), RegisterRequest{
		Email:           email,
		Username:        username,
		Password:        "dracaufeu151",
		ConfirmPassword: "dracaufeu151",
	})
	require.NoError(t, err)
	return resp
}

func TestAuthService_Register(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	t.Run("passwords must match", func(t *testing.T) {
		_, err := f.auth.Register(ctx, RegisterRequest{
			Email: "sacha@example.com", Username: "sacha",
			Password: "pikachu2024", ConfirmPassword: "pikachu2025",
		})
		assert.ErrorIs(t, err, ErrPasswordMismatch)
		assert.Equal(t, "Les mots de passe ne correspondent pas", err.Error())
	})

	resp := register(t, f, "Sacha@Example.com", "sacha")
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	require.NotNil(t, resp.User)
	assert.Equal(t, "sacha@example.com", resp.User.Email)
	assert.Equal(t, []string{string(identity.RoleUser)}, resp.User.Roles)

	t.Run("email is unique", func(t *testing.T) {
		_, err := f.auth.Register(ctx, RegisterRequest{
			Email: "sacha@example.com", Username: "sacha2",
			Password: "pikachu2024", ConfirmPassword: "pikachu2024",
		})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("username is unique", func(t *testing.T) {
		_, err := f.auth.Register(ctx, RegisterRequest{
			Email: "other@example.com", Username: "sacha",
			Password: "pikachu2024", ConfirmPassword: "pikachu2024",
		})
		assert.ErrorIs(t, err, ErrUsernameTaken)
	})
}

func TestAuthService_TokenLifecycle(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	register(t, f, "ondine@example.com", "ondine")

	_, err := f.auth.Login(ctx, LoginRequest{Email: "ondine@example.com", Password: "mauvais123"})
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
	_, err = f.auth.Login(ctx, LoginRequest{Email: "inconnu@example.com", Password: "dracaufeu151"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	login, err := f.auth.Login(ctx, LoginRequest{Email: "ONDINE@example.com", Password: "dracaufeu151"})
	require.NoError(t, err)

	claims, err := f.auth.Authenticate(ctx, login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, login.User.ID.String(), claims.UserID)

	t.Run("access token cannot refresh", func(t *testing.T) {
		_, err := f.auth.Refresh(ctx, RefreshRequest{RefreshToken: login.AccessToken})
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("refresh token is single use", func(t *testing.T) {
		refreshed, err := f.auth.Refresh(ctx, RefreshRequest{RefreshToken: login.RefreshToken})
		require.NoError(t, err)
		assert.NotEqual(t, login.AccessToken, refreshed.AccessToken)

		_, err = f.auth.Refresh(ctx, RefreshRequest{RefreshToken: login.RefreshToken})
		assert.ErrorIs(t, err, ErrTokenRevoked)
	})

	t.Run("logout revokes the access token", func(t *testing.T) {
		require.NoError(t, f.auth.Logout(ctx, claims))
		_, err := f.auth.Authenticate(ctx, login.AccessToken)
		assert.ErrorIs(t, err, ErrTokenRevoked)
	})
}

func TestAuthService_RefreshReloadsRoles(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	reg := register(t, f, "pierre@example.com", "pierre")

	_, err := f.users.PromoteAdmin(ctx, "pierre@example.com")
	require.NoError(t, err)

	refreshed, err := f.auth.Refresh(ctx, RefreshRequest{RefreshToken: reg.RefreshToken})
	require.NoError(t, err)
	claims, err := f.auth.Authenticate(ctx, refreshed.AccessToken)
	require.NoError(t, err)
	assert.True(t, claims.HasRole(string(identity.RoleAdmin)))
}

func TestAuthService_LoginRepositoryFailure(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("FindByEmail", mock.Anything, "red@example.com").Return(nil, errors.New("connection refused"))

	svc := NewAuthService(repo, newJWTService(), nil, nil)
	_, err := svc.Login(context.Background(), LoginRequest{Email: "red@example.com", Password: "x"})
	require.Error(t, err)
	_, isDomain := shared.IsDomainError(err)
	assert.False(t, isDomain)
	repo.AssertExpectations(t)
}

func TestAuthService_LogoutWithoutBlacklist(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewAuthService(repo, newJWTService(), nil, nil)
	assert.NoError(t, svc.Logout(context.Background(), &auth.Claims{UserID: uuid.NewString()}))
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}
