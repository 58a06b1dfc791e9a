package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/destocard/backend/internal/domain/identity"
	"github.com/destocard/backend/internal/domain/shared"
	"github.com/destocard/backend/internal/infrastructure/auth"
	"github.com/destocard/backend/internal/infrastructure/config"
	"github.com/destocard/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// jwtAuthenticator validates tokens without any revocation store
type jwtAuthenticator struct {
	svc *auth.JWTService
}

func (a jwtAuthenticator) Authenticate(_ context.Context, token string) (*auth.Claims, error) {
	claims, err := a.svc.ValidateAccessToken(token)
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Jeton invalide")
	}
	return claims, nil
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "destocard-test",
	})
}

func issueToken(t *testing.T, svc *auth.JWTService, roles ...identity.Role) (string, uuid.UUID) {
	t.Helper()
	userID := uuid.New()
	names := []string{string(identity.RoleUser)}
	for _, r := range roles {
		names = append(names, string(r))
	}
	pair, err := svc.GenerateTokenPair(auth.GenerateTokenInput{UserID: userID, Username: "sacha", Roles: names})
	require.NoError(t, err)
	return pair.AccessToken, userID
}

func newAuthRouter(svc *auth.JWTService) *gin.Engine {
	router := gin.New()
	router.Use(OptionalJWT(jwtAuthenticator{svc: svc}))
	router.GET("/public", func(c *gin.Context) {
		_, ok := GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"authenticated": ok})
	})
	router.GET("/me", RequireAuth(), func(c *gin.Context) {
		id, _ := GetUserID(c)
		c.String(http.StatusOK, id.String())
	})
	router.GET("/admin", RequireAuth(), RequireAdmin(), func(c *gin.Context) {
		c.String(http.StatusOK, "admin")
	})
	return router
}

func TestOptionalJWT_PublicRoute(t *testing.T) {
	svc := newTestJWTService()
	router := newAuthRouter(svc)
	token, _ := issueToken(t, svc)

	t.Run("anonymous", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/public", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"authenticated":false}`, w.Body.String())
	})

	t.Run("bad token still answers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/public", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+"garbage")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"authenticated":false}`, w.Body.String())
	})

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/public", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.JSONEq(t, `{"authenticated":true}`, w.Body.String())
	})
}

func TestRequireAuth(t *testing.T) {
	svc := newTestJWTService()
	router := newAuthRouter(svc)
	token, userID := issueToken(t, svc)

	t.Run("missing token", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeUnauthorized, decodeResponse(t, w).Error.Code)
	})

	t.Run("rejected token reports why", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+"garbage")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeTokenInvalid, decodeResponse(t, w).Error.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, userID.String(), w.Body.String())
	})
}

func TestRequireAdmin(t *testing.T) {
	svc := newTestJWTService()
	router := newAuthRouter(svc)

	userToken, _ := issueToken(t, svc)
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+userToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	adminToken, _ := issueToken(t, svc, identity.RoleAdmin)
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+adminToken)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
