package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/destocard/backend/internal/domain/identity"
	"github.com/destocard/backend/internal/infrastructure/auth"
	"github.com/destocard/backend/internal/infrastructure/logger"
	"github.com/destocard/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// JWT context keys
const (
	JWTClaimsKey  = "jwt_claims"
	jwtErrorKey   = "jwt_error"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// Authenticator validates an access token, including revocation checks.
// *identity.AuthService satisfies it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
}

// OptionalJWT reads a bearer token when one is sent. Valid claims are stored
// for handlers; a rejected token is remembered so that RequireAuth can
// report why, while public routes still answer.
func OptionalJWT(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(AuthHeaderKey)
		if !strings.HasPrefix(header, BearerPrefix) {
			c.Next()
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
		if token == "" {
			c.Next()
			return
		}

		claims, err := authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.Set(jwtErrorKey, err)
			c.Next()
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(logger.GinUserIDKey, claims.UserID)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.UserID))
		c.Next()
	}
}

// RequireAuth rejects requests without valid claims
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetClaims(c) != nil {
			c.Next()
			return
		}
		if v, ok := c.Get(jwtErrorKey); ok {
			if err, ok := v.(error); ok {
				AbortWithDomainError(c, err)
				return
			}
		}
		AbortWithError(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentification requise")
	}
}

// RequireAdmin rejects requests whose claims lack ROLE_ADMIN. It must run
// after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c) {
			AbortWithError(c, http.StatusForbidden, dto.ErrCodeForbidden, "Accès réservé aux administrateurs")
			return
		}
		c.Next()
	}
}

// GetClaims retrieves JWT claims from gin.Context
func GetClaims(c *gin.Context) *auth.Claims {
	if v, exists := c.Get(JWTClaimsKey); exists {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetUserID returns the authenticated user id
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	claims := GetClaims(c)
	if claims == nil {
		return uuid.Nil, false
	}
	id, err := claims.GetUserUUID()
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// IsAdmin reports whether the authenticated user holds ROLE_ADMIN
func IsAdmin(c *gin.Context) bool {
	claims := GetClaims(c)
	return claims != nil && claims.HasRole(string(identity.RoleAdmin))
}
