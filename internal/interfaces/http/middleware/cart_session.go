package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/destocard/backend/internal/domain/cart"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const cartSessionKey = "cart_session"

// CartSessionConfig configures the anonymous cart cookie
type CartSessionConfig struct {
	CookieName string
	MaxAge     time.Duration
	Secure     bool
	// IssuePrefix limits where a missing cookie is created, so that browsing
	// the catalog does not hand out cookies.
	IssuePrefix string
}

// DefaultCartSessionConfig returns the cookie settings used by the API
func DefaultCartSessionConfig() CartSessionConfig {
	return CartSessionConfig{
		CookieName:  "cart_session",
		MaxAge:      7 * 24 * time.Hour,
		IssuePrefix: "/api/cart",
	}
}

// CartSession reads the anonymous cart id from its cookie and issues one on
// cart routes when missing. Values that are not UUIDs are replaced.
func CartSession(cfg CartSessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := ""
		if v, err := c.Cookie(cfg.CookieName); err == nil {
			if _, perr := uuid.Parse(v); perr == nil {
				sessionID = v
			}
		}

		if sessionID == "" && strings.HasPrefix(c.Request.URL.Path, cfg.IssuePrefix) {
			sessionID = uuid.NewString()
			http.SetCookie(c.Writer, &http.Cookie{
				Name:     cfg.CookieName,
				Value:    sessionID,
				Path:     "/",
				MaxAge:   int(cfg.MaxAge.Seconds()),
				HttpOnly: true,
				Secure:   cfg.Secure,
				SameSite: http.SameSiteLaxMode,
			})
		}

		if sessionID != "" {
			c.Set(cartSessionKey, sessionID)
		}
		c.Next()
	}
}

// GetCartSessionID returns the anonymous cart id, if any
func GetCartSessionID(c *gin.Context) string {
	return c.GetString(cartSessionKey)
}

// CartKey resolves the cart of the current request: the user cart when
// authenticated, otherwise the session cart.
func CartKey(c *gin.Context) (cart.Key, bool) {
	if userID, ok := GetUserID(c); ok {
		return cart.UserKey(userID), true
	}
	if sessionID := GetCartSessionID(c); sessionID != "" {
		return cart.SessionKey(sessionID), true
	}
	return "", false
}
