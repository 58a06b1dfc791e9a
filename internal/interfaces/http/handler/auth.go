package handler

import (
	"context"

	"github.com/destocard/backend/internal/application/identity"
	"github.com/destocard/backend/internal/domain/cart"
	"github.com/destocard/backend/internal/infrastructure/logger"
	"github.com/destocard/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CartMerger folds an anonymous cart into a user cart
type CartMerger interface {
	MergeSessionCart(ctx context.Context, from, into cart.Key) error
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService *identity.AuthService
	carts       CartMerger
}

// NewAuthHandler creates a new auth handler. carts may be nil.
func NewAuthHandler(authService *identity.AuthService, carts CartMerger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		carts:       carts,
	}
}

// Register godoc
// @Summary      Create an account
// @Description  Registers a user and returns a token pair. An anonymous cart is moved to the new account.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identity.RegisterRequest true "Account"
// @Success      201 {object} APIResponse[identity.AuthResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req identity.RegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.adoptSessionCart(c, result)
	h.Created(c, result)
}

// Login godoc
// @Summary      User login
// @Description  Authenticate with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identity.LoginRequest true "Login credentials"
// @Success      200 {object} APIResponse[identity.AuthResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req identity.LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.adoptSessionCart(c, result)
	h.Success(c, result)
}

// Refresh godoc
// @Summary      Refresh access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identity.RefreshRequest true "Refresh token"
// @Success      200 {object} APIResponse[identity.AuthResponse]
// @Failure      401 {object} ErrorResponse
// @Router       /api/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req identity.RefreshRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Refresh(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Logout godoc
// @Summary      Revoke the current access token
// @Tags         auth
// @Success      204
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), middleware.GetClaims(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// adoptSessionCart moves the cookie cart into the signed-in user's cart.
// Failures are logged only; signing in must not fail because of the cart.
func (h *AuthHandler) adoptSessionCart(c *gin.Context, result *identity.AuthResponse) {
	sessionID := middleware.GetCartSessionID(c)
	if h.carts == nil || sessionID == "" || result == nil || result.User == nil {
		return
	}
	from := cart.SessionKey(sessionID)
	into := cart.UserKey(result.User.ID)
	if err := h.carts.MergeSessionCart(c.Request.Context(), from, into); err != nil {
		logger.GetGinLogger(c).Warn("Failed to merge session cart",
			zap.String("user_id", result.User.ID.String()),
			zap.Error(err),
		)
	}
}
