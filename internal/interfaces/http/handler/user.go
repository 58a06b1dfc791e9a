package handler

import (
	"github.com/destocard/backend/internal/application/identity"
	"github.com/destocard/backend/internal/application/marketplace"
	"github.com/gin-gonic/gin"
)

// UserHandler serves the signed-in user's profile
type UserHandler struct {
	BaseHandler
	users    *identity.UserService
	products *marketplace.ProductService
}

// NewUserHandler creates a new user handler
func NewUserHandler(users *identity.UserService, products *marketplace.ProductService) *UserHandler {
	return &UserHandler{users: users, products: products}
}

// Me godoc
// @Summary      Current user
// @Tags         users
// @Produce      json
// @Success      200 {object} APIResponse[identity.UserResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/users/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	user, err := h.users.Me(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// UpdateMe godoc
// @Summary      Update profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body identity.UpdateProfileRequest true "Profile"
// @Success      200 {object} APIResponse[identity.UserResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/users/me [put]
func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req identity.UpdateProfileRequest
	if !h.bindJSON(c, &req) {
		return
	}
	user, err := h.users.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// ChangePassword godoc
// @Summary      Change password
// @Description  Every token issued before the change is revoked
// @Tags         users
// @Accept       json
// @Param        request body identity.ChangePasswordRequest true "Passwords"
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/users/me/password [put]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req identity.ChangePasswordRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.users.ChangePassword(c.Request.Context(), userID, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Likes godoc
// @Summary      Liked products
// @Tags         users
// @Produce      json
// @Success      200 {object} APIResponse[[]marketplace.ProductResponse]
// @Security     BearerAuth
// @Router       /api/users/me/likes [get]
func (h *UserHandler) Likes(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	products, err := h.products.ListLiked(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}
