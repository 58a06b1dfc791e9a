package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/destocard/backend/internal/domain/cart"
	"github.com/destocard/backend/internal/interfaces/http/dto"
	"github.com/destocard/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// uuidParam parses a path parameter. On failure it has already answered 400.
func (h *BaseHandler) uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidationFormat, "Identifiant invalide")
		return uuid.Nil, false
	}
	return id, true
}

// currentUser returns the authenticated user id. Routes behind RequireAuth
// always have one; the 401 covers handlers mounted without it.
func (h *BaseHandler) currentUser(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.GetUserID(c)
	if !ok {
		h.Unauthorized(c, "Authentification requise")
		return uuid.Nil, false
	}
	return id, true
}

// viewer returns the user id when the request is authenticated
func viewer(c *gin.Context) *uuid.UUID {
	if id, ok := middleware.GetUserID(c); ok {
		return &id
	}
	return nil
}

// cartKey resolves the cart of the request
func (h *BaseHandler) cartKey(c *gin.Context) (cart.Key, bool) {
	key, ok := middleware.CartKey(c)
	if !ok {
		h.BadRequest(c, "Session de panier absente")
		return "", false
	}
	return key, true
}

// bindJSON binds and validates the body. On failure it has already answered.
func (h *BaseHandler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.ValidationError(c, err)
		return false
	}
	return true
}

// bindOptionalJSON binds the body when one is sent. An empty body, chunked or
// not, leaves req untouched.
func (h *BaseHandler) bindOptionalJSON(c *gin.Context, req any) bool {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return true
	}
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		h.ValidationError(c, err)
		return false
	}
	return true
}

// bindQuery binds and validates query parameters
func (h *BaseHandler) bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		h.ValidationError(c, err)
		return false
	}
	return true
}
