package handler

import (
	"github.com/destocard/backend/internal/application/address"
	"github.com/gin-gonic/gin"
)

// AddressHandler serves the user's shipping addresses
type AddressHandler struct {
	BaseHandler
	addresses *address.AddressService
}

// NewAddressHandler creates a new address handler
func NewAddressHandler(addresses *address.AddressService) *AddressHandler {
	return &AddressHandler{addresses: addresses}
}

// List godoc
// @Summary      My addresses
// @Tags         addresses
// @Produce      json
// @Success      200 {object} APIResponse[[]address.AddressResponse]
// @Security     BearerAuth
// @Router       /api/addresses [get]
func (h *AddressHandler) List(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	list, err := h.addresses.List(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, list)
}

// Create godoc
// @Summary      Add an address
// @Description  The first address becomes the default one
// @Tags         addresses
// @Accept       json
// @Produce      json
// @Param        request body address.AddressRequest true "Address"
// @Success      201 {object} APIResponse[address.AddressResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/addresses [post]
func (h *AddressHandler) Create(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req address.AddressRequest
	if !h.bindJSON(c, &req) {
		return
	}
	addr, err := h.addresses.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, addr)
}

// Get returns one address
func (h *AddressHandler) Get(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	addr, err := h.addresses.Get(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, addr)
}

// Update replaces an address
func (h *AddressHandler) Update(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req address.AddressRequest
	if !h.bindJSON(c, &req) {
		return
	}
	addr, err := h.addresses.Update(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, addr)
}

// Delete removes an address. Deleting the default promotes another one.
func (h *AddressHandler) Delete(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.addresses.Delete(c.Request.Context(), userID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// SetDefault godoc
// @Summary      Make an address the default one
// @Tags         addresses
// @Produce      json
// @Param        id path string true "Address ID"
// @Success      200 {object} APIResponse[address.AddressResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/addresses/{id}/default [post]
func (h *AddressHandler) SetDefault(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	addr, err := h.addresses.SetDefault(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, addr)
}
