package handler

import (
	appcart "github.com/destocard/backend/internal/application/cart"
	"github.com/destocard/backend/internal/domain/cart"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CartHandler serves the shopping cart. Anonymous visitors are keyed by
// their cart_session cookie, signed-in users by their id.
type CartHandler struct {
	BaseHandler
	carts *appcart.Service
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts *appcart.Service) *CartHandler {
	return &CartHandler{carts: carts}
}

// Get godoc
// @Summary      Current cart
// @Tags         cart
// @Produce      json
// @Success      200 {object} APIResponse[appcart.CartResponse]
// @Router       /api/cart [get]
func (h *CartHandler) Get(c *gin.Context) {
	key, ok := h.cartKey(c)
	if !ok {
		return
	}
	h.respondCart(c, key)
}

// Count godoc
// @Summary      Number of items in the cart
// @Tags         cart
// @Produce      json
// @Success      200 {object} APIResponse[CountData]
// @Router       /api/cart/count [get]
func (h *CartHandler) Count(c *gin.Context) {
	key, ok := h.cartKey(c)
	if !ok {
		return
	}
	count, err := h.carts.GetCartCount(c.Request.Context(), key)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, CountData{Count: count})
}

// AddItem godoc
// @Summary      Add a product to the cart
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        request body appcart.AddItemRequest true "Item"
// @Success      200 {object} APIResponse[appcart.CartResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	key, ok := h.cartKey(c)
	if !ok {
		return
	}
	var req appcart.AddItemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	buyerID := uuid.Nil
	if id := viewer(c); id != nil {
		buyerID = *id
	}
	if err := h.carts.AddToCart(c.Request.Context(), key, buyerID, req.ProductID, req.Quantity); err != nil {
		h.HandleError(c, err)
		return
	}
	h.respondCart(c, key)
}

// UpdateItem godoc
// @Summary      Change the quantity of a line
// @Description  A quantity of 0 removes the line
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        productId path string                     true "Product ID"
// @Param        request   body appcart.UpdateItemRequest true "Quantity"
// @Success      200 {object} APIResponse[appcart.CartResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /api/cart/items/{productId} [put]
func (h *CartHandler) UpdateItem(c *gin.Context) {
	key, ok := h.cartKey(c)
	if !ok {
		return
	}
	productID, ok := h.uuidParam(c, "productId")
	if !ok {
		return
	}
	var req appcart.UpdateItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.carts.UpdateQuantity(c.Request.Context(), key, productID, req.Quantity); err != nil {
		h.HandleError(c, err)
		return
	}
	h.respondCart(c, key)
}

// RemoveItem godoc
// @Summary      Remove a line
// @Tags         cart
// @Produce      json
// @Param        productId path string true "Product ID"
// @Success      200 {object} APIResponse[appcart.CartResponse]
// @Router       /api/cart/items/{productId} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	key, ok := h.cartKey(c)
	if !ok {
		return
	}
	productID, ok := h.uuidParam(c, "productId")
	if !ok {
		return
	}
	if err := h.carts.RemoveFromCart(c.Request.Context(), key, productID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.respondCart(c, key)
}

// Clear godoc
// @Summary      Empty the cart
// @Tags         cart
// @Success      204
// @Router       /api/cart [delete]
func (h *CartHandler) Clear(c *gin.Context) {
	key, ok := h.cartKey(c)
	if !ok {
		return
	}
	if err := h.carts.ClearCart(c.Request.Context(), key); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Checkout godoc
// @Summary      Pay for the cart
// @Description  Creates a pending order, reserves stock and opens a Stripe PaymentIntent.
// @Description  The client confirms the payment with the returned client secret.
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        request body appcart.CheckoutRequest false "Shipping address"
// @Success      201 {object} APIResponse[appcart.CheckoutResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/cart/checkout [post]
func (h *CartHandler) Checkout(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req appcart.CheckoutRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}

	result, err := h.carts.PurchaseCart(c.Request.Context(), cart.UserKey(userID), userID, req.AddressID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

func (h *CartHandler) respondCart(c *gin.Context, key cart.Key) {
	resp, err := h.carts.GetCart(c.Request.Context(), key)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
