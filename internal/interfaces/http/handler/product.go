package handler

import (
	"errors"
	"net/http"

	"github.com/destocard/backend/internal/application/marketplace"
	appmedia "github.com/destocard/backend/internal/application/media"
	"github.com/destocard/backend/internal/interfaces/http/dto"
	"github.com/destocard/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// uploadField is the multipart field carrying the file
const uploadField = "file"

// ProductHandler serves listings, likes and listing media
type ProductHandler struct {
	BaseHandler
	products *marketplace.ProductService
	uploads  *appmedia.UploadService
}

// NewProductHandler creates a new product handler
func NewProductHandler(products *marketplace.ProductService, uploads *appmedia.UploadService) *ProductHandler {
	return &ProductHandler{products: products, uploads: uploads}
}

// List godoc
// @Summary      Browse listings
// @Description  Only published listings with stock are returned
// @Tags         products
// @Produce      json
// @Param        q          query string false "Title search"
// @Param        seller_id  query string false "Seller"
// @Param        card_id    query string false "Catalog card"
// @Param        condition  query string false "Card condition"
// @Param        min_price  query string false "Minimum price"
// @Param        max_price  query string false "Maximum price"
// @Param        sort       query string false "created_at, price or title"
// @Param        dir        query string false "asc or desc"
// @Param        page       query int    false "Page"
// @Param        page_size  query int    false "Page size"
// @Success      200 {object} APIResponse[[]marketplace.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var query marketplace.ListProductsQuery
	if !h.bindQuery(c, &query) {
		return
	}
	page, err := h.products.List(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(c, page)
}

// Get godoc
// @Summary      Listing detail
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} APIResponse[marketplace.ProductDetailResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	product, err := h.products.Get(c.Request.Context(), viewer(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Create godoc
// @Summary      Put a card up for sale
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        request body marketplace.ProductRequest true "Listing"
// @Success      201 {object} APIResponse[marketplace.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req marketplace.ProductRequest
	if !h.bindJSON(c, &req) {
		return
	}
	product, err := h.products.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// Update godoc
// @Summary      Edit a listing
// @Description  Sellers edit their own listings; administrators edit any
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id      path string                   true "Product ID"
// @Param        request body marketplace.ProductRequest true "Listing"
// @Success      200 {object} APIResponse[marketplace.ProductResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req marketplace.ProductRequest
	if !h.bindJSON(c, &req) {
		return
	}
	product, err := h.products.Update(c.Request.Context(), userID, middleware.IsAdmin(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete godoc
// @Summary      Remove a listing
// @Tags         products
// @Param        id path string true "Product ID"
// @Success      204
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.products.Delete(c.Request.Context(), userID, middleware.IsAdmin(c), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Archive godoc
// @Summary      Withdraw a listing from sale
// @Description  The listing is kept for its seller and past orders but can no longer be bought or edited
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} APIResponse[marketplace.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/products/{id}/archive [post]
func (h *ProductHandler) Archive(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	product, err := h.products.Archive(c.Request.Context(), userID, middleware.IsAdmin(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// ToggleLike godoc
// @Summary      Like or unlike a listing
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} APIResponse[marketplace.LikeResponse]
// @Security     BearerAuth
// @Router       /api/products/{id}/like [post]
func (h *ProductHandler) ToggleLike(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	like, err := h.products.ToggleLike(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, like)
}

// ListMedia godoc
// @Summary      Listing media
// @Tags         media
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} APIResponse[[]appmedia.MediaResponse]
// @Router       /api/products/{id}/media [get]
func (h *ProductHandler) ListMedia(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	items, err := h.uploads.ListForProduct(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// UploadMedia godoc
// @Summary      Attach a picture or video to a listing
// @Description  Images are resized and re-encoded; videos are stored as sent
// @Tags         media
// @Accept       multipart/form-data
// @Produce      json
// @Param        id   path     string true "Product ID"
// @Param        file formData file   true "Image or video"
// @Success      201 {object} APIResponse[appmedia.MediaResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/products/{id}/media [post]
func (h *ProductHandler) UploadMedia(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	productID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	header, err := c.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeFileTooLarge, "Le fichier est trop volumineux")
			return
		}
		h.BadRequest(c, "Fichier manquant")
		return
	}
	file, err := header.Open()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer file.Close()

	item, err := h.uploads.Upload(c.Request.Context(), userID, &productID, file, header.Filename, header.Size)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}
