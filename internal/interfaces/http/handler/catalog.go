package handler

import (
	"github.com/destocard/backend/internal/application/catalog"
	"github.com/gin-gonic/gin"
)

// CatalogHandler serves the card reference catalog
type CatalogHandler struct {
	BaseHandler
	catalog *catalog.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(svc *catalog.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: svc}
}

// ListSeries godoc
// @Summary      List series
// @Tags         catalog
// @Produce      json
// @Success      200 {object} APIResponse[[]catalog.SerieResponse]
// @Router       /pokemon-card/api/series [get]
func (h *CatalogHandler) ListSeries(c *gin.Context) {
	series, err := h.catalog.ListSeries(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, series)
}

// ListExtensions godoc
// @Summary      List the extensions of a serie
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Serie ID"
// @Success      200 {object} APIResponse[[]catalog.ExtensionResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /pokemon-card/api/series/{id}/extensions [get]
func (h *CatalogHandler) ListExtensions(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	extensions, err := h.catalog.ListExtensions(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, extensions)
}

// ListCards godoc
// @Summary      List the cards of an extension
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Extension ID"
// @Success      200 {object} APIResponse[[]catalog.CardResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /pokemon-card/api/extensions/{id}/cards [get]
func (h *CatalogHandler) ListCards(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	cards, err := h.catalog.ListCards(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cards)
}

// SearchCards godoc
// @Summary      Search catalog cards
// @Tags         catalog
// @Produce      json
// @Param        q            query string false "Name search"
// @Param        extension_id query string false "Extension"
// @Param        page         query int    false "Page"
// @Param        page_size    query int    false "Page size"
// @Success      200 {object} APIResponse[[]catalog.CardResponse]
// @Router       /api/cards [get]
func (h *CatalogHandler) SearchCards(c *gin.Context) {
	var query catalog.SearchCardsQuery
	if !h.bindQuery(c, &query) {
		return
	}
	page, err := h.catalog.SearchCards(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(c, page)
}

// GetCard godoc
// @Summary      Card detail
// @Description  Looks a card up by id or by TCGdex id
// @Tags         catalog
// @Produce      json
// @Param        id     query string false "Card ID"
// @Param        api_id query string false "TCGdex ID"
// @Success      200 {object} APIResponse[catalog.CardDetailResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /api/card [get]
func (h *CatalogHandler) GetCard(c *gin.Context) {
	var query catalog.GetCardQuery
	if !h.bindQuery(c, &query) {
		return
	}
	card, err := h.catalog.GetCard(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, card)
}

// Import godoc
// @Summary      Import a card from TCGdex
// @Description  Creates or refreshes the card with its serie and extension
// @Tags         catalog
// @Produce      json
// @Param        apiId path string true "TCGdex card ID, e.g. swsh3-136"
// @Success      200 {object} APIResponse[catalog.ImportResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /pokemon-card/api/import/{apiId} [post]
func (h *CatalogHandler) Import(c *gin.Context) {
	result, err := h.catalog.ImportCard(c.Request.Context(), c.Param("apiId"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if result.Created {
		h.Created(c, result)
		return
	}
	h.Success(c, result)
}

// CreateSerie creates a serie (admin)
func (h *CatalogHandler) CreateSerie(c *gin.Context) {
	var req catalog.SerieRequest
	if !h.bindJSON(c, &req) {
		return
	}
	serie, err := h.catalog.CreateSerie(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, serie)
}

// UpdateSerie edits a serie (admin)
func (h *CatalogHandler) UpdateSerie(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req catalog.SerieRequest
	if !h.bindJSON(c, &req) {
		return
	}
	serie, err := h.catalog.UpdateSerie(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, serie)
}

// DeleteSerie removes a serie without extensions (admin)
func (h *CatalogHandler) DeleteSerie(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteSerie(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// CreateExtension creates an extension (admin)
func (h *CatalogHandler) CreateExtension(c *gin.Context) {
	var req catalog.ExtensionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	ext, err := h.catalog.CreateExtension(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, ext)
}

// UpdateExtension edits an extension (admin)
func (h *CatalogHandler) UpdateExtension(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req catalog.ExtensionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	ext, err := h.catalog.UpdateExtension(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ext)
}

// DeleteExtension removes an extension without cards (admin)
func (h *CatalogHandler) DeleteExtension(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteExtension(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// CreateCard creates a card (admin)
func (h *CatalogHandler) CreateCard(c *gin.Context) {
	var req catalog.CardRequest
	if !h.bindJSON(c, &req) {
		return
	}
	card, err := h.catalog.CreateCard(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, card)
}

// UpdateCard edits a card (admin)
func (h *CatalogHandler) UpdateCard(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req catalog.CardRequest
	if !h.bindJSON(c, &req) {
		return
	}
	card, err := h.catalog.UpdateCard(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, card)
}

// DeleteCard removes a card no listing refers to (admin)
func (h *CatalogHandler) DeleteCard(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteCard(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
