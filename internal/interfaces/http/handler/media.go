package handler

import (
	appmedia "github.com/destocard/backend/internal/application/media"
	"github.com/destocard/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// MediaHandler serves webcam captures and media removal
type MediaHandler struct {
	BaseHandler
	uploads *appmedia.UploadService
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(uploads *appmedia.UploadService) *MediaHandler {
	return &MediaHandler{uploads: uploads}
}

// Webcam godoc
// @Summary      Store a webcam capture
// @Description  The image is a base64 data URI as produced by canvas.toDataURL
// @Tags         media
// @Accept       json
// @Produce      json
// @Param        request body appmedia.WebcamUploadRequest true "Capture"
// @Success      201 {object} APIResponse[appmedia.MediaResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/media/webcam [post]
func (h *MediaHandler) Webcam(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req appmedia.WebcamUploadRequest
	if !h.bindJSON(c, &req) {
		return
	}
	item, err := h.uploads.UploadDataURI(c.Request.Context(), userID, req.ProductID, req.Image)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

// Delete godoc
// @Summary      Remove a media file
// @Tags         media
// @Param        id path string true "Media ID"
// @Success      204
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/media/{id} [delete]
func (h *MediaHandler) Delete(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.uploads.Delete(c.Request.Context(), userID, middleware.IsAdmin(c), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
