package handler

import (
	"github.com/destocard/backend/internal/application/messaging"
	"github.com/gin-gonic/gin"
)

// MessageHandler serves the buyer/seller messaging
type MessageHandler struct {
	BaseHandler
	messages *messaging.MessageService
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(messages *messaging.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// Inbox godoc
// @Summary      Received messages
// @Tags         messages
// @Produce      json
// @Param        page      query int false "Page"
// @Param        page_size query int false "Page size"
// @Success      200 {object} APIResponse[[]messaging.MessageResponse]
// @Security     BearerAuth
// @Router       /api/messages [get]
func (h *MessageHandler) Inbox(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var query messaging.PageQuery
	if !h.bindQuery(c, &query) {
		return
	}
	page, err := h.messages.Inbox(c.Request.Context(), userID, query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(c, page)
}

// Send godoc
// @Summary      Send a message
// @Tags         messages
// @Accept       json
// @Produce      json
// @Param        request body messaging.SendMessageRequest true "Message"
// @Success      201 {object} APIResponse[messaging.MessageResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/messages [post]
func (h *MessageHandler) Send(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req messaging.SendMessageRequest
	if !h.bindJSON(c, &req) {
		return
	}
	msg, err := h.messages.Send(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, msg)
}

// Unread returns the number of unread messages
func (h *MessageHandler) Unread(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	resp, err := h.messages.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Conversation godoc
// @Summary      Thread with another user
// @Tags         messages
// @Produce      json
// @Param        userId path string true "Other user ID"
// @Success      200 {object} APIResponse[[]messaging.MessageResponse]
// @Security     BearerAuth
// @Router       /api/messages/conversations/{userId} [get]
func (h *MessageHandler) Conversation(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	otherID, ok := h.uuidParam(c, "userId")
	if !ok {
		return
	}
	var query messaging.PageQuery
	if !h.bindQuery(c, &query) {
		return
	}
	thread, err := h.messages.Conversation(c.Request.Context(), userID, otherID, query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, thread)
}

// MarkRead marks a received message as read
func (h *MessageHandler) MarkRead(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	msg, err := h.messages.MarkRead(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, msg)
}
