package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/destocard/backend/internal/application/billing"
	"github.com/destocard/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// stripeSignatureHeader carries the webhook signature
const stripeSignatureHeader = "Stripe-Signature"

// BillingHandler serves the pro subscription and the Stripe webhook
type BillingHandler struct {
	BaseHandler
	billing  *billing.BillingService
	webhooks *billing.StripeWebhookService
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(billingService *billing.BillingService, webhooks *billing.StripeWebhookService) *BillingHandler {
	return &BillingHandler{billing: billingService, webhooks: webhooks}
}

// GetSubscription godoc
// @Summary      Subscription status
// @Tags         billing
// @Produce      json
// @Success      200 {object} APIResponse[billing.SubscriptionResponse]
// @Security     BearerAuth
// @Router       /api/billing/subscription [get]
func (h *BillingHandler) GetSubscription(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	sub, err := h.billing.GetSubscription(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sub)
}

// Subscribe godoc
// @Summary      Subscribe to the pro plan
// @Tags         billing
// @Produce      json
// @Success      201 {object} APIResponse[billing.SubscriptionResponse]
// @Failure      409 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/billing/subscription [post]
func (h *BillingHandler) Subscribe(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	sub, err := h.billing.Subscribe(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, sub)
}

// Cancel godoc
// @Summary      Cancel the pro plan
// @Tags         billing
// @Produce      json
// @Success      200 {object} APIResponse[billing.SubscriptionResponse]
// @Security     BearerAuth
// @Router       /api/billing/subscription [delete]
func (h *BillingHandler) Cancel(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	sub, err := h.billing.CancelSubscription(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sub)
}

// StripeWebhook godoc
// @Summary      Stripe webhook
// @Description  Verifies the Stripe-Signature header and settles orders and subscriptions.
// @Description  A 5xx answer makes Stripe retry the delivery.
// @Tags         billing
// @Accept       json
// @Produce      json
// @Success      200 {object} APIResponse[billing.WebhookResult]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /webhooks/stripe [post]
func (h *BillingHandler) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "La requête dépasse la taille maximale autorisée")
			return
		}
		h.BadRequest(c, "Corps de requête illisible")
		return
	}

	result, err := h.webhooks.HandleWebhook(c.Request.Context(), payload, c.GetHeader(stripeSignatureHeader))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
