package billing

import (
	"time"

	"github.com/destocard/backend/internal/domain/identity"
)

// SubscriptionResponse is the Pro subscription state of a seller
type SubscriptionResponse struct {
	SubscriptionID   string     `json:"subscription_id,omitempty"`
	Status           string     `json:"status"`
	Pro              bool       `json:"pro"`
	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty"`
}

func toSubscriptionResponse(u *identity.User, periodEnd time.Time) SubscriptionResponse {
	resp := SubscriptionResponse{
		SubscriptionID: u.SubscriptionID,
		Status:         string(u.SubscriptionStatus),
		Pro:            u.IsPro(),
	}
	if resp.Status == "" {
		resp.Status = "none"
	}
	if !periodEnd.IsZero() {
		resp.CurrentPeriodEnd = &periodEnd
	}
	return resp
}

// WebhookResult reports what happened to a webhook delivery
type WebhookResult struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	Processed bool   `json:"processed"`
	Message   string `json:"message,omitempty"`
}
