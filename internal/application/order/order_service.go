// Package order settles orders once the payment provider reports back, and
// serves them to their buyers.
package order

import (
	"context"
	"errors"
	"time"

	appshared "github.com/destocard/backend/internal/application/shared"
	"github.com/destocard/backend/internal/domain/cart"
	"github.com/destocard/backend/internal/domain/order"
	"github.com/destocard/backend/internal/domain/payment"
	"github.com/destocard/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const expiryBatchSize = 100

// Reasons recorded on failed orders
const (
	ReasonExpired = "expired"
)

// ErrOrderAccessDenied is returned when a user reads another buyer's order
var ErrOrderAccessDenied = shared.NewDomainError(shared.ErrForbidden.Code, "Vous n'avez pas accès à cette commande")

// Metrics receives settlement counters
type Metrics interface {
	OrderSettled(status string)
}

type noopMetrics struct{}

func (noopMetrics) OrderSettled(string) {}

// Service handles the order lifecycle after checkout
type Service struct {
	orderRepo order.OrderRepository
	txScope   appshared.TransactionScope
	carts     cart.Store
	gateway   payment.Gateway
	events    shared.EventPublisher
	invoices  *InvoiceService
	metrics   Metrics
	logger    *zap.Logger
}

// ServiceConfig lists the dependencies of Service
type ServiceConfig struct {
	OrderRepo order.OrderRepository
	TxScope   appshared.TransactionScope
	Carts     cart.Store
	Gateway   payment.Gateway
	Events    shared.EventPublisher
	Invoices  *InvoiceService
	Metrics   Metrics
	Logger    *zap.Logger
}

// NewService creates an order service
func NewService(cfg ServiceConfig) *Service {
	s := &Service{
		orderRepo: cfg.OrderRepo,
		txScope:   cfg.TxScope,
		carts:     cfg.Carts,
		gateway:   cfg.Gateway,
		events:    cfg.Events,
		invoices:  cfg.Invoices,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
	}
	if s.metrics == nil {
		s.metrics = noopMetrics{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// HandlePaymentSucceeded completes the order paid by paymentIntentID.
// Stock was already taken at checkout and is not touched here. A repeated
// delivery for a completed order is a no-op.
func (s *Service) HandlePaymentSucceeded(ctx context.Context, paymentIntentID string) error {
	o, err := s.orderRepo.FindByPaymentIntentID(ctx, paymentIntentID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("No order for succeeded PaymentIntent",
				zap.String("payment_intent_id", paymentIntentID))
			return nil
		}
		return err
	}

	changed, err := o.Complete()
	if err != nil {
		// The order expired or failed before the buyer finished paying.
		s.logger.Error("Payment succeeded for an order that is no longer pending, refund required",
			zap.String("order_id", o.ID.String()),
			zap.String("reference", o.Reference),
			zap.String("status", string(o.Status)),
			zap.String("payment_intent_id", paymentIntentID))
		return nil
	}
	if !changed {
		s.logger.Debug("Order already completed", zap.String("order_id", o.ID.String()))
		return nil
	}

	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return err
	}
	s.publish(ctx, o)
	s.metrics.OrderSettled(string(order.StatusCompleted))

	s.logger.Info("Order completed",
		zap.String("order_id", o.ID.String()),
		zap.String("reference", o.Reference))
	return nil
}

// HandlePaymentFailed fails the pending order of paymentIntentID, restores
// its stock and puts its lines back into the buyer's cart
func (s *Service) HandlePaymentFailed(ctx context.Context, paymentIntentID, reason string) error {
	o, err := s.orderRepo.FindByPaymentIntentID(ctx, paymentIntentID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("No order for failed PaymentIntent",
				zap.String("payment_intent_id", paymentIntentID))
			return nil
		}
		return err
	}
	if o.Status == order.StatusCompleted {
		s.logger.Warn("Ignoring payment failure of a completed order",
			zap.String("order_id", o.ID.String()))
		return nil
	}
	if reason == "" {
		reason = "payment_failed"
	}

	_, err = s.failOrder(ctx, o.ID, reason)
	return err
}

// ExpireStaleOrders fails orders still pending before olderThan. Their
// PaymentIntents are canceled so they can no longer be paid.
func (s *Service) ExpireStaleOrders(ctx context.Context, olderThan time.Time) (int, error) {
	stale, err := s.orderRepo.FindPendingOlderThan(ctx, olderThan, expiryBatchSize)
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range stale {
		o := &stale[i]
		if o.PaymentIntentID != nil && s.gateway != nil {
			if err := s.gateway.CancelPaymentIntent(ctx, *o.PaymentIntentID); err != nil {
				s.logger.Warn("Failed to cancel PaymentIntent of stale order",
					zap.String("order_id", o.ID.String()),
					zap.Error(err))
			}
		}
		changed, err := s.failOrder(ctx, o.ID, ReasonExpired)
		if err != nil {
			if errors.Is(err, shared.ErrConcurrencyConflict) || errors.Is(err, shared.ErrInvalidState) {
				// Settled by a webhook in the meantime.
				continue
			}
			return expired, err
		}
		if changed {
			expired++
		}
	}
	return expired, nil
}

func (s *Service) failOrder(ctx context.Context, orderID uuid.UUID, reason string) (bool, error) {
	failed, changed, err := appshared.FailOrder(ctx, s.txScope, orderID, reason)
	if err != nil || !changed {
		return false, err
	}

	s.restoreCart(ctx, failed)
	s.publish(ctx, failed)
	s.metrics.OrderSettled(string(order.StatusFailed))

	s.logger.Info("Order failed, stock restored",
		zap.String("order_id", failed.ID.String()),
		zap.String("reference", failed.Reference),
		zap.String("reason", reason))
	return true, nil
}

// restoreCart puts the order lines back into the buyer's cart so that a
// retry is one click away. Lines already in the cart are left alone.
func (s *Service) restoreCart(ctx context.Context, o *order.Order) {
	if s.carts == nil {
		return
	}
	key := cart.UserKey(o.BuyerID)
	current, err := s.carts.Get(ctx, key)
	if err != nil {
		s.logger.Warn("Failed to load cart to restore", zap.Error(err))
		return
	}
	for _, it := range o.Items {
		if current.Has(it.ProductID) {
			continue
		}
		if err := s.carts.Set(ctx, key, it.ProductID, it.Quantity); err != nil {
			s.logger.Warn("Failed to restore cart line",
				zap.String("product_id", it.ProductID.String()),
				zap.Error(err))
		}
	}
}

// GetOrder returns an order to its buyer, or to an admin
func (s *Service) GetOrder(ctx context.Context, requesterID uuid.UUID, isAdmin bool, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.loadVisible(ctx, requesterID, isAdmin, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o)
	return &resp, nil
}

// ListOrders pages through the buyer's orders, newest first
func (s *Service) ListOrders(ctx context.Context, buyerID uuid.UUID, query ListOrdersQuery) (shared.Paginated[OrderResponse], error) {
	filter := shared.DefaultFilter()
	if query.Page > 0 {
		filter.Page = query.Page
	}
	if query.PageSize > 0 {
		filter.PageSize = query.PageSize
	}

	orders, total, err := s.orderRepo.FindByBuyer(ctx, buyerID, filter)
	if err != nil {
		return shared.Paginated[OrderResponse]{}, err
	}
	items := make([]OrderResponse, len(orders))
	for i := range orders {
		items[i] = ToOrderResponse(&orders[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.Limit()), nil
}

// RenderInvoice returns the PDF invoice of a completed order and its file name
func (s *Service) RenderInvoice(ctx context.Context, requesterID uuid.UUID, isAdmin bool, id uuid.UUID) ([]byte, string, error) {
	o, err := s.loadVisible(ctx, requesterID, isAdmin, id)
	if err != nil {
		return nil, "", err
	}
	if s.invoices == nil {
		return nil, "", shared.NewDomainError("INVOICE_UNAVAILABLE", "Les factures sont momentanément indisponibles")
	}
	pdf, err := s.invoices.Render(ctx, o)
	if err != nil {
		return nil, "", err
	}
	return pdf, "facture-" + o.Reference + ".pdf", nil
}

func (s *Service) loadVisible(ctx context.Context, requesterID uuid.UUID, isAdmin bool, id uuid.UUID) (*order.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && !o.IsOwnedBy(requesterID) {
		return nil, ErrOrderAccessDenied
	}
	return o, nil
}

func (s *Service) publish(ctx context.Context, o *order.Order) {
	events := o.GetDomainEvents()
	o.ClearDomainEvents()
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish order events",
			zap.String("order_id", o.ID.String()),
			zap.Error(err))
	}
}
