// Package cart implements the shopping cart and checkout.
package cart

import (
	"context"
	"errors"
	"strings"

	appshared "github.com/destocard/backend/internal/application/shared"
	"github.com/destocard/backend/internal/domain/address"
	"github.com/destocard/backend/internal/domain/cart"
	"github.com/destocard/backend/internal/domain/identity"
	"github.com/destocard/backend/internal/domain/marketplace"
	"github.com/destocard/backend/internal/domain/order"
	"github.com/destocard/backend/internal/domain/payment"
	"github.com/destocard/backend/internal/domain/shared"
	"github.com/destocard/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Cart errors shown to buyers
var (
	ErrProductNotFound = shared.NewDomainError(shared.ErrNotFound.Code, "Produit introuvable")
	ErrAlreadyInCart   = shared.NewDomainError("ALREADY_IN_CART", "Ce produit est déjà dans votre panier")
	ErrOutOfStock      = shared.NewDomainError("OUT_OF_STOCK", "Ce produit est en rupture de stock")
	ErrNotEnoughStock  = shared.NewDomainError(shared.ErrInsufficientStock.Code, "Stock insuffisant")
	ErrOwnListing      = shared.NewDomainError("OWN_LISTING", "Vous ne pouvez pas acheter votre propre annonce")
	ErrEmptyCart       = shared.NewDomainError("EMPTY_CART", "Votre panier est vide")
	ErrPaymentFailed   = shared.NewDomainError("PAYMENT_UNAVAILABLE", "Le paiement est momentanément indisponible, veuillez réessayer")
)

// Metrics receives cart and checkout counters
type Metrics interface {
	CartOperation(operation string)
	OrderCreated(amountEuros float64)
}

type noopMetrics struct{}

func (noopMetrics) CartOperation(string) {}
func (noopMetrics) OrderCreated(float64) {}

// Service manages carts and turns them into orders
type Service struct {
	store       cart.Store
	productRepo marketplace.ProductRepository
	userRepo    identity.UserRepository
	addressRepo address.AddressRepository
	txScope     appshared.TransactionScope
	gateway     payment.Gateway
	events      shared.EventPublisher
	metrics     Metrics
	currency    string
	logger      *zap.Logger
}

// ServiceConfig lists the dependencies of Service
type ServiceConfig struct {
	Store       cart.Store
	ProductRepo marketplace.ProductRepository
	UserRepo    identity.UserRepository
	AddressRepo address.AddressRepository
	TxScope     appshared.TransactionScope
	Gateway     payment.Gateway
	Events      shared.EventPublisher
	Metrics     Metrics
	// Currency is the lowercase ISO code sent to the payment provider
	Currency string
	Logger   *zap.Logger
}

// NewService creates a cart service
func NewService(cfg ServiceConfig) *Service {
	s := &Service{
		store:       cfg.Store,
		productRepo: cfg.ProductRepo,
		userRepo:    cfg.UserRepo,
		addressRepo: cfg.AddressRepo,
		txScope:     cfg.TxScope,
		gateway:     cfg.Gateway,
		events:      cfg.Events,
		metrics:     cfg.Metrics,
		currency:    strings.ToLower(cfg.Currency),
		logger:      cfg.Logger,
	}
	if s.metrics == nil {
		s.metrics = noopMetrics{}
	}
	if s.currency == "" {
		s.currency = strings.ToLower(string(valueobject.DefaultCurrency))
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// AddToCart puts a product in the cart. buyerID is uuid.Nil for anonymous
// visitors. A quantity below 1 means 1.
func (s *Service) AddToCart(ctx context.Context, key cart.Key, buyerID, productID uuid.UUID, quantity int) error {
	if err := key.Validate(); err != nil {
		return err
	}
	if quantity < 1 {
		quantity = 1
	}

	product, err := s.findProduct(ctx, productID)
	if err != nil {
		return err
	}
	current, err := s.store.Get(ctx, key)
	if err != nil {
		return err
	}
	if current.Has(productID) {
		return ErrAlreadyInCart
	}
	if err := checkPurchasable(product, buyerID, quantity); err != nil {
		return err
	}

	if err := s.store.Set(ctx, key, productID, quantity); err != nil {
		return err
	}
	s.metrics.CartOperation("add")
	return nil
}

// UpdateQuantity changes the quantity of a line. A quantity of 0 or less
// removes it.
func (s *Service) UpdateQuantity(ctx context.Context, key cart.Key, productID uuid.UUID, quantity int) error {
	if err := key.Validate(); err != nil {
		return err
	}
	if quantity <= 0 {
		return s.RemoveFromCart(ctx, key, productID)
	}

	current, err := s.store.Get(ctx, key)
	if err != nil {
		return err
	}
	if !current.Has(productID) {
		return ErrProductNotFound
	}
	product, err := s.findProduct(ctx, productID)
	if err != nil {
		return err
	}
	if product.Stock == 0 {
		return ErrOutOfStock
	}
	if quantity > product.Stock {
		return ErrNotEnoughStock
	}

	if err := s.store.Set(ctx, key, productID, quantity); err != nil {
		return err
	}
	s.metrics.CartOperation("update")
	return nil
}

// RemoveFromCart drops a line
func (s *Service) RemoveFromCart(ctx context.Context, key cart.Key, productID uuid.UUID) error {
	if err := key.Validate(); err != nil {
		return err
	}
	if err := s.store.Remove(ctx, key, productID); err != nil {
		return err
	}
	s.metrics.CartOperation("remove")
	return nil
}

// ClearCart empties the cart
func (s *Service) ClearCart(ctx context.Context, key cart.Key) error {
	if err := key.Validate(); err != nil {
		return err
	}
	if err := s.store.Clear(ctx, key); err != nil {
		return err
	}
	s.metrics.CartOperation("clear")
	return nil
}

// GetCart returns the lines with their products. Lines whose product was
// deleted are removed from the cart.
func (s *Service) GetCart(ctx context.Context, key cart.Key) (*CartResponse, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	current, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	resp := &CartResponse{
		Lines:    make([]LineResponse, 0, len(current)),
		Total:    decimal.Zero,
		Currency: strings.ToUpper(s.currency),
	}
	if len(current) == 0 {
		return resp, nil
	}

	lines := current.Lines()
	ids := make([]uuid.UUID, len(lines))
	for i, l := range lines {
		ids[i] = l.ProductID
	}
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*marketplace.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	for _, l := range lines {
		p, ok := byID[l.ProductID]
		if !ok {
			if err := s.store.Remove(ctx, key, l.ProductID); err != nil {
				s.logger.Warn("Failed to prune deleted product from cart",
					zap.String("product_id", l.ProductID.String()),
					zap.Error(err))
			}
			continue
		}
		lineTotal := p.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
		resp.Lines = append(resp.Lines, LineResponse{
			ProductID: p.ID,
			SellerID:  p.SellerID,
			Title:     p.Title,
			UnitPrice: p.Price,
			Quantity:  l.Quantity,
			LineTotal: lineTotal,
			Stock:     p.Stock,
			Available: p.IsAvailable() && l.Quantity <= p.Stock,
		})
		resp.Total = resp.Total.Add(lineTotal)
		resp.Count += l.Quantity
	}
	return resp, nil
}

// CalculateTotal returns the sum of price × quantity
func (s *Service) CalculateTotal(ctx context.Context, key cart.Key) (decimal.Decimal, error) {
	resp, err := s.GetCart(ctx, key)
	if err != nil {
		return decimal.Zero, err
	}
	return resp.Total, nil
}

// GetCartCount returns the number of units in the cart
func (s *Service) GetCartCount(ctx context.Context, key cart.Key) (int, error) {
	if err := key.Validate(); err != nil {
		return 0, err
	}
	current, err := s.store.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	return current.Count(), nil
}

// MergeSessionCart moves an anonymous cart into the user's cart at login.
// Lines already present in the user cart keep their quantity.
func (s *Service) MergeSessionCart(ctx context.Context, from, into cart.Key) error {
	if from == into {
		return nil
	}
	anon, err := s.store.Get(ctx, from)
	if err != nil || len(anon) == 0 {
		return err
	}
	target, err := s.store.Get(ctx, into)
	if err != nil {
		return err
	}
	for _, l := range anon.Lines() {
		if target.Has(l.ProductID) {
			continue
		}
		if err := s.store.Set(ctx, into, l.ProductID, l.Quantity); err != nil {
			return err
		}
	}
	return s.store.Clear(ctx, from)
}

// PurchaseCart turns the cart into a pending order and opens a
// PaymentIntent for it. Stock is taken in the same transaction as the order
// is created; if the payment provider then fails the order is failed and the
// stock is put back.
func (s *Service) PurchaseCart(ctx context.Context, key cart.Key, buyerID uuid.UUID, addressID *uuid.UUID) (*CheckoutResponse, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	current, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(current) == 0 {
		return nil, ErrEmptyCart
	}
	if addressID != nil {
		if err := s.checkAddress(ctx, buyerID, *addressID); err != nil {
			return nil, err
		}
	}

	var placed *order.Order
	err = s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		lines := make([]order.LineInput, 0, len(current))
		for _, l := range current.Lines() {
			product, err := repos.ProductRepo().FindByID(ctx, l.ProductID)
			if err != nil {
				if errors.Is(err, shared.ErrNotFound) {
					return ErrProductNotFound
				}
				return err
			}
			if err := checkPurchasable(product, buyerID, l.Quantity); err != nil {
				return err
			}
			if err := product.DecreaseStock(l.Quantity); err != nil {
				return err
			}
			if err := repos.ProductRepo().SaveWithLock(ctx, product); err != nil {
				return err
			}
			lines = append(lines, order.LineInput{
				ProductID: product.ID,
				SellerID:  product.SellerID,
				Title:     product.Title,
				Quantity:  l.Quantity,
				UnitPrice: product.Price,
			})
		}

		o, err := order.NewOrder(buyerID, addressID, lines)
		if err != nil {
			return err
		}
		if err := repos.OrderRepo().Save(ctx, o); err != nil {
			return err
		}
		placed = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	intent, err := s.openPayment(ctx, buyerID, placed)
	if err != nil {
		s.logger.Error("Payment setup failed, releasing order stock",
			zap.String("order_id", placed.ID.String()),
			zap.Error(err))
		s.compensate(ctx, placed.ID)
		return nil, ErrPaymentFailed
	}

	if err := s.store.Clear(ctx, key); err != nil {
		s.logger.Warn("Failed to clear cart after checkout", zap.Error(err))
	}
	s.publish(ctx, placed)
	s.metrics.OrderCreated(placed.Total.InexactFloat64())

	s.logger.Info("Order placed",
		zap.String("order_id", placed.ID.String()),
		zap.String("reference", placed.Reference),
		zap.String("payment_intent_id", intent.ID),
		zap.String("total", placed.Total.StringFixed(2)))

	return &CheckoutResponse{
		OrderID:         placed.ID,
		Reference:       placed.Reference,
		Total:           placed.Total,
		Currency:        placed.Currency,
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		PublishableKey:  s.gateway.PublishableKey(),
	}, nil
}

// openPayment ensures the buyer has a Stripe customer, creates the
// PaymentIntent and stores its id on the order
func (s *Service) openPayment(ctx context.Context, buyerID uuid.UUID, o *order.Order) (*payment.Intent, error) {
	customerID, err := s.ensureCustomer(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	intent, err := s.gateway.CreatePaymentIntent(ctx, payment.IntentRequest{
		AmountCents: o.TotalMoney().Cents(),
		Currency:    s.currency,
		CustomerID:  customerID,
		Description: "Commande " + o.Reference,
		Metadata: map[string]string{
			"order_id":        o.ID.String(),
			"order_reference": o.Reference,
		},
		IdempotencyKey: "order-" + o.ID.String(),
	})
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		if err := o.AttachPaymentIntent(intent.ID); err != nil {
			return err
		}
		return repos.OrderRepo().SaveWithLock(ctx, o)
	})
	if err != nil {
		if cancelErr := s.gateway.CancelPaymentIntent(ctx, intent.ID); cancelErr != nil {
			s.logger.Warn("Failed to cancel orphan PaymentIntent",
				zap.String("payment_intent_id", intent.ID),
				zap.Error(cancelErr))
		}
		return nil, err
	}
	return intent, nil
}

func (s *Service) ensureCustomer(ctx context.Context, buyerID uuid.UUID) (string, error) {
	user, err := appshared.EnsureStripeCustomer(ctx, s.gateway, s.userRepo, buyerID)
	if err != nil {
		return "", err
	}
	return user.StripeCustomerID, nil
}

// compensate fails the order and restores stock after a payment setup error
func (s *Service) compensate(ctx context.Context, orderID uuid.UUID) {
	failed, changed, err := appshared.FailOrder(ctx, s.txScope, orderID, "payment_setup_failed")
	if err != nil {
		s.logger.Error("Failed to release stock of unpaid order",
			zap.String("order_id", orderID.String()),
			zap.Error(err))
		return
	}
	if changed {
		s.publish(ctx, failed)
	}
}

func (s *Service) checkAddress(ctx context.Context, buyerID, addressID uuid.UUID) error {
	a, err := s.addressRepo.FindByID(ctx, addressID)
	if err != nil {
		return err
	}
	if !a.IsOwnedBy(buyerID) {
		return address.ErrAccessDenied
	}
	return nil
}

func (s *Service) findProduct(ctx context.Context, id uuid.UUID) (*marketplace.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
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

func checkPurchasable(p *marketplace.Product, buyerID uuid.UUID, quantity int) error {
	if buyerID != uuid.Nil && p.IsOwnedBy(buyerID) {
		return ErrOwnListing
	}
	if !p.IsAvailable() {
		return ErrOutOfStock
	}
	if quantity > p.Stock {
		return ErrNotEnoughStock
	}
	return nil
}
