package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/destocard/backend/internal/domain/cart"
	"github.com/destocard/backend/internal/domain/identity"
	"github.com/destocard/backend/internal/domain/order"
	"github.com/destocard/backend/internal/domain/payment"
	"github.com/destocard/backend/internal/domain/payment/paymentmock"
	"github.com/destocard/backend/internal/domain/shared"
	"github.com/destocard/backend/internal/infrastructure/cache"
	"github.com/destocard/backend/internal/infrastructure/persistence"
	"github.com/destocard/backend/internal/infrastructure/persistence/persistencetest"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

type countingMetrics struct {
	operations []string
	orders     []float64
}

func (m *countingMetrics) CartOperation(op string)     { m.operations = append(m.operations, op) }
func (m *countingMetrics) OrderCreated(amount float64) { m.orders = append(m.orders, amount) }

type fixture struct {
	db      *gorm.DB
	svc     *Service
	store   *cache.InMemoryCartStore
	gateway *paymentmock.Gateway
	events  *recordingPublisher
	metrics *countingMetrics
	buyer   *identity.User
	seller  *identity.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := persistencetest.NewDB(t)
	f := &fixture{
		db:      db,
		store:   cache.NewInMemoryCartStore(time.Hour),
		gateway: &paymentmock.Gateway{},
		events:  &recordingPublisher{},
		metrics: &countingMetrics{},
		buyer:   persistencetest.CreateUser(t, db, "sacha@example.com", "sacha"),
		seller:  persistencetest.CreateUser(t, db, "pierre@example.com", "pierre"),
	}
	f.svc = NewService(ServiceConfig{
		Store:       f.store,
		ProductRepo: persistence.NewGormProductRepository(db),
		UserRepo:    persistence.NewGormUserRepository(db),
		AddressRepo: persistence.NewGormAddressRepository(db),
		TxScope:     persistence.NewGormTransactionScope(db),
		Gateway:     f.gateway,
		Events:      f.events,
		Metrics:     f.metrics,
		Currency:    "EUR",
	})
	return f
}

func TestService_AddToCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := cart.UserKey(f.buyer.ID)

	pikachu := persistencetest.CreateProduct(t, f.db, f.seller.ID, "Pikachu", "2.50", 3)
	soldOut := persistencetest.CreateProduct(t, f.db, f.seller.ID, "Mew", "40", 0)
	mine := persistencetest.CreateProduct(t, f.db, f.buyer.ID, "Évoli", "5", 2)

	require.NoError(t, f.svc.AddToCart(ctx, key, f.buyer.ID, pikachu.ID, 0))

	count, err := f.svc.GetCartCount(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	tests := []struct {
		name      string
		productID uuid.UUID
		quantity  int
		want      error
	}{
		{"already in cart", pikachu.ID, 1, ErrAlreadyInCart},
		{"unknown product", uuid.New(), 1, ErrProductNotFound},
		{"sold out", soldOut.ID, 1, ErrOutOfStock},
		{"own listing", mine.ID, 1, ErrOwnListing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.svc.AddToCart(ctx, key, f.buyer.ID, tt.productID, tt.quantity)
			require.Error(t, err)
			de, ok := shared.IsDomainError(err)
			require.True(t, ok)
			assert.Equal(t, tt.want.Error(), de.Message)
		})
	}

	t.Run("more than stock", func(t *testing.T) {
		other := persistencetest.CreateProduct(t, f.db, f.seller.ID, "Salamèche", "1", 1)
		err := f.svc.AddToCart(ctx, key, f.buyer.ID, other.ID, 2)
		assert.ErrorIs(t, err, ErrNotEnoughStock)
	})

	t.Run("anonymous cart", func(t *testing.T) {
		anon := cart.SessionKey("abc123")
		require.NoError(t, f.svc.AddToCart(ctx, anon, uuid.Nil, mine.ID, 1))
	})

	t.Run("empty key", func(t *testing.T) {
		assert.Error(t, f.svc.AddToCart(ctx, cart.Key(""), uuid.Nil, pikachu.ID, 1))
	})

	assert.Contains(t, f.metrics.operations, "add")
}

func TestService_UpdateAndGetCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := cart.SessionKey("visitor")

	pikachu := persistencetest.CreateProduct(t, f.db, f.seller.ID, "Pikachu", "2.50", 3)
	mew := persistencetest.CreateProduct(t, f.db, f.seller.ID, "Mew", "40", 1)
	require.NoError(t, f.svc.AddToCart(ctx, key, uuid.Nil, pikachu.ID, 1))
	require.NoError(t, f.svc.AddToCart(ctx, key, uuid.Nil, mew.ID, 1))

	require.NoError(t, f.svc.UpdateQuantity(ctx, key, pikachu.ID, 3))
	assert.ErrorIs(t, f.svc.UpdateQuantity(ctx, key, pikachu.ID, 4), ErrNotEnoughStock)
	assert.ErrorIs(t, f.svc.UpdateQuantity(ctx, key, uuid.New(), 1), ErrProductNotFound)

	resp, err := f.svc.GetCart(ctx, key)
	require.NoError(t, err)
	assert.Len(t, resp.Lines, 2)
	assert.Equal(t, 4, resp.Count)
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("47.50")), resp.Total.String())
	assert.Equal(t, "EUR", resp.Currency)

	total, err := f.svc.CalculateTotal(ctx, key)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("47.50")))

	// quantity 0 removes the line
	require.NoError(t, f.svc.UpdateQuantity(ctx, key, mew.ID, 0))
	count, err := f.svc.GetCartCount(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// a deleted product disappears from the cart
	require.NoError(t, persistence.NewGormProductRepository(f.db).Delete(ctx, pikachu.ID))
	resp, err = f.svc.GetCart(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, resp.Lines)
	assert.True(t, resp.Total.IsZero())

	stored, err := f.store.Get(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, stored)

	require.NoError(t, f.svc.AddToCart(ctx, key, uuid.Nil, mew.ID, 1))
	require.NoError(t, f.svc.ClearCart(ctx, key))
	count, err = f.svc.GetCartCount(ctx, key)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestService_MergeSessionCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	anon := cart.SessionKey("visitor")
	user := cart.UserKey(f.buyer.ID)

	a := persistencetest.CreateProduct(t, f.db, f.seller.ID, "Pikachu", "2.50", 3)
	b := persistencetest.CreateProduct(t, f.db, f.seller.ID, "Mew", "40", 2)
	require.NoError(t, f.svc.AddToCart(ctx, anon, uuid.Nil, a.ID, 2))
	require.NoError(t, f.svc.AddToCart(ctx, anon, uuid.Nil, b.ID, 1))
	require.NoError(t, f.svc.AddToCart(ctx, user, f.buyer.ID, b.ID, 2))

	require.NoError(t, f.svc.MergeSessionCart(ctx, anon, user))

	merged, err := f.store.Get(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 2, merged[a.ID])
	assert.Equal(t, 2, merged[b.ID])

	leftover, err := f.store.Get(ctx, anon)
	require.NoError(t, err)
	assert.Empty(t, leftover)
}

func TestService_PurchaseCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := cart.UserKey(f.buyer.ID)

	pikachu := persistencetest.CreateProduct(t, f.db, f.seller.ID, "Pikachu", "12.50", 3)
	mew := persistencetest.CreateProduct(t, f.db, f.seller.ID, "Mew", "4.99", 1)
	require.NoError(t, f.svc.AddToCart(ctx, key, f.buyer.ID, pikachu.ID, 2))
	require.NoError(t, f.svc.AddToCart(ctx, key, f.buyer.ID, mew.ID, 1))

	f.gateway.On("CreateCustomer", mock.Anything, mock.MatchedBy(func(r payment.CustomerRequest) bool {
		return r.Email == "sacha@example.com" && r.Metadata["user_id"] == f.buyer.ID.String()
	})).Return("cus_123", nil).Once()
	f.gateway.On("CreatePaymentIntent", mock.Anything, mock.MatchedBy(func(r payment.IntentRequest) bool {
		return r.AmountCents == 2999 && r.Currency == "eur" && r.CustomerID == "cus_123" &&
			r.Metadata["order_id"] != "" && r.Metadata["order_reference"] != ""
	})).Return(&payment.Intent{ID: "pi_123", ClientSecret: "pi_123_secret"}, nil).Once()
	f.gateway.On("PublishableKey").Return("pk_test_123")

	resp, err := f.svc.PurchaseCart(ctx, key, f.buyer.ID, nil)
	require.NoError(t, err)
	f.gateway.AssertExpectations(t)

	assert.Equal(t, "pi_123_secret", resp.ClientSecret)
	assert.Equal(t, "pk_test_123", resp.PublishableKey)
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("29.99")))

	placed, err := persistence.NewGormOrderRepository(f.db).FindByID(ctx, resp.OrderID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, placed.Status)
	require.NotNil(t, placed.PaymentIntentID)
	assert.Equal(t, "pi_123", *placed.PaymentIntentID)
	assert.Len(t, placed.Items, 2)

	assert.Equal(t, 1, persistencetest.ReloadProduct(t, f.db, pikachu.ID).Stock)
	soldOut := persistencetest.ReloadProduct(t, f.db, mew.ID)
	assert.Equal(t, 0, soldOut.Stock)
	assert.False(t, soldOut.IsAvailable())

	buyer, err := persistence.NewGormUserRepository(f.db).FindByID(ctx, f.buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, "cus_123", buyer.StripeCustomerID)

	count, err := f.svc.GetCartCount(ctx, key)
	require.NoError(t, err)
	assert.Zero(t, count)

	assert.Equal(t, []string{order.EventTypeOrderPlaced}, f.events.types())
	assert.Equal(t, []float64{29.99}, f.metrics.orders)
}

func TestService_PurchaseCart_PaymentFailureRestoresStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := cart.UserKey(f.buyer.ID)

	pikachu := persistencetest.CreateProduct(t, f.db, f.seller.ID, "Pikachu", "12.50", 3)
	require.NoError(t, f.svc.AddToCart(ctx, key, f.buyer.ID, pikachu.ID, 2))

	f.gateway.On("CreateCustomer", mock.Anything, mock.Anything).Return("cus_123", nil)
	f.gateway.On("CreatePaymentIntent", mock.Anything, mock.Anything).
		Return(nil, errors.New("stripe is down")).Once()

	_, err := f.svc.PurchaseCart(ctx, key, f.buyer.ID, nil)
	assert.ErrorIs(t, err, ErrPaymentFailed)

	assert.Equal(t, 3, persistencetest.ReloadProduct(t, f.db, pikachu.ID).Stock)

	orders, total, err := persistence.NewGormOrderRepository(f.db).FindByBuyer(ctx, f.buyer.ID, shared.DefaultFilter())
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	assert.Equal(t, order.StatusFailed, orders[0].Status)

	// the cart is kept so the buyer can retry
	count, err := f.svc.GetCartCount(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, []string{order.EventTypeOrderFailed}, f.events.types())
}

func TestService_PurchaseCart_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := cart.UserKey(f.buyer.ID)

	t.Run("empty cart", func(t *testing.T) {
		_, err := f.svc.PurchaseCart(ctx, key, f.buyer.ID, nil)
		assert.ErrorIs(t, err, ErrEmptyCart)
	})

	t.Run("stock taken since the product was added", func(t *testing.T) {
		p := persistencetest.CreateProduct(t, f.db, f.seller.ID, "Pikachu", "12.50", 2)
		other := persistencetest.CreateProduct(t, f.db, f.seller.ID, "Mew", "3", 5)
		require.NoError(t, f.svc.AddToCart(ctx, key, f.buyer.ID, other.ID, 1))
		require.NoError(t, f.svc.AddToCart(ctx, key, f.buyer.ID, p.ID, 2))

		reloaded := persistencetest.ReloadProduct(t, f.db, p.ID)
		require.NoError(t, reloaded.SetStock(1))
		require.NoError(t, persistence.NewGormProductRepository(f.db).Save(ctx, reloaded))

		_, err := f.svc.PurchaseCart(ctx, key, f.buyer.ID, nil)
		assert.ErrorIs(t, err, ErrNotEnoughStock)

		// the transaction rolled back the decrement of the other line
		assert.Equal(t, 5, persistencetest.ReloadProduct(t, f.db, other.ID).Stock)
		_, total, err := persistence.NewGormOrderRepository(f.db).FindByBuyer(ctx, f.buyer.ID, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Zero(t, total)
		f.gateway.AssertNotCalled(t, "CreatePaymentIntent", mock.Anything, mock.Anything)
	})

	t.Run("unknown address", func(t *testing.T) {
		_, err := f.svc.PurchaseCart(ctx, key, f.buyer.ID, ptr(uuid.New()))
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func ptr[T any](v T) *T { return &v }
