package shared

import (
	"context"

	"github.com/destocard/backend/internal/domain/address"
	"github.com/destocard/backend/internal/domain/marketplace"
	"github.com/destocard/backend/internal/domain/order"
)

// TransactionScope runs checkout, stock restoration and default address
// switches atomically.
// If fn returns an error the transaction is rolled back, otherwise committed.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories gives access to the repositories bound to the
// current transaction.
type TransactionalRepositories interface {
	ProductRepo() marketplace.ProductRepository
	OrderRepo() order.OrderRepository
	AddressRepo() address.AddressRepository
}

// NoOpTransactionScope runs fn against plain repositories without a
// transaction. Used by tests.
type NoOpTransactionScope struct {
	productRepo marketplace.ProductRepository
	orderRepo   order.OrderRepository
	addressRepo address.AddressRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(productRepo marketplace.ProductRepository, orderRepo order.OrderRepository, addressRepo address.AddressRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{productRepo: productRepo, orderRepo: orderRepo, addressRepo: addressRepo}
}

// Execute runs fn directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ProductRepo returns the product repository
func (s *NoOpTransactionScope) ProductRepo() marketplace.ProductRepository {
	return s.productRepo
}

// OrderRepo returns the order repository
func (s *NoOpTransactionScope) OrderRepo() order.OrderRepository {
	return s.orderRepo
}

// AddressRepo returns the address repository
func (s *NoOpTransactionScope) AddressRepo() address.AddressRepository {
	return s.addressRepo
}

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)
