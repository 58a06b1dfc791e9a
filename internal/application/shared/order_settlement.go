package shared

import (
	"context"
	"errors"

	"github.com/destocard/backend/internal/domain/order"
	domainshared "github.com/destocard/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// RestockOrder puts the quantities of every line back on its product.
// Lines whose product was deleted since checkout are skipped.
func RestockOrder(ctx context.Context, repos TransactionalRepositories, o *order.Order) error {
	for _, item := range o.Items {
		product, err := repos.ProductRepo().FindByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, domainshared.ErrNotFound) {
				continue
			}
			return err
		}
		if err := product.IncreaseStock(item.Quantity); err != nil {
			return err
		}
		if err := repos.ProductRepo().SaveWithLock(ctx, product); err != nil {
			return err
		}
	}
	return nil
}

// FailOrder marks a pending order failed and restores its stock in one
// transaction. It returns the order and whether it changed; an order that
// already failed is returned unchanged.
func FailOrder(ctx context.Context, scope TransactionScope, orderID uuid.UUID, reason string) (*order.Order, bool, error) {
	var (
		failed  *order.Order
		changed bool
	)
	err := scope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		changed, err = o.Fail(reason)
		if err != nil {
			return err
		}
		failed = o
		if !changed {
			return nil
		}
		if err := repos.OrderRepo().SaveWithLock(ctx, o); err != nil {
			return err
		}
		return RestockOrder(ctx, repos, o)
	})
	if err != nil {
		return nil, false, err
	}
	return failed, changed, nil
}
