package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// OrderExpiryJobName is the name of the stale order expiry job
const OrderExpiryJobName = "order-expiry"

// OrderExpirer fails pending orders created before the cutoff
type OrderExpirer interface {
	ExpireStaleOrders(ctx context.Context, olderThan time.Time) (int, error)
}

// NewOrderExpiryJob returns a job that expires orders left pending longer
// than pendingFor.
func NewOrderExpiryJob(expirer OrderExpirer, pendingFor time.Duration, logger *zap.Logger) JobFunc {
	return func(ctx context.Context) error {
		cutoff := time.Now().Add(-pendingFor)
		expired, err := expirer.ExpireStaleOrders(ctx, cutoff)
		if err != nil {
			return err
		}
		if expired > 0 {
			logger.Info("Expired stale pending orders",
				zap.Int("count", expired),
				zap.Time("cutoff", cutoff),
			)
		}
		return nil
	}
}
