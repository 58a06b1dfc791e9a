package main

import (
	"fmt"
	"time"

	orderapp "github.com/destocard/backend/internal/application/order"
	"github.com/destocard/backend/internal/infrastructure/billing"
	"github.com/destocard/backend/internal/infrastructure/cache"
	"github.com/destocard/backend/internal/infrastructure/config"
	"github.com/destocard/backend/internal/infrastructure/logger"
	"github.com/destocard/backend/internal/infrastructure/persistence"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// rootOptions holds the global flags
type rootOptions struct {
	logLevel string
}

// env is what every subcommand works with
type env struct {
	cfg *config.Config
	log *zap.Logger
	db  *persistence.Database
}

func (e *env) close() {
	_ = e.db.Close()
	_ = e.log.Sync()
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "destoctl",
		Short:         "Destocard maintenance tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	cmd.AddCommand(newSeedCommand(opts))
	cmd.AddCommand(newPromoteAdminCommand(opts))
	cmd.AddCommand(newExpireOrdersCommand(opts))
	return cmd
}

// openEnv loads the configuration and connects to the database
func openEnv(opts *rootOptions) (*env, error) {
	_ = godotenv.Load()

	log, err := logger.New(&logger.Config{Level: opts.logLevel, Format: "console", Output: "stderr"})
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	db, err := persistence.NewDatabase(&cfg.Database, log)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log, db: db}, nil
}

// orderService builds the order service used to expire orders. Stripe is
// optional: without a secret key PaymentIntents are left to expire on their
// own.
func (e *env) orderService() (*orderapp.Service, func(), error) {
	stores, err := cache.NewStoreFactory(e.cfg.Redis, e.cfg.Cart.TTL, cache.WithLogger(e.log)).Create()
	if err != nil {
		return nil, nil, err
	}

	svcCfg := orderapp.ServiceConfig{
		OrderRepo: persistence.NewGormOrderRepository(e.db.DB),
		TxScope:   persistence.NewGormTransactionScope(e.db.DB),
		Carts:     stores.Cart,
		Logger:    e.log,
	}
	if e.cfg.Stripe.SecretKey != "" {
		gateway, err := billing.NewStripeAdapter(billing.NewStripeConfig(e.cfg.Stripe), e.log, nil)
		if err != nil {
			_ = stores.Close()
			return nil, nil, err
		}
		svcCfg.Gateway = gateway
	} else {
		e.log.Warn("Stripe is not configured, PaymentIntents will not be canceled")
	}
	return orderapp.NewService(svcCfg), func() { _ = stores.Close() }, nil
}

// olderThan reads --older-than, defaulting to the configured pending
// expiration
func olderThan(cmd *cobra.Command, cfg *config.Config) (time.Duration, error) {
	if !cmd.Flags().Changed("older-than") {
		return cfg.Order.PendingExpiration, nil
	}
	return cmd.Flags().GetDuration("older-than")
}
