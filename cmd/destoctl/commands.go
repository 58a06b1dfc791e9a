package main

import (
	"fmt"
	"time"

	identityapp "github.com/destocard/backend/internal/application/identity"
	"github.com/destocard/backend/internal/infrastructure/persistence"
	"github.com/destocard/backend/internal/infrastructure/seed"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSeedCommand(root *rootOptions) *cobra.Command {
	opts := seed.Options{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create fake sellers, addresses and listings",
		Long: "Create fake sellers, each with a default address and listings drawn from the\n" +
			"imported catalog. Every account uses the password " + seed.DefaultPassword + ".",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(root)
			if err != nil {
				return err
			}
			defer e.close()

			if e.cfg.App.IsProduction() {
				return fmt.Errorf("refusing to seed a production database")
			}

			seeder := seed.NewSeeder(
				persistence.NewGormUserRepository(e.db.DB),
				persistence.NewGormAddressRepository(e.db.DB),
				persistence.NewGormProductRepository(e.db.DB),
				persistence.NewGormPokemonCardRepository(e.db.DB),
				e.log,
			)
			res, err := seeder.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}
			for _, email := range res.Emails {
				fmt.Fprintln(cmd.OutOrStdout(), email)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&opts.Users, "users", "u", 10, "number of accounts")
	cmd.Flags().IntVarP(&opts.ProductsPerUser, "products", "p", 5, "listings per account")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "random seed (0 for a random run)")
	return cmd
}

func newPromoteAdminCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "promote-admin <email>",
		Short: "Grant the admin role to an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(root)
			if err != nil {
				return err
			}
			defer e.close()

			users := identityapp.NewUserService(persistence.NewGormUserRepository(e.db.DB), nil, 0, e.log)
			user, err := users.PromoteAdmin(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) is now admin\n", user.Username, user.Email)
			return nil
		},
	}
}

func newExpireOrdersCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expire-orders",
		Short: "Fail pending orders and give their stock back",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(root)
			if err != nil {
				return err
			}
			defer e.close()

			age, err := olderThan(cmd, e.cfg)
			if err != nil {
				return err
			}
			orders, closeStores, err := e.orderService()
			if err != nil {
				return err
			}
			defer closeStores()

			cutoff := time.Now().Add(-age)
			expired, err := orders.ExpireStaleOrders(cmd.Context(), cutoff)
			if err != nil {
				return err
			}
			e.log.Info("Pending orders expired", zap.Int("count", expired), zap.Time("cutoff", cutoff))
			fmt.Fprintf(cmd.OutOrStdout(), "%d order(s) expired\n", expired)
			return nil
		},
	}
	cmd.Flags().Duration("older-than", time.Hour, "expire orders pending for longer than this (default: order.pending_expiration)")
	return cmd
}
