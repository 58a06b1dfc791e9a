package persistence

import (
	"github.com/destocard/backend/internal/domain/address"
	"github.com/destocard/backend/internal/domain/catalog"
	"github.com/destocard/backend/internal/domain/identity"
	"github.com/destocard/backend/internal/domain/marketplace"
	"github.com/destocard/backend/internal/domain/media"
	"github.com/destocard/backend/internal/domain/messaging"
	"github.com/destocard/backend/internal/domain/order"
)

// Models lists every persisted type. Production schemas come from the SQL
// migrations; this list feeds AutoMigrate in tests and local tooling.
func Models() []any {
	return []any{
		&identity.User{},
		&identity.UserLike{},
		&catalog.Serie{},
		&catalog.Extension{},
		&catalog.PokemonCard{},
		&marketplace.Product{},
		&media.Media{},
		&address.Address{},
		&messaging.Message{},
		&order.Order{},
		&order.OrderProduct{},
	}
}
