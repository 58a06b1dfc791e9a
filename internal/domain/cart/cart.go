package cart

import (
	"context"
	"sort"
	"strings"

	"github.com/destocard/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Line is one product held in a cart
type Line struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// Cart is the content of a cart keyed by product
type Cart map[uuid.UUID]int

// Lines returns the cart lines sorted by product id
func (c Cart) Lines() []Line {
	lines := make([]Line, 0, len(c))
	for id, q := range c {
		lines = append(lines, Line{ProductID: id, Quantity: q})
	}
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].ProductID.String() < lines[j].ProductID.String()
	})
	return lines
}

// Count returns the total number of units
func (c Cart) Count() int {
	n := 0
	for _, q := range c {
		n += q
	}
	return n
}

// Has reports whether productID is in the cart
func (c Cart) Has(productID uuid.UUID) bool {
	_, ok := c[productID]
	return ok
}

// Key identifies a cart. Logged-in carts use the user id, anonymous carts
// use the cart session cookie value.
type Key string

// UserKey returns the cart key of an authenticated user
func UserKey(userID uuid.UUID) Key {
	return Key("user:" + userID.String())
}

// SessionKey returns the cart key of an anonymous session
func SessionKey(sessionID string) Key {
	return Key("session:" + sessionID)
}

// Validate checks the key is non-empty
func (k Key) Validate() error {
	if strings.TrimSpace(string(k)) == "" {
		return shared.NewDomainError("INVALID_CART", "Panier introuvable")
	}
	return nil
}

// Store persists carts. Quantities are always positive; Set with a
// non-positive quantity removes the line.
type Store interface {
	Get(ctx context.Context, key Key) (Cart, error)
	Set(ctx context.Context, key Key, productID uuid.UUID, quantity int) error
	Remove(ctx context.Context, key Key, productID uuid.UUID) error
	Clear(ctx context.Context, key Key) error
	// Replace overwrites the whole cart
	Replace(ctx context.Context, key Key, lines []Line) error
}
