// Package seed fills a development database with fake sellers, addresses
// and listings attached to cards already in the catalog.
package seed

import (
	"context"
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/destocard/backend/internal/domain/address"
	"github.com/destocard/backend/internal/domain/catalog"
	"github.com/destocard/backend/internal/domain/identity"
	"github.com/destocard/backend/internal/domain/marketplace"
	"github.com/destocard/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultPassword is given to every seeded account
const DefaultPassword = "destocard1"

// cardSample bounds how many catalog cards listings are drawn from
const cardSample = 100

// Options sizes a seeding run
type Options struct {
	Users           int
	ProductsPerUser int
	// Seed makes the run reproducible; 0 picks a random seed
	Seed uint64
}

// Result counts what a run created
type Result struct {
	Users     int
	Addresses int
	Products  int
	Emails    []string
}

// Seeder writes fake data through the domain repositories
type Seeder struct {
	users     identity.UserRepository
	addresses address.AddressRepository
	products  marketplace.ProductRepository
	cards     catalog.PokemonCardRepository
	logger    *zap.Logger
}

// NewSeeder creates a seeder
func NewSeeder(
	users identity.UserRepository,
	addresses address.AddressRepository,
	products marketplace.ProductRepository,
	cards catalog.PokemonCardRepository,
	logger *zap.Logger,
) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{users: users, addresses: addresses, products: products, cards: cards, logger: logger}
}

// Run creates opts.Users accounts, each with a default address and
// opts.ProductsPerUser listings. Listings reference catalog cards when the
// catalog is not empty.
func (s *Seeder) Run(ctx context.Context, opts Options) (Result, error) {
	var res Result
	f := gofakeit.New(opts.Seed)

	cards, _, err := s.cards.Search(ctx, catalog.CardFilter{
		Filter: shared.Filter{Page: 1, PageSize: cardSample},
	})
	if err != nil {
		return res, fmt.Errorf("load catalog cards: %w", err)
	}
	if len(cards) == 0 {
		s.logger.Warn("Catalog is empty, listings will not reference cards")
	}

	// Salt keeps emails unique across runs
	salt := strings.ToLower(f.LetterN(4))
	for i := 0; i < opts.Users; i++ {
		user, err := s.createUser(ctx, f, fmt.Sprintf("%s%d", salt, i))
		if err != nil {
			return res, err
		}
		res.Users++
		res.Emails = append(res.Emails, user.Email)

		if err := s.createAddress(ctx, f, user); err != nil {
			return res, err
		}
		res.Addresses++

		for j := 0; j < opts.ProductsPerUser; j++ {
			if err := s.createProduct(ctx, f, user.ID, cards); err != nil {
				return res, err
			}
			res.Products++
		}
	}

	s.logger.Info("Seeding finished",
		zap.Int("users", res.Users),
		zap.Int("addresses", res.Addresses),
		zap.Int("products", res.Products),
	)
	return res, nil
}

func (s *Seeder) createUser(ctx context.Context, f *gofakeit.Faker, suffix string) (*identity.User, error) {
	first, last := f.FirstName(), f.LastName()
	username := sanitizeUsername(first + "." + last + "." + suffix)
	email := strings.ToLower(username) + "@example.com"

	user, err := identity.NewUser(email, username, DefaultPassword)
	if err != nil {
		return nil, fmt.Errorf("build user %s: %w", email, err)
	}
	if err := user.UpdateProfile(first, last, ""); err != nil {
		return nil, err
	}
	user.ClearDomainEvents()
	if err := s.users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("save user %s: %w", email, err)
	}
	return user, nil
}

func (s *Seeder) createAddress(ctx context.Context, f *gofakeit.Faker, user *identity.User) error {
	a, err := address.NewAddress(user.ID, address.Fields{
		Label:      "Maison",
		FullName:   user.FullName(),
		Street:     f.Street(),
		PostalCode: fmt.Sprintf("%05d", f.IntRange(1000, 95999)),
		City:       f.City(),
		Country:    "FR",
		Phone:      "+33 6" + fmt.Sprintf("%08d", f.IntRange(0, 99999999)),
	})
	if err != nil {
		return fmt.Errorf("build address: %w", err)
	}
	a.IsDefault = true
	return s.addresses.Save(ctx, a)
}

func (s *Seeder) createProduct(ctx context.Context, f *gofakeit.Faker, sellerID uuid.UUID, cards []catalog.PokemonCard) error {
	in := marketplace.ProductInput{
		Title:       "Carte " + f.Adjective() + " " + f.Noun(),
		Description: f.LoremIpsumSentence(12),
		Price:       decimal.NewFromFloat(f.Price(0.5, 250)),
		Stock:       f.IntRange(1, 5),
		Condition:   marketplace.AllConditions[f.IntRange(0, len(marketplace.AllConditions)-1)],
		Language:    f.RandomString([]string{"fr", "en", "ja"}),
	}
	if len(cards) > 0 {
		card := cards[f.IntRange(0, len(cards)-1)]
		in.Title = card.Name + " " + card.Number
		in.PokemonCardID = &card.ID
	}

	p, err := marketplace.NewProduct(sellerID, in)
	if err != nil {
		return fmt.Errorf("build product: %w", err)
	}
	return s.products.Save(ctx, p)
}

// sanitizeUsername keeps the characters accepted in usernames
func sanitizeUsername(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(raw) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	out := b.String()
	if len(out) > 50 {
		out = out[len(out)-50:]
	}
	return out
}
