package marketplace

import (
	"errors"
	"testing"

	"github.com/destocard/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() ProductInput {
	return ProductInput{
		Title:     "Dracaufeu holo",
		Price:     decimal.RequireFromString("149.90"),
		Stock:     2,
		Condition: ConditionNearMint,
	}
}

func TestNewProduct(t *testing.T) {
	seller := uuid.New()
	p, err := NewProduct(seller, validInput())
	require.NoError(t, err)

	assert.Equal(t, seller, p.SellerID)
	assert.Equal(t, ProductStatusActive, p.Status)
	assert.Equal(t, "fr", p.Language)
	assert.True(t, p.IsAvailable())
	assert.True(t, p.IsOwnedBy(seller))
	assert.Equal(t, int64(14990), p.UnitPrice().Cents())
}

func TestNewProduct_ZeroStockIsSoldOut(t *testing.T) {
	in := validInput()
	in.Stock = 0
	p, err := NewProduct(uuid.New(), in)
	require.NoError(t, err)
	assert.Equal(t, ProductStatusSoldOut, p.Status)
	assert.False(t, p.IsAvailable())
}

func TestNewProduct_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ProductInput)
		code   string
	}{
		{"empty title", func(in *ProductInput) { in.Title = " " }, "INVALID_TITLE"},
		{"zero price", func(in *ProductInput) { in.Price = decimal.Zero }, "INVALID_PRICE"},
		{"huge price", func(in *ProductInput) { in.Price = decimal.NewFromInt(1000000) }, "INVALID_PRICE"},
		{"negative stock", func(in *ProductInput) { in.Stock = -1 }, "INVALID_STOCK"},
		{"unknown condition", func(in *ProductInput) { in.Condition = "shiny" }, "INVALID_CONDITION"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := NewProduct(uuid.New(), in)
			var de *shared.DomainError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, tt.code, de.Code)
		})
	}

	_, err := NewProduct(uuid.Nil, validInput())
	assert.Error(t, err)
}

func TestProduct_DecreaseStock(t *testing.T) {
	p, err := NewProduct(uuid.New(), validInput())
	require.NoError(t, err)
	version := p.GetVersion()

	require.NoError(t, p.DecreaseStock(1))
	assert.Equal(t, 1, p.Stock)
	assert.Equal(t, ProductStatusActive, p.Status)

	err = p.DecreaseStock(2)
	assert.True(t, errors.Is(err, shared.ErrInsufficientStock))
	assert.Equal(t, 1, p.Stock)

	require.NoError(t, p.DecreaseStock(1))
	assert.Equal(t, 0, p.Stock)
	assert.Equal(t, ProductStatusSoldOut, p.Status)
	assert.Equal(t, version, p.GetVersion())

	assert.Error(t, p.DecreaseStock(0))
}

func TestProduct_IncreaseStock(t *testing.T) {
	in := validInput()
	in.Stock = 0
	p, err := NewProduct(uuid.New(), in)
	require.NoError(t, err)

	require.NoError(t, p.IncreaseStock(3))
	assert.Equal(t, 3, p.Stock)
	assert.Equal(t, ProductStatusActive, p.Status)
	assert.Error(t, p.IncreaseStock(-1))
}

func TestProduct_Archive(t *testing.T) {
	p, err := NewProduct(uuid.New(), validInput())
	require.NoError(t, err)

	require.NoError(t, p.Archive())
	assert.False(t, p.IsAvailable())
	assert.Error(t, p.Archive())
	assert.Error(t, p.Update(validInput()))

	require.NoError(t, p.IncreaseStock(1))
	assert.Equal(t, ProductStatusArchived, p.Status)
}

func TestProduct_SetStock(t *testing.T) {
	p, err := NewProduct(uuid.New(), validInput())
	require.NoError(t, err)

	require.NoError(t, p.SetStock(0))
	assert.Equal(t, ProductStatusSoldOut, p.Status)
	assert.Error(t, p.SetStock(-5))
}
