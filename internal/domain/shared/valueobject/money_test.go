package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid amount and currency", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromFloat(100.50), EUR)
		require.NoError(t, err)
		assert.Equal(t, EUR, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(100.50)))
	})

	t.Run("returns error for empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromFloat(100), "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "currency cannot be empty")
	})
}

func TestMoney_Cents(t *testing.T) {
	tests := []struct {
		amount string
		want   int64
	}{
		{"12.50", 1250},
		{"0.01", 1},
		{"19.999", 2000},
		{"3", 300},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			m := NewMoneyEUR(decimal.RequireFromString(tt.amount))
			assert.Equal(t, tt.want, m.Cents())
		})
	}
}

func TestNewMoneyFromCents(t *testing.T) {
	m, err := NewMoneyFromCents(1999, EUR)
	require.NoError(t, err)
	assert.True(t, m.Amount().Equal(decimal.RequireFromString("19.99")))
}

func TestMoney_Add(t *testing.T) {
	a := NewMoneyEUR(decimal.NewFromInt(10))
	b := NewMoneyEUR(decimal.RequireFromString("2.5"))

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "12.50 EUR", sum.String())

	_, err = a.Add(Zero(USD))
	assert.Error(t, err)
}

func TestMoney_MultiplyByInt(t *testing.T) {
	m := NewMoneyEUR(decimal.RequireFromString("4.99")).MultiplyByInt(3)
	assert.True(t, m.Amount().Equal(decimal.RequireFromString("14.97")))
}

func TestMoney_FormatFR(t *testing.T) {
	assert.Equal(t, "12,50 €", NewMoneyEUR(decimal.RequireFromString("12.5")).FormatFR())
	assert.Equal(t, "1 234,00 €", NewMoneyEUR(decimal.NewFromInt(1234)).FormatFR())
	assert.Equal(t, "-0,99 €", NewMoneyEUR(decimal.RequireFromString("-0.99")).FormatFR())
}

func TestMoney_JSON(t *testing.T) {
	m := NewMoneyEUR(decimal.RequireFromString("7.1"))
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"7.10","currency":"EUR"}`, string(data))

	var back Money
	require.NoError(t, json.Unmarshal([]byte(`{"amount":"3.20"}`), &back))
	assert.Equal(t, EUR, back.Currency())
	assert.True(t, back.Equals(NewMoneyEUR(decimal.RequireFromString("3.2"))))
}

func TestMoney_Scan(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan("42.00"))
	assert.Equal(t, EUR, m.Currency())
	assert.Equal(t, int64(4200), m.Cents())

	require.NoError(t, m.Scan(nil))
	assert.True(t, m.IsZero())
}
