package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoneyFromString(t *testing.T) {
	m, err := MoneyFromString("120.50")
	require.NoError(t, err)
	assert.Equal(t, "120.5", m.String())

	_, err = MoneyFromString("not a number")
	assert.Error(t, err)
}

func TestMoneyArithmeticIsExact(t *testing.T) {
	// 0.1 + 0.2 is where float currency goes wrong.
	a, err := MoneyFromString("0.1")
	require.NoError(t, err)
	b, err := MoneyFromString("0.2")
	require.NoError(t, err)

	sum := NewMoney(a.Add(b.Decimal))
	assert.True(t, sum.Equal(decimal.RequireFromString("0.3")))
}

func TestZeroMoney(t *testing.T) {
	assert.True(t, ZeroMoney().IsZero())
}
