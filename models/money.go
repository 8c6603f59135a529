package models

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Money is a fixed-point currency amount. It is stored in MongoDB as a
// Decimal128 so monetary values never pass through binary floating point.
type Money struct {
	decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

// MoneyFromString parses a decimal string such as "120.50".
func MoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid money value %q: %w", s, err)
	}
	return Money{Decimal: d}, nil
}

func ZeroMoney() Money {
	return Money{Decimal: decimal.Zero}
}

// MarshalBSONValue encodes the amount as a Decimal128.
func (m Money) MarshalBSONValue() (bsontype.Type, []byte, error) {
	d128, err := primitive.ParseDecimal128(m.String())
	if err != nil {
		return 0, nil, fmt.Errorf("money %q not representable as decimal128: %w", m.String(), err)
	}
	return bson.MarshalValue(d128)
}

// UnmarshalBSONValue decodes a Decimal128 back into a decimal amount.
func (m *Money) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	var d128 primitive.Decimal128
	if err := raw.Unmarshal(&d128); err != nil {
		return fmt.Errorf("failed to decode money: %w", err)
	}
	d, err := decimal.NewFromString(d128.String())
	if err != nil {
		return fmt.Errorf("invalid decimal128 %q: %w", d128.String(), err)
	}
	m.Decimal = d
	return nil
}
