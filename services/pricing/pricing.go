// Package pricing computes booking totals per machine category. All
// arithmetic stays in fixed-point decimals; floats never touch currency.
package pricing

import (
	"time"

	"machly/models"

	"github.com/shopspring/decimal"
)

// Days returns the number of billable days in [start, end): whole 24h
// periods, with a floor of one so short rentals still bill a full day.
func Days(start, end time.Time) int64 {
	hours := end.Sub(start).Hours()
	days := int64(hours / 24)
	if days < 1 {
		days = 1
	}
	return days
}

// CalculatePrice computes the total price for booking the machine over
// [start, end). Service machines bill per day, seed and cane machines per
// unit; the explicit quantity wins, otherwise the machine's declared
// capacity is used. The operator surcharge rides on the same basis as the
// base rate: per day for services, per unit otherwise.
func CalculatePrice(machine *models.Machine, start, end time.Time, quantity *float64) models.Money {
	data := machine.CategoryData
	base := data.BaseRate.Decimal

	switch machine.Category {
	case models.CategoryServices:
		days := decimal.NewFromInt(Days(start, end))
		total := base.Mul(days)
		if data.WithOperator && data.OperatorRate != nil {
			total = total.Add(data.OperatorRate.Decimal.Mul(days))
		}
		return models.Money{Decimal: total}

	case models.CategorySeeds:
		units := unitCount(quantity, data.Hectares)
		return models.Money{Decimal: withOperator(data, base.Mul(units), units)}

	case models.CategoryCane:
		units := unitCount(quantity, data.Tons, data.Kilometers)
		return models.Money{Decimal: withOperator(data, base.Mul(units), units)}
	}

	return models.ZeroMoney()
}

// withOperator adds the per-unit operator surcharge when the listing
// includes one.
func withOperator(data models.CategoryData, total, units decimal.Decimal) decimal.Decimal {
	if data.WithOperator && data.OperatorRate != nil {
		total = total.Add(data.OperatorRate.Decimal.Mul(units))
	}
	return total
}

// unitCount picks the first non-nil value, requested quantity first.
func unitCount(quantity *float64, fallbacks ...*float64) decimal.Decimal {
	if quantity != nil {
		return decimal.NewFromFloat(*quantity)
	}
	for _, f := range fallbacks {
		if f != nil {
			return decimal.NewFromFloat(*f)
		}
	}
	return decimal.Zero
}
