// Package models holds the persisted entities of the inventory and billing
// domain.
package models

import "github.com/shopspring/decimal"

func init() {
	// Amounts are emitted as JSON numbers ({"amount":150.5}), not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// MoneyPlaces is the scale of every stored amount.
const MoneyPlaces = 2

// RoundMoney rounds half away from zero to cents.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}
