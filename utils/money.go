package utils

import "github.com/shopspring/decimal"

// RoundMoney rounds d to 2 decimal places (half away from zero).
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
