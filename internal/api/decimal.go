package api

import "github.com/shopspring/decimal"

// decimalPercent turns an integer percentage into a multiplier
func decimalPercent(p int) decimal.Decimal {
	return decimal.NewFromInt(int64(p)).Div(decimal.NewFromInt(100))
}
