package utils

import (
	"github.com/shopspring/decimal"
)

// CalculateEntryQuantity returns the number of units an entry can take:
// floor(capital * fillRate / (price * contractSize)) * contractSize.
// Returns 0 when nothing can be bought.
func CalculateEntryQuantity(capital, fillRate, price, contractSize float64) float64 {
	if capital <= 0 || fillRate <= 0 || price <= 0 || contractSize <= 0 {
		return 0
	}

	budget := decimal.NewFromFloat(capital).Mul(decimal.NewFromFloat(fillRate))
	lotCost := decimal.NewFromFloat(price).Mul(decimal.NewFromFloat(contractSize))

	lots := budget.Div(lotCost).Floor()
	qty, _ := lots.Mul(decimal.NewFromFloat(contractSize)).Float64()

	return qty
}

// ApplySlippage moves price against the trader. Buys fill higher, sells fill lower.
func ApplySlippage(price, slippagePct float64, buy bool) float64 {
	if buy {
		return price * (1 + slippagePct)
	}

	return price * (1 - slippagePct)
}

// RoundHalfUp rounds a monetary amount to places decimals, half away from zero.
func RoundHalfUp(value decimal.Decimal, places int32) float64 {
	rounded, _ := value.Round(places).Float64()

	return rounded
}
