package money

import (
	"github.com/shopspring/decimal"
)

// Places is the scale of every persisted monetary total. Rounding happens at
// each settlement step, not only at the end, because the rounding order
// changes final balances.
const Places = 4

// Round4 rounds half away from zero to four decimal places.
func Round4(value float64) float64 {
	rounded, _ := decimal.NewFromFloat(value).Round(Places).Float64()
	return rounded
}
