package money

import (
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// RoundCents rounds a currency amount to cent precision. Planner values are
// rounded exactly once, at the point they become final.
func RoundCents(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// FormatUSD formats an amount as a dollar string with two decimals.
func FormatUSD(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}

// NetOfWithholding returns the cash remaining after flat withholding at rate.
func NetOfWithholding(gross, rate decimal.Decimal) decimal.Decimal {
	return gross.Mul(one.Sub(rate))
}

// GrossFromNet inverts NetOfWithholding: the gross distribution needed to land
// net cash after flat withholding at rate. Rates at or above 1 have no gross
// equivalent and return net unchanged; configuration validation rejects them.
func GrossFromNet(net, rate decimal.Decimal) decimal.Decimal {
	keep := one.Sub(rate)
	if keep.Sign() <= 0 {
		return net
	}
	return net.Div(keep)
}
