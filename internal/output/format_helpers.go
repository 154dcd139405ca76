package output

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// FormatCurrency formats a decimal as USD currency with 2 decimals.
// Kept here so it can be reused by multiple formatters and unit tested in isolation.
func FormatCurrency(amount decimal.Decimal) string { return "$" + amount.StringFixed(2) }

// FormatPercentage formats a decimal as a percentage with 2 decimals.
func FormatPercentage(amount decimal.Decimal) string { return amount.StringFixed(2) + "%" }

func intToString(v int) string { return strconv.Itoa(v) }

func boolToString(v bool) string { return strconv.FormatBool(v) }

var decimalHundred = decimal.NewFromInt(100)
