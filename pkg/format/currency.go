// Package format renders money and percentages for reports.
package format

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencySymbol prefixes every formatted amount.
const CurrencySymbol = "€"

// Currency returns a currency string with a euro sign and thousands separators (e.g., "-€1,234.56").
func Currency(amount float64) string {
	d := decimal.NewFromFloat(amount)
	formatted := formatPositive(d.Abs(), 2)
	if d.Round(2).IsNegative() {
		return "-" + CurrencySymbol + formatted
	}
	return CurrencySymbol + formatted
}

// WholeCurrency is Currency rounded to whole euros (e.g., "€12,346").
func WholeCurrency(amount float64) string {
	d := decimal.NewFromFloat(amount)
	formatted := formatPositive(d.Abs(), 0)
	if d.Round(0).IsNegative() {
		return "-" + CurrencySymbol + formatted
	}
	return CurrencySymbol + formatted
}

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1,234.56").
func NumericCurrency(amount float64) string {
	d := decimal.NewFromFloat(amount)
	sign := ""
	if d.Round(2).IsNegative() {
		sign = "-"
	}
	return sign + formatPositive(d.Abs(), 2)
}

// Compact abbreviates large amounts for chart axes and summary cards
// (e.g., "€1.2M", "€350K", "€900").
func Compact(amount float64) string {
	d := decimal.NewFromFloat(amount)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	million := decimal.NewFromInt(1_000_000)
	thousand := decimal.NewFromInt(1_000)
	switch {
	case d.GreaterThanOrEqual(million):
		return sign + CurrencySymbol + d.Div(million).StringFixed(1) + "M"
	case d.GreaterThanOrEqual(thousand):
		return sign + CurrencySymbol + d.Div(thousand).StringFixed(0) + "K"
	}
	return sign + CurrencySymbol + d.StringFixed(0)
}

// RoundWhole rounds half away from zero to a whole amount, as used by the
// spreadsheet export.
func RoundWhole(amount float64) float64 {
	f, _ := decimal.NewFromFloat(amount).Round(0).Float64()
	return f
}

// Percent renders a percentage with one decimal (e.g., "42.5%").
func Percent(value float64) string {
	return decimal.NewFromFloat(value).StringFixed(1) + "%"
}

func formatPositive(value decimal.Decimal, places int32) string {
	formatted := value.StringFixed(places)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	if len(parts) == 2 {
		return intPart + "." + parts[1]
	}
	return intPart
}
