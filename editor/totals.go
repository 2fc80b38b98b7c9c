package editor

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rostved/sitebook/api"
)

// Places is the number of fractional digits every running total keeps.
const Places = 2

// Totals are derived from the current line items and payments.
type Totals struct {
	Total       decimal.Decimal
	Paid        decimal.Decimal
	Outstanding decimal.Decimal
}

// LineTotal is qty × unit price, unrounded.
func LineTotal(item api.LineItem) decimal.Decimal {
	return item.Qty.Mul(item.UnitPrice)
}

// SumLines folds the line totals left to right, rounding the running sum to
// two places after every addend. Rounding is half away from zero.
func SumLines(items []api.LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(LineTotal(item)).Round(Places)
	}
	return sum
}

// SumPayments folds payment amounts with the same cumulative rounding as SumLines.
func SumPayments(payments []api.Payment) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range payments {
		sum = sum.Add(p.Amount).Round(Places)
	}
	return sum
}

func ComputeTotals(items []api.LineItem, payments []api.Payment) Totals {
	total := SumLines(items)
	paid := SumPayments(payments)
	return Totals{
		Total:       total,
		Paid:        paid,
		Outstanding: total.Sub(paid).Round(Places),
	}
}

// IsValidLine reports whether a line counts towards the save precondition.
func IsValidLine(item api.LineItem) bool {
	return strings.TrimSpace(item.Description) != "" && item.Qty.IsPositive()
}

// HasValidLine reports whether at least one line has a description and a
// positive quantity.
func HasValidLine(items []api.LineItem) bool {
	for _, item := range items {
		if IsValidLine(item) {
			return true
		}
	}
	return false
}
