// Package money holds the pure arithmetic behind the billing screens: line
// totals, order totals, and payment breakdowns. Functions here have no side
// effects and no error conditions; negative or invalid numeric input is a
// caller bug and normalizes to zero rather than surfacing to the user.
package money

import (
	"github.com/shopspring/decimal"

	"billingdesk/backend/internal/domain"
)

// LineTotal returns quantity × unit price, clamping negative inputs to 0.
func LineTotal(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return clampNonNegative(quantity).Mul(clampNonNegative(unitPrice))
}

func Subtotal(items []domain.LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.LineTotal)
	}
	return sum
}

// NetTotal is max(0, subtotal − discount + expenses).
func NetTotal(subtotal, discount, expenses decimal.Decimal) decimal.Decimal {
	return clampNonNegative(subtotal.Sub(clampNonNegative(discount)).Add(clampNonNegative(expenses)))
}

// Change is max(0, received − net). Change and BalanceDue may both be
// computed for the same state but are never both positive.
func Change(amountReceived, netTotal decimal.Decimal) decimal.Decimal {
	return clampNonNegative(clampNonNegative(amountReceived).Sub(netTotal))
}

// BalanceDue is max(0, net − received).
func BalanceDue(amountReceived, netTotal decimal.Decimal) decimal.Decimal {
	return clampNonNegative(netTotal.Sub(clampNonNegative(amountReceived)))
}

// WithThisBill is the running balance a credit customer carries once this
// bill lands: previous balance + net total.
func WithThisBill(previousBalance, netTotal decimal.Decimal) decimal.Decimal {
	return previousBalance.Add(netTotal)
}

// ComputeTotals derives the full Totals block for a cart state. Callers run
// this after every mutation; totals are never cached independently.
func ComputeTotals(items []domain.LineItem, discount, expenses, amountReceived decimal.Decimal) domain.Totals {
	subtotal := Subtotal(items)
	net := NetTotal(subtotal, discount, expenses)
	return domain.Totals{
		Subtotal:       subtotal,
		NetTotal:       net,
		ChangeToReturn: Change(amountReceived, net),
		BalanceDue:     BalanceDue(amountReceived, net),
	}
}

// RoundWhole rounds to whole currency units for display.
func RoundWhole(v decimal.Decimal) decimal.Decimal {
	return v.Round(0)
}

func clampNonNegative(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}
