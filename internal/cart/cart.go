// Package cart implements the ledger of line items for one in-progress
// order. Every operation takes a cart by value and returns the new cart; the
// caller owns replacing its reference, so no two callers ever see a
// half-mutated cart.
package cart

import (
	"github.com/shopspring/decimal"

	"billingdesk/backend/internal/domain"
	"billingdesk/backend/internal/money"
)

// AddOrMerge adds qty of the product to the cart. If a line for the product
// already exists its quantity is incremented at the line's existing unit
// price, not the product's current catalog price, so prices stay consistent
// within one order even if the catalog changed mid-session. A new line uses
// the product's selling price (0 if unset) and snapshots current stock for
// display. The touched line becomes the focused row.
func AddOrMerge(c domain.Cart, product domain.Product, qty decimal.Decimal) domain.Cart {
	out := c.Clone()
	if qty.IsNegative() || qty.IsZero() {
		qty = decimal.NewFromInt(1)
	}

	if idx := out.IndexOf(product.ID); idx >= 0 {
		line := out.Items[idx]
		line.Quantity = line.Quantity.Add(qty)
		line.LineTotal = money.LineTotal(line.Quantity, line.UnitPrice)
		out.Items[idx] = line
		out.Focused = idx
		return out
	}

	price := product.SellingPrice
	if price.IsNegative() {
		price = decimal.Zero
	}
	line := domain.LineItem{
		ProductID: product.ID,
		Code:      product.Code,
		Name:      product.Name,
		Quantity:  qty,
		UnitPrice: price,
		UnitID:    product.UnitID,
		LineTotal: money.LineTotal(qty, price),
		StockHint: product.Stock,
	}
	out.Items = append(out.Items, line)
	out.Focused = len(out.Items) - 1
	return out
}

// AdjustQuantity adds delta to the line's quantity, clamping at 0. A line
// that reaches 0 is removed, never kept at zero quantity.
func AdjustQuantity(c domain.Cart, productID string, delta decimal.Decimal) domain.Cart {
	idx := c.IndexOf(productID)
	if idx < 0 {
		return c.Clone()
	}

	next := c.Items[idx].Quantity.Add(delta)
	if next.IsNegative() {
		next = decimal.Zero
	}
	return SetQuantity(c, productID, next)
}

// SetQuantity sets the line's quantity directly, with the same zero-removal
// rule as AdjustQuantity. Negative values normalize to 0 and remove the line.
func SetQuantity(c domain.Cart, productID string, value decimal.Decimal) domain.Cart {
	idx := c.IndexOf(productID)
	if idx < 0 {
		return c.Clone()
	}
	if value.IsNegative() {
		value = decimal.Zero
	}
	if value.IsZero() {
		return Remove(c, productID)
	}

	out := c.Clone()
	line := out.Items[idx]
	line.Quantity = value
	line.LineTotal = money.LineTotal(line.Quantity, line.UnitPrice)
	out.Items[idx] = line
	out.Focused = idx
	return out
}

// Remove deletes the line. When the removed line was focused, focus moves to
// the previous row, or to none when the cart empties.
func Remove(c domain.Cart, productID string) domain.Cart {
	idx := c.IndexOf(productID)
	if idx < 0 {
		return c.Clone()
	}

	out := c.Clone()
	out.Items = append(out.Items[:idx], out.Items[idx+1:]...)

	switch {
	case len(out.Items) == 0:
		out.Focused = -1
	case out.Focused == idx:
		if idx > 0 {
			out.Focused = idx - 1
		} else {
			out.Focused = 0
		}
	case out.Focused > idx:
		out.Focused--
	}
	return out
}

// SetUnitOfMeasure changes the display unit of a line. The unit price is
// deliberately left untouched: the billing screens never rescaled price on a
// unit change and callers depend on that.
func SetUnitOfMeasure(c domain.Cart, productID string, unitID string) domain.Cart {
	idx := c.IndexOf(productID)
	if idx < 0 {
		return c.Clone()
	}

	out := c.Clone()
	out.Items[idx].UnitID = unitID
	out.Focused = idx
	return out
}
