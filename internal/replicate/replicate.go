// Package replicate builds a new order from a historical invoice with
// per-line old/new price reconciliation. The historical invoice is read-only
// input; all derived state lives in the quote list, so the original record
// stays a trustworthy audit trail.
package replicate

import (
	"github.com/shopspring/decimal"

	"billingdesk/backend/internal/domain"
	"billingdesk/backend/internal/money"
)

type ScaleMode int

const (
	ScaleSame ScaleMode = iota
	ScaleDouble
	ScaleHalf
)

// BuildReplicationSet derives a quote per historical line. The old price is
// the historical unit price. The new price resolves in order: the current
// price for the same unit of measure, the product's general selling price,
// then the old price itself, so a line is never left unpriced. Every quote
// starts with the new price selected.
func BuildReplicationSet(historical domain.Invoice, currentPrices map[string]domain.Pricing) []domain.PriceQuote {
	quotes := make([]domain.PriceQuote, 0, len(historical.Items))
	for _, item := range historical.Items {
		quote := domain.PriceQuote{
			ProductID:          item.ProductID,
			Code:               item.Code,
			Name:               item.Name,
			UnitID:             item.UnitID,
			Quantity:           item.Quantity,
			HistoricalQuantity: item.Quantity,
			OldPrice:           item.UnitPrice,
			NewPrice:           resolveNewPrice(item, currentPrices),
			UseNewPrice:        true,
		}
		quote.LineTotal = money.LineTotal(quote.Quantity, quote.EffectivePrice())
		quotes = append(quotes, quote)
	}
	return quotes
}

func resolveNewPrice(item domain.InvoiceItem, currentPrices map[string]domain.Pricing) decimal.Decimal {
	pricing, ok := currentPrices[item.ProductID]
	if !ok {
		return item.UnitPrice
	}
	if unitPrice, ok := pricing.ByUnit[item.UnitID]; ok && unitPrice.IsPositive() {
		return unitPrice
	}
	if pricing.SellingPrice.IsPositive() {
		return pricing.SellingPrice
	}
	return item.UnitPrice
}

// SetUseNewPrice toggles one line's price selection and recomputes its total
// immediately, so totals are never stale.
func SetUseNewPrice(quotes []domain.PriceQuote, productID string, useNew bool) []domain.PriceQuote {
	out := clone(quotes)
	for i := range out {
		if out[i].ProductID == productID {
			out[i].UseNewPrice = useNew
			out[i].LineTotal = money.LineTotal(out[i].Quantity, out[i].EffectivePrice())
		}
	}
	return out
}

func SetAllUseNew(quotes []domain.PriceQuote, useNew bool) []domain.PriceQuote {
	out := clone(quotes)
	for i := range out {
		out[i].UseNewPrice = useNew
		out[i].LineTotal = money.LineTotal(out[i].Quantity, out[i].EffectivePrice())
	}
	return out
}

// SelectOnlyIncreased selects the new price only on lines where it rose;
// all other lines fall back to the historical price.
func SelectOnlyIncreased(quotes []domain.PriceQuote) []domain.PriceQuote {
	out := clone(quotes)
	for i := range out {
		out[i].UseNewPrice = out[i].NewPrice.GreaterThan(out[i].OldPrice)
		out[i].LineTotal = money.LineTotal(out[i].Quantity, out[i].EffectivePrice())
	}
	return out
}

func SelectOnlyDecreased(quotes []domain.PriceQuote) []domain.PriceQuote {
	out := clone(quotes)
	for i := range out {
		out[i].UseNewPrice = out[i].NewPrice.LessThan(out[i].OldPrice)
		out[i].LineTotal = money.LineTotal(out[i].Quantity, out[i].EffectivePrice())
	}
	return out
}

// ScaleQuantities rescales every line against its historical quantity: Same
// restores it, Double multiplies by 2, Half floors qty/2. Lines whose
// quantity lands on 0 are dropped.
func ScaleQuantities(quotes []domain.PriceQuote, mode ScaleMode) []domain.PriceQuote {
	out := make([]domain.PriceQuote, 0, len(quotes))
	two := decimal.NewFromInt(2)
	for _, quote := range quotes {
		switch mode {
		case ScaleSame:
			quote.Quantity = quote.HistoricalQuantity
		case ScaleDouble:
			quote.Quantity = quote.Quantity.Mul(two)
		case ScaleHalf:
			quote.Quantity = quote.Quantity.Div(two).Floor()
		}
		if quote.Quantity.IsNegative() {
			quote.Quantity = decimal.Zero
		}
		if quote.Quantity.IsZero() {
			continue
		}
		quote.LineTotal = money.LineTotal(quote.Quantity, quote.EffectivePrice())
		out = append(out, quote)
	}
	return out
}

func RemoveLine(quotes []domain.PriceQuote, index int) []domain.PriceQuote {
	if index < 0 || index >= len(quotes) {
		return clone(quotes)
	}
	out := clone(quotes)
	return append(out[:index], out[index+1:]...)
}

// ToLineItems converts the quote list into cart lines at each quote's
// effective price.
func ToLineItems(quotes []domain.PriceQuote) []domain.LineItem {
	items := make([]domain.LineItem, 0, len(quotes))
	for _, quote := range quotes {
		items = append(items, domain.LineItem{
			ProductID: quote.ProductID,
			Code:      quote.Code,
			Name:      quote.Name,
			Quantity:  quote.Quantity,
			UnitPrice: quote.EffectivePrice(),
			UnitID:    quote.UnitID,
			LineTotal: money.LineTotal(quote.Quantity, quote.EffectivePrice()),
		})
	}
	return items
}

func clone(quotes []domain.PriceQuote) []domain.PriceQuote {
	out := make([]domain.PriceQuote, len(quotes))
	copy(out, quotes)
	return out
}
