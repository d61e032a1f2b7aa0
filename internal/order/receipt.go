package order

import (
	"context"

	"billingdesk/backend/internal/domain"
	"billingdesk/backend/internal/money"
)

// Receipt builds the print summary for the current draft. Unit names are
// resolved from the catalog; an unresolvable unit falls back to its id.
func (s *Session) Receipt(ctx context.Context) (domain.ReceiptSummary, error) {
	s.mu.Lock()
	draft := s.draft.Clone()
	s.mu.Unlock()

	unitNames := map[string]string{}
	if units, err := s.repo.ListUnits(ctx); err == nil {
		for _, u := range units {
			unitNames[u.ID] = u.Name
		}
	}

	lines := make([]domain.ReceiptLine, 0, len(draft.Cart.Items))
	for _, item := range draft.Cart.Items {
		unitName := item.UnitID
		if name, ok := unitNames[item.UnitID]; ok {
			unitName = name
		}
		lines = append(lines, domain.ReceiptLine{
			Description: item.Name,
			Quantity:    item.Quantity,
			UnitName:    unitName,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
		})
	}

	summary := domain.ReceiptSummary{
		InvoiceNumber:  draft.InvoiceNumber,
		Date:           draft.Date,
		Time:           draft.Time,
		CustomerName:   draft.Customer.CustomerName,
		Lines:          lines,
		Subtotal:       draft.Totals.Subtotal,
		Discount:       draft.Discount,
		Expenses:       draft.Expenses,
		NetTotal:       draft.Totals.NetTotal,
		AmountReceived: draft.AmountReceived,
		ChangeToReturn: draft.Totals.ChangeToReturn,
		BalanceDue:     draft.Totals.BalanceDue,
		PrintFlags:     draft.PrintFlags,
		Remarks:        draft.Remarks,
	}
	if draft.Customer.Kind == domain.BindingCredit && !draft.PrintFlags.WithoutBalance {
		summary.PreviousBalance = draft.Customer.PreviousBalance
		summary.WithThisBill = money.WithThisBill(draft.Customer.PreviousBalance, draft.Totals.NetTotal)
	}
	return summary, nil
}
