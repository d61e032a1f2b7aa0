package order

import (
	"context"
	"errors"
	"fmt"
	"log"

	"billingdesk/backend/internal/domain"
	"billingdesk/backend/internal/store"
)

// BeginEdit loads a committed invoice into the draft for modification and
// snapshots it so a cancelled edit restores the record exactly.
func (s *Session) BeginEdit(ctx context.Context, invoiceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	invoice, err := s.repo.GetInvoiceByID(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: invoice %s", store.ErrNotFound, invoiceID)
		}
		return fmt.Errorf("%w: %v", store.ErrLookupFailed, err)
	}

	s.draft = invoiceToDraft(*invoice)
	s.state = StateEditing
	s.recomputeLocked()
	snapshot := s.draft.Clone()
	s.editSnapshot = &snapshot
	return nil
}

// View loads an invoice read-only, without an edit snapshot.
func (s *Session) View(ctx context.Context, invoiceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	invoice, err := s.repo.GetInvoiceByID(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: invoice %s", store.ErrNotFound, invoiceID)
		}
		return fmt.Errorf("%w: %v", store.ErrLookupFailed, err)
	}

	s.draft = invoiceToDraft(*invoice)
	s.editSnapshot = nil
	s.state = StateViewing
	s.recomputeLocked()
	return nil
}

// CancelEdit throws away every pending change and restores the snapshot
// taken at BeginEdit.
func (s *Session) CancelEdit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.editSnapshot == nil {
		return &ValidationError{Details: "no edit in progress"}
	}
	s.draft = s.editSnapshot.Clone()
	s.editSnapshot = nil
	s.state = StateViewing
	return nil
}

// SaveEdit persists the modified invoice. On failure the pending changes are
// retained and the session stays in editing so the user can retry; on
// success the session returns to viewing the saved record and the snapshot
// advances to it.
func (s *Session) SaveEdit(ctx context.Context) (*domain.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.editSnapshot == nil {
		return nil, &ValidationError{Details: "no edit in progress"}
	}
	if err := validateDraft(s.draft); err != nil {
		return nil, err
	}

	s.state = StateSaving
	invoice := draftToInvoice(s.draft, s.now())
	invoice.Status = domain.InvoiceStatusCommitted

	saved, err := s.repo.UpdateInvoice(ctx, s.draft.InvoiceID, invoice)
	if err != nil {
		s.state = StateEditing
		return nil, fmt.Errorf("%w: %v", store.ErrCommitFailed, err)
	}

	log.Printf("[order] saved edit of invoice %s net=%s", saved.Number, saved.NetTotal)
	s.draft = invoiceToDraft(*saved)
	s.recomputeLocked()
	snapshot := s.draft.Clone()
	s.editSnapshot = &snapshot
	s.state = StateViewing
	return saved, nil
}

func invoiceToDraft(inv domain.Invoice) domain.OrderDraft {
	items := make([]domain.LineItem, 0, len(inv.Items))
	for _, it := range inv.Items {
		items = append(items, domain.LineItem{
			ProductID: it.ProductID,
			Code:      it.Code,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			UnitID:    it.UnitID,
			LineTotal: it.LineTotal,
		})
	}

	binding := domain.CashBinding()
	if inv.TransactionType == domain.TransactionTypeCredit {
		binding = domain.CustomerBinding{
			Kind:            domain.BindingCredit,
			CustomerID:      inv.CustomerID,
			CustomerName:    inv.CustomerName,
			PreviousBalance: inv.PreviousBalance,
		}
	}

	return domain.OrderDraft{
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.Number,
		Date:            inv.Date,
		Time:            inv.Time,
		TransactionType: inv.TransactionType,
		DeliveryMode:    inv.DeliveryMode,
		Cart:            domain.Cart{Items: items, Focused: len(items) - 1},
		Customer:        binding,
		Discount:        inv.Discount,
		Expenses:        inv.Expenses,
		AmountReceived:  inv.AmountReceived,
		BillingMeta:     inv.BillingMeta,
		PrintFlags:      inv.PrintFlags,
		Remarks:         inv.Remarks,
		Mode:            domain.DraftModeEditingExisting,
	}
}
