// Package navigate walks committed invoices sequentially within a business
// date and resolves direct jumps by invoice number.
package navigate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"billingdesk/backend/internal/domain"
	"billingdesk/backend/internal/store"
)

type Navigator struct {
	repo store.Repository
}

func New(repo store.Repository) *Navigator {
	return &Navigator{repo: repo}
}

// Step moves first/prev/next/last within date. ErrNotFound is passed through
// so callers can show an explicit "no record" state instead of stale data.
func (n *Navigator) Step(ctx context.Context, date string, currentID string, direction store.NavDirection) (*domain.Invoice, error) {
	inv, err := n.repo.NavigateInvoices(ctx, date, currentID, direction)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", store.ErrLookupFailed, err)
	}
	return inv, nil
}

func (n *Navigator) First(ctx context.Context, date string) (*domain.Invoice, error) {
	return n.Step(ctx, date, "", store.NavFirst)
}

func (n *Navigator) Last(ctx context.Context, date string) (*domain.Invoice, error) {
	return n.Step(ctx, date, "", store.NavLast)
}

func (n *Navigator) Prev(ctx context.Context, date string, currentID string) (*domain.Invoice, error) {
	return n.Step(ctx, date, currentID, store.NavPrev)
}

func (n *Navigator) Next(ctx context.Context, date string, currentID string) (*domain.Invoice, error) {
	return n.Step(ctx, date, currentID, store.NavNext)
}

// ByNumber jumps directly to an invoice by its number.
func (n *Navigator) ByNumber(ctx context.Context, number string) (*domain.Invoice, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, fmt.Errorf("%w: empty invoice number", store.ErrValidationFailed)
	}
	inv, err := n.repo.GetInvoiceByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", store.ErrLookupFailed, err)
	}
	return inv, nil
}
