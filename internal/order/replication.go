package order

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"billingdesk/backend/internal/domain"
	"billingdesk/backend/internal/replicate"
	"billingdesk/backend/internal/store"
)

// StartReplication loads a historical invoice by number and builds the
// review set of price quotes. The historical invoice itself is never touched.
func (s *Session) StartReplication(ctx context.Context, invoiceNumber string) error {
	invoiceNumber = strings.TrimSpace(invoiceNumber)
	if invoiceNumber == "" {
		return &ValidationError{Details: "invoice number is required"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	historical, err := s.repo.GetInvoiceByNumber(ctx, invoiceNumber)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: invoice %s", store.ErrNotFound, invoiceNumber)
		}
		return fmt.Errorf("%w: %v", store.ErrLookupFailed, err)
	}

	ids := make([]string, 0, len(historical.Items))
	for _, item := range historical.Items {
		ids = append(ids, item.ProductID)
	}
	pricing, err := s.currentPricingLocked(ctx, ids)
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrLookupFailed, err)
	}

	s.quotes = replicate.BuildReplicationSet(*historical, pricing)
	s.draft.Mode = domain.DraftModeReplicated
	log.Printf("[order] replication set built from %s with %d lines", invoiceNumber, len(s.quotes))
	return nil
}

// currentPricingLocked serves pricing from the cache first and falls back to
// the repository, warming the cache on the way out.
func (s *Session) currentPricingLocked(ctx context.Context, productIDs []string) (map[string]domain.Pricing, error) {
	out := make(map[string]domain.Pricing, len(productIDs))
	missing := make([]string, 0, len(productIDs))
	for _, id := range productIDs {
		cached, ok, err := s.prices.Get(ctx, id)
		if err != nil {
			log.Printf("[order] WARN: price cache get failed for %s: %v", id, err)
		}
		if ok && cached != nil {
			out[id] = *cached
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return out, nil
	}

	fetched, err := s.repo.GetPricing(ctx, missing)
	if err != nil {
		return nil, err
	}
	for id, p := range fetched {
		out[id] = p
		pricing := p
		if err := s.prices.Set(ctx, id, &pricing, s.priceTTL); err != nil {
			log.Printf("[order] WARN: price cache set failed for %s: %v", id, err)
		}
	}
	return out, nil
}

func (s *Session) SetQuoteUseNew(productID string, useNew bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes = replicate.SetUseNewPrice(s.quotes, productID, useNew)
}

func (s *Session) SetAllQuotesUseNew(useNew bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes = replicate.SetAllUseNew(s.quotes, useNew)
}

func (s *Session) SelectIncreasedQuotes() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes = replicate.SelectOnlyIncreased(s.quotes)
}

func (s *Session) SelectDecreasedQuotes() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes = replicate.SelectOnlyDecreased(s.quotes)
}

func (s *Session) ScaleQuotes(mode replicate.ScaleMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes = replicate.ScaleQuantities(s.quotes, mode)
}

func (s *Session) RemoveQuote(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes = replicate.RemoveLine(s.quotes, index)
}

// ApplyReplication replaces the cart with the reviewed quote set at each
// line's effective price and returns the session to normal composition.
func (s *Session) ApplyReplication() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.quotes) == 0 {
		return &ValidationError{Details: "no replication lines to apply"}
	}

	items := replicate.ToLineItems(s.quotes)
	s.draft.Cart = domain.Cart{Items: items, Focused: len(items) - 1}
	s.quotes = nil
	s.state = StateComposing
	s.recomputeLocked()
	return nil
}
